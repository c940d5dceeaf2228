// Package vdscript reads and writes VirtualDub / VirtualDub2 .vdscript
// files. Only the subset range directives are interpreted; every other
// byte of the document, including line endings and the trailing
// VirtualDub.video.SetRange() call, is preserved verbatim so a script with
// unchanged ranges round-trips byte-identical.
package vdscript

import (
	"errors"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/exactcut/exactcut-agent/internal/adjust"
)

// ErrNoRanges means the document contains no recognizable subset range
// directives and there is nothing to adjust.
var ErrNoRanges = errors.New("vdscript: no subset ranges found")

// AddRange(start,length) carries an inclusive span of length frames
// beginning at start.
var rangePattern = regexp.MustCompile(`^VirtualDub\.subset\.AddRange\((\d+),(\d+)\)`)

type chunk struct {
	// text holds the verbatim line, terminator included, for non-range
	// content. Range lines instead keep the bytes around the two numbers
	// so the numbers can be substituted without touching anything else.
	text   string
	isRng  bool
	prefix string
	mid    string
	suffix string
	rng    adjust.Range
}

// Script is a parsed .vdscript document.
type Script struct {
	chunks []chunk
}

// Parse splits the document into verbatim chunks and range directives.
// It returns ErrNoRanges when no AddRange directive is present.
func Parse(data []byte) (*Script, error) {
	s := &Script{}

	text := string(data)
	for len(text) > 0 {
		line := text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			line = text[:i+1]
			text = text[i+1:]
		} else {
			text = ""
		}

		loc := rangePattern.FindStringSubmatchIndex(line)
		if loc == nil {
			s.chunks = append(s.chunks, chunk{text: line})
			continue
		}

		start, err := strconv.Atoi(line[loc[2]:loc[3]])
		if err != nil {
			s.chunks = append(s.chunks, chunk{text: line})
			continue
		}
		length, err := strconv.Atoi(line[loc[4]:loc[5]])
		if err != nil || length < 1 {
			s.chunks = append(s.chunks, chunk{text: line})
			continue
		}

		s.chunks = append(s.chunks, chunk{
			isRng:  true,
			prefix: line[:loc[2]],
			mid:    line[loc[3]:loc[4]],
			suffix: line[loc[5]:],
			rng:    adjust.Range{Start: start, End: start + length - 1},
		})
	}

	if s.RangeCount() == 0 {
		return nil, ErrNoRanges
	}
	return s, nil
}

// ParseFile parses the .vdscript at path.
func ParseFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// RangeCount returns the number of range directives in the document.
func (s *Script) RangeCount() int {
	n := 0
	for _, c := range s.chunks {
		if c.isRng {
			n++
		}
	}
	return n
}

// Ranges returns the subset ranges in document order.
func (s *Script) Ranges() []adjust.Range {
	out := make([]adjust.Range, 0, s.RangeCount())
	for _, c := range s.chunks {
		if c.isRng {
			out = append(out, c.rng)
		}
	}
	return out
}

// Render serializes the document with the given ranges substituted into
// the range directives, preserving all other content byte for byte. When
// merging produced fewer ranges than the document held, the surplus
// directive lines are dropped; extra ranges reuse the formatting of the
// last directive line.
func (s *Script) Render(ranges []adjust.Range) []byte {
	var b strings.Builder
	next := 0
	lastRange := -1
	for i, c := range s.chunks {
		if c.isRng {
			lastRange = i
		}
	}

	for i, c := range s.chunks {
		if !c.isRng {
			b.WriteString(c.text)
			continue
		}
		if next < len(ranges) {
			writeDirective(&b, c, ranges[next])
			next++
		}
		if i == lastRange {
			for next < len(ranges) {
				writeDirective(&b, c, ranges[next])
				next++
			}
		}
	}
	return []byte(b.String())
}

func writeDirective(b *strings.Builder, template chunk, r adjust.Range) {
	b.WriteString(template.prefix)
	b.WriteString(strconv.Itoa(r.Start))
	b.WriteString(template.mid)
	b.WriteString(strconv.Itoa(r.Frames()))
	b.WriteString(template.suffix)
}
