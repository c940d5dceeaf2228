package api

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/exactcut/exactcut-agent/internal/batch"
	"github.com/exactcut/exactcut-agent/internal/config"
	"github.com/exactcut/exactcut-agent/internal/framelog"
	"github.com/exactcut/exactcut-agent/internal/gop"
	"github.com/exactcut/exactcut-agent/internal/vdscript"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Post("/adjust", adjustHandler(cfg))
		r.Get("/runs", listRunsHandler(cfg))
		r.Get("/runs/{id}", getRunHandler(cfg))
		r.Post("/analyze/gop", gopHandler(cfg))
		r.Post("/analyze/vfr", vfrHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: uptime,
		})
	}
}

func adjustHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdjustRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.ScriptPath == "" {
			WriteError(w, http.StatusBadRequest, "script_path is required", "BAD_REQUEST")
			return
		}
		if req.LogPath == "" {
			req.LogPath = batch.LogPath(req.ScriptPath)
		}
		if req.OutputPath == "" {
			req.OutputPath = batch.OutputPath(req.ScriptPath)
		}

		if _, err := os.Stat(req.LogPath); err != nil {
			WriteError(w, http.StatusBadRequest, "frame log not found", "BAD_REQUEST")
			return
		}

		opts := req.Options.Apply(cfg.Options)
		if err := opts.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		svc := batch.NewService(opts, cfg.Repository, cfg.Logger)
		report, err := svc.ProcessFile(r.Context(), req.ScriptPath, req.LogPath, req.OutputPath)
		if err != nil {
			WriteError(w, http.StatusUnprocessableEntity, err.Error(), "ADJUST_FAILED")
			return
		}

		WriteJSON(w, http.StatusOK, ReportToResponse(req.OutputPath, report))
	}
}

func listRunsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		runs, err := cfg.Repository.ListRuns(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list runs", "INTERNAL_ERROR")
			return
		}

		resp := RunsResponse{Runs: make([]RunResponse, len(runs))}
		for i, run := range runs {
			resp.Runs[i] = RunToResponse(run)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getRunHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "run id required", "BAD_REQUEST")
			return
		}

		run, err := cfg.Repository.GetRun(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if run == nil {
			WriteError(w, http.StatusNotFound, "run not found", "NOT_FOUND")
			return
		}

		ranges, err := cfg.Repository.GetRangeOutcomes(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, RunDetailResponse{Run: RunToResponse(run), Ranges: ranges})
	}
}

func gopHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GOPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.ScriptPath == "" {
			WriteError(w, http.StatusBadRequest, "script_path is required", "BAD_REQUEST")
			return
		}
		if req.LogPath == "" {
			req.LogPath = batch.LogPath(req.ScriptPath)
		}

		script, err := vdscript.ParseFile(req.ScriptPath)
		if err != nil {
			WriteError(w, http.StatusUnprocessableEntity, err.Error(), "PARSE_FAILED")
			return
		}
		frames, err := framelog.ParseFile(req.LogPath)
		if err != nil {
			WriteError(w, http.StatusUnprocessableEntity, err.Error(), "PARSE_FAILED")
			return
		}

		report := gop.Analyze(framelog.NewIndex(frames), script.Ranges())
		WriteJSON(w, http.StatusOK, GOPResponse{Sizes: report.Sizes, Smallest: report.Smallest()})
	}
}

func vfrHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VFRRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.LogPath == "" {
			WriteError(w, http.StatusBadRequest, "log_path is required", "BAD_REQUEST")
			return
		}

		frames, err := framelog.ParseFile(req.LogPath)
		if err != nil {
			WriteError(w, http.StatusUnprocessableEntity, err.Error(), "PARSE_FAILED")
			return
		}

		report := framelog.DetectVFR(frames)
		WriteJSON(w, http.StatusOK, VFRResponse{VFR: report.VFR, Durations: report.Durations})
	}
}
