package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prepverse/interview-gateway/internal/question"
	"github.com/prepverse/interview-gateway/internal/speech"
	"github.com/prepverse/interview-gateway/internal/store"
)

type deps struct {
	cfg       config
	tts       *speech.TTSRouter
	asr       *speech.ASRRouter
	wsHandler http.Handler
	store     *store.Store
}

// registerRoutes wires all HTTP endpoints to the shared mux.
func registerRoutes(mux *http.ServeMux, d deps) {
	mux.Handle("/ws/interview/{id}", d.wsHandler)
	mux.Handle("/ws/interview", d.wsHandler)
	mux.HandleFunc("/health", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/engines", d.handleEngines)
	mux.HandleFunc("GET /api/questions/categories", handleCategories)
	mux.HandleFunc("POST /api/tts/warmup", d.handleTTSWarmup)
	registerHistoryRoutes(mux, d.store, d.cfg.historyPageSize)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (d deps) handleEngines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"tts": map[string]any{
			"engines": d.tts.Engines(),
			"default": d.cfg.defaultTTSEngine,
		},
		"asr": map[string]any{
			"engines": d.asr.Engines(),
			"default": d.cfg.defaultASREngine,
		},
	})
}

func handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"categories": question.Categories,
		"interview_types": []question.InterviewType{
			question.TypeTechnical,
			question.TypeBehavioral,
			question.TypeProject,
			question.TypeScenarioMixed,
			question.TypeBalancedMixed,
		},
	})
}

func (d deps) handleTTSWarmup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Engine string `json:"engine"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !d.tts.Has(req.Engine) {
		http.Error(w, "engine not available", http.StatusNotFound)
		return
	}
	slog.Info("warming up tts engine", "engine", req.Engine)
	res := d.tts.Synthesize(r.Context(), "Hello.", req.Engine)
	if res.Degraded() {
		slog.Error("tts warmup", "error", res.Err)
		http.Error(w, res.Err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func registerHistoryRoutes(mux *http.ServeMux, s *store.Store, pageSize int) {
	mux.HandleFunc("GET /api/interviews", func(w http.ResponseWriter, r *http.Request) {
		if s == nil {
			http.Error(w, "history disabled", http.StatusNotFound)
			return
		}
		limit := queryInt(r, "limit", pageSize)
		offset := queryInt(r, "offset", 0)
		interviews, total, err := s.ListInterviews(limit, offset)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"interviews": interviews, "total": total})
	})

	mux.HandleFunc("GET /api/interviews/{id}", func(w http.ResponseWriter, r *http.Request) {
		if s == nil {
			http.Error(w, "history disabled", http.StatusNotFound)
			return
		}
		interview, answers, err := s.GetInterview(r.PathValue("id"))
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"interview": interview, "answers": answers})
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, key string, fallback int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
