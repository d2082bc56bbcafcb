package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/prepverse/interview-gateway/internal/profile"
	"github.com/prepverse/interview-gateway/internal/question"
	"github.com/prepverse/interview-gateway/internal/session"
	"github.com/prepverse/interview-gateway/internal/speech"
	"github.com/prepverse/interview-gateway/internal/store"
	"github.com/prepverse/interview-gateway/internal/ws"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("load .env", "error", err)
	}

	cfg := loadConfig()
	bank := question.MustLoadBank()

	// TTS backends
	ttsHTTP := speech.NewPooledHTTPClient(cfg.ttsPoolSize, 30*time.Second)
	ttsBackends := map[string]speech.Synthesizer{
		"piper": speech.NewPiperSynthesizer(cfg.piperURL, cfg.piperVoice, ttsHTTP),
	}
	if cfg.openaiTTSURL != "" {
		ttsBackends["openai"] = speech.NewOpenAISynthesizer(cfg.openaiTTSURL, cfg.openaiTTSModel, cfg.openaiTTSVoice, ttsHTTP)
	}
	ttsRouter := speech.NewTTSRouter(ttsBackends, cfg.defaultTTSEngine)

	// ASR backends
	asrBackends := map[string]speech.Recognizer{
		"whisper": speech.NewWhisperRecognizer(cfg.whisperURL, cfg.asrPoolSize),
	}
	asrRouter := speech.NewASRRouter(asrBackends, cfg.defaultASREngine)

	var profiles profile.Provider
	if cfg.profileServiceURL != "" {
		profiles = profile.NewHTTPProvider(cfg.profileServiceURL,
			speech.NewPooledHTTPClient(cfg.profilePoolSize, 10*time.Second))
		slog.Info("profile provider enabled", "url", cfg.profileServiceURL)
	}

	var snapshots *store.Store
	var recorder *store.Recorder
	if cfg.databaseURL != "" {
		var err error
		snapshots, err = store.Open(cfg.databaseURL)
		if err != nil {
			slog.Error("open interview store", "error", err)
			os.Exit(1)
		}
		recorder = store.NewRecorder(snapshots)
		slog.Info("interview history enabled")
	}

	registry := session.NewRegistry()
	handler := ws.NewHandler(ws.HandlerConfig{
		TTS:              ttsRouter,
		ASR:              asrRouter,
		Profiles:         profiles,
		Bank:             bank,
		Recorder:         recorder,
		Registry:         registry,
		PacingDelay:      cfg.pacingDelay,
		DefaultQuestions: cfg.defaultQuestions,
		DefaultTTSEngine: cfg.defaultTTSEngine,
		DefaultASREngine: cfg.defaultASREngine,
		MaxConcurrent:    cfg.maxConcurrent,
	})

	mux := http.NewServeMux()
	registerRoutes(mux, deps{
		cfg:       cfg,
		tts:       ttsRouter,
		asr:       asrRouter,
		wsHandler: handler,
		store:     snapshots,
	})

	addr := ":" + cfg.port
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig, "active_sessions", registry.Len())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	slog.Info("interview gateway starting", "addr", addr, "max_concurrent", cfg.maxConcurrent)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	if recorder != nil {
		recorder.Close()
	}
	if snapshots != nil {
		snapshots.Close()
	}

	slog.Info("interview gateway stopped")
}
