package main

import (
	"os"
	"strconv"
	"time"
)

type config struct {
	port               string
	piperURL           string
	piperVoice         string
	openaiTTSURL       string
	openaiTTSModel     string
	openaiTTSVoice     string
	whisperURL         string
	profileServiceURL  string
	databaseURL        string
	ttsPoolSize        int
	asrPoolSize        int
	profilePoolSize    int
	maxConcurrent      int
	defaultQuestions   int
	defaultTTSEngine   string
	defaultASREngine   string
	pacingDelay        time.Duration
	historyPageSize    int
}

func loadConfig() config {
	return config{
		port:              envStr("GATEWAY_PORT", "8000"),
		piperURL:          envStr("PIPER_URL", "http://localhost:5100"),
		piperVoice:        envStr("PIPER_VOICE", "en_US-lessac-medium"),
		openaiTTSURL:      envStr("OPENAI_TTS_URL", ""),
		openaiTTSModel:    envStr("OPENAI_TTS_MODEL", "kokoro"),
		openaiTTSVoice:    envStr("OPENAI_TTS_VOICE", "af_heart"),
		whisperURL:        envStr("WHISPER_SERVER_URL", "http://localhost:8080"),
		profileServiceURL: envStr("PROFILE_SERVICE_URL", ""),
		databaseURL:       envStr("DATABASE_URL", ""),
		ttsPoolSize:       envInt("TTS_POOL_SIZE", 50),
		asrPoolSize:       envInt("ASR_POOL_SIZE", 50),
		profilePoolSize:   envInt("PROFILE_POOL_SIZE", 10),
		maxConcurrent:     envInt("MAX_CONCURRENT_INTERVIEWS", 100),
		defaultQuestions:  envInt("DEFAULT_QUESTIONS", 10),
		defaultTTSEngine:  envStr("DEFAULT_TTS_ENGINE", "piper"),
		defaultASREngine:  envStr("DEFAULT_ASR_ENGINE", "whisper"),
		pacingDelay:       envDuration("PACING_DELAY", time.Second),
		historyPageSize:   envInt("HISTORY_PAGE_SIZE", 20),
	}
}

func envStr(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}
