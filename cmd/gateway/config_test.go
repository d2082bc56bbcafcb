package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadConfig()

	assert.Equal(t, "8000", cfg.port)
	assert.Equal(t, "piper", cfg.defaultTTSEngine)
	assert.Equal(t, "whisper", cfg.defaultASREngine)
	assert.Equal(t, 10, cfg.defaultQuestions)
	assert.Equal(t, 100, cfg.maxConcurrent)
	assert.Equal(t, time.Second, cfg.pacingDelay)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GATEWAY_PORT", "9000")
	t.Setenv("DEFAULT_QUESTIONS", "7")
	t.Setenv("PACING_DELAY", "250ms")

	cfg := loadConfig()

	assert.Equal(t, "9000", cfg.port)
	assert.Equal(t, 7, cfg.defaultQuestions)
	assert.Equal(t, 250*time.Millisecond, cfg.pacingDelay)
}

func TestEnvHelpersIgnoreBadValues(t *testing.T) {
	t.Setenv("DEFAULT_QUESTIONS", "lots")
	t.Setenv("PACING_DELAY", "soon")

	cfg := loadConfig()

	assert.Equal(t, 10, cfg.defaultQuestions)
	assert.Equal(t, time.Second, cfg.pacingDelay)
}
