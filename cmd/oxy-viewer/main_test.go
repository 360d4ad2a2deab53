package main

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestRunRejectsMissingPath(t *testing.T) {
	assert.Equal(t, 2, run(nil))
	assert.Equal(t, 2, run([]string{"--wireframe"}))
}

func TestRunHelp(t *testing.T) {
	assert.Equal(t, 0, run([]string{"-h"}))
}

func TestEngineOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Render.Wireframe = true
	opts := engineOptions(cfg, nil)
	assert.Len(t, opts, 8)
}

func TestWindowOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Window.MaxWidth = 1920
	assert.Len(t, windowOptions(cfg), 4)
}
