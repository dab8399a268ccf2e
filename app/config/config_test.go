package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))
	t.Chdir(dir)
}

func TestLoadAppliesDefaults(t *testing.T) {
	writeConfig(t, `
llm:
  provider: openai
  openai:
    token: sk-test
    model: gpt-4o-mini
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, 4000, cfg.Chat.MaxMessageLength)
	assert.Equal(t, 10, cfg.Chat.HistoryLimit)
	assert.Equal(t, 30, cfg.Chat.LLMTimeoutSeconds)
	assert.Equal(t, "data/history.db", cfg.History.Path)
	assert.Equal(t, "data/memory.jsonl", cfg.Memory.Path)
	assert.Equal(t, "data/audit.jsonl", cfg.Audit.Path)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.OpenAI.BaseURL)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	writeConfig(t, `
llm:
  provider: carrier-pigeon
`)

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsMissingProvider(t *testing.T) {
	writeConfig(t, `
server:
  listen: ":9090"
`)

	_, err := Load()
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load()
	require.Error(t, err)
}
