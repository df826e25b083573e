package config

import (
	"testing"
	"time"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, entity.DefaultRAGConfig(), cfg.RAGCfg.ToEntity())
	assert.Equal(t, "general-qa", cfg.PromptCfg.DefaultTemplate)
	assert.Equal(t, "chat", cfg.ChatCfg.DefaultMode)
	assert.False(t, cfg.ChatCfg.SupersedeInFlight)
	assert.Equal(t, int64(10<<20), cfg.UploadCfg.MaxFileSize)
	assert.Equal(t, "/chat", cfg.BackendCfg.ChatEndpoint)
	assert.Equal(t, uint(3), cfg.BackendCfg.Retry.Attempts)
	assert.Equal(t, 10*time.Minute, cfg.CacheCfg.TTL)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.APICfg.AllowedOrigins)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("BACKEND_SERVICE_URL", "https://rag.example.com/api")
	t.Setenv("BACKEND_TIMEOUT", "30s")
	t.Setenv("BACKEND_INSECURE_SKIP_VERIFY", "true")
	t.Setenv("RAG_TOP_K", "4")
	t.Setenv("RAG_SEARCH_MODE", "mmr")
	t.Setenv("CHAT_DEFAULT_MODE", "ask")
	t.Setenv("CHAT_SUPERSEDE_IN_FLIGHT", "true")
	t.Setenv("ENABLE_MOCKS", "true")
	t.Setenv("API_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "https://rag.example.com/api", cfg.BackendCfg.Url)
	assert.Equal(t, 30*time.Second, cfg.BackendCfg.RequestTimeout)
	assert.True(t, cfg.BackendCfg.InsecureSkipVerify)
	assert.Equal(t, 4, cfg.RAGCfg.TopK)
	assert.Equal(t, entity.SearchModeMMR, cfg.RAGCfg.ToEntity().SearchMode)
	assert.Equal(t, "ask", cfg.ChatCfg.DefaultMode)
	assert.True(t, cfg.ChatCfg.SupersedeInFlight)
	assert.True(t, cfg.EnableMocks)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.APICfg.AllowedOrigins)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"threshold out of range", "RAG_THRESHOLD", "1.5", "RAG defaults"},
		{"unknown mode", "CHAT_DEFAULT_MODE", "shout", "CHAT_DEFAULT_MODE"},
		{"zero upload size", "UPLOAD_MAX_FILE_SIZE", "0", "UPLOAD_MAX_FILE_SIZE"},
		{"log size", "LOG_MAX_SIZE_MB", "0", "LOG_MAX_SIZE_MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Parse()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGetEnvFile(t *testing.T) {
	assert.Equal(t, ".env.prod", getEnvFile("production"))
	assert.Equal(t, ".env.local", getEnvFile("dev"))
	assert.Equal(t, ".env.staging", getEnvFile("staging"))
}
