package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Pagewise/internal/config"
	db "github.com/markdave123-py/Pagewise/internal/core/database"
	"github.com/markdave123-py/Pagewise/internal/core/ingestion_engine"
	"github.com/markdave123-py/Pagewise/internal/testutils"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		LLMProvider:    config.ProviderGemini,
		AIAPIKey:       "test",
		GenModel:       "gemini-2.5-flash",
		StorageDir:     t.TempDir(),
		Port:           "0",
		SessionSecret:  "secret",
		Extractor:      config.ExtractorPDF,
		MaxUploadBytes: 1 << 20,
		AgentMaxTurns:  3,
		AgentTimeout:   time.Minute,
		AllowedOrigins: []string{"http://localhost:5173"},
	}
}

func TestNewApp_WiresRoutes(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(t), testutils.CreateTestLogger(), testutils.FinalText("ok"))
	require.NoError(t, err)
	defer a.Close()

	_, isMemory := a.DBClient.(*db.MemoryClient)
	assert.True(t, isMemory)

	h := a.Server.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Pagewise")

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/summary", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewExtractor(t *testing.T) {
	cfg := testConfig(t)
	logger := testutils.CreateTestLogger()

	assert.IsType(t, &ingestion_engine.PDFExtractor{}, NewExtractor(cfg, logger))

	cfg.Extractor = config.ExtractorDocconv
	assert.IsType(t, &ingestion_engine.DocconvExtractor{}, NewExtractor(cfg, logger))
}

func TestNewAgent(t *testing.T) {
	a, runner, err := NewAgent(testConfig(t), testutils.CreateTestLogger(), testutils.FinalText("done"))
	require.NoError(t, err)
	require.Len(t, a.Tools, 1)
	assert.Equal(t, "pdf_text_extractor", a.Tools[0].Spec().Name)

	res, err := runner.Run(context.Background(), a, "hello")
	require.NoError(t, err)
	assert.Equal(t, "done", res.FinalOutput)
}
