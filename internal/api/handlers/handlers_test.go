package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	middleware "github.com/markdave123-py/Pagewise/internal/api/middlewares"
	"github.com/markdave123-py/Pagewise/internal/api/views"
	"github.com/markdave123-py/Pagewise/internal/core"
	"github.com/markdave123-py/Pagewise/internal/core/agent"
	db "github.com/markdave123-py/Pagewise/internal/core/database"
	"github.com/markdave123-py/Pagewise/internal/core/ingestion_engine"
	objectclient "github.com/markdave123-py/Pagewise/internal/core/object-client"
	"github.com/markdave123-py/Pagewise/internal/core/tools"
	"github.com/markdave123-py/Pagewise/internal/models"
	"github.com/markdave123-py/Pagewise/internal/services"
	"github.com/markdave123-py/Pagewise/internal/testutils"
)

const testMaxBytes = 1 << 20

type testEnv struct {
	server *httptest.Server
	client *http.Client
	model  *testutils.ScriptedLLM
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := testutils.CreateTestLogger()

	local, err := objectclient.NewLocalClient(t.TempDir())
	require.NoError(t, err)
	store := db.NewMemoryClient()
	docs := services.NewDocumentService(store, local, nil, ingestion_engine.NewPDFPageCounter(), testMaxBytes, logger)

	tool, err := tools.NewPDFTextExtractor(ingestion_engine.NewPDFExtractor(logger))
	require.NoError(t, err)
	model := &testutils.ScriptedLLM{}
	study := services.NewStudyService(store, docs, agent.NewRunner(logger, 4, time.Minute), agent.NewSummarizerAgent(model, tool), logger)

	renderer, err := views.NewRenderer()
	require.NoError(t, err)

	pageHandler := NewPageHandler(study, renderer, testMaxBytes, logger)
	docHandler := NewDocumentHandler(study, docs, testMaxBytes, logger)
	studyHandler := NewStudyHandler(study, logger)

	r := chi.NewRouter()
	r.Use(middleware.NewSessions("test-secret", logger).Middleware)
	r.Get("/", pageHandler.Index)
	r.Post("/upload", docHandler.UploadForm)
	r.Post("/actions/{kind}", studyHandler.RunForm)
	r.Route("/api", func(api chi.Router) {
		api.Post("/documents", docHandler.UploadDocument)
		api.Get("/documents", docHandler.GetDocuments)
		api.Get("/session", studyHandler.GetSession)
		api.Post("/{kind}", studyHandler.RunAction)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testEnv{server: srv, client: client, model: model}
}

func (e *testEnv) do(t *testing.T, method, path, contentType string, body io.Reader) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func (e *testEnv) upload(t *testing.T, path, filename string, data []byte) (*http.Response, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return e.do(t, http.MethodPost, path, mw.FormDataContentType(), &buf)
}

func (e *testEnv) action(t *testing.T, kind, prompt string) (*http.Response, actionResponse) {
	t.Helper()
	body, err := json.Marshal(actionRequest{Prompt: prompt})
	require.NoError(t, err)
	resp, raw := e.do(t, http.MethodPost, "/api/"+kind, "application/json", bytes.NewReader(body))
	var out actionResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &out), raw)
	return resp, out
}

func TestIndex_StartsSession(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "disabled>Generate Summary")
	assert.Contains(t, body, services.DefaultPrompt(services.KindQuiz))

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			found = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found, "session cookie not set")
}

func TestAPI_UploadThenSummarize(t *testing.T) {
	env := newTestEnv(t)
	env.model.Responses = []*core.ChatResponse{{Text: "A short summary."}}

	resp, raw := env.upload(t, "/api/documents", "lecture.pdf", testutils.BuildPDF("Enzymes lower activation energy"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, raw)

	var up uploadResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &up))
	assert.Equal(t, "lecture.pdf", up.Document.FileName)
	assert.Equal(t, 1, up.Document.PageCount)
	assert.Equal(t, up.Document.Path, up.Session.DocumentPath)
	assert.Equal(t, "File saved to "+up.Document.Path, up.Session.Notice)

	resp, out := env.action(t, "summary", "One sentence please.")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "A short summary.", out.Session.Summary)
	assert.Contains(t, env.model.Requests[0].Messages[0].Text, "One sentence please. Extract text from the PDF")
	assert.Contains(t, env.model.Requests[0].Messages[0].Text, up.Document.Path)

	resp, raw = env.do(t, http.MethodGet, "/api/session", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sess models.Session
	require.NoError(t, json.Unmarshal([]byte(raw), &sess))
	assert.Equal(t, "A short summary.", sess.Summary)

	resp, raw = env.do(t, http.MethodGet, "/api/documents", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var docs []models.Document
	require.NoError(t, json.Unmarshal([]byte(raw), &docs))
	assert.Len(t, docs, 1)
}

func TestAPI_ActionErrors(t *testing.T) {
	t.Run("no document", func(t *testing.T) {
		env := newTestEnv(t)
		resp, out := env.action(t, "quiz", "")
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "Please upload a PDF first.", out.Error)
		assert.Zero(t, env.model.Calls())
	})

	t.Run("unknown action", func(t *testing.T) {
		env := newTestEnv(t)
		resp, _ := env.do(t, http.MethodPost, "/api/essay", "application/json", strings.NewReader(`{}`))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("flashcards not json", func(t *testing.T) {
		env := newTestEnv(t)
		env.model.Responses = []*core.ChatResponse{{Text: "no cards today"}}
		resp, raw := env.upload(t, "/api/documents", "a.pdf", testutils.BuildPDF("text"))
		require.Equal(t, http.StatusCreated, resp.StatusCode, raw)

		resp, out := env.action(t, "flashcards", "")
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Empty(t, out.Session.Flashcards)
		assert.Equal(t, "no cards today", out.Session.RawFlashcards)
	})

	t.Run("model failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.model.Err = assert.AnError
		resp, raw := env.upload(t, "/api/documents", "a.pdf", testutils.BuildPDF("text"))
		require.Equal(t, http.StatusCreated, resp.StatusCode, raw)

		resp, out := env.action(t, "summary", "")
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.True(t, strings.HasPrefix(out.Error, "Error generating summary: "))
	})
}

func TestAPI_UploadRejected(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		status   int
	}{
		{name: "wrong extension", filename: "notes.docx", data: testutils.BuildPDF("x"), status: http.StatusUnprocessableEntity},
		{name: "too large", filename: "big.pdf", data: bytes.Repeat([]byte("a"), testMaxBytes+10), status: http.StatusRequestEntityTooLarge},
		{name: "far beyond the limit", filename: "huge.pdf", data: bytes.Repeat([]byte("a"), 3*testMaxBytes), status: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			resp, _ := env.upload(t, "/api/documents", tt.filename, tt.data)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	t.Run("missing file field", func(t *testing.T) {
		env := newTestEnv(t)
		resp, _ := env.do(t, http.MethodPost, "/api/documents", "application/json", strings.NewReader(`{}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestForms_UploadAndFlashcards(t *testing.T) {
	env := newTestEnv(t)
	env.model.Responses = []*core.ChatResponse{{Text: "```json\n[{\"topic\": \"\", \"key_points\": [\"Enzymes are catalysts\"]}]\n```"}}

	resp, _ := env.upload(t, "/upload", "lecture.pdf", testutils.BuildPDF("Enzymes"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	_, body := env.do(t, http.MethodGet, "/", "", nil)
	assert.Contains(t, body, "File saved to ")
	assert.Contains(t, body, "<strong>lecture.pdf</strong>")
	assert.NotContains(t, body, "disabled>Generate")

	_, body = env.do(t, http.MethodGet, "/", "", nil)
	assert.NotContains(t, body, "File saved to ")

	resp, _ = env.do(t, http.MethodPost, "/actions/flashcards", "application/x-www-form-urlencoded", strings.NewReader("prompt=Two+cards"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, env.model.Requests[0].Messages[0].Text, "Two cards Extract text from the PDF")

	_, body = env.do(t, http.MethodGet, "/", "", nil)
	assert.Contains(t, body, `<div class="card-face card-front">N/A</div>`)
	assert.Contains(t, body, "<li>Enzymes are catalysts</li>")
}

func TestAPI_UploadStoresCorruptPDF(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.upload(t, "/api/documents", "broken.pdf", []byte("%PDF-1.4\nhello"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, raw)

	var up uploadResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &up))
	assert.Zero(t, up.Document.PageCount)
	assert.Equal(t, up.Document.Path, up.Session.DocumentPath)
}

func TestForms_OversizedUploadShowsError(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.upload(t, "/upload", "huge.pdf", bytes.Repeat([]byte("a"), 3*testMaxBytes))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body := env.do(t, http.MethodGet, "/", "", nil)
	assert.Contains(t, body, "Upload failed: uploaded file is too large")
}

func TestForms_UploadWithoutFileShowsError(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/upload", "application/x-www-form-urlencoded", strings.NewReader(""))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body := env.do(t, http.MethodGet, "/", "", nil)
	assert.Contains(t, body, "Upload failed: invalid file")
}
