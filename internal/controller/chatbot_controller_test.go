// FILE: internal/controller/chatbot_controller_test.go
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"presto-copilot-be/internal/config"
	"presto-copilot-be/internal/constant"
	"presto-copilot-be/internal/dto"
	"presto-copilot-be/internal/pkg/logger"
	"presto-copilot-be/internal/pkg/serverutils"
	"presto-copilot-be/internal/repository/memory"
	"presto-copilot-be/internal/service"
	"presto-copilot-be/pkg/events"
	"presto-copilot-be/pkg/genai"
	"presto-copilot-be/pkg/rag/executor"
	"presto-copilot-be/pkg/rag/throttle"
	"presto-copilot-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

var _ logger.ILogger = noopLogger{}

type fakeStoreAPI struct {
	stores    []*genai.FileSearchStore
	documents map[string][]*genai.Document
}

func (f *fakeStoreAPI) ListFileSearchStores(ctx context.Context) ([]*genai.FileSearchStore, error) {
	return f.stores, nil
}

func (f *fakeStoreAPI) CreateFileSearchStore(ctx context.Context, displayName string) (*genai.FileSearchStore, error) {
	created := &genai.FileSearchStore{
		Name:        "fileSearchStores/created-" + displayName,
		DisplayName: displayName,
	}
	f.stores = append(f.stores, created)
	return created, nil
}

func (f *fakeStoreAPI) ListDocuments(ctx context.Context, storeName string) ([]*genai.Document, error) {
	return f.documents[storeName], nil
}

type stubAsker struct {
	result executor.Result
}

func (s *stubAsker) Ask(ctx context.Context, storeName, model, systemInstruction string, turns []store.Turn) executor.Result {
	return s.result
}

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, event events.Event) error { return nil }

type testApp struct {
	app   *fiber.App
	repo  *memory.SessionRepository
	asker *stubAsker
}

func newTestApp(t *testing.T, interval time.Duration) *testApp {
	t.Helper()

	cfg := &config.ChatConfig{
		StoreCatalog: map[string]string{
			"products":     "presto_products",
			"applications": "presto_applications",
		},
		StoreCatalogOrder:  []string{"products", "applications"},
		Models:             []string{"gemini-2.5-flash", "gemini-2.5-pro"},
		AnswerLanguage:     "Korean",
		MaxTurns:           6,
		MinRequestInterval: interval,
		SessionTTL:         time.Hour,
		DocumentCacheTTL:   time.Minute,
	}

	api := &fakeStoreAPI{
		stores: []*genai.FileSearchStore{
			{Name: "fileSearchStores/products", DisplayName: "presto_products"},
			{Name: "fileSearchStores/applications", DisplayName: "presto_applications"},
		},
		documents: map[string][]*genai.Document{
			"fileSearchStores/products": {
				{Name: "fileSearchStores/products/documents/d1", DisplayName: "guide.pdf", MimeType: "application/pdf", SizeBytes: "1024"},
			},
		},
	}

	repo := memory.NewSessionRepository(cfg.SessionTTL, cfg.SessionTTL)
	asker := &stubAsker{result: executor.Result{
		Text:     "the answer",
		Outcome:  executor.OutcomeAnswered,
		Attempts: 1,
	}}

	storeService := service.NewStoreService(api, cfg, noopLogger{})
	chatService := service.NewChatbotService(
		cfg,
		storeService,
		repo,
		asker,
		throttle.NewGuard(cfg.MinRequestInterval),
		nopPublisher{},
		noopLogger{},
	)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())

	apiGroup := app.Group("/api")
	NewChatbotController(chatService).RegisterRoutes(apiGroup)
	NewCatalogController(storeService).RegisterRoutes(apiGroup)
	NewHealthController().RegisterRoutes(apiGroup)

	return &testApp{app: app, repo: repo, asker: asker}
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(payload))
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func createTestSession(t *testing.T, app *fiber.App, body interface{}) dto.SessionResponse {
	t.Helper()

	resp := doRequest(t, app, "POST", "/api/chat/v1/session", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	var sess dto.SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	return sess
}

func TestCreateSessionEndpoint(t *testing.T) {
	ta := newTestApp(t, 0)

	t.Run("empty body uses defaults", func(t *testing.T) {
		sess := createTestSession(t, ta.app, nil)

		assert.NotEmpty(t, sess.Id)
		assert.Equal(t, "products", sess.StoreKey)
		assert.Equal(t, "fileSearchStores/products", sess.StoreName)
		assert.Equal(t, "gemini-2.5-flash", sess.Model)
	})

	t.Run("explicit selection", func(t *testing.T) {
		sess := createTestSession(t, ta.app, dto.CreateSessionRequest{StoreKey: "applications", Model: "gemini-2.5-pro"})

		assert.Equal(t, "applications", sess.StoreKey)
		assert.Equal(t, "gemini-2.5-pro", sess.Model)
	})

	t.Run("unknown model rejected", func(t *testing.T) {
		resp := doRequest(t, ta.app, "POST", "/api/chat/v1/session", dto.CreateSessionRequest{Model: "gpt-4"})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		env := decodeEnvelope(t, resp)
		assert.False(t, env.Success)
	})
}

func TestSendChatEndpoint(t *testing.T) {
	ta := newTestApp(t, 0)
	sess := createTestSession(t, ta.app, nil)

	resp := doRequest(t, ta.app, "POST", "/api/chat/v1/session/"+sess.Id+"/send", dto.SendChatRequest{Chat: "hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	var send dto.SendChatResponse
	require.NoError(t, json.Unmarshal(env.Data, &send))

	assert.Equal(t, dto.ChatOutcomeAnswered, send.Outcome)
	assert.Equal(t, "hello", send.Sent.Chat)
	assert.Equal(t, "the answer", send.Reply.Chat)
}

func TestSendChatEndpointValidation(t *testing.T) {
	ta := newTestApp(t, 0)
	sess := createTestSession(t, ta.app, nil)

	resp := doRequest(t, ta.app, "POST", "/api/chat/v1/session/"+sess.Id+"/send", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendChatEndpointUnknownSession(t *testing.T) {
	ta := newTestApp(t, 0)

	resp := doRequest(t, ta.app, "POST", "/api/chat/v1/session/nope/send", dto.SendChatRequest{Chat: "hello"})

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSendChatEndpointThrottled(t *testing.T) {
	ta := newTestApp(t, time.Hour)
	sess := createTestSession(t, ta.app, nil)

	resp := doRequest(t, ta.app, "POST", "/api/chat/v1/session/"+sess.Id+"/send", dto.SendChatRequest{Chat: "first"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, ta.app, "POST", "/api/chat/v1/session/"+sess.Id+"/send", dto.SendChatRequest{Chat: "second"})
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	defer resp.Body.Close()

	var throttled dto.ThrottledResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&throttled))
	assert.False(t, throttled.Success)
	assert.Equal(t, "throttled", throttled.ErrorType)
	assert.Equal(t, time.Hour.Milliseconds(), throttled.Data.RetryAfterMs)
}

func TestSendChatEndpointBusy(t *testing.T) {
	ta := newTestApp(t, 0)
	sess := createTestSession(t, ta.app, nil)

	raw, found := ta.repo.Get(sess.Id)
	require.True(t, found)
	require.True(t, raw.BeginQuery())

	resp := doRequest(t, ta.app, "POST", "/api/chat/v1/session/"+sess.Id+"/send", dto.SendChatRequest{Chat: "hello"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	raw.EndQuery()
	resp = doRequest(t, ta.app, "POST", "/api/chat/v1/session/"+sess.Id+"/send", dto.SendChatRequest{Chat: "hello"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// A query that fails after retries is still a successful HTTP exchange: the
// session gains a fallback answer and the outcome travels in the body.
func TestSendChatEndpointFailureContract(t *testing.T) {
	ta := newTestApp(t, 0)
	ta.asker.result = executor.Result{
		Outcome:  executor.OutcomeOverloaded,
		Attempts: 5,
		Err:      errors.New("model overloaded"),
	}
	sess := createTestSession(t, ta.app, nil)

	resp := doRequest(t, ta.app, "POST", "/api/chat/v1/session/"+sess.Id+"/send", dto.SendChatRequest{Chat: "q"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	var send dto.SendChatResponse
	require.NoError(t, json.Unmarshal(env.Data, &send))

	assert.Equal(t, dto.ChatOutcomeFailed, send.Outcome)
	assert.Equal(t, dto.FailureReasonOverloaded, send.FailureReason)
	assert.Equal(t, 5, send.Attempts)
	assert.Equal(t, constant.FallbackAnswer, send.Reply.Chat)
}

func TestChatHistoryEndpoint(t *testing.T) {
	ta := newTestApp(t, 0)
	sess := createTestSession(t, ta.app, nil)

	for _, q := range []string{"first question", "second question"} {
		resp := doRequest(t, ta.app, "POST", "/api/chat/v1/session/"+sess.Id+"/send", dto.SendChatRequest{Chat: q})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doRequest(t, ta.app, "GET", "/api/chat/v1/session/"+sess.Id+"/history", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	var history dto.GetChatHistoryResponse
	require.NoError(t, json.Unmarshal(env.Data, &history))

	require.Len(t, history.Pairs, 2)
	assert.True(t, history.Pairs[0].Collapsed)
	assert.False(t, history.Pairs[1].Collapsed)
	assert.Equal(t, "second question", history.Pairs[1].Title)
}

func TestConfigureSessionEndpoint(t *testing.T) {
	ta := newTestApp(t, 0)
	sess := createTestSession(t, ta.app, nil)

	resp := doRequest(t, ta.app, "PUT", "/api/chat/v1/session/"+sess.Id+"/config", dto.ConfigureSessionRequest{StoreKey: "applications"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	var updated dto.SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &updated))

	assert.Equal(t, "applications", updated.StoreKey)
	assert.Equal(t, "fileSearchStores/applications", updated.StoreName)
	assert.Equal(t, "gemini-2.5-flash", updated.Model)
}

func TestDeleteSessionEndpoint(t *testing.T) {
	ta := newTestApp(t, 0)
	sess := createTestSession(t, ta.app, nil)

	resp := doRequest(t, ta.app, "DELETE", "/api/chat/v1/session/"+sess.Id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, ta.app, "DELETE", "/api/chat/v1/session/"+sess.Id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetAllSessionsEndpoint(t *testing.T) {
	ta := newTestApp(t, 0)
	createTestSession(t, ta.app, nil)
	createTestSession(t, ta.app, nil)

	resp := doRequest(t, ta.app, "GET", "/api/chat/v1/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	var sessions []dto.SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &sessions))
	assert.Len(t, sessions, 2)
}

func TestCatalogEndpoints(t *testing.T) {
	ta := newTestApp(t, 0)

	t.Run("stores", func(t *testing.T) {
		resp := doRequest(t, ta.app, "GET", "/api/catalog/v1/stores", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		env := decodeEnvelope(t, resp)
		var entries []dto.StoreCatalogEntry
		require.NoError(t, json.Unmarshal(env.Data, &entries))
		require.Len(t, entries, 2)
		assert.Equal(t, "products", entries[0].Key)
		assert.Equal(t, "applications", entries[1].Key)
	})

	t.Run("models", func(t *testing.T) {
		resp := doRequest(t, ta.app, "GET", "/api/catalog/v1/models", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		env := decodeEnvelope(t, resp)
		var models dto.ModelCatalogResponse
		require.NoError(t, json.Unmarshal(env.Data, &models))
		assert.Equal(t, "gemini-2.5-flash", models.Default)
	})

	t.Run("documents", func(t *testing.T) {
		resp := doRequest(t, ta.app, "GET", "/api/catalog/v1/stores/products/documents", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		env := decodeEnvelope(t, resp)
		var docs []dto.DocumentResponse
		require.NoError(t, json.Unmarshal(env.Data, &docs))
		require.Len(t, docs, 1)
		assert.Equal(t, "guide.pdf", docs[0].DisplayName)
	})

	t.Run("unknown store", func(t *testing.T) {
		resp := doRequest(t, ta.app, "GET", "/api/catalog/v1/stores/nope/documents", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHealthEndpoint(t *testing.T) {
	ta := newTestApp(t, 0)

	resp := doRequest(t, ta.app, "GET", "/api/health/v1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.True(t, env.Success)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "ok", data["status"])
}
