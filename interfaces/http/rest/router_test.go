package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kellerliste/application/commands/bus"
	commandhandlers "kellerliste/application/commands/handlers"
	"kellerliste/application/ports"
	querybus "kellerliste/application/queries/bus"
	queryhandlers "kellerliste/application/queries/handlers"
	"kellerliste/application/services"
	"kellerliste/domain/inventory"
	"kellerliste/infrastructure/persistence/memory"
	"kellerliste/pkg/auth"
	apperrors "kellerliste/pkg/errors"
)

const email = "a@example.com"

type stubProvider struct {
	mock.Mock
}

func (s *stubProvider) ExchangeCode(ctx context.Context, code string) (*ports.TokenSet, error) {
	args := s.Called(ctx, code)
	set, _ := args.Get(0).(*ports.TokenSet)
	return set, args.Error(1)
}

func (s *stubProvider) Refresh(ctx context.Context, token string) (*ports.TokenSet, error) {
	args := s.Called(ctx, token)
	set, _ := args.Get(0).(*ports.TokenSet)
	return set, args.Error(1)
}

type testEnv struct {
	handler   http.Handler
	repo      *memory.InventoryRepository
	validator *auth.JWTValidator
	provider  *stubProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	repo := memory.NewInventoryRepository()

	cb := bus.NewCommandBus()
	qb := querybus.NewQueryBus(nil)
	require.NoError(t, commandhandlers.Register(cb, repo, nil, nil, logger))
	require.NoError(t, queryhandlers.Register(qb, repo, logger))

	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: "test-secret"})
	require.NoError(t, err)

	provider := new(stubProvider)
	router := NewRouter(
		services.NewInventoryService(cb, qb, logger),
		services.NewAuthService(provider, logger),
		validator,
		nil,
		logger,
	)

	return &testEnv{handler: router.Setup(), repo: repo, validator: validator, provider: provider}
}

func (e *testEnv) do(t *testing.T, method, path, body string, authorized bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authorized {
		token, err := e.validator.GenerateToken(email, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRouter_ItemLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/items", `{"category":"food","item":{"id":"1","name":"rice","amount":"2kg"}}`, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = env.do(t, http.MethodGet, "/items", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot struct {
		Inventory map[string][]inventory.Item `json:"inventory"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, "rice", snapshot.Inventory["food"][0].Name)

	rec = env.do(t, http.MethodPatch, "/items/1", `{"item":{"name":"rice","amount":"5kg"}}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/items/1", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var found struct {
		Category string         `json:"category"`
		Item     inventory.Item `json:"item"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	assert.Equal(t, "food", found.Category)
	assert.Equal(t, "5kg", found.Item.Amount)
	assert.Equal(t, "1", found.Item.ID)

	rec = env.do(t, http.MethodDelete, "/items/1", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/items/1", "", true)
	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "item not found", resp.Body)
}

func TestRouter_CreateGeneratesID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/items", `{"category":"tools","item":{"name":"hammer"}}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Item inventory.Item `json:"item"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Item.ID)
}

func TestRouter_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		authorized bool
		status     int
	}{
		{"no token", http.MethodGet, "/items", "", false, http.StatusUnauthorized},
		{"no body", http.MethodPost, "/items", "", true, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/items", `{"category":`, true, http.StatusBadRequest},
		{"unknown category", http.MethodPost, "/items", `{"category":"toys","item":{"name":"ball"}}`, true, http.StatusBadRequest},
		{"missing record", http.MethodGet, "/items", "", true, http.StatusNotFound},
		{"update on missing record", http.MethodPatch, "/items/x", `{"item":{"name":"y"}}`, true, http.StatusNotFound},
		{"unknown route", http.MethodGet, "/nope", "", false, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body, tt.authorized)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.status, decodeError(t, rec).StatusCode)
		})
	}
}

func TestRouter_Auth(t *testing.T) {
	env := newTestEnv(t)
	env.provider.On("ExchangeCode", mock.Anything, "abc").
		Return(&ports.TokenSet{AccessToken: "a", IDToken: "i", RefreshToken: "r"}, nil)

	rec := env.do(t, http.MethodGet, "/auth?code=abc", "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	var tokens map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokens))
	assert.Equal(t, "i", tokens["id_token"])
	assert.Equal(t, "r", tokens["refresh_token"])

	rec = env.do(t, http.MethodGet, "/auth", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no auth code", decodeError(t, rec).Body)
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_APIGatewayClaims(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.repo.Create(context.Background(), inventory.NewRecord(email)))

	mux, ok := env.handler.(*chi.Mux)
	require.True(t, ok)
	adapter := chiadapter.New(mux)

	resp, err := adapter.ProxyWithContext(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/items",
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: "req-1",
			Authorizer: map[string]interface{}{
				"claims": map[string]interface{}{"email": email},
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
}
