package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
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
	apperrors "kellerliste/pkg/errors"
)

const email = "a@example.com"

type fakeProvider struct {
	err error
}

func (f fakeProvider) ExchangeCode(_ context.Context, code string) (*ports.TokenSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ports.TokenSet{AccessToken: "a-" + code, IDToken: "i-" + code, RefreshToken: "r"}, nil
}

func (f fakeProvider) Refresh(_ context.Context, token string) (*ports.TokenSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ports.TokenSet{AccessToken: "a2", IDToken: "i2", RefreshToken: token}, nil
}

type brokenStore struct {
	ports.InventoryRepository
}

func (brokenStore) Get(context.Context, string) (*inventory.Record, error) {
	return nil, errors.New("ResourceNotFoundException: table missing")
}

func newHandlers(t *testing.T, repo ports.InventoryRepository, provider ports.IdentityProvider) *Handlers {
	t.Helper()
	logger := zap.NewNop()
	cb := bus.NewCommandBus()
	qb := querybus.NewQueryBus(nil)
	require.NoError(t, commandhandlers.Register(cb, repo, nil, nil, logger))
	require.NoError(t, queryhandlers.Register(qb, repo, logger))
	return NewHandlers(services.NewInventoryService(cb, qb, logger), services.NewAuthService(provider, logger), logger)
}

func request(body string, pathID string) events.APIGatewayProxyRequest {
	req := events.APIGatewayProxyRequest{
		Body: body,
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: "req-1",
			Authorizer: map[string]interface{}{
				"claims": map[string]interface{}{"email": email},
			},
		},
	}
	if pathID != "" {
		req.PathParameters = map[string]string{"id": pathID}
	}
	return req
}

func errorBody(t *testing.T, resp events.APIGatewayProxyResponse) apperrors.ErrorResponse {
	t.Helper()
	var out apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	return out
}

func TestHandlers_ItemFlow(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewInventoryRepository()
	h := newHandlers(t, repo, fakeProvider{})

	_, err := h.InitInventory(ctx, events.CognitoEventUserPoolsPostConfirmation{
		Request: events.CognitoEventUserPoolsPostConfirmationRequest{
			UserAttributes: map[string]string{"email": email},
		},
	})
	require.NoError(t, err)

	resp, err := h.CreateItem(ctx, request(`{"category":"beverages","item":{"id":"2","name":"water","amount":"1L"}}`, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, resp.Body)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "true", resp.Headers["Access-Control-Allow-Credentials"])

	resp, err = h.GetItem(ctx, request("", "2"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, `"category":"beverages"`)

	resp, err = h.UpdateItem(ctx, request(`{"item":{"id":"2","name":"water","amount":"3L"}}`, "2"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = h.GetItems(ctx, request("", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, `"amount":"3L"`)

	resp, err = h.DeleteItem(ctx, request("", "2"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = h.DeleteItem(ctx, request("", "2"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, errorBody(t, resp).StatusCode)
}

func TestHandlers_Base64Body(t *testing.T) {
	h := newHandlers(t, memory.NewInventoryRepository(), fakeProvider{})

	req := request(base64.StdEncoding.EncodeToString([]byte(`{"category":"fire","item":{"name":"matches"}}`)), "")
	req.IsBase64Encoded = true

	resp, err := h.CreateItem(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, resp.Body)
}

func TestHandlers_Errors(t *testing.T) {
	ctx := context.Background()
	h := newHandlers(t, memory.NewInventoryRepository(), fakeProvider{})

	t.Run("missing claim", func(t *testing.T) {
		resp, err := h.GetItems(ctx, events.APIGatewayProxyRequest{})
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing body", func(t *testing.T) {
		resp, err := h.CreateItem(ctx, request("", ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "no body", errorBody(t, resp).Body)
	})

	t.Run("missing path id", func(t *testing.T) {
		resp, err := h.DeleteItem(ctx, request("", ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("store failure carries cause", func(t *testing.T) {
		broken := newHandlers(t, brokenStore{}, fakeProvider{})
		resp, err := broken.GetItems(ctx, request("", ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Contains(t, errorBody(t, resp).Body, "table missing")
	})
}

func TestHandlers_Auth(t *testing.T) {
	ctx := context.Background()

	resp, err := newHandlers(t, memory.NewInventoryRepository(), fakeProvider{}).
		ExchangeAuthCode(ctx, events.APIGatewayProxyRequest{QueryStringParameters: map[string]string{"code": "xyz"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, `"id_token":"i-xyz"`)

	resp, err = newHandlers(t, memory.NewInventoryRepository(), fakeProvider{err: errors.New("invalid_grant")}).
		ExchangeAuthCode(ctx, events.APIGatewayProxyRequest{QueryStringParameters: map[string]string{"code": "xyz"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, errorBody(t, resp).Body, "invalid_grant")

	resp, err = newHandlers(t, memory.NewInventoryRepository(), fakeProvider{}).
		RefreshAuthToken(ctx, events.APIGatewayProxyRequest{Body: `{"refresh_token":"r1"}`})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, `"refresh_token":"r1"`)
}

func TestHandlers_InitInventory(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewInventoryRepository()
	h := newHandlers(t, repo, fakeProvider{})

	event := events.CognitoEventUserPoolsPostConfirmation{
		Request: events.CognitoEventUserPoolsPostConfirmationRequest{
			UserAttributes: map[string]string{"email": email},
		},
	}
	event.UserName = "user-1"

	out, err := h.InitInventory(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, event, out)

	got, err := repo.Get(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, inventory.New(), got.Inventory)

	// without an email nothing is written
	out, err = h.InitInventory(ctx, events.CognitoEventUserPoolsPostConfirmation{})
	require.NoError(t, err)
	assert.Empty(t, out.Request.UserAttributes)
	assert.Equal(t, 1, repo.Len())
}
