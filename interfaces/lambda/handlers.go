// Package lambda adapts API Gateway proxy events and Cognito triggers to the
// application services. Each exported method backs one deployed function.
package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"kellerliste/application/services"
	"kellerliste/pkg/auth"
	apperrors "kellerliste/pkg/errors"
)

// Handlers holds the per-function entry points
type Handlers struct {
	inventory  *services.InventoryService
	auth       *services.AuthService
	errHandler *apperrors.ErrorHandler
	logger     *zap.Logger
}

// NewHandlers creates the Lambda handler set
func NewHandlers(inventory *services.InventoryService, authService *services.AuthService, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		inventory:  inventory,
		auth:       authService,
		errHandler: apperrors.NewErrorHandler(logger),
		logger:     logger,
	}
}

// GetItems returns the caller's inventory
func (h *Handlers) GetItems(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	email, err := identity(req)
	if err != nil {
		return h.fail(req, err), nil
	}

	result, err := h.inventory.Inventory(ctx, email)
	if err != nil {
		return h.fail(req, err), nil
	}
	return h.ok(req, http.StatusOK, result), nil
}

// CreateItem appends the item in the body to its category
func (h *Handlers) CreateItem(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	email, err := identity(req)
	if err != nil {
		return h.fail(req, err), nil
	}

	var body services.AddItemRequest
	if err := decode(req, &body); err != nil {
		return h.fail(req, err), nil
	}

	item, err := h.inventory.AddItem(ctx, email, body)
	if err != nil {
		return h.fail(req, err), nil
	}
	return h.ok(req, http.StatusCreated, map[string]interface{}{"item": item}), nil
}

// GetItem looks an item up by the id path parameter
func (h *Handlers) GetItem(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	email, err := identity(req)
	if err != nil {
		return h.fail(req, err), nil
	}
	id, err := itemID(req)
	if err != nil {
		return h.fail(req, err), nil
	}

	result, err := h.inventory.Item(ctx, email, id)
	if err != nil {
		return h.fail(req, err), nil
	}
	return h.ok(req, http.StatusOK, result), nil
}

// UpdateItem replaces the item named by the id path parameter
func (h *Handlers) UpdateItem(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	email, err := identity(req)
	if err != nil {
		return h.fail(req, err), nil
	}
	id, err := itemID(req)
	if err != nil {
		return h.fail(req, err), nil
	}

	var body services.UpdateItemRequest
	if err := decode(req, &body); err != nil {
		return h.fail(req, err), nil
	}

	item, err := h.inventory.UpdateItem(ctx, email, id, body)
	if err != nil {
		return h.fail(req, err), nil
	}
	return h.ok(req, http.StatusOK, map[string]interface{}{"item": item}), nil
}

// DeleteItem removes the item named by the id path parameter
func (h *Handlers) DeleteItem(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	email, err := identity(req)
	if err != nil {
		return h.fail(req, err), nil
	}
	id, err := itemID(req)
	if err != nil {
		return h.fail(req, err), nil
	}

	if err := h.inventory.RemoveItem(ctx, email, id); err != nil {
		return h.fail(req, err), nil
	}
	return h.ok(req, http.StatusOK, map[string]string{"id": id, "message": "item removed"}), nil
}

// ExchangeAuthCode trades the code query parameter for a token set
func (h *Handlers) ExchangeAuthCode(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	tokens, err := h.auth.ExchangeCode(ctx, req.QueryStringParameters["code"])
	if err != nil {
		return h.fail(req, err), nil
	}
	return h.ok(req, http.StatusOK, tokens), nil
}

// RefreshAuthToken trades the refresh_token in the body for a new token set
func (h *Handlers) RefreshAuthToken(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decode(req, &body); err != nil {
		return h.fail(req, err), nil
	}

	tokens, err := h.auth.Refresh(ctx, body.RefreshToken)
	if err != nil {
		return h.fail(req, err), nil
	}
	return h.ok(req, http.StatusOK, tokens), nil
}

// InitInventory runs as the user pool post confirmation trigger. Cognito
// expects the event back unchanged; an error blocks the confirmation.
func (h *Handlers) InitInventory(ctx context.Context, event events.CognitoEventUserPoolsPostConfirmation) (events.CognitoEventUserPoolsPostConfirmation, error) {
	email := event.Request.UserAttributes["email"]
	if email == "" {
		h.logger.Warn("Post confirmation event without email",
			zap.String("userName", event.UserName),
			zap.String("trigger", event.TriggerSource),
		)
		return event, nil
	}

	if err := h.inventory.InitInventory(ctx, email); err != nil {
		h.logger.Error("Failed to initialize inventory", zap.String("userEmail", email), zap.Error(err))
		return event, err
	}
	return event, nil
}

func (h *Handlers) ok(req events.APIGatewayProxyRequest, status int, data interface{}) events.APIGatewayProxyResponse {
	body, err := json.Marshal(data)
	if err != nil {
		return h.fail(req, apperrors.NewInternalError("failed to encode response"))
	}

	headers := apperrors.CORSHeaders()
	headers["Content-Type"] = "application/json"
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}

func (h *Handlers) fail(req events.APIGatewayProxyRequest, err error) events.APIGatewayProxyResponse {
	return h.errHandler.ProxyResponse(err, req.RequestContext.RequestID)
}

func identity(req events.APIGatewayProxyRequest) (string, error) {
	email, ok := auth.EmailFromAuthorizer(req.RequestContext.Authorizer)
	if !ok {
		return "", apperrors.NewUnauthorizedError("missing identity claim")
	}
	return email, nil
}

func itemID(req events.APIGatewayProxyRequest) (string, error) {
	id := req.PathParameters["id"]
	if id == "" {
		return "", apperrors.NewValidationError("missing itemId")
	}
	return id, nil
}

func decode(req events.APIGatewayProxyRequest, dst interface{}) error {
	if req.Body == "" {
		return apperrors.NewValidationError("no body")
	}
	raw := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return apperrors.NewValidationError("invalid base64 body")
		}
		raw = decoded
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}
