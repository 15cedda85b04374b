package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// ErrorResponse is the only error shape clients observe
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// CORSHeaders are attached to every handler response
func CORSHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":      "*",
		"Access-Control-Allow-Credentials": "true",
	}
}

// SetCORSHeaders adds the permissive CORS headers unless a CORS middleware
// has already answered for the request origin
func SetCORSHeaders(h http.Header) {
	for k, v := range CORSHeaders() {
		if h.Get(k) == "" {
			h.Set(k, v)
		}
	}
}

// ErrorHandler turns errors into responses and logs them
type ErrorHandler struct {
	logger *zap.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Response builds the client-facing error for err
func (h *ErrorHandler) Response(err error) ErrorResponse {
	if appErr := GetAppError(err); appErr != nil {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return ErrorResponse{StatusCode: status, Body: appErr.Body()}
	}
	return ErrorResponse{StatusCode: http.StatusInternalServerError, Body: err.Error()}
}

// Handle writes err to an HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	resp := h.Response(err)
	h.log(err, resp.StatusCode,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", r.Header.Get("X-Request-ID")),
	)

	h.sendJSON(w, resp.StatusCode, resp)
}

// HandleStatus writes an error response with a specific status code
func (h *ErrorHandler) HandleStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.logger.Warn("HTTP error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("message", message),
	)
	h.sendJSON(w, status, ErrorResponse{StatusCode: status, Body: message})
}

// ProxyResponse converts err into an API Gateway proxy response
func (h *ErrorHandler) ProxyResponse(err error, requestID string) events.APIGatewayProxyResponse {
	resp := h.Response(err)
	h.log(err, resp.StatusCode, zap.String("request_id", requestID))

	headers := CORSHeaders()
	headers["Content-Type"] = "application/json"
	body, _ := json.Marshal(resp)
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       string(body),
	}
}

// log writes err at a level matching its status
func (h *ErrorHandler) log(err error, status int, fields ...zap.Field) {
	fields = append(fields, zap.Int("status", status), zap.Error(err))
	if appErr := GetAppError(err); appErr != nil {
		fields = append(fields, zap.String("error_type", string(appErr.Type)))
	}

	switch {
	case status >= 500:
		h.logger.Error("Request failed", fields...)
	default:
		h.logger.Warn("Request rejected", fields...)
	}
}

// sendJSON sends a JSON response
func (h *ErrorHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	SetCORSHeaders(w.Header())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode error response",
			zap.Error(err),
			zap.Any("data", data),
		)
	}
}

// Middleware returns an HTTP middleware that turns panics into 500 responses
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
