// internal/api/responses/responses.go
package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDKey é a chave do contexto gin onde o middleware guarda o id da requisição.
const RequestIDKey = "request_id"

var logger = zap.NewNop()

// APIResponse defines the standard envelope for API responses.
type APIResponse struct {
	Status    string      `json:"status"` // "success" or "error"
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Errors    []string    `json:"errors,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// InitLogger initializes the structured logger for API responses at the given level
// ("debug", "info", "warn", "error").
func InitLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	SetLogger(l)
	return l, nil
}

// SetLogger replaces the logger used by the response helpers.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Logger returns the logger used by the response helpers.
func Logger() *zap.Logger {
	return logger
}

// Success sends a successful response with the provided data and message.
func Success(c *gin.Context, data interface{}, message string) {
	resp := APIResponse{Status: "success", Data: data, Message: message, RequestID: c.GetString(RequestIDKey)}
	c.JSON(http.StatusOK, resp)
	logger.Info("API success",
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", http.StatusOK),
		zap.String("request_id", resp.RequestID),
	)
}

// Error sends an error response with the provided code, message, and optional errors.
func Error(c *gin.Context, code int, message string, errs ...string) {
	resp := APIResponse{Status: "error", Message: message, Errors: errs, RequestID: c.GetString(RequestIDKey)}
	c.AbortWithStatusJSON(code, resp)
	logger.Error("API error",
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", code),
		zap.Strings("errors", errs),
		zap.String("request_id", resp.RequestID),
	)
}

// CSV sends a CSV attachment.
func CSV(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
	logger.Info("API download",
		zap.String("path", c.Request.URL.Path),
		zap.String("filename", filename),
		zap.Int("bytes", len(data)),
		zap.String("request_id", c.GetString(RequestIDKey)),
	)
}
