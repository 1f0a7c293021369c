package security

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/realex-gateway/internal/adapters/ports"
)

// redactedKeys never reach the log sink with their real value
var redactedKeys = map[string]bool{
	"card_number":   true,
	"number":        true,
	"cvn":           true,
	"secret":        true,
	"password":      true,
	"rebate_secret": true,
	"pares":         true,
	"vault_token":   true,
}

const redacted = "[REDACTED]"

// ZapLoggerAdapter implements ports.Logger on top of zap and redacts
// credential and card fields by key
type ZapLoggerAdapter struct {
	logger *zap.Logger
}

var _ ports.Logger = (*ZapLoggerAdapter)(nil)

// NewZapLogger wraps logger. A nil logger discards everything.
func NewZapLogger(logger *zap.Logger) *ZapLoggerAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLoggerAdapter{logger: logger}
}

// Zap returns the wrapped logger
func (z *ZapLoggerAdapter) Zap() *zap.Logger {
	return z.logger
}

func (z *ZapLoggerAdapter) Debug(msg string, fields ...ports.Field) {
	z.logger.Debug(msg, zapFields(fields)...)
}

func (z *ZapLoggerAdapter) Info(msg string, fields ...ports.Field) {
	z.logger.Info(msg, zapFields(fields)...)
}

func (z *ZapLoggerAdapter) Warn(msg string, fields ...ports.Field) {
	z.logger.Warn(msg, zapFields(fields)...)
}

func (z *ZapLoggerAdapter) Error(msg string, fields ...ports.Field) {
	z.logger.Error(msg, zapFields(fields)...)
}

func zapFields(fields []ports.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if redactedKeys[strings.ToLower(f.Key)] {
			out = append(out, zap.String(f.Key, redacted))
			continue
		}

		switch v := f.Value.(type) {
		case string:
			out = append(out, zap.String(f.Key, v))
		case int:
			out = append(out, zap.Int(f.Key, v))
		case int64:
			out = append(out, zap.Int64(f.Key, v))
		case bool:
			out = append(out, zap.Bool(f.Key, v))
		case time.Duration:
			out = append(out, zap.Duration(f.Key, v))
		case error:
			out = append(out, zap.NamedError(f.Key, v))
		default:
			out = append(out, zap.Any(f.Key, v))
		}
	}
	return out
}
