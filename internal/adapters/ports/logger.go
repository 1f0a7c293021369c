package ports

import "time"

// Logger is the structured logger taken by components that must not depend
// on zap directly (the development gateway and the stub server).
// pkg/security.ZapLoggerAdapter is the production implementation.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is one key/value pair of a log entry. Values of credential and card
// keys are redacted by the adapter.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, val string) Field { return Field{Key: key, Value: val} }

func Int(key string, val int) Field { return Field{Key: key, Value: val} }

func Int64(key string, val int64) Field { return Field{Key: key, Value: val} }

func Bool(key string, val bool) Field { return Field{Key: key, Value: val} }

func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }

// Err records err under the "error" key
func Err(err error) Field { return Field{Key: "error", Value: err} }
