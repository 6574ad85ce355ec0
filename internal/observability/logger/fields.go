package logger

import (
	"time"

	"go.uber.org/zap"
)

// Campos estándar para no repetir claves mal tipeadas por todo el código.

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func DurationMs(v time.Duration) zap.Field { return zap.Int64("duration_ms", v.Milliseconds()) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

// SessionID loguea el ID de sesión truncado: suficiente para correlacionar
// sin dejar el identificador completo en los logs.
func SessionID(v string) zap.Field {
	if len(v) > 8 {
		v = v[:8]
	}
	return zap.String("session_id", v)
}

func FactorID(v string) zap.Field { return zap.String("factor_id", v) }

func Email(v string) zap.Field { return zap.String("email", v) }

func Err(err error) zap.Field { return zap.Error(err) }
