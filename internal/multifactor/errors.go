package multifactor

import "errors"

// GenerateCodeError indica que el desafío no pudo crearse o entregarse.
// Siempre viene acompañado de un purge del estado parcial de la sesión:
// nunca queda registrado un código cuyo resultado de entrega se desconoce.
type GenerateCodeError struct {
	message string
	cause   error
}

func NewGenerateCodeError(message string, cause error) *GenerateCodeError {
	return &GenerateCodeError{message: message, cause: cause}
}

func (e *GenerateCodeError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *GenerateCodeError) Unwrap() error { return e.cause }

// CheckReason clasifica el resultado de una verificación fallida.
type CheckReason int

const (
	// ReasonInvalidCode: valor equivocado. Reintentable; el código queda.
	ReasonInvalidCode CheckReason = iota
	// ReasonTimeIsUp: expiró. Purga; hay que reiniciar el desafío.
	ReasonTimeIsUp
	// ReasonUnknown: estado de sesión ausente o corrupto. Purga.
	ReasonUnknown
	// ReasonTooManyAttempts: se agotaron los intentos configurados. Purga.
	ReasonTooManyAttempts
)

// CheckCodeError es el error tipado de CheckCode.
type CheckCodeError struct {
	Reason  CheckReason
	Message string
}

func (e *CheckCodeError) Error() string { return e.Message }

// IsInvalidCode reporta si err es un rechazo por código equivocado,
// el único caso reintentable sin regenerar el desafío.
func IsInvalidCode(err error) bool {
	var ce *CheckCodeError
	return errors.As(err, &ce) && ce.Reason == ReasonInvalidCode
}
