package multifactor

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/dropDatabas3/authgate/internal/session"
)

// Claves de sesión del desafío. Un solo slot por sesión: generar un código
// nuevo pisa al anterior.
const (
	randomCodeKey  = "mfa_random_code"
	attemptsKey    = "mfa_random_code_attempts"
	randomCodeID   = "RNDCODE"
	defaultCodeLen = 6
)

// RandomCode es un código opaco con vencimiento absoluto. El valor no tiene
// estructura implícita: cualquier generador puede enchufarse.
type RandomCode struct {
	Value      string    `json:"value"`
	ValidUntil time.Time `json:"valid_until"`
}

// CodeGenerator produce un par valor+vencimiento. Debe ser libre de efectos e
// independiente del estado de sesión, así se testea con relojes fijos.
type CodeGenerator func() RandomCode

// CodeSender entrega el código al usuario (email, SMS). El transporte es un
// colaborador externo; su error sólo se reporta.
type CodeSender interface {
	SendCode(ctx context.Context, code RandomCode) error
}

// MfaRandomCode es el Factor de código aleatorio de un solo uso.
//
// Generador y verificador comparan contra el mismo reloj de pared; la
// comparación de expiración es estricta, sin tolerancia de skew.
type MfaRandomCode struct {
	generate CodeGenerator
	sender   CodeSender

	// MaxAttempts limita los envíos equivocados contra un mismo código.
	// Con 0 no hay límite. Al agotarse, el desafío se purga y hay que
	// reiniciar el login.
	MaxAttempts int

	now func() time.Time
}

// NewMfaRandomCode crea el factor con el generador y sender inyectados.
func NewMfaRandomCode(generator CodeGenerator, sender CodeSender) *MfaRandomCode {
	return &MfaRandomCode{generate: generator, sender: sender, now: time.Now}
}

func (f *MfaRandomCode) GetUniqueID() string { return randomCodeID }

// GenerateCode produce el código, lo guarda en la sesión y lo entrega.
// Si el guardado o el envío fallan, el estado de la sesión se purga antes de
// devolver el error envuelto.
func (f *MfaRandomCode) GenerateCode(ctx context.Context, sess *session.Session) error {
	code := f.generate()

	if err := sess.Insert(randomCodeKey, code); err != nil {
		sess.Purge()
		return NewGenerateCodeError("could not store mfa code in session", err)
	}
	// Código nuevo, contador de intentos en cero.
	sess.Delete(attemptsKey)

	if err := f.sender.SendCode(ctx, code); err != nil {
		sess.Purge()
		return NewGenerateCodeError("could not send code to user", err)
	}
	return nil
}

// CheckCode verifica la respuesta contra el desafío pendiente. El código
// siempre se relee de la sesión: nunca se confía en un valor cacheado de
// antes de una suspensión.
func (f *MfaRandomCode) CheckCode(ctx context.Context, code string, sess *session.Session) error {
	var stored RandomCode
	found, err := sess.Get(randomCodeKey, &stored)
	if err != nil {
		sess.Purge()
		return &CheckCodeError{Reason: ReasonUnknown, Message: "could not load random code from session"}
	}
	if !found {
		sess.Purge()
		return &CheckCodeError{Reason: ReasonUnknown, Message: "no random code in session"}
	}

	if !f.now().Before(stored.ValidUntil) {
		sess.Purge()
		return &CheckCodeError{Reason: ReasonTimeIsUp, Message: "code is no longer valid"}
	}

	if code != stored.Value {
		if f.MaxAttempts > 0 {
			var attempts int
			_, _ = sess.Get(attemptsKey, &attempts)
			attempts++
			if attempts >= f.MaxAttempts {
				sess.Purge()
				return &CheckCodeError{Reason: ReasonTooManyAttempts, Message: "too many invalid attempts"}
			}
			_ = sess.Insert(attemptsKey, attempts)
		}
		// Sin purge: el caller puede reintentar mientras el código no venza.
		return &CheckCodeError{Reason: ReasonInvalidCode, Message: "invalid code"}
	}

	// Éxito. El código queda en la sesión; el orquestador lo consume con
	// ClearChallenge al marcar la sesión como autenticada.
	return nil
}

// ClearChallenge consume el desafío pendiente de la sesión.
func ClearChallenge(sess *session.Session) {
	sess.Delete(randomCodeKey)
	sess.Delete(attemptsKey)
}

// HasChallenge reporta si la sesión tiene un desafío pendiente.
func HasChallenge(sess *session.Session) bool {
	var stored RandomCode
	found, err := sess.Get(randomCodeKey, &stored)
	return err == nil && found
}

// NumericCodeGenerator retorna un generador de códigos decimales de `length`
// dígitos, válidos por `ttl` a partir del momento de generación.
func NumericCodeGenerator(length int, ttl time.Duration) CodeGenerator {
	if length <= 0 {
		length = defaultCodeLen
	}
	return func() RandomCode {
		digits := make([]byte, length)
		var b [1]byte
		for i := 0; i < length; {
			_, _ = rand.Read(b[:])
			// Descarta valores >= 250 para no sesgar el módulo.
			if b[0] >= 250 {
				continue
			}
			digits[i] = '0' + b[0]%10
			i++
		}
		return RandomCode{
			Value:      string(digits),
			ValidUntil: time.Now().Add(ttl),
		}
	}
}
