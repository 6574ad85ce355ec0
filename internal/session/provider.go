package session

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/authgate/internal/auth"
)

// Claves de sesión usadas por el flujo de autenticación.
const (
	// authUserKey guarda el principal serializado como JSON.
	authUserKey = "auth:user"
	// mfaPendingKey guarda el ID del factor pendiente. Mientras exista,
	// la sesión resuelve como no autenticada (estado AwaitingFactor).
	mfaPendingKey = "auth:mfa_pending"
)

// AuthProvider resuelve el principal desde la sesión del request.
// No guarda estado propio: todo vive en el store de sesiones.
type AuthProvider[U any] struct{}

// NewAuthProvider crea el provider respaldado por sesión.
func NewAuthProvider[U any]() AuthProvider[U] {
	return AuthProvider[U]{}
}

func (AuthProvider[U]) GetAuthenticatedUser(r *http.Request) (U, error) {
	var zero U

	sess, ok := FromRequest(r)
	if !ok {
		return zero, auth.ErrNotAuthorized()
	}

	// Un segundo factor pendiente bloquea la resolución aunque el login
	// primario haya pasado.
	var pending string
	if found, _ := sess.Get(mfaPendingKey, &pending); found {
		return zero, auth.ErrNotAuthorized()
	}

	var user U
	found, err := sess.Get(authUserKey, &user)
	if err != nil || !found {
		return zero, auth.ErrNotAuthorized()
	}
	return user, nil
}

func (AuthProvider[U]) Invalidate(r *http.Request) {
	if sess, ok := FromRequest(r); ok {
		sess.Purge()
	}
}

// SetAuthenticatedUser guarda el principal en la sesión. Lo usa el login handler
// después de validar credenciales.
func SetAuthenticatedUser(sess *Session, user any) error {
	return sess.Insert(authUserKey, user)
}

// AuthenticatedPrincipal deserializa el principal guardado en dest.
// Retorna error si la sesión no tiene principal. A diferencia del provider,
// no mira el estado MFA: sirve para colaboradores (p.ej. el sender de códigos)
// que corren durante el estado AwaitingFactor.
func AuthenticatedPrincipal(sess *Session, dest any) error {
	found, err := sess.Get(authUserKey, dest)
	if err != nil {
		return err
	}
	if !found {
		return errors.New("session: no authenticated principal")
	}
	return nil
}

// SetPendingFactor marca que la sesión espera el factor dado.
func SetPendingFactor(sess *Session, factorID string) error {
	return sess.Insert(mfaPendingKey, factorID)
}

// PendingFactor retorna el ID del factor pendiente, si hay.
func PendingFactor(sess *Session) (string, bool) {
	var id string
	found, err := sess.Get(mfaPendingKey, &id)
	if err != nil || !found {
		return "", false
	}
	return id, true
}

// ClearPendingFactor marca el MFA como satisfecho para esta sesión.
// Requests posteriores resuelven directo a Authenticated.
func ClearPendingFactor(sess *Session) {
	sess.Delete(mfaPendingKey)
}
