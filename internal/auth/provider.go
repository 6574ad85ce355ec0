package auth

import "net/http"

// AuthenticationProvider resuelve el principal del request desde estado externo
// (sesión, token bearer, etc). El provider no guarda estado propio: la
// persistencia es del colaborador que lo respalda.
type AuthenticationProvider[U any] interface {
	// GetAuthenticatedUser resuelve el principal para el request actual.
	// Si no hay principal autenticado retorna *UnauthorizedError; los callers
	// no necesitan más clasificación que esa.
	GetAuthenticatedUser(r *http.Request) (U, error)

	// Invalidate limpia el estado externo que respalda la autenticación de
	// esta sesión. Idempotente: invalidar una sesión ya no autenticada es un
	// no-op, no un error.
	Invalidate(r *http.Request)
}
