package auth

import (
	"context"
	"net/http"
	"sync"
)

// AuthToken envuelve el principal resuelto para un request.
//
// Todas las copias del token dentro de un request comparten el mismo estado de
// validez: invalidar una copia invalida todas. La transición es de una sola
// vía (válido -> invalidado, nunca al revés). El token no existe más allá del
// request; que el usuario siga autenticado en requests futuros es asunto del
// estado de sesión del provider.
type AuthToken[U any] struct {
	inner *tokenInner[U]
}

type tokenInner[U any] struct {
	mu    sync.RWMutex
	user  U
	valid bool
}

// NewToken crea un token válido para el principal resuelto.
// Lo llama el middleware inmediatamente después de resolver el usuario.
func NewToken[U any](user U) AuthToken[U] {
	return AuthToken[U]{inner: &tokenInner[U]{user: user, valid: true}}
}

// User retorna el principal. Vista de sólo lectura: el token nunca expone
// acceso mutable al usuario resuelto.
func (t AuthToken[U]) User() U {
	t.inner.mu.RLock()
	defer t.inner.mu.RUnlock()
	return t.inner.user
}

// IsValid reporta si el token sigue válido.
func (t AuthToken[U]) IsValid() bool {
	t.inner.mu.RLock()
	defer t.inner.mu.RUnlock()
	return t.inner.valid
}

// Invalidate marca el token como inválido. Afecta a todas las copias que
// comparten la misma resolución. Irreversible.
func (t AuthToken[U]) Invalidate() {
	t.inner.mu.Lock()
	t.inner.valid = false
	t.inner.mu.Unlock()
}

type tokenCtxKey[U any] struct{}

// WithToken inyecta el token en el contexto del request.
func WithToken[U any](ctx context.Context, t AuthToken[U]) context.Context {
	return context.WithValue(ctx, tokenCtxKey[U]{}, t)
}

// FromContext extrae el token del contexto. Si no hay (ruta exenta, o la
// resolución falló antes), retorna *UnauthorizedError igual que el gate.
func FromContext[U any](ctx context.Context) (AuthToken[U], error) {
	if t, ok := ctx.Value(tokenCtxKey[U]{}).(AuthToken[U]); ok {
		return t, nil
	}
	return AuthToken[U]{}, ErrNotAuthorized()
}

// FromRequest es el atajo para handlers que reciben *http.Request.
func FromRequest[U any](r *http.Request) (AuthToken[U], error) {
	return FromContext[U](r.Context())
}
