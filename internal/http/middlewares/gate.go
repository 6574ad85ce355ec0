package middlewares

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/authgate/internal/auth"
	httpx "github.com/dropDatabas3/authgate/internal/http"
)

// Gate es la puerta de autenticación por request.
//
// Ruta exenta: el request pasa sin token. Ruta protegida: se resuelve el
// principal via provider; si falla se responde 401 (cuerpo JSON string) y el
// request muere ahí. Si resuelve, se inyecta un AuthToken en el contexto y se
// forwardea. Un token invalidado por el handler dispara provider.Invalidate
// antes del primer byte de respuesta, así el purge de sesión llega a
// persistirse junto con la respuesta del logout.
func Gate[U any](provider auth.AuthenticationProvider[U], matcher *auth.PathMatcher) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !matcher.IsProtected(r.URL.Path) {
				countGateDecision("exempt")
				next.ServeHTTP(w, r)
				return
			}

			user, err := provider.GetAuthenticatedUser(r)
			if err != nil {
				countGateDecision("unauthorized")
				var ue *auth.UnauthorizedError
				if !errors.As(err, &ue) {
					ue = auth.ErrNotAuthorized()
				}
				httpx.WriteUnauthorized(w, ue)
				return
			}

			countGateDecision("authenticated")
			token := auth.NewToken(user)

			hw := &hookWriter{ResponseWriter: w, hook: func() {
				if !token.IsValid() {
					provider.Invalidate(r)
				}
			}}
			next.ServeHTTP(hw, r.WithContext(auth.WithToken(r.Context(), token)))
			hw.fireOnce()
		})
	}
}

// hookWriter corre un hook una sola vez, justo antes del primer byte escrito.
type hookWriter struct {
	http.ResponseWriter
	hook  func()
	fired bool
}

func (w *hookWriter) fireOnce() {
	if w.fired {
		return
	}
	w.fired = true
	w.hook()
}

func (w *hookWriter) WriteHeader(code int) {
	w.fireOnce()
	w.ResponseWriter.WriteHeader(code)
}

func (w *hookWriter) Write(b []byte) (int, error) {
	w.fireOnce()
	return w.ResponseWriter.Write(b)
}
