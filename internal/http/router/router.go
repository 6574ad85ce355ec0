// Package router arma el pipeline HTTP: request-id -> logging -> metrics ->
// sesión -> puerta de autenticación -> rutas.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/authgate/internal/auth"
	"github.com/dropDatabas3/authgate/internal/cache"
	"github.com/dropDatabas3/authgate/internal/http/handlers"
	mw "github.com/dropDatabas3/authgate/internal/http/middlewares"
	"github.com/dropDatabas3/authgate/internal/multifactor"
	"github.com/dropDatabas3/authgate/internal/session"
	"github.com/dropDatabas3/authgate/internal/store/core"
)

// Deps agrupa las dependencias del pipeline para un principal U.
type Deps[U any] struct {
	SessionManager *session.Manager
	SessionStore   cache.Client
	Provider       auth.AuthenticationProvider[U]
	Matcher        *auth.PathMatcher
	Factor         multifactor.Factor // nil deshabilita MFA
	Users          core.Repository
	Principal      func(*core.User) U

	// Routes registra las rutas de la aplicación que viven detrás de la
	// puerta. Qué queda exento lo decide el Matcher, no el router.
	Routes func(chi.Router)
}

// New construye el handler raíz.
func New[U any](deps Deps[U]) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging())
	r.Use(mw.WithMetrics())
	r.Use(deps.SessionManager.Middleware)
	r.Use(mw.Gate(deps.Provider, deps.Matcher))

	// Operacionales. Recordar eximirlas en el matcher.
	r.Get("/healthz", handlers.NewHealthHandler(deps.SessionStore))
	r.Method(http.MethodGet, "/metrics", mw.MetricsHandler())

	// Flujo de autenticación. /login y /login/mfa deben estar exentas
	// (con DefaultPathMatcher ya lo están); /logout corre protegida.
	r.Post("/login", handlers.NewLoginHandler(deps.Users, deps.Factor, deps.Principal))
	if deps.Factor != nil {
		r.Post("/login/mfa", handlers.NewMfaHandler(deps.Factor))
	}
	r.Post("/logout", handlers.NewLogoutHandler[U]())
	r.Get("/me", handlers.NewMeHandler[U]())

	if deps.Routes != nil {
		deps.Routes(r)
	}
	return r
}
