package handlers

import (
	"net/http"

	"github.com/dropDatabas3/authgate/internal/auth"
	httpx "github.com/dropDatabas3/authgate/internal/http"
)

// NewLogoutHandler invalida el token del request. La puerta aplica la
// invalidación al provider antes de escribir la respuesta, con lo que la
// sesión persistida muere junto con este request.
func NewLogoutHandler[U any]() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.FromRequest[U](r)
		if err != nil {
			// Ruta sin gate (o exenta): no hay nada que invalidar.
			httpx.WriteUnauthorized(w, nil)
			return
		}
		token.Invalidate()
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
	}
}

// NewMeHandler expone el principal del token, como ruta protegida de ejemplo
// y para que los clientes verifiquen su identidad actual.
func NewMeHandler[U any]() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.FromRequest[U](r)
		if err != nil {
			httpx.WriteUnauthorized(w, nil)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, token.User())
	}
}
