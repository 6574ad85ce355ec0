// Package handlers implementa los endpoints del flujo de autenticación por
// sesión: login primario, envío del segundo factor y logout.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	httpx "github.com/dropDatabas3/authgate/internal/http"
	"github.com/dropDatabas3/authgate/internal/multifactor"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/security/password"
	"github.com/dropDatabas3/authgate/internal/session"
	"github.com/dropDatabas3/authgate/internal/store/core"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status string `json:"status"` // "ok" | "mfa_required"
	Factor string `json:"factor,omitempty"`
}

// NewLoginHandler valida credenciales contra el repositorio y abre la sesión
// autenticada. Con factor configurado, deja la sesión en AwaitingFactor y
// dispara el desafío. principal mapea el usuario del repositorio al principal
// que viaja en la sesión (nunca incluye el hash).
//
// Toda falla de credenciales o del desafío responde 401 uniforme: el cliente
// no distingue usuario inexistente de password inválido ni de envío fallido.
func NewLoginHandler[U any](users core.Repository, factor multifactor.Factor, principal func(*core.User) U) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" {
			httpx.WriteUnauthorized(w, nil)
			return
		}

		log := logger.From(r.Context())

		u, err := users.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			if !errors.Is(err, core.ErrNotFound) {
				log.Error("user lookup failed", logger.Err(err))
			}
			httpx.WriteUnauthorized(w, nil)
			return
		}
		if !password.Verify(req.Password, u.PasswordHash) {
			httpx.WriteUnauthorized(w, nil)
			return
		}

		sess, ok := session.FromRequest(r)
		if !ok {
			log.Error("login route without session middleware")
			httpx.WriteUnauthorized(w, nil)
			return
		}

		// ID y estado nuevos: nada de la sesión anterior sobrevive al login,
		// ni siquiera si era de otro usuario a mitad de su MFA.
		sess.Renew()

		if err := session.SetAuthenticatedUser(sess, principal(u)); err != nil {
			log.Error("store principal failed", logger.Err(err))
			httpx.WriteUnauthorized(w, nil)
			return
		}

		if factor == nil {
			log.Info("login ok", logger.Email(u.Email), logger.SessionID(sess.ID()))
			httpx.WriteJSON(w, http.StatusOK, loginResponse{Status: "ok"})
			return
		}

		if err := session.SetPendingFactor(sess, factor.GetUniqueID()); err != nil {
			log.Error("store pending factor failed", logger.Err(err))
			httpx.WriteUnauthorized(w, nil)
			return
		}
		if err := factor.GenerateCode(r.Context(), sess); err != nil {
			// El factor ya purgó la sesión; acá sólo se reporta.
			log.Error("mfa challenge failed", logger.FactorID(factor.GetUniqueID()), logger.Err(err))
			httpx.WriteUnauthorized(w, nil)
			return
		}

		log.Info("login ok, mfa pending", logger.Email(u.Email), logger.FactorID(factor.GetUniqueID()))
		httpx.WriteJSON(w, http.StatusOK, loginResponse{Status: "mfa_required", Factor: factor.GetUniqueID()})
	}
}
