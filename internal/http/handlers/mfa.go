package handlers

import (
	"net/http"

	httpx "github.com/dropDatabas3/authgate/internal/http"
	"github.com/dropDatabas3/authgate/internal/multifactor"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/session"
)

type MfaRequest struct {
	Code string `json:"code"`
}

// NewMfaHandler verifica la respuesta al desafío pendiente. Con código
// correcto consume el desafío y marca la sesión como totalmente autenticada;
// requests posteriores resuelven directo a Authenticated.
//
// Código equivocado: 401, el desafío queda y se puede reintentar. Expirado o
// estado ausente: 401 y el factor ya purgó la sesión, hay que volver a login.
func NewMfaHandler(factor multifactor.Factor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MfaRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}

		log := logger.From(r.Context())

		sess, ok := session.FromRequest(r)
		if !ok {
			httpx.WriteUnauthorized(w, nil)
			return
		}
		pending, ok := session.PendingFactor(sess)
		if !ok || pending != factor.GetUniqueID() {
			httpx.WriteUnauthorized(w, nil)
			return
		}

		if err := factor.CheckCode(r.Context(), req.Code, sess); err != nil {
			if multifactor.IsInvalidCode(err) {
				log.Info("mfa attempt rejected", logger.FactorID(pending))
			} else {
				log.Warn("mfa challenge dead", logger.FactorID(pending), logger.Err(err))
			}
			httpx.WriteUnauthorized(w, nil)
			return
		}

		// Verificado: consumir el código y levantar el bloqueo MFA.
		multifactor.ClearChallenge(sess)
		session.ClearPendingFactor(sess)

		log.Info("mfa ok", logger.FactorID(pending), logger.SessionID(sess.ID()))
		httpx.WriteJSON(w, http.StatusOK, loginResponse{Status: "ok"})
	}
}
