package e2e

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authgate/internal/multifactor"
)

// 02 - Flujo MFA completo: login, código equivocado con reintento, éxito.
func Test_02_MFAFlow(t *testing.T) {
	sender := &captureSender{}
	factor := multifactor.NewMfaRandomCode(seqGenerator(5*time.Minute), sender)
	e := newEnv(t, factor, sender)
	e.seedUser("ana@example.com", "hunter2")

	resp := e.login("ana@example.com", "hunter2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Status string `json:"status"`
		Factor string `json:"factor"`
	}
	decodeJSON(t, resp, &out)
	require.Equal(t, "mfa_required", out.Status)
	require.Equal(t, "RNDCODE", out.Factor)

	// Con el factor pendiente la sesión sigue sin autenticar.
	resp = e.get("/me")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	drain(resp)

	// Código equivocado: 401 pero el desafío sobrevive.
	resp = e.submitCode("not-the-code")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, `"Not authorized"`, strings.TrimSpace(readBody(t, resp)))

	// Reintento con el código entregado.
	resp = e.submitCode(sender.last(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	drain(resp)

	resp = e.get("/me")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me principal
	decodeJSON(t, resp, &me)
	require.Equal(t, "ana@example.com", me.Email)
}

// 02b - Código vencido: 401 aunque el valor sea correcto, y el desafío muere.
func Test_02_ExpiredCode(t *testing.T) {
	sender := &captureSender{}
	// ValidUntil en el pasado: todo check llega tarde.
	factor := multifactor.NewMfaRandomCode(seqGenerator(-time.Second), sender)
	e := newEnv(t, factor, sender)
	e.seedUser("ana@example.com", "hunter2")

	resp := e.login("ana@example.com", "hunter2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	drain(resp)

	code := sender.last(t)
	resp = e.submitCode(code)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	drain(resp)

	// La sesión quedó purgada: reintentar con el mismo código también falla.
	resp = e.submitCode(code)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	drain(resp)

	resp = e.get("/me")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	drain(resp)
}

// 02c - Verificar sin haber hecho login: 401.
func Test_02_CheckWithoutLogin(t *testing.T) {
	sender := &captureSender{}
	factor := multifactor.NewMfaRandomCode(seqGenerator(5*time.Minute), sender)
	e := newEnv(t, factor, sender)

	resp := e.submitCode("anything")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	drain(resp)
}

// 02d - Un segundo login a mitad del MFA descarta el desafío del primero.
func Test_02_RelatedLoginDropsPendingChallenge(t *testing.T) {
	sender := &captureSender{}
	factor := multifactor.NewMfaRandomCode(seqGenerator(5*time.Minute), sender)
	e := newEnv(t, factor, sender)
	e.seedUser("ana@example.com", "hunter2")
	e.seedUser("beto@example.com", "s3cret")

	resp := e.login("ana@example.com", "hunter2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	drain(resp)
	anaCode := sender.last(t)

	resp = e.login("beto@example.com", "s3cret")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	drain(resp)
	betoCode := sender.last(t)
	require.NotEqual(t, anaCode, betoCode)

	// El código de Ana murió con su sesión.
	resp = e.submitCode(anaCode)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	drain(resp)

	resp = e.submitCode(betoCode)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	drain(resp)

	resp = e.get("/me")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me principal
	decodeJSON(t, resp, &me)
	require.Equal(t, "beto@example.com", me.Email)
}

// 02e - Falla de entrega del código: login responde 401 y no queda sesión a medias.
func Test_02_DeliveryFailure(t *testing.T) {
	sender := &captureSender{fail: errors.New("smtp unreachable")}
	factor := multifactor.NewMfaRandomCode(seqGenerator(5*time.Minute), sender)
	e := newEnv(t, factor, sender)
	e.seedUser("ana@example.com", "hunter2")

	resp := e.login("ana@example.com", "hunter2")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	drain(resp)

	resp = e.get("/me")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	drain(resp)
}

// 02f - Intentos limitados: al agotarse, el desafío muere.
func Test_02_MaxAttempts(t *testing.T) {
	sender := &captureSender{}
	factor := multifactor.NewMfaRandomCode(seqGenerator(5*time.Minute), sender)
	factor.MaxAttempts = 2
	e := newEnv(t, factor, sender)
	e.seedUser("ana@example.com", "hunter2")

	resp := e.login("ana@example.com", "hunter2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	drain(resp)
	code := sender.last(t)

	for i := 0; i < 2; i++ {
		resp = e.submitCode("wrong")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		drain(resp)
	}

	// El desafío se purgó con el último intento: ni el código real entra.
	resp = e.submitCode(code)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	drain(resp)
}
