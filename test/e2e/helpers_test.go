package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authgate/internal/auth"
	"github.com/dropDatabas3/authgate/internal/cache"
	"github.com/dropDatabas3/authgate/internal/http/router"
	"github.com/dropDatabas3/authgate/internal/multifactor"
	"github.com/dropDatabas3/authgate/internal/security/password"
	"github.com/dropDatabas3/authgate/internal/session"
	"github.com/dropDatabas3/authgate/internal/store/core"
	"github.com/dropDatabas3/authgate/internal/store/memory"
)

// principal es lo que viaja en la sesión durante la suite.
type principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Params bajos de argon2 para no quemar CPU en la suite.
var hashParams = password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

// captureSender retiene los códigos "enviados" para que el test los reingrese.
type captureSender struct {
	mu    sync.Mutex
	codes []multifactor.RandomCode
	fail  error
}

func (s *captureSender) SendCode(ctx context.Context, code multifactor.RandomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.codes = append(s.codes, code)
	return nil
}

// last retorna el último código entregado.
func (s *captureSender) last(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.codes, "no code was delivered")
	return s.codes[len(s.codes)-1].Value
}

// seqGenerator emite code-1, code-2, ... válidos por validFor. Con códigos
// distintos por login se puede verificar que un desafío viejo no sobrevive.
func seqGenerator(validFor time.Duration) multifactor.CodeGenerator {
	var n int
	var mu sync.Mutex
	return func() multifactor.RandomCode {
		mu.Lock()
		n++
		value := fmt.Sprintf("code-%d", n)
		mu.Unlock()
		return multifactor.RandomCode{Value: value, ValidUntil: time.Now().Add(validFor)}
	}
}

// env es un servidor completo en memoria más un cliente con cookie jar.
type env struct {
	t       *testing.T
	baseURL string
	client  *http.Client
	sender  *captureSender
	users   *memory.Repo
}

// newEnv levanta el pipeline completo (request-id, logging, métricas, sesión,
// puerta) sobre stores en memoria. factor nil deshabilita MFA.
func newEnv(t *testing.T, factor multifactor.Factor, sender *captureSender) *env {
	t.Helper()

	store := cache.NewMemory("e2e")
	users := memory.New()

	handler := router.New(router.Deps[principal]{
		SessionManager: session.NewManager(store, session.Config{TTL: time.Hour}),
		SessionStore:   store,
		Provider:       session.NewAuthProvider[principal](),
		Matcher:        auth.NewPathMatcher([]string{"/login", "/healthz", "/metrics"}, true),
		Factor:         factor,
		Users:          users,
		Principal: func(u *core.User) principal {
			return principal{ID: u.ID, Email: u.Email, Name: u.Name}
		},
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &env{
		t:       t,
		baseURL: srv.URL,
		client:  &http.Client{Jar: jar},
		sender:  sender,
		users:   users,
	}
}

func (e *env) seedUser(email, plain string) {
	e.t.Helper()
	phc, err := password.Hash(hashParams, plain)
	require.NoError(e.t, err)
	e.users.Seed(core.User{ID: "u-" + email, Email: email, Name: "Test User", PasswordHash: phc})
}

func (e *env) postJSON(path string, payload any) *http.Response {
	e.t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(e.t, err)
	resp, err := e.client.Post(e.baseURL+path, "application/json", bytes.NewReader(body))
	require.NoError(e.t, err)
	return resp
}

func (e *env) get(path string) *http.Response {
	e.t.Helper()
	resp, err := e.client.Get(e.baseURL + path)
	require.NoError(e.t, err)
	return resp
}

func (e *env) login(email, pass string) *http.Response {
	return e.postJSON("/login", map[string]string{"email": email, "password": pass})
}

func (e *env) submitCode(code string) *http.Response {
	return e.postJSON("/login/mfa", map[string]string{"code": code})
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
