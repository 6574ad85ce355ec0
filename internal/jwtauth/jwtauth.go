// Package jwtauth implementa un AuthenticationProvider sin estado para
// clientes API: el principal viaja en un JWT HS256 dentro del claim "usr".
// No hay sesión que invalidar; el logout de un bearer es que el token venza.
package jwtauth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/authgate/internal/auth"
)

const principalClaim = "usr"

// Provider resuelve el principal desde Authorization: Bearer <JWT>.
type Provider[U any] struct {
	secret []byte
	issuer string
}

// New crea el provider con la clave HMAC compartida y el issuer esperado.
func New[U any](secret []byte, issuer string) Provider[U] {
	return Provider[U]{secret: secret, issuer: issuer}
}

func (p Provider[U]) GetAuthenticatedUser(r *http.Request) (U, error) {
	var zero U

	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
		return zero, auth.ErrNotAuthorized()
	}
	raw := strings.TrimSpace(ah[len("Bearer "):])

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return p.secret, nil
	}, jwt.WithIssuer(p.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return zero, auth.ErrNotAuthorized()
	}

	// Claim "usr" -> U via roundtrip JSON.
	rawUsr, ok := claims[principalClaim]
	if !ok {
		return zero, auth.ErrNotAuthorized()
	}
	buf, err := json.Marshal(rawUsr)
	if err != nil {
		return zero, auth.ErrNotAuthorized()
	}
	var user U
	if err := json.Unmarshal(buf, &user); err != nil {
		return zero, auth.ErrNotAuthorized()
	}
	return user, nil
}

// Invalidate es un no-op: el provider no tiene estado que limpiar.
func (Provider[U]) Invalidate(r *http.Request) {}

// Mint emite un token para el principal dado. Para seeds y tests.
func Mint(secret []byte, issuer string, principal any, ttl time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":          issuer,
		"iat":          now.Unix(),
		"exp":          now.Add(ttl).Unix(),
		principalClaim: principal,
	})
	return t.SignedString(secret)
}
