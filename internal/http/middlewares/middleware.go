// Package middlewares arma el pipeline HTTP alrededor de las rutas:
// request-id, logging, métricas y la puerta de autenticación.
package middlewares

import "net/http"

// Middleware es un decorador de http.Handler.
type Middleware func(http.Handler) http.Handler
