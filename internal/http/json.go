package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/dropDatabas3/authgate/internal/auth"
)

// WriteJSON: respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteUnauthorized responde 401 con el mensaje del error como JSON string
// (body: "Not authorized"). Es la única respuesta de error que produce la
// puerta de autenticación; no filtra qué falló internamente.
func WriteUnauthorized(w http.ResponseWriter, err *auth.UnauthorizedError) {
	if err == nil {
		err = auth.ErrNotAuthorized()
	}
	WriteJSON(w, http.StatusUnauthorized, err.Message)
}

// ReadJSON decodifica el body de forma tolerante (no falla por campos extra).
// Valida Content-Type y limita el body a 1MB. Si retorna false ya respondió 400.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		WriteJSON(w, http.StatusBadRequest, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		WriteJSON(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
