// Package session implementa sesiones por cookie respaldadas por cache
// (memoria o Redis). Una sesión es un objeto JSON clave/valor con TTL,
// guardado bajo "sess:<id>".
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// Session es la vista de la sesión para un request. Las operaciones mutan en
// memoria; el Manager persiste al momento de escribir la respuesta.
// Segura para handlers concurrentes dentro del mismo request.
type Session struct {
	mu     sync.Mutex
	id     string
	data   map[string]json.RawMessage
	dirty  bool
	purged bool
	fresh  bool
	// IDs anteriores a borrar del store al commitear (renew/purge).
	stale []string
}

func newSession(id string, data map[string]json.RawMessage, fresh bool) *Session {
	if data == nil {
		data = make(map[string]json.RawMessage)
	}
	return &Session{id: id, data: data, fresh: fresh}
}

// New crea una sesión vacía sin manager. Para callers fuera del pipeline
// HTTP (workers, tests): las mutaciones quedan en memoria.
func New() *Session {
	return newSession(uuid.NewString(), nil, true)
}

// ID retorna el identificador actual de la sesión.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Insert serializa value como JSON y lo guarda bajo key, pisando el valor
// anterior. Si la sesión había sido purgada, revive con un ID nuevo.
func (s *Session) Insert(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("session: marshal %q: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.purged {
		s.id = uuid.NewString()
		s.purged = false
		s.fresh = true
	}
	s.data[key] = raw
	s.dirty = true
	return nil
}

// Get deserializa el valor bajo key en dest. Retorna false si la key no existe.
func (s *Session) Get(key string, dest any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("session: unmarshal %q: %w", key, err)
	}
	return true, nil
}

// Delete elimina la key. No es error si no existe.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		delete(s.data, key)
		s.dirty = true
	}
}

// Purge descarta la sesión completa: el record se borra del store y la cookie
// se elimina al commitear. Fail-closed: se usa ante fallas del protocolo MFA.
func (s *Session) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.purged {
		return
	}
	if !s.fresh {
		s.stale = append(s.stale, s.id)
	}
	s.data = make(map[string]json.RawMessage)
	s.purged = true
	s.dirty = false
}

// Renew rota el ID y descarta todos los valores. Defensa contra session
// fixation en login: el estado de un usuario anterior nunca sobrevive.
func (s *Session) Renew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fresh && !s.purged {
		s.stale = append(s.stale, s.id)
	}
	s.id = uuid.NewString()
	s.data = make(map[string]json.RawMessage)
	s.purged = false
	s.fresh = true
	s.dirty = true
}

// snapshot retorna el estado a persistir. Usado por el Manager.
func (s *Session) snapshot() (id string, payload []byte, dirty, purged, fresh bool, stale []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty && !s.purged {
		payload, err = json.Marshal(s.data)
	}
	return s.id, payload, s.dirty, s.purged, s.fresh, s.stale, err
}

type sessionCtxKey struct{}

// ToContext inyecta la sesión en el contexto. Lo hace el middleware del Manager.
func ToContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// FromContext extrae la sesión del contexto.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionCtxKey{}).(*Session)
	return s, ok
}

// FromRequest es el atajo para handlers.
func FromRequest(r *http.Request) (*Session, bool) {
	return FromContext(r.Context())
}
