package session

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/authgate/internal/cache"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

const storeKeyPrefix = "sess:"

// Config configura cookie y TTL de las sesiones.
type Config struct {
	CookieName string        // default: "authgate_session"
	Domain     string        // opcional
	Secure     bool          // true en prod detrás de TLS
	SameSite   string        // "lax" | "strict" | "none" (default: lax)
	TTL        time.Duration // default: 24h
}

func (c Config) withDefaults() Config {
	if c.CookieName == "" {
		c.CookieName = "authgate_session"
	}
	if c.TTL <= 0 {
		c.TTL = 24 * time.Hour
	}
	return c
}

// Manager carga y persiste sesiones alrededor de cada request.
type Manager struct {
	store cache.Client
	cfg   Config
}

// NewManager crea el manager sobre el store dado.
func NewManager(store cache.Client, cfg Config) *Manager {
	return &Manager{store: store, cfg: cfg.withDefaults()}
}

// Middleware carga la sesión (o crea una nueva), la inyecta en el contexto y
// la persiste justo antes del primer byte de respuesta, para poder emitir la
// cookie. Si el request se aborta antes, no se asume nada commiteado: el
// próximo request relee el store.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.load(r)

		cw := &commitWriter{ResponseWriter: w, commit: func() {
			m.commit(w, r, sess)
		}}

		next.ServeHTTP(cw, r.WithContext(ToContext(r.Context(), sess)))

		// Handler que no escribió nada: commitear igual.
		cw.commitOnce()
	})
}

func (m *Manager) load(r *http.Request) *Session {
	ck, err := r.Cookie(m.cfg.CookieName)
	if err != nil || ck.Value == "" {
		return newSession(uuid.NewString(), nil, true)
	}

	raw, err := m.store.Get(r.Context(), storeKeyPrefix+ck.Value)
	if err != nil {
		if !cache.IsNotFound(err) {
			logger.From(r.Context()).Warn("session load failed", logger.SessionID(ck.Value), logger.Err(err))
		}
		return newSession(uuid.NewString(), nil, true)
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		logger.From(r.Context()).Warn("session record corrupt, dropping", logger.SessionID(ck.Value))
		return newSession(uuid.NewString(), nil, true)
	}
	return newSession(ck.Value, data, false)
}

func (m *Manager) commit(w http.ResponseWriter, r *http.Request, sess *Session) {
	ctx := r.Context()
	log := logger.From(ctx)

	id, payload, dirty, purged, fresh, stale, err := sess.snapshot()
	if err != nil {
		log.Error("session snapshot failed", logger.Err(err))
		return
	}

	for _, old := range stale {
		if derr := m.store.Delete(ctx, storeKeyPrefix+old); derr != nil {
			log.Warn("stale session delete failed", logger.SessionID(old), logger.Err(derr))
		}
	}

	switch {
	case purged:
		if !fresh {
			if derr := m.store.Delete(ctx, storeKeyPrefix+id); derr != nil {
				log.Warn("session delete failed", logger.SessionID(id), logger.Err(derr))
			}
		}
		http.SetCookie(w, m.deletionCookie())
	case dirty:
		if serr := m.store.Set(ctx, storeKeyPrefix+id, string(payload), m.cfg.TTL); serr != nil {
			log.Error("session persist failed", logger.SessionID(id), logger.Err(serr))
			return
		}
		if fresh {
			http.SetCookie(w, m.sessionCookie(id))
		}
	}
}

func (m *Manager) sessionCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    id,
		Path:     "/",
		Domain:   m.cfg.Domain,
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: parseSameSite(m.cfg.SameSite),
	}
}

func (m *Manager) deletionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.cfg.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: parseSameSite(m.cfg.SameSite),
	}
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// commitWriter dispara el commit de la sesión antes del primer byte escrito,
// que es el último momento en que todavía se pueden setear cookies.
type commitWriter struct {
	http.ResponseWriter
	commit    func()
	committed bool
}

func (w *commitWriter) commitOnce() {
	if w.committed {
		return
	}
	w.committed = true
	w.commit()
}

func (w *commitWriter) WriteHeader(code int) {
	w.commitOnce()
	w.ResponseWriter.WriteHeader(code)
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.commitOnce()
	return w.ResponseWriter.Write(b)
}
