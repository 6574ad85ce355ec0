// Package memory implementa el repositorio de usuarios en memoria, para
// desarrollo y tests. Se siembra desde la config o programáticamente.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/dropDatabas3/authgate/internal/store/core"
)

type Repo struct {
	mu    sync.RWMutex
	users map[string]*core.User // key: email en minúsculas
}

func New() *Repo {
	return &Repo{users: make(map[string]*core.User)}
}

// Seed agrega o pisa un usuario.
func (r *Repo) Seed(u core.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[strings.ToLower(u.Email)] = &u
}

func (r *Repo) Ping(ctx context.Context) error { return nil }

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *Repo) Close() {}
