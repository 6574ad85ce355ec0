// Package core define el contrato del repositorio de usuarios que respalda el
// login primario. Las implementaciones viven en store/memory y store/pg.
package core

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// User es la cuenta contra la que se valida el login primario. Email y Name
// forman el principal que viaja en la sesión; PasswordHash nunca sale de acá.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Repository expone la búsqueda de usuarios para el login.
type Repository interface {
	Ping(ctx context.Context) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	Close()
}
