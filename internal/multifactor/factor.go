// Package multifactor implementa el protocolo de segundo factor: generación de
// un desafío por sesión, entrega vía un sender externo y verificación acotada
// en el tiempo. Los errores se retornan tipados al caller; acá no se loguea ni
// se reintenta nada.
package multifactor

import (
	"context"

	"github.com/dropDatabas3/authgate/internal/session"
)

// Factor es un segundo factor enchufable. Las variantes se distinguen por
// GetUniqueID; quién decide qué factor está pendiente por sesión es el
// orquestador (handlers + provider), no el factor.
type Factor interface {
	// GetUniqueID retorna el identificador estable del factor configurado.
	GetUniqueID() string

	// GenerateCode crea un desafío nuevo para la sesión y lo entrega.
	// Un desafío previo pendiente se pisa: nunca hay más de uno por sesión.
	GenerateCode(ctx context.Context, sess *session.Session) error

	// CheckCode verifica la respuesta del usuario contra el desafío pendiente.
	CheckCode(ctx context.Context, code string, sess *session.Session) error
}
