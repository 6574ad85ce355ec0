package auth

// UnauthorizedError indica que no hay un principal válido para la ruta protegida,
// o que un handler pidió el token en una ruta sin autenticación.
// Siempre se traduce a HTTP 401; el mensaje es informativo, los clientes no lo parsean.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

// NewUnauthorizedError crea un error con mensaje propio.
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

// ErrNotAuthorized retorna el error por defecto. Es un constructor puro:
// cada llamada produce una instancia nueva, no hay estado global.
func ErrNotAuthorized() *UnauthorizedError {
	return &UnauthorizedError{Message: "Not authorized"}
}
