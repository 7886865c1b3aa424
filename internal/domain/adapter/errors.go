package adapter

import "errors"

var (
	// ErrInvalidInput indica que los datos de entrada son inválidos
	// (ej: Create sin email, Update sin ID).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indica que la operación no está implementada por
	// este driver.
	ErrNotImplemented = errors.New("not implemented")
)

// IsInvalidInput verifica si el error es ErrInvalidInput.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
