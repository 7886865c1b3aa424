package adapter

import (
	"context"
	"time"
)

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// Create inserta un nuevo usuario y retorna el registro con su ID.
	Create(ctx context.Context, u *User) (*User, error)

	// GetByID busca un usuario por ID.
	// Retorna (nil, nil) si no existe o si el ID está malformado.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail busca un usuario por email (índice único user_by_email).
	// Retorna (nil, nil) si no existe.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByAccount busca el usuario dueño de una cuenta externa por su clave
	// natural (provider, providerAccountID). Si la cuenta no existe,
	// corta en corto y retorna (nil, nil) sin segundo lookup.
	GetByAccount(ctx context.Context, provider, providerAccountID string) (*User, error)

	// Update reemplaza los campos de datos del usuario. El ID es inmutable.
	Update(ctx context.Context, u *User) (*User, error)

	// Delete elimina el usuario y, en la misma transacción, todas sus
	// sesiones y cuentas vinculadas (prevención de huérfanos). No hay
	// estado parcial observable: o se aplica todo o nada.
	Delete(ctx context.Context, userID string) error
}

// AccountRepository define operaciones sobre cuentas externas vinculadas.
type AccountRepository interface {
	// Link inserta una nueva cuenta vinculada.
	Link(ctx context.Context, a *Account) (*Account, error)

	// Unlink elimina la cuenta con esa clave natural.
	// Si no existe, no es error (misma política nil que los lookups).
	Unlink(ctx context.Context, provider, providerAccountID string) error
}

// SessionRepository define operaciones sobre sesiones de base de datos.
type SessionRepository interface {
	// Create inserta una nueva sesión.
	Create(ctx context.Context, s *Session) (*Session, error)

	// GetWithUser busca la sesión por token y, si existe, el usuario dueño.
	// Si la sesión no existe retorna (nil, nil) sin hacer el segundo lookup.
	GetWithUser(ctx context.Context, sessionToken string) (*SessionAndUser, error)

	// Update reemplaza los datos de la sesión, resolviendo la referencia por
	// su token (no por ID).
	Update(ctx context.Context, s *Session) (*Session, error)

	// Delete elimina la sesión por token.
	Delete(ctx context.Context, sessionToken string) error
}

// VerificationTokenRepository define operaciones sobre tokens de verificación.
type VerificationTokenRepository interface {
	// Create inserta un nuevo token. El registro retornado nunca incluye el
	// identificador interno del store.
	Create(ctx context.Context, v *VerificationToken) (*VerificationToken, error)

	// Use consume el token de un solo uso: lookup por (identifier, token) y
	// delete del registro encontrado, atómico desde la perspectiva del
	// caller. Retorna el registro consumido, o (nil, nil) si no existe.
	// De dos consumidores concurrentes, exactamente uno recibe el registro.
	Use(ctx context.Context, identifier, token string) (*VerificationToken, error)
}

// Maintenance define tareas de limpieza fuera del contrato del framework.
// La expiración NO se chequea en los lookups del adapter (eso queda delegado
// al caller); este es el mecanismo out-of-band para podar registros vencidos.
type Maintenance interface {
	// DeleteExpiredSessions elimina sesiones vencidas. Retorna cuántas.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)

	// DeleteExpiredVerificationTokens elimina tokens vencidos. Retorna cuántos.
	DeleteExpiredVerificationTokens(ctx context.Context, now time.Time) (int, error)
}
