package adapter

import "time"

// User representa un usuario del framework de autenticación.
type User struct {
	ID    string
	Email string
	Name  string
	Image string

	// EmailVerified es el momento en que el email fue verificado.
	// nil = nunca verificado.
	EmailVerified *time.Time
}

// Account representa una cuenta externa vinculada a un usuario.
// Invariante: el par (Provider, ProviderAccountID) es único; es la clave
// natural para lookup de identidades externas.
type Account struct {
	ID                string
	UserID            string
	Type              string // "email", "oauth", ...
	Provider          string
	ProviderAccountID string
}

// Session representa una sesión de base de datos.
// SessionToken es opaco y único; es la clave de lookup.
type Session struct {
	ID           string
	UserID       string
	SessionToken string
	Expires      time.Time
}

// SessionAndUser es el par retornado por SessionRepository.GetWithUser.
type SessionAndUser struct {
	Session *Session
	User    *User
}

// VerificationToken representa un token de verificación de email de un solo
// uso. El par (Identifier, Token) es único y es la clave de consumo.
//
// Nota: el contrato del framework nunca expone el identificador interno del
// store para esta entidad, por eso el tipo no tiene campo ID. El id vive
// solo dentro del adapter.
type VerificationToken struct {
	Identifier string // destino del token (ej: email)
	Token      string // hash del token opaco
	Expires    time.Time
}
