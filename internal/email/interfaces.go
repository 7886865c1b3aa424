// Package email envía el magic link de sign-in.
package email

import "time"

// Sender es la frontera de transporte de mail del servicio.
// Los fallos de envío se propagan al caller sin reintentos.
type Sender interface {
	// SendMagicLink envía el link de un solo uso a la dirección destino.
	SendMagicLink(to, link string, expiresAt time.Time) error
}
