package tokens

import (
	"strings"
	"testing"
)

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken(32)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateOpaqueToken(32)
	if err != nil {
		t.Fatal(err)
	}

	if a == b {
		t.Fatal("dos tokens consecutivos no pueden coincidir")
	}
	// 32 bytes en base64url sin padding = 43 caracteres.
	if len(a) != 43 {
		t.Fatalf("len = %d", len(a))
	}
	if strings.ContainsAny(a, "+/=") {
		t.Fatalf("no es base64url sin padding: %q", a)
	}
}

func TestSHA256Base64URL(t *testing.T) {
	h := SHA256Base64URL("hola")

	if h != SHA256Base64URL("hola") {
		t.Fatal("el hash debe ser determinístico")
	}
	if h == SHA256Base64URL("chau") {
		t.Fatal("entradas distintas no pueden colisionar acá")
	}
	// sha256 = 32 bytes = 43 caracteres base64url sin padding.
	if len(h) != 43 {
		t.Fatalf("len = %d", len(h))
	}
	if h == "hola" {
		t.Fatal("el hash no puede ser la entrada")
	}
}
