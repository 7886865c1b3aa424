package store

import (
	"context"
	"testing"

	"github.com/dropDatabas3/hellolink/internal/domain/adapter"
)

type fakeAdapter struct{ name string }

func (f *fakeAdapter) Name() string { return f.name }
func (f *fakeAdapter) Connect(ctx context.Context, cfg AdapterConfig) (AdapterConnection, error) {
	return &fakeConnection{name: f.name}, nil
}

type fakeConnection struct{ name string }

func (c *fakeConnection) Name() string                   { return c.name }
func (c *fakeConnection) Ping(ctx context.Context) error { return nil }
func (c *fakeConnection) Close() error                   { return nil }
func (c *fakeConnection) Users() adapter.UserRepository  { return nil }
func (c *fakeConnection) Accounts() adapter.AccountRepository {
	return nil
}
func (c *fakeConnection) Sessions() adapter.SessionRepository { return nil }
func (c *fakeConnection) VerificationTokens() adapter.VerificationTokenRepository {
	return nil
}
func (c *fakeConnection) Maintenance() adapter.Maintenance { return nil }

func TestRegisterAndOpen(t *testing.T) {
	RegisterAdapter(&fakeAdapter{name: "fake-open"})

	got, ok := GetAdapter("fake-open")
	if !ok || got.Name() != "fake-open" {
		t.Fatalf("GetAdapter = %v, %v", got, ok)
	}

	conn, err := OpenAdapter(context.Background(), AdapterConfig{Name: "fake-open"})
	if err != nil {
		t.Fatal(err)
	}
	if conn.Name() != "fake-open" {
		t.Fatalf("conn.Name() = %q", conn.Name())
	}
}

func TestOpenAdapter_Unregistered(t *testing.T) {
	if _, err := OpenAdapter(context.Background(), AdapterConfig{Name: "inexistente"}); err == nil {
		t.Fatal("adapter no registrado debe ser error")
	}
}

func TestRegisterAdapter_DuplicatePanics(t *testing.T) {
	RegisterAdapter(&fakeAdapter{name: "fake-dup"})

	defer func() {
		if recover() == nil {
			t.Fatal("registro duplicado debe panicear")
		}
	}()
	RegisterAdapter(&fakeAdapter{name: "fake-dup"})
}

func TestListAdapters(t *testing.T) {
	RegisterAdapter(&fakeAdapter{name: "fake-list"})

	found := false
	for _, name := range ListAdapters() {
		if name == "fake-list" {
			found = true
		}
	}
	if !found {
		t.Fatal("ListAdapters no incluye el adapter registrado")
	}
}
