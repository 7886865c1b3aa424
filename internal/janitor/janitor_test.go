package janitor

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/hellolink/internal/domain/adapter"
	"github.com/dropDatabas3/hellolink/internal/store/adapters/memory"
)

func TestRun_PrunesExpiredRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := memory.NewConnection()
	user, err := conn.Users().Create(ctx, &adapter.User{Email: "j@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = conn.Sessions().Create(ctx, &adapter.Session{
		UserID:       user.ID,
		SessionToken: "vencida",
		Expires:      time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- Run(ctx, conn, 10*time.Millisecond) }()

	deadline := time.After(2 * time.Second)
	for {
		if pair, _ := conn.Sessions().GetWithUser(ctx, "vencida"); pair == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("el janitor no podó la sesión vencida")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run = %v", err)
	}
}

func TestRun_ZeroIntervalWaitsForCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Run(ctx, memory.NewConnection(), 0) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run no retornó tras la cancelación")
	}
}
