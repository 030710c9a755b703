package utils

import (
	"context"
	"database/sql"
	"testing"
	"time"
)

func TestPostgresPoolDefaults(t *testing.T) {
	p := PostgresPoolConfig{}.withDefaults()
	if p.MaxOpenConns != 10 || p.MaxIdleConns != 5 {
		t.Fatalf("unexpected pool: %+v", p)
	}
	if p.ConnMaxLifetime != 30*time.Minute || p.PingTimeout != 3*time.Second {
		t.Fatalf("unexpected timeouts: %+v", p)
	}

	p = PostgresPoolConfig{MaxOpenConns: 4, MaxIdleConns: 8}.withDefaults()
	if p.MaxIdleConns != 2 {
		t.Fatalf("idle conns must not exceed open conns: %+v", p)
	}
}

func TestOpenPostgres_UnknownDriver(t *testing.T) {
	if _, err := openPostgres(context.Background(), "no-such-driver", "", PostgresPoolConfig{}); err == nil {
		t.Fatalf("expected error for unregistered driver")
	}
}

func TestPingPostgres_Unreachable(t *testing.T) {
	if err := PingPostgres(context.Background(), nil, time.Second); err == nil {
		t.Fatalf("expected error for nil db")
	}

	db, err := sql.Open(PostgresDriver, "postgres://u:p@127.0.0.1:1/db?connect_timeout=1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := PingPostgres(context.Background(), db, 2*time.Second); err == nil {
		t.Fatalf("expected ping to fail for a closed port")
	}
}

func TestWithTx_BeginFailure(t *testing.T) {
	db, err := sql.Open(PostgresDriver, "postgres://u:p@127.0.0.1:1/db?connect_timeout=1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	called := false
	err = WithTx(context.Background(), db, nil, func(ctx context.Context, tx *sql.Tx) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Fatalf("expected begin failure without running fn, err=%v called=%v", err, called)
	}
}
