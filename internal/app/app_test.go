package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestRunRejectsUnknownCommands(t *testing.T) {
	if err := Run(context.Background(), nil); err == nil {
		t.Fatal("expected an error without a command")
	}
	if err := Run(context.Background(), []string{"launch"}); err == nil || !strings.Contains(err.Error(), "launch") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestDatabaseCommandsNeedPostgres(t *testing.T) {
	t.Setenv("VIDTUBE_STORE", "memory")

	for _, args := range [][]string{{"migrate"}, {"seed", "dev"}} {
		err := Run(context.Background(), args)
		if err == nil || !strings.Contains(err.Error(), "postgres") {
			t.Fatalf("%s: expected store error, got %v", args[0], err)
		}
	}
}

func TestResolveDir(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "migrations")
	got, err := resolveDir(abs)
	if err != nil || got != abs {
		t.Fatalf("expected absolute dir unchanged, got %q %v", got, err)
	}

	got, err = resolveDir("seeds")
	if err != nil {
		t.Fatalf("resolve relative dir: %v", err)
	}
	if !filepath.IsAbs(got) || filepath.Base(got) != "seeds" {
		t.Fatalf("expected anchored path, got %q", got)
	}
}

func TestMigrationBackoff(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, migrationBaseBackoff},
		{2, 2 * migrationBaseBackoff},
		{3, 4 * migrationBaseBackoff},
		{20, migrationMaxBackoff},
	}
	for _, tc := range cases {
		if got := migrationBackoff(tc.attempt); got != tc.want {
			t.Errorf("migrationBackoff(%d) = %s, want %s", tc.attempt, got, tc.want)
		}
	}
}

func TestShouldRetryMigration(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"serialization", fmt.Errorf("apply: %w", &pgconn.PgError{Code: "40001"}), true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"syntax", &pgconn.PgError{Code: "42601"}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"txClosed", pgx.ErrTxClosed, true},
		{"other", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldRetryMigration(tc.err); got != tc.want {
				t.Fatalf("shouldRetryMigration(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
