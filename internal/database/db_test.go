package database

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lib/pq"
)

func TestMapWriteError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		err           error
		wantDuplicate bool
		wantContains  string
	}{
		{
			name:          "unique violation",
			err:           &pq.Error{Code: "23505", Constraint: "users_email_key"},
			wantDuplicate: true,
			wantContains:  "users_email_key",
		},
		{
			name:          "wrapped unique violation",
			err:           fmt.Errorf("exec: %w", &pq.Error{Code: "23505", Constraint: "users_username_key"}),
			wantDuplicate: true,
			wantContains:  "users_username_key",
		},
		{
			name: "other pq error",
			err:  &pq.Error{Code: "23502"},
		},
		{
			name: "plain error",
			err:  errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := mapWriteError(tt.err)
			if errors.Is(got, ErrDuplicate) != tt.wantDuplicate {
				t.Errorf("errors.Is(ErrDuplicate) = %v, want %v", !tt.wantDuplicate, tt.wantDuplicate)
			}
			if tt.wantContains != "" && !strings.Contains(got.Error(), tt.wantContains) {
				t.Errorf("Expected %q in error, got %q", tt.wantContains, got.Error())
			}
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if opts.MaxIdleConns != 10 || opts.MaxOpenConns != 30 {
		t.Errorf("Unexpected pool sizes: %+v", opts)
	}
	if opts.ConnMaxLifetime.Seconds() != 300 {
		t.Errorf("Expected 300s lifetime, got %v", opts.ConnMaxLifetime)
	}
}

func TestSchemaStatementsAreIdempotent(t *testing.T) {
	t.Parallel()

	for _, stmt := range schemaStatements {
		if !strings.Contains(stmt, "IF NOT EXISTS") {
			t.Errorf("Statement is not idempotent: %s", stmt)
		}
	}
}
