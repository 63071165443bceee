package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("connection refused")

	wrapped := Wrap(KindConnection, "failed to connect", cause)
	if msg := wrapped.Error(); !strings.Contains(msg, "connection refused") || !strings.Contains(msg, "[connection]") {
		t.Errorf("unexpected message: %q", msg)
	}

	bare := New(KindQuery, "list tables")
	if msg := bare.Error(); msg != "[query] list tables" {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(KindQuery, "query failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		isDatabase   bool
		isConnection bool
		isAuth       bool
		isQuery      bool
		isExport     bool
	}{
		{
			name:         "connection",
			err:          New(KindConnection, "unreachable"),
			isDatabase:   true,
			isConnection: true,
		},
		{
			name:       "auth",
			err:        New(KindAuth, "rejected"),
			isDatabase: true,
			isAuth:     true,
		},
		{
			name:       "query",
			err:        New(KindQuery, "bad query"),
			isDatabase: true,
			isQuery:    true,
		},
		{
			name:     "export",
			err:      New(KindExport, "disk full"),
			isExport: true,
		},
		{
			name: "unexpected",
			err:  New(KindUnexpected, "bug"),
		},
		{
			name: "plain error",
			err:  errors.New("plain"),
		},
		{
			// Kind is still found through an outer fmt wrapper
			name:       "nested in fmt wrapper",
			err:        fmt.Errorf("outer: %w", New(KindQuery, "inner")),
			isDatabase: true,
			isQuery:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDatabase(tt.err); got != tt.isDatabase {
				t.Errorf("IsDatabase() = %v, want %v", got, tt.isDatabase)
			}
			if got := IsConnection(tt.err); got != tt.isConnection {
				t.Errorf("IsConnection() = %v, want %v", got, tt.isConnection)
			}
			if got := IsAuth(tt.err); got != tt.isAuth {
				t.Errorf("IsAuth() = %v, want %v", got, tt.isAuth)
			}
			if got := IsQuery(tt.err); got != tt.isQuery {
				t.Errorf("IsQuery() = %v, want %v", got, tt.isQuery)
			}
			if got := IsExport(tt.err); got != tt.isExport {
				t.Errorf("IsExport() = %v, want %v", got, tt.isExport)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindConnection, "connection"},
		{KindAuth, "auth"},
		{KindQuery, "query"},
		{KindExport, "export"},
		{KindUnexpected, "unexpected"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
