package db

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rocklab/ddlexport/internal/errs"
)

func TestClassifyPostgresConnectError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantAuth bool
	}{
		{name: "invalid password", err: &pgconn.PgError{Code: "28P01"}, wantAuth: true},
		{name: "invalid authorization", err: &pgconn.PgError{Code: "28000"}, wantAuth: true},
		{name: "other pg error", err: &pgconn.PgError{Code: "3D000"}, wantAuth: false},
		{name: "network error", err: errors.New("connection refused"), wantAuth: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyPostgresConnectError(tt.err)

			if got := errs.IsAuth(classified); got != tt.wantAuth {
				t.Errorf("IsAuth() = %v, want %v", got, tt.wantAuth)
			}
			if !tt.wantAuth && !errs.IsConnection(classified) {
				t.Error("non-auth failures must classify as connection errors")
			}
			if !errs.IsDatabase(classified) {
				t.Error("connect failures must classify as database errors")
			}
			if !errors.Is(classified, tt.err) {
				t.Error("original error must stay reachable via errors.Is")
			}
		})
	}
}

func TestClassifyMySQLConnectError(t *testing.T) {
	accessDenied := &mysql.MySQLError{Number: 1045, Message: "Access denied"}
	if !errs.IsAuth(classifyMySQLConnectError(accessDenied)) {
		t.Error("access denied must classify as an auth error")
	}

	refused := errors.New("dial tcp: connection refused")
	if !errs.IsConnection(classifyMySQLConnectError(refused)) {
		t.Error("network failures must classify as connection errors")
	}
}

func TestBuildIndexDef(t *testing.T) {
	tests := []struct {
		name    string
		unique  bool
		columns []string
		want    string
	}{
		{
			name:    "single column",
			columns: []string{"name"},
			want:    "CREATE INDEX idx_users_name ON users (name)",
		},
		{
			name:    "multi column unique",
			unique:  true,
			columns: []string{"email", "tenant_id"},
			want:    "CREATE UNIQUE INDEX idx_users_name ON users (email, tenant_id)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildIndexDef("users", "idx_users_name", tt.unique, tt.columns)
			if got != tt.want {
				t.Errorf("buildIndexDef() = %q, want %q", got, tt.want)
			}
		})
	}
}
