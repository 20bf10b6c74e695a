package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsUniqueViolationSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name())
	conn, err := Open(context.Background(), DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	insert := `INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
	           VALUES ($1,$2,$3,$4,$5,0,0)`
	if _, err := conn.ExecContext(ctx, insert, "u1", "A", "a@example.com", "x", "user"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err = conn.ExecContext(ctx, insert, "u2", "B", "a@example.com", "x", "user")
	if err == nil {
		t.Fatal("duplicate email insert succeeded")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("not recognized as unique violation: %v", err)
	}
}

func TestIsUniqueViolationMessages(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`), true},
		{errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"), true},
		{errors.New("sql: no rows in result set"), false},
		{nil, false},
	}
	for _, c := range cases {
		if got := IsUniqueViolation(c.err); got != c.want {
			t.Errorf("IsUniqueViolation(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
