//go:build integration_pg

package pg

import (
	"context"
	"testing"
	"time"

	"meitanbot/internal/platform/testkit/pgcontainer"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestOpen_PingAndQuery_Integration(t *testing.T) {
	dsn := pgcontainer.Start(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	const appName = "meitanbot-pg-integration"
	p, err := Open(ctx, Config{URL: dsn, MaxConns: 2}, nil, func(pc *pgxpool.Config) {
		pc.ConnConfig.RuntimeParams["application_name"] = appName
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(p.Close)

	if err := p.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `create temporary table t (id bigint primary key, name text)`); err != nil {
		t.Fatalf("create temp table: %v", err)
	}
	if _, err := conn.Exec(ctx, `insert into t (id, name) values ($1, $2)`, int64(323080975), "meitanbot"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	type row struct {
		ID   int64
		Name string
	}
	rows, err := conn.Query(ctx, `select id, name from t`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	got, err := pgx.CollectRows(rows, pgx.RowToStructByPos[row])
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 1 || got[0].ID != 323080975 || got[0].Name != "meitanbot" {
		t.Fatalf("unexpected rows: %#v", got)
	}

	var gotApp string
	if err := conn.QueryRow(ctx, `select current_setting('application_name')`).Scan(&gotApp); err != nil {
		t.Fatalf("application_name: %v", err)
	}
	if gotApp != appName {
		t.Fatalf("application_name = %q, want %q", gotApp, appName)
	}
}
