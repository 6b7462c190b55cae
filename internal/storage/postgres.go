package storage

import (
	"context"

	"studio/internal/infra"
)

const (
	qPostgresKVSchema = `--sql 2567e506-e1fa-4477-b0f8-4a80ac53e246
create table if not exists studio_kv (
    key text primary key,
    value text not null,
    updated_at timestamptz not null default now()
);
`
	qPostgresKVGet = `--sql cf7a14de-4305-4042-bad3-d7b3bdccf755
select value
from studio_kv
where key = $1::text;
`
	qPostgresKVUpsert = `--sql 7d3312bb-ef73-44e4-be4b-a066b468b045
insert into studio_kv (key, value, updated_at)
values ($1::text, $2::text, now())
on conflict (key) do update set
    value = excluded.value,
    updated_at = now();
`
	qPostgresKVDelete = `--sql 9fc2a83f-a37d-4292-b52d-06880e728a89
delete from studio_kv
where key = $1::text;
`
)

// PostgresKV stores values in a Postgres table through an SQLExecutor.
type PostgresKV struct {
	sql infra.SQLExecutor
}

// NewPostgresKV wraps an executor. Call Migrate once before use.
func NewPostgresKV(sql infra.SQLExecutor) *PostgresKV {
	return &PostgresKV{sql: sql}
}

// Migrate creates the backing table when missing.
func (p *PostgresKV) Migrate(ctx context.Context) error {
	_, err := p.sql.Exec(ctx, qPostgresKVSchema)
	return err
}

func (p *PostgresKV) Get(ctx context.Context, key string) (string, error) {
	var value string
	if err := p.sql.QueryRow(ctx, qPostgresKVGet, key).Scan(&value); err != nil {
		if infra.IsNoRows(err) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return value, nil
}

func (p *PostgresKV) Set(ctx context.Context, key, value string) error {
	_, err := p.sql.Exec(ctx, qPostgresKVUpsert, key, value)
	return err
}

func (p *PostgresKV) Delete(ctx context.Context, key string) error {
	_, err := p.sql.Exec(ctx, qPostgresKVDelete, key)
	return err
}

var _ KV = (*PostgresKV)(nil)
