// Command migrate bootstraps the authentication core's schema. There is
// no migration history to replay here, only the seven tables the core
// reads and writes (plus their indexes): every statement is
// `create table if not exists` or `create index if not exists`, so
// running this against an already-provisioned database is a no-op.
package main

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-journal/authcore/internal/config"
	"github.com/inkwell-journal/authcore/pkg/logger"
)

var statements = []string{
	`create table if not exists users (
		id serial primary key,
		username text not null unique,
		email text,
		email_verified boolean not null default false,
		level integer not null default 0,
		password_hash text not null
	)`,

	`create table if not exists user_sessions (
		token text primary key,
		owner integer not null references users(id) on delete cascade,
		dropped boolean not null default false,
		issued_on timestamptz not null,
		expires timestamptz not null,
		verified boolean not null default false,
		use_csrf boolean not null default false
	)`,

	`create index if not exists user_sessions_owner_idx on user_sessions(owner)`,

	`create table if not exists auth_otp (
		id serial primary key,
		users_id integer not null unique references users(id) on delete cascade,
		algo smallint not null default 0,
		secret bytea not null,
		digits smallint not null default 6,
		step smallint not null default 30,
		verified boolean not null default false
	)`,

	`create table if not exists auth_otp_codes (
		id serial primary key,
		auth_otp_id integer not null references auth_otp(id) on delete cascade,
		hash text not null,
		used boolean not null default false,
		unique (auth_otp_id, hash)
	)`,

	`create table if not exists groups (
		id serial primary key,
		name text not null unique
	)`,

	`create table if not exists group_users (
		group_id integer not null references groups(id) on delete cascade,
		users_id integer not null references users(id) on delete cascade,
		primary key (group_id, users_id)
	)`,

	// nulls-distinct is Postgres's default unique-index behavior: two
	// global grants (resource_table and resource_id both null) for the
	// same subject/roll/ability are treated as distinct rows unless the
	// application layer already de-duplicated them, matching permission.Replace's
	// upsert-by-tuple semantics rather than a blanket one-grant-per-roll rule.
	`create table if not exists permissions (
		id serial primary key,
		subject_table text not null,
		subject_id integer not null,
		roll text not null,
		ability text not null,
		resource_table text,
		resource_id integer,
		unique (subject_table, subject_id, roll, ability, resource_table, resource_id)
	)`,

	`create index if not exists permissions_subject_idx on permissions(subject_table, subject_id)`,
	`create index if not exists permissions_resource_idx on permissions(resource_table, resource_id)`,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Setup(cfg.Environment)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database_connect_failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	for i, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Error("schema_statement_failed", "index", i, "error", err)
			os.Exit(1)
		}
	}

	log.Info("schema_bootstrap_complete", "statements", len(statements))
}
