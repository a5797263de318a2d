package api

import (
	"context"
	"database/sql"
	"fmt"
)

//mysqlSchema requires a DSN with parseTime=true
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id CHAR(36) NOT NULL PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		hash VARBINARY(255) NOT NULL,
		name VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS resumes (
		id CHAR(36) NOT NULL PRIMARY KEY,
		user_id CHAR(36) NOT NULL UNIQUE,
		file_name VARCHAR(255) NOT NULL,
		resume_text MEDIUMTEXT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id CHAR(36) NOT NULL PRIMARY KEY,
		user_id CHAR(36) NOT NULL,
		job_id VARCHAR(255) NOT NULL,
		job_title VARCHAR(500) NOT NULL,
		company VARCHAR(255) NOT NULL,
		job_url VARCHAR(2048),
		location VARCHAR(255),
		status VARCHAR(32) NOT NULL,
		applied_at DATETIME(6) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		UNIQUE KEY applications_user_job (user_id, job_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		hash BYTEA NOT NULL,
		name VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS resumes (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		file_name VARCHAR(255) NOT NULL,
		resume_text TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		job_id VARCHAR(255) NOT NULL,
		job_title VARCHAR(500) NOT NULL,
		company VARCHAR(255) NOT NULL,
		job_url VARCHAR(2048),
		location VARCHAR(255),
		status VARCHAR(32) NOT NULL CHECK (status IN ('applied', 'interview', 'offer', 'rejected')),
		applied_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, job_id)
	)`,
}

//Schema returns the statements creating the tables for the Dialect
func (d Dialect) Schema() []string {
	if d == DialectPostgres {
		return postgresSchema
	}
	return mysqlSchema
}

//Migrate creates any missing tables in db
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	for i, stmt := range d.Schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("could not run schema statement %d: %w", i, err)
		}
	}
	return nil
}
