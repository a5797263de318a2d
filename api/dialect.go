package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

//Dialect is the SQL flavor of the backing database
type Dialect int

//Dialects
const (
	DialectMySQL Dialect = iota
	DialectPostgres
)

//ParseDialect returns the Dialect for the given database/sql driver name
func ParseDialect(driver string) (Dialect, error) {
	switch driver {
	case "mysql":
		return DialectMySQL, nil
	case "postgres":
		return DialectPostgres, nil
	}
	return 0, fmt.Errorf("unsupported SQL driver: %q", driver)
}

//Rebind rewrites ? placeholders in query to the placeholder syntax of the Dialect
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

//isDuplicate reports whether err is a unique constraint violation from either driver
func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

//Tx is a database transaction that rewrites queries for its Dialect
type Tx struct {
	*sql.Tx
	Dialect Dialect
}

//ExecContext executes query after rebinding it
func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return t.Tx.ExecContext(ctx, t.Dialect.Rebind(query), args...)
}

//QueryContext runs query after rebinding it
func (t *Tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return t.Tx.QueryContext(ctx, t.Dialect.Rebind(query), args...)
}

//QueryRowContext runs query after rebinding it
func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return t.Tx.QueryRowContext(ctx, t.Dialect.Rebind(query), args...)
}

func transaction(ctx context.Context) *Tx {
	return ctx.Value(TransactionKey).(*Tx)
}
