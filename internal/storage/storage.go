// Package storage opens the relational store of the contact book and owns its schema.
package storage

import (
	"bufio"
	"bytes"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/config"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// MemoryPath opens a private in-memory SQLite database.
const MemoryPath = ":memory:"

// mysqlTableNotFound is the MySQL server error ER_NO_SUCH_TABLE.
const mysqlTableNotFound = 1146

//go:embed schema/*.sql
var schemaFS embed.FS

// CreateDatabase opens the database described by the configuration and verifies that it can be
// reached.
func CreateDatabase(cfg config.Config) (*sqlx.DB, error) {
	if cfg.DBDriver == config.DriverSQLite {
		return OpenSQLite(cfg.DSN())
	}
	sqlDB, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping mysql db: %w", err)
	}
	return sqlx.NewDb(sqlDB, "mysql"), nil
}

// OpenSQLite opens a SQLite database file with foreign keys enforced. MemoryPath yields an empty
// database that lives as long as the returned handle.
func OpenSQLite(path string) (*sqlx.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == MemoryPath {
		// Every connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	// sqlx derives the bind style from the driver name.
	return sqlx.NewDb(sqlDB, "sqlite3"), nil
}

// Schema returns the embedded schema for the dialect of the database handle.
func Schema(db *sqlx.DB) ([]byte, error) {
	name := "schema/mysql.sql"
	if db.DriverName() == "sqlite3" {
		name = "schema/sqlite.sql"
	}
	content, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}
	return content, nil
}

// ApplySchema executes the SQL statements read from r. Statements end with a semicolon at the
// end of a line. Statements are idempotent, so the schema can be applied repeatedly.
func ApplySchema(db *sqlx.DB, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	for scanner.Scan() {
		line := scanner.Text()
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.HasSuffix(strings.TrimSpace(line), ";") {
			if _, err := db.Exec(builder.String()); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
			builder = strings.Builder{}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	return nil
}

// Migrate applies the embedded schema for the dialect of the database handle.
func Migrate(db *sqlx.DB) error {
	content, err := Schema(db)
	if err != nil {
		return err
	}
	return ApplySchema(db, bytes.NewReader(content))
}

// IsUninitialized reports whether err signals that the tables of the contact book do not exist,
// which means the schema has never been applied to the database.
func IsUninitialized(err error) bool {
	if err == nil {
		return false
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlTableNotFound
	}
	message := strings.ToLower(err.Error())
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_ERROR && strings.Contains(message, "no such table")
	}
	return strings.Contains(message, "no such table") ||
		strings.Contains(message, "doesn't exist") ||
		(strings.Contains(message, "relation") && strings.Contains(message, "does not exist"))
}
