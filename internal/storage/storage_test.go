package storage

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/config"
)

// TestIsUninitialized checks which storage errors are reported as a missing schema.
func TestIsUninitialized(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"mysql missing table", &mysql.MySQLError{Number: 1146, Message: "Table 'test.contacts' doesn't exist"}, true},
		{"wrapped mysql missing table", fmt.Errorf("select contacts: %w", &mysql.MySQLError{Number: 1146}), true},
		{"mysql duplicate key", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, false},
		{"sqlite message", errors.New("SQL logic error: no such table: contacts (1)"), true},
		{"postgres message", errors.New(`pq: relation "contacts" does not exist`), true},
		{"generic", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUninitialized(tt.err))
		})
	}
}

// TestSQLiteUninitialized queries an empty in-memory database. It expects the driver error to be
// detected as a missing schema, and the error to disappear once the schema has been applied.
func TestSQLiteUninitialized(t *testing.T) {
	db, err := OpenSQLite(MemoryPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	err = db.Get(&count, "SELECT COUNT(*) FROM contacts")
	require.Error(t, err)
	assert.True(t, IsUninitialized(err), err.Error())

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db), "the schema must be idempotent")
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM contact_methods"))
	assert.Equal(t, 0, count)
}

// TestApplySchema expects multi-line statements to be executed one by one.
func TestApplySchema(t *testing.T) {
	db, err := OpenSQLite(MemoryPath)
	require.NoError(t, err)
	defer db.Close()

	script := `CREATE TABLE a (
		id INTEGER PRIMARY KEY
	);
	INSERT INTO a (id) VALUES (1);
	INSERT INTO a (id) VALUES (2);`
	require.NoError(t, ApplySchema(db, strings.NewReader(script)))

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM a"))
	assert.Equal(t, 2, count)

	err = ApplySchema(db, strings.NewReader("INSERT INTO missing VALUES (1);"))
	require.Error(t, err)
	assert.True(t, IsUninitialized(err))
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite(" ")
	assert.Error(t, err)
}

// TestCreateDatabaseSQLite opens the configured SQLite database and expects an uninitialized store
// until the schema is migrated.
func TestCreateDatabaseSQLite(t *testing.T) {
	db, err := CreateDatabase(config.Config{DBDriver: config.DriverSQLite, DBPath: MemoryPath})
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, "sqlite3", db.DriverName())

	_, err = db.Exec("SELECT id FROM contacts")
	assert.True(t, IsUninitialized(err))
	require.NoError(t, Migrate(db))
	_, err = db.Exec("SELECT id FROM contacts")
	assert.NoError(t, err)

	_, err = CreateDatabase(config.Config{DBDriver: config.DriverSQLite})
	assert.Error(t, err)
}
