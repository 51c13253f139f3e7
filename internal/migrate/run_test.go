package migrate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/authgate/internal/migrate"
	"github.com/target/authgate/internal/testutil"
)

func TestApply_Idempotent(t *testing.T) {
	db := testutil.SetupEphemeralSchemaDB(t)
	ctx := context.Background()

	// SetupEphemeralSchemaDB already migrated the schema.
	applied, err := migrate.Apply(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, applied)

	statuses, err := migrate.Statuses(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, statuses)
	assert.Equal(t, "0001_create_users", statuses[0].Version)
	for _, s := range statuses {
		assert.True(t, s.Applied, s.Version)
	}
}

func TestUsersSchema_Constraints(t *testing.T) {
	db := testutil.SetupEphemeralSchemaDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, number, role) VALUES ('a', 'a@x.com', 'h', 1, 'superuser')`)
	assert.Error(t, err, "role check constraint")

	_, err = db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, number) VALUES ('a', 'A@x.com', 'h', 1)`)
	assert.Error(t, err, "lowercase email constraint")

	_, err = db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, number) VALUES ('a', 'a@x.com', 'h', 1)`)
	require.NoError(t, err)

	var role string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT role FROM users WHERE email = 'a@x.com'`).Scan(&role))
	assert.Equal(t, "normal", role)
}
