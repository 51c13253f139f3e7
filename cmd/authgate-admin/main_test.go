package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/authgate/internal/domain/auth"
	apperrors "github.com/target/authgate/internal/errors"
	"github.com/target/authgate/internal/migrate"
	fakes "github.com/target/authgate/internal/mocks/auth"
	"github.com/target/authgate/internal/service"
)

func seededAdmin(t *testing.T) *service.UserAdmin {
	t.Helper()
	store := fakes.NewMemoryUserStore()
	_, err := store.Create(context.Background(), domainauth.NewUser{
		Name:   "Ann",
		Email:  "ann@example.com",
		Number: 42,
		Role:   domainauth.RoleNormal,
	})
	require.NoError(t, err)
	return service.NewUserAdmin(service.UserAdminOptions{Users: store})
}

func TestPrintUsageListsCommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	out := buf.String()
	assert.Contains(t, out, "Usage: authgate-admin")
	for name := range commands() {
		assert.Contains(t, out, name)
	}
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("migrate")), bytes.Index(buf.Bytes(), []byte("show-user")))
}

func TestParseMigrateFlags(t *testing.T) {
	opts, err := parseMigrateFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultMigrationTimeout, opts.Timeout)
	assert.False(t, opts.Status)

	opts, err = parseMigrateFlags([]string{"--status", "--timeout", "10s"})
	require.NoError(t, err)
	assert.True(t, opts.Status)
	assert.Equal(t, 10*time.Second, opts.Timeout)

	_, err = parseMigrateFlags([]string{"--timeout", "0s"})
	require.Error(t, err)

	_, err = parseMigrateFlags([]string{"extra"})
	require.Error(t, err)
}

func TestParseSetRoleFlags(t *testing.T) {
	opts, err := parseSetRoleFlags([]string{"--email", " ann@example.com ", "--role", "admin"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", opts.Email)
	assert.Equal(t, "admin", opts.Role)
	assert.Equal(t, defaultCommandTimeout, opts.Timeout)

	_, err = parseSetRoleFlags([]string{"--role", "admin"})
	require.EqualError(t, err, "--email is required")

	_, err = parseSetRoleFlags([]string{"--email", "ann@example.com"})
	require.EqualError(t, err, "--role is required")
}

func TestParseShowUserFlags(t *testing.T) {
	opts, err := parseShowUserFlags([]string{"--email", "ann@example.com", "--json"})
	require.NoError(t, err)
	assert.True(t, opts.JSON)

	_, err = parseShowUserFlags(nil)
	require.EqualError(t, err, "--email is required")
}

func TestSetRole(t *testing.T) {
	admin := seededAdmin(t)
	var buf bytes.Buffer

	err := setRole(context.Background(), &buf, admin, setRoleOptions{Email: "ANN@example.com", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com is now admin\n", buf.String())

	err = setRole(context.Background(), &buf, admin, setRoleOptions{Email: "ann@example.com", Role: "root"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	err = setRole(context.Background(), &buf, admin, setRoleOptions{Email: "nobody@example.com", Role: "admin"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestShowUser_Table(t *testing.T) {
	admin := seededAdmin(t)
	var buf bytes.Buffer

	require.NoError(t, showUser(context.Background(), &buf, admin, showUserOptions{Email: "ann@example.com"}))

	out := buf.String()
	assert.Contains(t, out, "Email:")
	assert.Contains(t, out, "ann@example.com")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "normal")
}

func TestShowUser_JSONOmitsPasswordHash(t *testing.T) {
	store := fakes.NewMemoryUserStore()
	_, err := store.Create(context.Background(), domainauth.NewUser{
		Name: "Bo", Email: "bo@example.com", Number: 7, Role: domainauth.RoleAdmin, PasswordHash: "secret-hash",
	})
	require.NoError(t, err)
	admin := service.NewUserAdmin(service.UserAdminOptions{Users: store})

	var buf bytes.Buffer
	require.NoError(t, showUser(context.Background(), &buf, admin, showUserOptions{Email: "bo@example.com", JSON: true}))
	assert.NotContains(t, buf.String(), "secret-hash")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "bo@example.com", got["email"])
	assert.Equal(t, "admin", got["role"])
}

func TestPrintMigrationStatus(t *testing.T) {
	var buf bytes.Buffer
	err := printMigrationStatus(&buf, []migrate.Status{
		{Version: "0001_create_users", Applied: true},
		{Version: "0002_users_role_index", Applied: false},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "0001_create_users")
	assert.Contains(t, out, "applied")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "2 migration(s), 1 pending")
}
