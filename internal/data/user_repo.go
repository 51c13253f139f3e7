package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/target/authgate/internal/data/pgxutil"
	domainauth "github.com/target/authgate/internal/domain/auth"
	apperrors "github.com/target/authgate/internal/errors"
	"github.com/target/authgate/internal/ports"
)

var _ ports.UserStore = (*UserRepo)(nil)

// UserRepo provides database operations for users.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a new UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

// userRow mirrors the users table for pgx.RowToStructByName.
type userRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Number       int64     `db:"number"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toDomain() domainauth.User {
	return domainauth.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Number:       r.Number,
		Role:         domainauth.ParseRole(r.Role),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const (
	userColumns = `id, name, email, password_hash, number, role, created_at, updated_at`

	userInsertQuery = `
		INSERT INTO users (id, name, email, password_hash, number, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING ` + userColumns

	userGetByIDQuery = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	userGetByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	userExistsByNumberQuery = `SELECT EXISTS(SELECT 1 FROM users WHERE number = $1)`

	userUpdateRoleQuery = `
		UPDATE users SET role = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + userColumns

	userDeleteQuery = `DELETE FROM users WHERE id = $1`
)

// Create inserts a new user. The email is stored normalized; unique violations surface as
// Conflict errors with Field set to "email" or "number".
func (r *UserRepo) Create(ctx context.Context, u domainauth.NewUser) (domainauth.User, error) {
	role := u.Role
	if !role.Valid() {
		role = domainauth.RoleNormal
	}
	now := r.timeProvider.Now().UTC()

	var out domainauth.User
	err := r.queryOne(ctx, userInsertQuery, &out,
		uuid.NewString(),
		u.Name,
		domainauth.NormalizeEmail(u.Email),
		u.PasswordHash,
		u.Number,
		string(role),
		now,
	)
	if err != nil {
		return domainauth.User{}, fmt.Errorf("create user: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domainauth.User, error) {
	var out domainauth.User
	if err := r.queryOne(ctx, userGetByEmailQuery, &out, domainauth.NormalizeEmail(email)); err != nil {
		return domainauth.User{}, fmt.Errorf("get user by email: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// GetByID retrieves a user by ID. IDs that are not UUIDs cannot exist and report NotFound.
func (r *UserRepo) GetByID(ctx context.Context, id string) (domainauth.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domainauth.User{}, apperrors.NotFound("User not found")
	}
	var out domainauth.User
	if err := r.queryOne(ctx, userGetByIDQuery, &out, id); err != nil {
		return domainauth.User{}, fmt.Errorf("get user by id: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// ExistsByNumber reports whether any user already holds number.
func (r *UserRepo) ExistsByNumber(ctx context.Context, number int64) (bool, error) {
	var exists bool
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, userExistsByNumberQuery, number).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("check user number: %w", apperrors.MapDBError(err))
	}
	return exists, nil
}

// UpdateRole changes a user's role and returns the updated record.
func (r *UserRepo) UpdateRole(ctx context.Context, id string, role domainauth.Role) (domainauth.User, error) {
	if !role.Valid() {
		return domainauth.User{}, apperrors.ValidationField("role", "role must be admin or normal")
	}
	if _, err := uuid.Parse(id); err != nil {
		return domainauth.User{}, apperrors.NotFound("User not found")
	}

	var out domainauth.User
	if err := r.queryOne(ctx, userUpdateRoleQuery, &out, id, string(role), r.timeProvider.Now().UTC()); err != nil {
		return domainauth.User{}, fmt.Errorf("update user role: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// Delete removes a user by ID.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NotFound("User not found")
	}

	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, userDeleteQuery, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", apperrors.MapDBError(err))
	}
	if rows == 0 {
		return apperrors.NotFound("User not found")
	}
	return nil
}

// queryOne executes q and scans exactly one users row into out.
func (r *UserRepo) queryOne(ctx context.Context, q string, out *domainauth.User, args ...any) error {
	if r.DB == nil {
		return errors.New("user repo: nil database handle")
	}
	return pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
		if err != nil {
			return err
		}
		*out = row.toDomain()
		return nil
	})
}
