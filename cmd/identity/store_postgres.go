package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"gate/cmd/security/password"
)

// PostgresStore implements user persistence over PostgreSQL.
//
// Notes:
// - The pgx pool is owned by the caller; this store must NOT close it.
// - Usernames and emails are stored normalized (case-insensitive lookup).
// - Errors are mapped to identity sentinel kinds where appropriate.
type PostgresStore struct {
	pool      *pgxpool.Pool
	passwords password.Config
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, pw password.Config) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return &PostgresStore{pool: pool, passwords: pw}, nil
}

const userColumns = `id, username, email, password_hash, role, active, created_at, updated_at, last_login`

// CreateUser hashes the password and inserts a new user row.
func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if s == nil || s.pool == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	username := NormalizeUsername(in.Username)
	email := NormalizeEmail(in.Email)

	if username == "" {
		return User{}, invalid(op, "username is required")
	}
	if email == "" {
		return User{}, invalid(op, "email is required")
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	role := in.Role
	if role == "" {
		role = RoleUser
	}

	pwHash, err := s.passwords.Hash(in.Password)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooShort) || errors.Is(err, password.ErrPasswordTooLong) {
			return User{}, invalid(op, err.Error())
		}
		return User{}, err
	}

	userID, err := NewULID(now)
	if err != nil {
		return User{}, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO users (
		     id, username, email, password_hash, role, active, created_at, updated_at
		   ) VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)`,
		userID, username, email, pwHash, string(role), now,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return User{}, ConflictError{Op: op, Field: field}
		}
		return User{}, err
	}

	return User{
		ID:           userID,
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetUserByID fetches a user by primary key.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	if s == nil || s.pool == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if strings.TrimSpace(id) == "" {
		return User{}, invalid(op, "missing id")
	}

	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(op, row)
}

// GetUserByUsername fetches a user by its normalized username.
func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (User, error) {
	const op = "identity.GetUserByUsername"

	if s == nil || s.pool == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	username = NormalizeUsername(username)
	if username == "" {
		return User{}, invalid(op, "missing username")
	}

	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(op, row)
}

// ListUsers returns one page of users ordered by creation time, plus the total count.
func (s *PostgresStore) ListUsers(ctx context.Context, in ListUsersInput) ([]User, int64, error) {
	const op = "identity.ListUsers"

	if s == nil || s.pool == nil {
		return nil, 0, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if in.Page < 0 || in.Size <= 0 {
		return nil, 0, invalid(op, "invalid page request")
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+`
		   FROM users
		  ORDER BY created_at ASC, id ASC
		  LIMIT $1 OFFSET $2`,
		in.Size, in.Page*in.Size,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(op, rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// TouchLastLogin stamps last_login; missing users are reported as ErrNotFound.
func (s *PostgresStore) TouchLastLogin(ctx context.Context, id string, now time.Time) error {
	const op = "identity.TouchLastLogin"

	if s == nil || s.pool == nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if strings.TrimSpace(id) == "" {
		return invalid(op, "missing id")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	ct, err := s.pool.Exec(ctx,
		`UPDATE users SET last_login = $1, updated_at = $1 WHERE id = $2`,
		now, id,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return notFound(op)
	}
	return nil
}

// ---- helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(op string, row rowScanner) (User, error) {
	var (
		u         User
		role      string
		lastLogin *time.Time
	)
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&role,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
		&lastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, notFound(op)
		}
		return User{}, err
	}
	u.Role = ParseRole(role)
	u.LastLogin = lastLogin
	return u, nil
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	// Prefer stable schema constraint names. Fall back to heuristic substring matching.
	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))

	switch c {
	case "uq_users_username":
		return "username", true
	case "uq_users_email":
		return "email", true
	default:
		switch {
		case strings.Contains(c, "username"):
			return "username", true
		case strings.Contains(c, "email"):
			return "email", true
		default:
			return "unique", true
		}
	}
}
