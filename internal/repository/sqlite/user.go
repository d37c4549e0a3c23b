package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/codigoteca/internal/apperror"
	"github.com/sakif/codigoteca/internal/model"
	"github.com/sakif/codigoteca/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id_usuario, nombre_completo, email, contrasena, rol, fecha_creacion`

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

func (db *DB) queryUsers(ctx context.Context, what, query string, args ...any) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %s: %w", what, err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

// CreateUser inserts u and fills in its ID and creation time.
// A taken email is reported as apperror.ErrConflict.
func (db *DB) CreateUser(ctx context.Context, u *model.User) error {
	now := db.now()
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO usuarios (nombre_completo, email, contrasena, rol, fecha_creacion)
		 VALUES (?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, u.Role, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate(fmt.Sprintf("email %q is already registered", u.Email))
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", u.Email, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading user id: %w", err)
	}
	u.ID = id
	u.CreatedAt = now
	return nil
}

// GetUserByID retrieves a user by ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM usuarios WHERE id_usuario = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return &u, nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM usuarios WHERE email = ?`, email,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return &u, nil
}

// UpdateUser writes name, email, role and password hash.
func (db *DB) UpdateUser(ctx context.Context, u *model.User) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE usuarios
		 SET nombre_completo = ?, email = ?, contrasena = ?, rol = ?
		 WHERE id_usuario = ?`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate(fmt.Sprintf("email %q is already registered", u.Email))
		}
		return fmt.Errorf("sqlite: updating user %d: %w", u.ID, err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("user", u.ID)
	}
	return nil
}

// DeleteUser removes the account. Codes, collections and subscriptions are
// removed with it through the foreign key cascade.
func (db *DB) DeleteUser(ctx context.Context, id int64) (bool, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM usuarios WHERE id_usuario = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}
	return affected(result)
}

// SearchUsers matches q case-insensitively against name and email.
func (db *DB) SearchUsers(ctx context.Context, q string) ([]model.User, error) {
	pattern := "%" + q + "%"
	return db.queryUsers(ctx, "searching users",
		`SELECT `+userColumns+`
		 FROM usuarios
		 WHERE nombre_completo LIKE ? OR email LIKE ?
		 ORDER BY nombre_completo ASC, id_usuario ASC`,
		pattern, pattern,
	)
}

func (db *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	return db.queryUsers(ctx, "listing users",
		`SELECT `+userColumns+` FROM usuarios ORDER BY id_usuario ASC`,
	)
}
