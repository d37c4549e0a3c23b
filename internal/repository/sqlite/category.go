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

var _ repository.CategoryRepository = (*DB)(nil)

const categoryColumns = `id, nombre, descripcion, estado`

func scanCategory(row rowScanner) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.State)
	return c, err
}

func (db *DB) queryCategories(ctx context.Context, what, query string, args ...any) ([]model.Category, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %s: %w", what, err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating categories: %w", err)
	}
	return categories, nil
}

// ListCategories returns every category ordered by name.
func (db *DB) ListCategories(ctx context.Context) ([]model.Category, error) {
	return db.queryCategories(ctx, "listing categories",
		`SELECT `+categoryColumns+` FROM categorias ORDER BY nombre ASC, id ASC`,
	)
}

func (db *DB) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	c, err := scanCategory(db.conn.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categorias WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("category", id)
		}
		return nil, fmt.Errorf("sqlite: getting category %d: %w", id, err)
	}
	return &c, nil
}

func (db *DB) CreateCategory(ctx context.Context, c *model.Category) error {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO categorias (nombre, descripcion, estado) VALUES (?, ?, ?)`,
		c.Name, c.Description, string(c.State),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate(fmt.Sprintf("category %q already exists", c.Name))
		}
		return fmt.Errorf("sqlite: creating category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading category id: %w", err)
	}
	c.ID = id
	return nil
}

func (db *DB) UpdateCategory(ctx context.Context, c *model.Category) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE categorias SET nombre = ?, descripcion = ?, estado = ? WHERE id = ?`,
		c.Name, c.Description, string(c.State), c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate(fmt.Sprintf("category %q already exists", c.Name))
		}
		return fmt.Errorf("sqlite: updating category %d: %w", c.ID, err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("category", c.ID)
	}
	return nil
}

// DeleteCategory removes the category together with its codigo_categoria
// links and subscriptions (foreign key cascade).
func (db *DB) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM categorias WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting category %d: %w", id, err)
	}
	return affected(result)
}
