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

var _ repository.CodigoRepository = (*DB)(nil)

const codigoColumns = `id, usuario_id, titulo, descripcion, codigo, lenguaje, tags, tipo`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCodigo(row rowScanner, extra ...any) (model.Codigo, error) {
	var (
		c                model.Codigo
		desc, tags, tipo sql.NullString
	)
	dest := []any{&c.ID, &c.UserID, &c.Title, &desc, &c.Code, &c.Language, &tags, &tipo}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return model.Codigo{}, err
	}
	c.Description = stringPtr(desc)
	c.Tags = stringPtr(tags)
	c.Type = stringPtr(tipo)
	return c, nil
}

func (db *DB) queryCodigos(ctx context.Context, what, query string, args ...any) ([]model.Codigo, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %s: %w", what, err)
	}
	defer rows.Close()

	codigos := make([]model.Codigo, 0)
	for rows.Next() {
		c, err := scanCodigo(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning codigo row: %w", err)
		}
		codigos = append(codigos, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating codigos: %w", err)
	}
	return codigos, nil
}

// ListCodigosByUser returns the user's snippets, newest id first.
func (db *DB) ListCodigosByUser(ctx context.Context, userID int64) ([]model.Codigo, error) {
	return db.queryCodigos(ctx, "listing codigos by user",
		`SELECT `+codigoColumns+`
		 FROM codigo
		 WHERE usuario_id = ?
		 ORDER BY id DESC`,
		userID,
	)
}

func (db *DB) GetCodigoByID(ctx context.Context, id int64) (*model.Codigo, error) {
	c, err := scanCodigo(db.conn.QueryRowContext(ctx,
		`SELECT `+codigoColumns+` FROM codigo WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("codigo", id)
		}
		return nil, fmt.Errorf("sqlite: getting codigo %d: %w", id, err)
	}
	return &c, nil
}

// CreateCodigo inserts the snippet and fills in its generated ID.
func (db *DB) CreateCodigo(ctx context.Context, c *model.Codigo) error {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO codigo (usuario_id, titulo, descripcion, codigo, lenguaje, tags, tipo)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.UserID,
		c.Title,
		nullString(c.Description),
		c.Code,
		c.Language,
		nullString(c.Tags),
		nullString(c.Type),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating codigo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading codigo id: %w", err)
	}
	c.ID = id
	return nil
}

// UpdateCodigo overwrites every mutable column of the snippet.
func (db *DB) UpdateCodigo(ctx context.Context, c *model.Codigo) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE codigo
		 SET titulo = ?, descripcion = ?, codigo = ?, lenguaje = ?, tags = ?, tipo = ?
		 WHERE id = ?`,
		c.Title,
		nullString(c.Description),
		c.Code,
		c.Language,
		nullString(c.Tags),
		nullString(c.Type),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating codigo %d: %w", c.ID, err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("codigo", c.ID)
	}
	return nil
}

// DeleteCodigo removes every coleccion_codigo row pointing at the snippet and
// then the snippet itself, inside one transaction.
func (db *DB) DeleteCodigo(ctx context.Context, id int64) (bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sqlite: beginning delete of codigo %d: %w", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM coleccion_codigo WHERE codigo_id = ?`, id,
	); err != nil {
		return false, fmt.Errorf("sqlite: unlinking codigo %d from collections: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM codigo WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting codigo %d: %w", id, err)
	}
	deleted, err := affected(result)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sqlite: committing delete of codigo %d: %w", id, err)
	}
	return deleted, nil
}

// ListCodigosByTag matches tag against whole comma-delimited elements of the
// tags column, so "mat" does not match "math".
func (db *DB) ListCodigosByTag(ctx context.Context, tag string) ([]model.Codigo, error) {
	return db.queryCodigos(ctx, "listing codigos by tag",
		`SELECT `+codigoColumns+`
		 FROM codigo
		 WHERE tags IS NOT NULL
		   AND instr(',' || tags || ',', ',' || ? || ',') > 0
		 ORDER BY id DESC`,
		tag,
	)
}

// ListCollectionsByCodigo returns the collections containing the snippet,
// most recently added first.
func (db *DB) ListCollectionsByCodigo(ctx context.Context, codigoID int64) ([]model.CollectionMembership, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.usuario_id, c.nombre, c.descripcion, c.visibilidad, cc.fecha_agregado
		 FROM colecciones c
		 INNER JOIN coleccion_codigo cc ON c.id = cc.coleccion_id
		 WHERE cc.codigo_id = ?
		 ORDER BY cc.fecha_agregado DESC, c.id DESC`,
		codigoID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing collections of codigo %d: %w", codigoID, err)
	}
	defer rows.Close()

	memberships := make([]model.CollectionMembership, 0)
	for rows.Next() {
		var m model.CollectionMembership
		col, err := scanCollection(rows, &m.AddedAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning collection row: %w", err)
		}
		m.Collection = col
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating collections: %w", err)
	}
	return memberships, nil
}
