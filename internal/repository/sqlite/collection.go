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

var _ repository.CollectionRepository = (*DB)(nil)

const collectionColumns = `id, usuario_id, nombre, descripcion, visibilidad`

func scanCollection(row rowScanner, extra ...any) (model.Collection, error) {
	var (
		c    model.Collection
		desc sql.NullString
	)
	dest := []any{&c.ID, &c.UserID, &c.Name, &desc, &c.Visibility}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return model.Collection{}, err
	}
	c.Description = stringPtr(desc)
	return c, nil
}

func (db *DB) ListCollectionsByUser(ctx context.Context, userID int64) ([]model.Collection, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+collectionColumns+`
		 FROM colecciones
		 WHERE usuario_id = ?
		 ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing collections by user: %w", err)
	}
	defer rows.Close()

	collections := make([]model.Collection, 0)
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning collection row: %w", err)
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating collections: %w", err)
	}
	return collections, nil
}

func (db *DB) GetCollectionByID(ctx context.Context, id int64) (*model.Collection, error) {
	c, err := scanCollection(db.conn.QueryRowContext(ctx,
		`SELECT `+collectionColumns+` FROM colecciones WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("collection", id)
		}
		return nil, fmt.Errorf("sqlite: getting collection %d: %w", id, err)
	}
	return &c, nil
}

func (db *DB) CreateCollection(ctx context.Context, c *model.Collection) error {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO colecciones (usuario_id, nombre, descripcion, visibilidad)
		 VALUES (?, ?, ?, ?)`,
		c.UserID, c.Name, nullString(c.Description), string(c.Visibility),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating collection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading collection id: %w", err)
	}
	c.ID = id
	return nil
}

func (db *DB) UpdateCollection(ctx context.Context, c *model.Collection) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE colecciones
		 SET nombre = ?, descripcion = ?, visibilidad = ?
		 WHERE id = ?`,
		c.Name, nullString(c.Description), string(c.Visibility), c.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating collection %d: %w", c.ID, err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("collection", c.ID)
	}
	return nil
}

// DeleteCollection removes the collection. Its coleccion_codigo rows go with
// it through the foreign key cascade.
func (db *DB) DeleteCollection(ctx context.Context, id int64) (bool, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM colecciones WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting collection %d: %w", id, err)
	}
	return affected(result)
}

// ListCodigosByCollection returns the collection's snippets, most recently
// added first.
func (db *DB) ListCodigosByCollection(ctx context.Context, collectionID int64) ([]model.CollectionItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.usuario_id, c.titulo, c.descripcion, c.codigo, c.lenguaje, c.tags, c.tipo, cc.fecha_agregado
		 FROM codigo c
		 INNER JOIN coleccion_codigo cc ON c.id = cc.codigo_id
		 WHERE cc.coleccion_id = ?
		 ORDER BY cc.fecha_agregado DESC, c.id DESC`,
		collectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing codigos of collection %d: %w", collectionID, err)
	}
	defer rows.Close()

	items := make([]model.CollectionItem, 0)
	for rows.Next() {
		var item model.CollectionItem
		c, err := scanCodigo(rows, &item.AddedAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning collection item: %w", err)
		}
		item.Codigo = c
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating collection items: %w", err)
	}
	return items, nil
}
