package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/codigoteca/internal/apperror"
	"github.com/sakif/codigoteca/internal/repository"
)

var _ repository.CollectionItemRepository = (*DB)(nil)

func (db *DB) CollectionItemExists(ctx context.Context, collectionID, codigoID int64) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM coleccion_codigo WHERE coleccion_id = ? AND codigo_id = ?
		 )`,
		collectionID, codigoID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking collection item (%d, %d): %w", collectionID, codigoID, err)
	}
	return exists, nil
}

func (db *DB) InsertCollectionItem(ctx context.Context, collectionID, codigoID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO coleccion_codigo (coleccion_id, codigo_id, fecha_agregado)
		 VALUES (?, ?, ?)`,
		collectionID, codigoID, db.now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("snippet already exists in this collection")
		}
		return fmt.Errorf("sqlite: inserting collection item (%d, %d): %w", collectionID, codigoID, err)
	}
	return nil
}

// UpsertCollectionItem adds the pair, or moves its fecha_agregado to now when
// it is already present.
func (db *DB) UpsertCollectionItem(ctx context.Context, collectionID, codigoID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO coleccion_codigo (coleccion_id, codigo_id, fecha_agregado)
		 VALUES (?, ?, ?)
		 ON CONFLICT (coleccion_id, codigo_id)
		 DO UPDATE SET fecha_agregado = excluded.fecha_agregado`,
		collectionID, codigoID, db.now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting collection item (%d, %d): %w", collectionID, codigoID, err)
	}
	return nil
}

func (db *DB) RemoveCollectionItem(ctx context.Context, collectionID, codigoID int64) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM coleccion_codigo WHERE coleccion_id = ? AND codigo_id = ?`,
		collectionID, codigoID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: removing collection item (%d, %d): %w", collectionID, codigoID, err)
	}
	return affected(result)
}
