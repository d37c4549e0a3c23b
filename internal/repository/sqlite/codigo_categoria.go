package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/codigoteca/internal/model"
	"github.com/sakif/codigoteca/internal/repository"
)

var _ repository.CodigoCategoriaRepository = (*DB)(nil)

// LinkCategory is idempotent: linking an existing pair is a no-op. A missing
// code or category surfaces as a foreign key failure.
func (db *DB) LinkCategory(ctx context.Context, codigoID, categoryID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO codigo_categoria (codigo_id, categoria_id) VALUES (?, ?)`,
		codigoID, categoryID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: linking codigo %d to category %d: %w", codigoID, categoryID, err)
	}
	return nil
}

// UnlinkCategory is idempotent: unlinking an absent pair is a no-op.
func (db *DB) UnlinkCategory(ctx context.Context, codigoID, categoryID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM codigo_categoria WHERE codigo_id = ? AND categoria_id = ?`,
		codigoID, categoryID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: unlinking codigo %d from category %d: %w", codigoID, categoryID, err)
	}
	return nil
}

func (db *DB) ListCategoriesByCodigo(ctx context.Context, codigoID int64) ([]model.Category, error) {
	return db.queryCategories(ctx, "listing categories of codigo",
		`SELECT ca.id, ca.nombre, ca.descripcion, ca.estado
		 FROM categorias ca
		 INNER JOIN codigo_categoria cc ON ca.id = cc.categoria_id
		 WHERE cc.codigo_id = ?
		 ORDER BY ca.nombre ASC, ca.id ASC`,
		codigoID,
	)
}

func (db *DB) ListCodigosByCategory(ctx context.Context, categoryID int64) ([]model.Codigo, error) {
	return db.queryCodigos(ctx, "listing codigos of category",
		`SELECT c.id, c.usuario_id, c.titulo, c.descripcion, c.codigo, c.lenguaje, c.tags, c.tipo
		 FROM codigo c
		 INNER JOIN codigo_categoria cc ON c.id = cc.codigo_id
		 WHERE cc.categoria_id = ?
		 ORDER BY c.id DESC`,
		categoryID,
	)
}
