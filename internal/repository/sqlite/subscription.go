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

var _ repository.SubscriptionRepository = (*DB)(nil)

const subscriptionColumns = `id_suscripciones, id_usuario, id_categoria, notificaciones, fecha_suscripcion`

func scanSubscription(row rowScanner) (model.Subscription, error) {
	var s model.Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.CategoryID, &s.Notifications, &s.CreatedAt)
	return s, err
}

func (db *DB) ListSubscriptionsByUser(ctx context.Context, userID int64) ([]model.Subscription, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+subscriptionColumns+`
		 FROM suscripciones
		 WHERE id_usuario = ?
		 ORDER BY fecha_suscripcion DESC, id_suscripciones DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing subscriptions by user: %w", err)
	}
	defer rows.Close()

	subs := make([]model.Subscription, 0)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning subscription row: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating subscriptions: %w", err)
	}
	return subs, nil
}

func (db *DB) GetSubscriptionByID(ctx context.Context, id int64) (*model.Subscription, error) {
	s, err := scanSubscription(db.conn.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM suscripciones WHERE id_suscripciones = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("subscription", id)
		}
		return nil, fmt.Errorf("sqlite: getting subscription %d: %w", id, err)
	}
	return &s, nil
}

// CreateSubscription stores s and fills in its ID and creation time.
func (db *DB) CreateSubscription(ctx context.Context, s *model.Subscription) error {
	now := db.now()
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO suscripciones (id_usuario, id_categoria, notificaciones, fecha_suscripcion)
		 VALUES (?, ?, ?, ?)`,
		s.UserID, s.CategoryID, s.Notifications, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("user is already subscribed to this category")
		}
		return fmt.Errorf("sqlite: creating subscription: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading subscription id: %w", err)
	}
	s.ID = id
	s.CreatedAt = now
	return nil
}

// UpdateSubscription only changes the notification preference.
func (db *DB) UpdateSubscription(ctx context.Context, s *model.Subscription) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE suscripciones SET notificaciones = ? WHERE id_suscripciones = ?`,
		s.Notifications, s.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating subscription %d: %w", s.ID, err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("subscription", s.ID)
	}
	return nil
}

func (db *DB) DeleteSubscription(ctx context.Context, id int64) (bool, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM suscripciones WHERE id_suscripciones = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting subscription %d: %w", id, err)
	}
	return affected(result)
}

// FeedByUser joins the user's subscriptions to active categories and from
// there to linked codes. A code linked to several subscribed categories shows
// up once per category.
func (db *DB) FeedByUser(ctx context.Context, userID int64) ([]model.FeedItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.usuario_id, c.titulo, c.descripcion, c.codigo, c.lenguaje, c.tags, c.tipo,
		        ca.id, ca.nombre
		 FROM suscripciones s
		 INNER JOIN categorias ca ON ca.id = s.id_categoria
		 INNER JOIN codigo_categoria cc ON cc.categoria_id = ca.id
		 INNER JOIN codigo c ON c.id = cc.codigo_id
		 WHERE s.id_usuario = ? AND ca.estado = 'activo'
		 ORDER BY c.id DESC, ca.id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: building feed for user %d: %w", userID, err)
	}
	defer rows.Close()

	feed := make([]model.FeedItem, 0)
	for rows.Next() {
		var item model.FeedItem
		c, err := scanCodigo(rows, &item.CategoryID, &item.CategoryName)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning feed row: %w", err)
		}
		item.Codigo = c
		feed = append(feed, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating feed: %w", err)
	}
	return feed, nil
}
