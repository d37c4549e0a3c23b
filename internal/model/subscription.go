package model

import "time"

// Subscription links a user to a category they want to follow.
type Subscription struct {
	ID            int64     `json:"id_suscripciones"`
	UserID        int64     `json:"id_usuario"`
	CategoryID    int64     `json:"id_categoria"`
	Notifications bool      `json:"notificaciones"`
	CreatedAt     time.Time `json:"fecha_suscripcion"`
}

// FeedItem is one snippet surfaced in a user's feed, together with the
// subscribed category that brought it there.
type FeedItem struct {
	Codigo
	CategoryID   int64  `json:"id_categoria"`
	CategoryName string `json:"categoria"`
}
