package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/codigoteca/internal/service"
)

// SubscriptionHandler serves /api/subscriptions.
type SubscriptionHandler struct {
	subscriptions *service.SubscriptionService
	logger        *slog.Logger
}

func NewSubscriptionHandler(subscriptions *service.SubscriptionService, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions, logger: logger}
}

type createSubscriptionRequest struct {
	UserID        int64 `json:"id_usuario" validate:"required,gt=0"`
	CategoryID    int64 `json:"id_categoria" validate:"required,gt=0"`
	Notifications *bool `json:"notificaciones"`
}

type updateSubscriptionRequest struct {
	ID            int64 `json:"id_suscripciones" validate:"required,gt=0"`
	Notifications *bool `json:"notificaciones" validate:"required"`
}

// HTTP: GET /api/subscriptions/user/{id}
func (h *SubscriptionHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	subs, err := h.subscriptions.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Subscriptions obtained correctly", "data", subs)
}

// HTTP: GET /api/subscriptions/feed/user/{id}
func (h *SubscriptionHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	feed, err := h.subscriptions.Feed(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Feed obtained correctly", "data", feed)
}

// HTTP: GET /api/subscriptions/{id}
func (h *SubscriptionHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	sub, err := h.subscriptions.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Subscription obtained correctly", "data", sub)
}

// HandleCreate defaults notificaciones to true when the body omits it.
//
// HTTP: POST /api/subscriptions
// REQUEST BODY: {"id_usuario": 1, "id_categoria": 2, "notificaciones": false}
func (h *SubscriptionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	sub, err := h.subscriptions.Create(r.Context(), req.UserID, req.CategoryID, req.Notifications)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Subscription created successfully", "data", sub)
}

// HTTP: PUT /api/subscriptions
// REQUEST BODY: {"id_suscripciones": 4, "notificaciones": false}
func (h *SubscriptionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateSubscriptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	sub, err := h.subscriptions.Update(r.Context(), req.ID, req.Notifications)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Subscription updated successfully", "data", sub)
}

// HTTP: DELETE /api/subscriptions/{id}
func (h *SubscriptionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.subscriptions.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Subscription deleted successfully", "", nil)
}
