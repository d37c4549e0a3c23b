package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/codigoteca/internal/apperror"
	"github.com/sakif/codigoteca/internal/service"
)

// CodigoHandler serves /api/codigos.
//
// DEPENDENCY CHAIN:
//
//	CodigoHandler (HTTP) → CodigoService (business rules) → repositories (DB)
//
// The handler never touches the database and the service never sees HTTP.
type CodigoHandler struct {
	codigos *service.CodigoService
	logger  *slog.Logger
}

func NewCodigoHandler(codigos *service.CodigoService, logger *slog.Logger) *CodigoHandler {
	return &CodigoHandler{codigos: codigos, logger: logger}
}

// createCodigoRequest is the body of POST /api/codigos. Shape is checked
// here; content rules (blank text, lengths, tag format) live in the service.
type createCodigoRequest struct {
	Title       *string  `json:"titulo" validate:"required"`
	Description *string  `json:"descripcion"`
	Code        *string  `json:"codigo" validate:"required"`
	Language    *string  `json:"lenguaje" validate:"required"`
	Tags        []string `json:"tags" validate:"omitempty,dive,max=50"`
	Type        *string  `json:"tipo"`
}

// updateCodigoRequest is the body of PUT /api/codigos/{id}. Every field is
// optional.
type updateCodigoRequest struct {
	Title       *string  `json:"titulo"`
	Description *string  `json:"descripcion"`
	Code        *string  `json:"codigo"`
	Language    *string  `json:"lenguaje"`
	Tags        []string `json:"tags" validate:"omitempty,dive,max=50"`
	Type        *string  `json:"tipo"`
}

type membershipRequest struct {
	CodigoID     int64 `json:"codigoId" validate:"required,gt=0"`
	CollectionID int64 `json:"coleccionId" validate:"required,gt=0"`
}

// HandleListMine returns the caller's own codes, newest first.
//
// HTTP: GET /api/codigos/my
func (h *CodigoHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	codigos, err := h.codigos.ListByUser(r.Context(), actor.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Codes obtained correctly", "codigos", codigos)
}

// HandleGetByID returns one code if the caller owns it or is an admin.
//
// HTTP: GET /api/codigos/{id}
func (h *CodigoHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	codigo, err := h.codigos.GetByID(r.Context(), id, actor)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Code obtained correctly", "codigo", codigo)
}

// HandleCreate stores a new code owned by the caller.
//
// HTTP: POST /api/codigos
// REQUEST BODY: {"titulo":"sum","codigo":"a+b","lenguaje":"js","tags":["math"]}
func (h *CodigoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req createCodigoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	codigo, err := h.codigos.Create(r.Context(), actor.ID, service.CodigoInput{
		Title:       req.Title,
		Description: req.Description,
		Code:        req.Code,
		Language:    req.Language,
		Tags:        req.Tags,
		Type:        req.Type,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Code created successfully", "codigo", codigo)
}

// HandleUpdate applies a partial update.
//
// HTTP: PUT /api/codigos/{id}
func (h *CodigoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req updateCodigoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	codigo, err := h.codigos.Update(r.Context(), id, actor, service.CodigoInput{
		Title:       req.Title,
		Description: req.Description,
		Code:        req.Code,
		Language:    req.Language,
		Tags:        req.Tags,
		Type:        req.Type,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Code updated successfully", "codigo", codigo)
}

// HandleDelete removes a code and its collection memberships.
//
// HTTP: DELETE /api/codigos/{id}
func (h *CodigoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	deleted, err := h.codigos.Delete(r.Context(), id, actor)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !deleted {
		writeError(w, r, h.logger, apperror.DeleteFailed("codigo", id))
		return
	}
	writeSuccess(w, http.StatusOK, "Code deleted successfully", "", nil)
}

// HandleListByTag is public: no actor is needed.
//
// HTTP: GET /api/codigos/tags/{tag}
func (h *CodigoHandler) HandleListByTag(w http.ResponseWriter, r *http.Request) {
	codigos, err := h.codigos.ListByTag(r.Context(), chi.URLParam(r, "tag"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Codes obtained correctly", "codigos", codigos)
}

// HandleAddToCollection adds a code to a collection, refreshing the added
// timestamp if it is already there.
//
// HTTP: POST /api/codigos/colecciones/add
// REQUEST BODY: {"codigoId": 1, "coleccionId": 2}
func (h *CodigoHandler) HandleAddToCollection(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req membershipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.codigos.AddToCollection(r.Context(), req.CodigoID, req.CollectionID, actor); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Code added to collection successfully", "", nil)
}

// HandleRemoveFromCollection responds 404 when the code was not in the
// collection.
//
// HTTP: POST /api/codigos/colecciones/remove
func (h *CodigoHandler) HandleRemoveFromCollection(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req membershipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	removed, err := h.codigos.RemoveFromCollection(r.Context(), req.CodigoID, req.CollectionID, actor)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !removed {
		writeError(w, r, h.logger, &apperror.AppError{
			Err:     apperror.ErrNotFound,
			Message: fmt.Sprintf("codigo %d is not in collection %d", req.CodigoID, req.CollectionID),
		})
		return
	}
	writeSuccess(w, http.StatusOK, "Code removed from collection successfully", "", nil)
}

// HandleListCollections lists the collections holding a code.
//
// HTTP: GET /api/codigos/{id}/colecciones
func (h *CodigoHandler) HandleListCollections(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	colecciones, err := h.codigos.ListCollectionsContaining(r.Context(), id, actor)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Collections obtained correctly", "colecciones", colecciones)
}
