package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/codigoteca/internal/service"
)

// CollectionHandler serves /api/collections.
type CollectionHandler struct {
	collections *service.CollectionService
	logger      *slog.Logger
}

func NewCollectionHandler(collections *service.CollectionService, logger *slog.Logger) *CollectionHandler {
	return &CollectionHandler{collections: collections, logger: logger}
}

type collectionRequest struct {
	Name        *string `json:"nombre" validate:"required"`
	Description *string `json:"descripcion"`
	Visibility  *string `json:"visibilidad" validate:"omitempty,oneof=publica privada"`
}

type addSnippetRequest struct {
	SnippetID int64 `json:"snippetId" validate:"required,gt=0"`
}

func (req collectionRequest) input() service.CollectionInput {
	return service.CollectionInput{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
	}
}

// HTTP: GET /api/collections
func (h *CollectionHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	collections, err := h.collections.ListByUser(r.Context(), actor.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Collections obtained correctly", "collections", collections)
}

// HTTP: POST /api/collections
func (h *CollectionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req collectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	collection, err := h.collections.Create(r.Context(), actor.ID, req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Collection created successfully", "collection", collection)
}

// HandleGetByID honours visibilidad: a publica collection is readable by
// anyone signed in.
//
// HTTP: GET /api/collections/{id}
func (h *CollectionHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
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

	collection, err := h.collections.GetByID(r.Context(), id, actor)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Collection obtained correctly", "collection", collection)
}

// HTTP: PUT /api/collections/{id}
func (h *CollectionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	var req collectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	collection, err := h.collections.Update(r.Context(), id, actor, req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Collection updated successfully", "collection", collection)
}

// HTTP: DELETE /api/collections/{id}
func (h *CollectionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.collections.Delete(r.Context(), id, actor); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Collection deleted successfully", "", nil)
}

// HTTP: GET /api/collections/{id}/snippets
func (h *CollectionHandler) HandleListSnippets(w http.ResponseWriter, r *http.Request) {
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

	snippets, err := h.collections.ListSnippets(r.Context(), id, actor)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Snippets obtained correctly", "snippets", snippets)
}

// HandleAddSnippet answers 409 when the snippet is already in the collection.
//
// HTTP: POST /api/collections/{id}/snippets
// REQUEST BODY: {"snippetId": 7}
func (h *CollectionHandler) HandleAddSnippet(w http.ResponseWriter, r *http.Request) {
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

	var req addSnippetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.collections.AddSnippet(r.Context(), id, req.SnippetID, actor); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Snippet added to collection successfully", "", nil)
}

// HTTP: DELETE /api/collections/{id}/snippets/{snippetId}
func (h *CollectionHandler) HandleRemoveSnippet(w http.ResponseWriter, r *http.Request) {
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
	snippetID, err := pathID(r, "snippetId")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.collections.RemoveSnippet(r.Context(), id, snippetID, actor); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Snippet removed from collection successfully", "", nil)
}
