package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/codigoteca/internal/service"
)

// CategoryHandler serves /api/categories and /api/codigos-categorias.
// Both operate on the same taxonomy, so they share a handler.
type CategoryHandler struct {
	categories *service.CategoryService
	links      *service.CodigoCategoriaService
	logger     *slog.Logger
}

func NewCategoryHandler(
	categories *service.CategoryService,
	links *service.CodigoCategoriaService,
	logger *slog.Logger,
) *CategoryHandler {
	return &CategoryHandler{categories: categories, links: links, logger: logger}
}

// createCategoryRequest leaves content checks (blank text, estado values) to
// the service so create and update report them the same way.
type createCategoryRequest struct {
	Name        *string `json:"nombre" validate:"required"`
	Description *string `json:"descripcion" validate:"required"`
	State       *string `json:"estado" validate:"required"`
}

type updateCategoryRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
	createCategoryRequest
}

type linkRequest struct {
	CodigoID   int64 `json:"codigoId" validate:"required,gt=0"`
	CategoryID int64 `json:"categoriaId" validate:"required,gt=0"`
}

func (req createCategoryRequest) input() service.CategoryInput {
	return service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		State:       req.State,
	}
}

// HTTP: GET /api/categories
func (h *CategoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Categories obtained correctly", "data", categories)
}

// HTTP: GET /api/categories/{id}
func (h *CategoryHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	category, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Category obtained correctly", "data", category)
}

// HTTP: POST /api/categories
func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	category, err := h.categories.Create(r.Context(), req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Category created successfully", "data", category)
}

// HandleUpdate takes the id in the body, not the path.
//
// HTTP: PUT /api/categories
// REQUEST BODY: {"id": 3, "nombre": "go", "descripcion": "...", "estado": "activo"}
func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	category, err := h.categories.Update(r.Context(), req.ID, req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Category updated successfully", "data", category)
}

// HTTP: DELETE /api/categories/{id}
func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Category deleted successfully", "", nil)
}

// HandleListByCodigo serves both GET /api/categories/code/{id} and
// GET /api/codigos-categorias/codigo/{codigoId}; param names the URL
// parameter holding the code id.
func (h *CategoryHandler) HandleListByCodigo(param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codigoID, err := pathID(r, param)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}

		categories, err := h.links.CategoriesOf(r.Context(), codigoID)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Categories obtained correctly", "data", categories)
	}
}

// HTTP: GET /api/codigos-categorias/categoria/{categoriaId}
func (h *CategoryHandler) HandleListCodigos(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "categoriaId")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	codigos, err := h.links.CodesOf(r.Context(), categoryID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Codes obtained correctly", "data", codigos)
}

// HTTP: POST /api/codigos-categorias/add
func (h *CategoryHandler) HandleLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.links.Link(r.Context(), req.CodigoID, req.CategoryID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Code added to category successfully", "", nil)
}

// HTTP: DELETE /api/codigos-categorias/remove
func (h *CategoryHandler) HandleUnlink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.links.Unlink(r.Context(), req.CodigoID, req.CategoryID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Code removed from category successfully", "", nil)
}
