package http

import (
	"net/http"

	"budget/internal/core"
)

type categoryRequest struct {
	Name   string `json:"name"`
	Parent string `json:"parent"`
}

type categoryListResponse struct {
	Categories []string          `json:"categories"`
	Tree       core.CategoryTree `json:"tree"`
}

type categoryAddResponse struct {
	Added bool `json:"added"`
	categoryListResponse
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	resp, err := s.categoryList(r)
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(resp).Write(w)
}

// handleAddCategory answers 201 for a new category and 200 when it already
// existed; both return the updated list.
func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	name := sanitizeInput(req.Name)
	if name == "" {
		UnprocessableEntityError("category name is required").Write(w)
		return
	}
	added, err := s.deps.Categories.Add(r.Context(), name, sanitizeInput(req.Parent))
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}
	list, err := s.categoryList(r)
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	NewJSONResponse().
		Status(status).
		Body(categoryAddResponse{Added: added, categoryListResponse: list}).
		Write(w)
}

func (s *Server) categoryList(r *http.Request) (categoryListResponse, error) {
	cats, err := s.deps.Categories.List(r.Context())
	if err != nil {
		return categoryListResponse{}, err
	}
	if cats == nil {
		cats = []string{}
	}
	return categoryListResponse{Categories: cats, Tree: core.StructureCategories(cats)}, nil
}
