package handlers

import (
	"errors"
	"net/http"

	"github.com/vidcraft/backend/internal/repositories"
	"github.com/vidcraft/backend/internal/schema"
)

// TemplateHandler serves the template gallery.
type TemplateHandler struct {
	Templates TemplateCatalog
}

// List handles GET /api/templates.
func (h TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	templates, err := h.Templates.ListTemplates(ctx)
	if err != nil {
		respondInternal(ctx, w, "Failed to fetch templates", err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, templates)
}

// Get handles GET /api/templates/{id}.
func (h TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "Invalid template id")
		return
	}

	template, err := h.Templates.GetTemplate(ctx, id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, "Template not found")
	case err != nil:
		respondInternal(ctx, w, "Failed to fetch template", err)
	default:
		respondJSON(ctx, w, http.StatusOK, template)
	}
}

// Create handles POST /api/templates.
func (h TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req schema.CreateTemplateRequest
	if err := schema.Decode(r.Body, &req); err != nil {
		respondDecodeError(ctx, w, err)
		return
	}

	template, err := h.Templates.CreateTemplate(ctx, req.Model())
	if err != nil {
		respondInternal(ctx, w, "Failed to create template", err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, template)
}
