package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vidcraft/backend/internal/logging"
	"github.com/vidcraft/backend/internal/repositories"
	"github.com/vidcraft/backend/internal/schema"
)

// ProjectHandler exposes CRUD and generation endpoints for video projects.
type ProjectHandler struct {
	Projects  ProjectStore
	Generator Generator
}

// List handles GET /api/projects with an optional userId filter.
func (h ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var userID *int64
	if raw := strings.TrimSpace(r.URL.Query().Get("userId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(ctx, w, http.StatusBadRequest, "userId must be an integer")
			return
		}
		userID = &id
	}

	projects, err := h.Projects.ListProjects(ctx, userID)
	if err != nil {
		respondInternal(ctx, w, "Failed to fetch video projects", err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, projects)
}

// Get handles GET /api/projects/{id}.
func (h ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "Invalid project id")
		return
	}

	project, err := h.Projects.GetProject(ctx, id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, "Video project not found")
	case err != nil:
		respondInternal(ctx, w, "Failed to fetch video project", err)
	default:
		respondJSON(ctx, w, http.StatusOK, project)
	}
}

// Create handles POST /api/projects.
func (h ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req schema.CreateProjectRequest
	if err := schema.Decode(r.Body, &req); err != nil {
		respondDecodeError(ctx, w, err)
		return
	}

	project, err := h.Projects.CreateProject(ctx, req.Model())
	if err != nil {
		respondInternal(ctx, w, "Failed to create video project", err)
		return
	}

	logging.FromContext(ctx).Info("project created", "projectId", project.ID)
	respondJSON(ctx, w, http.StatusCreated, project)
}

// Update handles PATCH /api/projects/{id}.
func (h ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "Invalid project id")
		return
	}

	var req schema.UpdateProjectRequest
	if err := schema.Decode(r.Body, &req); err != nil {
		respondDecodeError(ctx, w, err)
		return
	}

	project, err := h.Projects.UpdateProject(ctx, id, req.Patch())
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, "Video project not found")
	case err != nil:
		respondInternal(ctx, w, "Failed to update video project", err)
	default:
		respondJSON(ctx, w, http.StatusOK, project)
	}
}

// Delete handles DELETE /api/projects/{id}.
func (h ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "Invalid project id")
		return
	}

	deleted, err := h.Projects.DeleteProject(ctx, id)
	if err != nil {
		respondInternal(ctx, w, "Failed to delete video project", err)
		return
	}
	if !deleted {
		respondError(ctx, w, http.StatusNotFound, "Video project not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Generate handles POST /api/projects/{id}/generate. The response only
// acknowledges the request; clients poll the project for the outcome.
func (h ProjectHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "Invalid project id")
		return
	}

	if _, err := h.Generator.Start(ctx, id); err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			respondInternal(ctx, w, "Failed to start video generation", err)
			return
		}
		logging.FromContext(ctx).Warn("generation requested for unknown project", "projectId", id)
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "Video generation started"})
}
