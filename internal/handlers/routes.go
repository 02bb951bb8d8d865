package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{Backend: deps.Backend}
	templates := TemplateHandler{Templates: deps.Templates}
	projects := ProjectHandler{Projects: deps.Projects, Generator: deps.Generator}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("GET /api/templates", templates.List)
	mux.HandleFunc("POST /api/templates", templates.Create)
	mux.HandleFunc("GET /api/templates/{id}", templates.Get)

	mux.HandleFunc("GET /api/projects", projects.List)
	mux.HandleFunc("POST /api/projects", projects.Create)
	mux.HandleFunc("GET /api/projects/{id}", projects.Get)
	mux.HandleFunc("PATCH /api/projects/{id}", projects.Update)
	mux.HandleFunc("DELETE /api/projects/{id}", projects.Delete)
	mux.HandleFunc("POST /api/projects/{id}/generate", projects.Generate)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Projects  ProjectStore
	Templates TemplateCatalog
	Generator Generator
	Backend   string
}
