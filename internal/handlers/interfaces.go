package handlers

import (
	"context"

	"github.com/vidcraft/backend/internal/models"
)

// ProjectStore captures the persistence operations required by the project handlers.
type ProjectStore interface {
	CreateProject(ctx context.Context, input models.NewProject) (models.VideoProject, error)
	GetProject(ctx context.Context, id int64) (models.VideoProject, error)
	ListProjects(ctx context.Context, userID *int64) ([]models.VideoProject, error)
	UpdateProject(ctx context.Context, id int64, patch models.ProjectPatch) (models.VideoProject, error)
	DeleteProject(ctx context.Context, id int64) (bool, error)
}

// TemplateCatalog serves the template gallery.
type TemplateCatalog interface {
	ListTemplates(ctx context.Context) ([]models.Template, error)
	GetTemplate(ctx context.Context, id int64) (models.Template, error)
	CreateTemplate(ctx context.Context, input models.NewTemplate) (models.Template, error)
}

// Generator kicks off the simulated rendering of a project.
type Generator interface {
	Start(ctx context.Context, projectID int64) (models.VideoProject, error)
}
