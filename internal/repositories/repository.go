package repositories

import (
	"context"
	"errors"

	"github.com/vidcraft/backend/internal/models"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the write would violate a uniqueness constraint,
	// such as a taken username.
	ErrConflict = errors.New("record conflict")
)

// ProjectRepository defines data access for video projects. Both the memory
// and PostgreSQL implementations satisfy the same observable contract.
type ProjectRepository interface {
	CreateProject(ctx context.Context, input models.NewProject) (models.VideoProject, error)
	GetProject(ctx context.Context, id int64) (models.VideoProject, error)
	ListProjects(ctx context.Context, userID *int64) ([]models.VideoProject, error)
	UpdateProject(ctx context.Context, id int64, patch models.ProjectPatch) (models.VideoProject, error)
	DeleteProject(ctx context.Context, id int64) (bool, error)
}

// TemplateRepository defines data access for the template catalog.
type TemplateRepository interface {
	ListTemplates(ctx context.Context) ([]models.Template, error)
	GetTemplate(ctx context.Context, id int64) (models.Template, error)
	CreateTemplate(ctx context.Context, input models.NewTemplate) (models.Template, error)
	SeedTemplates(ctx context.Context, templates []models.NewTemplate) (int, error)
}

// UserRepository defines data access for user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, input models.NewUser) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// Store groups every repository a backend provides.
type Store interface {
	ProjectRepository
	TemplateRepository
	UserRepository
}
