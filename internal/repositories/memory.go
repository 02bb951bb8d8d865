package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vidcraft/backend/internal/models"
)

// MemoryStore keeps every record in process memory. Data does not survive a restart.
type MemoryStore struct {
	mu sync.RWMutex

	projects  map[int64]models.VideoProject
	templates map[int64]models.Template
	users     map[int64]models.User

	nextProjectID  int64
	nextTemplateID int64
	nextUserID     int64

	now func() time.Time
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects:       make(map[int64]models.VideoProject),
		templates:      make(map[int64]models.Template),
		users:          make(map[int64]models.User),
		nextProjectID:  1,
		nextTemplateID: 1,
		nextUserID:     1,
		now:            time.Now,
	}
}

// WithNowFunc allows tests to override the time source.
func (s *MemoryStore) WithNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// CreateProject stores a new project with defaults applied.
func (s *MemoryStore) CreateProject(_ context.Context, input models.NewProject) (models.VideoProject, error) {
	input = input.WithDefaults()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timestamp()
	project := models.VideoProject{
		ID:           s.nextProjectID,
		Title:        input.Title,
		Script:       input.Script,
		Duration:     input.Duration,
		Style:        input.Style,
		AspectRatio:  input.AspectRatio,
		VoiceOver:    input.VoiceOver,
		Template:     input.Template,
		Status:       input.Status,
		VideoURL:     input.VideoURL,
		ThumbnailURL: input.ThumbnailURL,
		UserID:       input.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}.Clone()
	s.nextProjectID++

	s.projects[project.ID] = project
	return project.Clone(), nil
}

// GetProject returns the project or ErrNotFound.
func (s *MemoryStore) GetProject(_ context.Context, id int64) (models.VideoProject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[id]
	if !ok {
		return models.VideoProject{}, ErrNotFound
	}
	return project.Clone(), nil
}

// ListProjects returns projects newest first, optionally restricted to a single user.
func (s *MemoryStore) ListProjects(_ context.Context, userID *int64) ([]models.VideoProject, error) {
	s.mu.RLock()
	projects := make([]models.VideoProject, 0, len(s.projects))
	for _, project := range s.projects {
		if userID != nil && (project.UserID == nil || *project.UserID != *userID) {
			continue
		}
		projects = append(projects, project.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(projects, func(i, j int) bool {
		if !projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].CreatedAt.After(projects[j].CreatedAt)
		}
		return projects[i].ID > projects[j].ID
	})

	return projects, nil
}

// UpdateProject merges the patch into an existing project and refreshes UpdatedAt.
func (s *MemoryStore) UpdateProject(_ context.Context, id int64, patch models.ProjectPatch) (models.VideoProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.projects[id]
	if !ok {
		return models.VideoProject{}, ErrNotFound
	}

	patch.Apply(&project)
	project.UpdatedAt = nextUpdatedAt(project.UpdatedAt, s.timestamp())

	s.projects[id] = project
	return project.Clone(), nil
}

// DeleteProject removes the project, reporting whether anything was deleted.
func (s *MemoryStore) DeleteProject(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return false, nil
	}
	delete(s.projects, id)
	return true, nil
}

// ListTemplates returns active templates in catalog order.
func (s *MemoryStore) ListTemplates(_ context.Context) ([]models.Template, error) {
	s.mu.RLock()
	templates := make([]models.Template, 0, len(s.templates))
	for _, tmpl := range s.templates {
		if tmpl.IsActive == 1 {
			templates = append(templates, tmpl)
		}
	}
	s.mu.RUnlock()

	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

// GetTemplate returns a template regardless of its active flag.
func (s *MemoryStore) GetTemplate(_ context.Context, id int64) (models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmpl, ok := s.templates[id]
	if !ok {
		return models.Template{}, ErrNotFound
	}
	return tmpl, nil
}

// CreateTemplate stores a new catalog entry.
func (s *MemoryStore) CreateTemplate(_ context.Context, input models.NewTemplate) (models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createTemplateLocked(input), nil
}

// SeedTemplates inserts the templates whose names are not yet in the catalog.
func (s *MemoryStore) SeedTemplates(_ context.Context, templates []models.NewTemplate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{}, len(s.templates))
	for _, tmpl := range s.templates {
		existing[tmpl.Name] = struct{}{}
	}

	inserted := 0
	for _, input := range templates {
		if _, ok := existing[input.Name]; ok {
			continue
		}
		s.createTemplateLocked(input)
		existing[input.Name] = struct{}{}
		inserted++
	}
	return inserted, nil
}

func (s *MemoryStore) createTemplateLocked(input models.NewTemplate) models.Template {
	tmpl := models.Template{
		ID:           s.nextTemplateID,
		Name:         input.Name,
		Description:  input.Description,
		ThumbnailURL: input.ThumbnailURL,
		Category:     input.Category,
		IsActive:     input.IsActive,
	}
	s.nextTemplateID++
	s.templates[tmpl.ID] = tmpl
	return tmpl
}

// CreateUser stores a new user, rejecting duplicate usernames with ErrConflict.
func (s *MemoryStore) CreateUser(_ context.Context, input models.NewUser) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == input.Username {
			return models.User{}, ErrConflict
		}
	}

	user := models.User{ID: s.nextUserID, Username: input.Username, Password: input.PasswordHash}
	s.nextUserID++
	s.users[user.ID] = user
	return user, nil
}

// GetUser returns the user or ErrNotFound.
func (s *MemoryStore) GetUser(_ context.Context, id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

// GetUserByUsername returns the user with the given username or ErrNotFound.
func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

// timestamp is truncated to the precision PostgreSQL stores so both backends agree.
func (s *MemoryStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// nextUpdatedAt keeps UpdatedAt strictly increasing even when the clock has not advanced.
func nextUpdatedAt(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Microsecond)
}

var _ Store = (*MemoryStore)(nil)
