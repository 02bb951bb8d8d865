package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidcraft/backend/internal/db"
	"github.com/vidcraft/backend/internal/models"
)

const projectColumns = `id, title, script, duration, style, aspect_ratio, voice_over, template, status,
        video_url, thumbnail_url, user_id, created_at, updated_at`

const templateColumns = `id, name, description, thumbnail_url, category, is_active`

// PostgresStore provides PostgreSQL-backed persistence for projects, templates and users.
// Every write is a single statement; identifiers come from BIGSERIAL columns.
type PostgresStore struct {
	pool db.Pool
	now  func() time.Time
}

// NewPostgresStore constructs a store backed by PostgreSQL.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (models.VideoProject, error) {
	var p models.VideoProject
	err := row.Scan(&p.ID, &p.Title, &p.Script, &p.Duration, &p.Style, &p.AspectRatio, &p.VoiceOver,
		&p.Template, &p.Status, &p.VideoURL, &p.ThumbnailURL, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.VideoProject{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func scanTemplate(row rowScanner) (models.Template, error) {
	var t models.Template
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.ThumbnailURL, &t.Category, &t.IsActive); err != nil {
		return models.Template{}, err
	}
	return t, nil
}

// WithNowFunc allows tests to override the time source. It must be called before the store is shared.
func (s *PostgresStore) WithNowFunc(now func() time.Time) {
	s.now = now
}

func (s *PostgresStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// CreateProject inserts a new project with defaults applied.
func (s *PostgresStore) CreateProject(ctx context.Context, input models.NewProject) (models.VideoProject, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.VideoProject{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	input = input.WithDefaults()
	now := s.timestamp()

	row := conn.QueryRow(ctx, `
        INSERT INTO video_projects (title, script, duration, style, aspect_ratio, voice_over, template, status,
            video_url, thumbnail_url, user_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
        RETURNING `+projectColumns,
		input.Title, input.Script, input.Duration, input.Style, input.AspectRatio, input.VoiceOver,
		input.Template, input.Status, input.VideoURL, input.ThumbnailURL, input.UserID, now)

	project, err := scanProject(row)
	if err != nil {
		return models.VideoProject{}, fmt.Errorf("insert video project: %w", err)
	}
	return project, nil
}

// GetProject fetches a project by id.
func (s *PostgresStore) GetProject(ctx context.Context, id int64) (models.VideoProject, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.VideoProject{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT `+projectColumns+` FROM video_projects WHERE id = $1`, id)
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VideoProject{}, ErrNotFound
		}
		return models.VideoProject{}, fmt.Errorf("select video project: %w", err)
	}
	return project, nil
}

// ListProjects returns projects newest first, optionally restricted to a single user.
func (s *PostgresStore) ListProjects(ctx context.Context, userID *int64) ([]models.VideoProject, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	query := `SELECT ` + projectColumns + ` FROM video_projects`
	var args []any
	if userID != nil {
		query += ` WHERE user_id = $1`
		args = append(args, *userID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query video projects: %w", err)
	}
	defer rows.Close()

	projects := make([]models.VideoProject, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video project: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate video projects: %w", err)
	}

	return projects, nil
}

// UpdateProject merges the supplied fields in a single UPDATE ... RETURNING statement.
func (s *PostgresStore) UpdateProject(ctx context.Context, id int64, patch models.ProjectPatch) (models.VideoProject, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.VideoProject{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	sets, args := projectAssignments(patch, id)
	args = append(args, s.timestamp())
	sets = append(sets, fmt.Sprintf("updated_at = GREATEST($%d, updated_at + INTERVAL '1 microsecond')", len(args)))

	row := conn.QueryRow(ctx, `UPDATE video_projects SET `+strings.Join(sets, ", ")+
		` WHERE id = $1 RETURNING `+projectColumns, args...)

	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VideoProject{}, ErrNotFound
		}
		return models.VideoProject{}, fmt.Errorf("update video project: %w", err)
	}
	return project, nil
}

// projectAssignments builds the SET clauses for the fields present in patch.
// The returned args start with id so it binds to $1.
func projectAssignments(patch models.ProjectPatch, id int64) ([]string, []any) {
	var sets []string
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Script != nil {
		add("script", *patch.Script)
	}
	if patch.Duration != nil {
		add("duration", *patch.Duration)
	}
	if patch.Style != nil {
		add("style", *patch.Style)
	}
	if patch.AspectRatio != nil {
		add("aspect_ratio", *patch.AspectRatio)
	}
	if patch.VoiceOver != nil {
		add("voice_over", *patch.VoiceOver)
	}
	if patch.Template != nil {
		add("template", *patch.Template)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.VideoURL.Set {
		add("video_url", patch.VideoURL.Value)
	}
	if patch.ThumbnailURL.Set {
		add("thumbnail_url", patch.ThumbnailURL.Value)
	}
	if patch.UserID.Set {
		add("user_id", patch.UserID.Value)
	}

	return sets, args
}

// DeleteProject removes a project, reporting whether a row was deleted.
func (s *PostgresStore) DeleteProject(ctx context.Context, id int64) (bool, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM video_projects WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete video project: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListTemplates returns active templates in catalog order.
func (s *PostgresStore) ListTemplates(ctx context.Context) ([]models.Template, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `SELECT `+templateColumns+` FROM templates WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	templates := make([]models.Template, 0)
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, tmpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}

	return templates, nil
}

// GetTemplate fetches a template by id regardless of its active flag.
func (s *PostgresStore) GetTemplate(ctx context.Context, id int64) (models.Template, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.Template{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tmpl, err := scanTemplate(conn.QueryRow(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Template{}, ErrNotFound
		}
		return models.Template{}, fmt.Errorf("select template: %w", err)
	}
	return tmpl, nil
}

// CreateTemplate inserts a new catalog entry.
func (s *PostgresStore) CreateTemplate(ctx context.Context, input models.NewTemplate) (models.Template, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.Template{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        INSERT INTO templates (name, description, thumbnail_url, category, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+templateColumns,
		input.Name, input.Description, input.ThumbnailURL, input.Category, input.IsActive)

	tmpl, err := scanTemplate(row)
	if err != nil {
		return models.Template{}, fmt.Errorf("insert template: %w", err)
	}
	return tmpl, nil
}

// SeedTemplates inserts the templates whose names are not yet in the catalog,
// in order, returning how many rows were added.
func (s *PostgresStore) SeedTemplates(ctx context.Context, templates []models.NewTemplate) (int, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	inserted := 0
	for _, input := range templates {
		tag, err := conn.Exec(ctx, `
            INSERT INTO templates (name, description, thumbnail_url, category, is_active)
            SELECT $1::TEXT, $2::TEXT, $3::TEXT, $4::TEXT, $5::INT
            WHERE NOT EXISTS (SELECT 1 FROM templates WHERE name = $1::TEXT)
        `, input.Name, input.Description, input.ThumbnailURL, input.Category, input.IsActive)
		if err != nil {
			return inserted, fmt.Errorf("seed template %q: %w", input.Name, err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// CreateUser inserts a user account, mapping duplicate usernames to ErrConflict.
func (s *PostgresStore) CreateUser(ctx context.Context, input models.NewUser) (models.User, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var user models.User
	err = conn.QueryRow(ctx, `
        INSERT INTO users (username, password)
        VALUES ($1, $2)
        RETURNING id, username, password
    `, input.Username, input.PasswordHash).Scan(&user.ID, &user.Username, &user.Password)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, ErrConflict
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// GetUser fetches a user by id.
func (s *PostgresStore) GetUser(ctx context.Context, id int64) (models.User, error) {
	return s.findUser(ctx, `SELECT id, username, password FROM users WHERE id = $1`, id)
}

// GetUserByUsername fetches a user by username.
func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.findUser(ctx, `SELECT id, username, password FROM users WHERE username = $1`, username)
}

func (s *PostgresStore) findUser(ctx context.Context, query string, arg any) (models.User, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var user models.User
	if err := conn.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Username, &user.Password); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user: %w", err)
	}

	return user, nil
}

var _ Store = (*PostgresStore)(nil)
