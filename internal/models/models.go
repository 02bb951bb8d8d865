package models

import "time"

// Project lifecycle states.
const (
	StatusDraft      = "draft"
	StatusGenerating = "generating"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Defaults applied to omitted project fields on creation.
const (
	DefaultDuration    = 30
	DefaultStyle       = "modern"
	DefaultAspectRatio = "16:9"
	DefaultVoiceOver   = "ai_female"
	DefaultTemplate    = "business"
)

// VideoProject is a user's unit of work: a script plus the options used to render it.
type VideoProject struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Script       string    `json:"script"`
	Duration     int       `json:"duration"`
	Style        string    `json:"style"`
	AspectRatio  string    `json:"aspectRatio"`
	VoiceOver    string    `json:"voiceOver"`
	Template     string    `json:"template"`
	Status       string    `json:"status"`
	VideoURL     *string   `json:"videoUrl"`
	ThumbnailURL *string   `json:"thumbnailUrl"`
	UserID       *int64    `json:"userId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewProject carries the caller-supplied fields of a project. Zero values are
// replaced with the package defaults by WithDefaults.
type NewProject struct {
	Title        string
	Script       string
	Duration     int
	Style        string
	AspectRatio  string
	VoiceOver    string
	Template     string
	Status       string
	VideoURL     *string
	ThumbnailURL *string
	UserID       *int64
}

// WithDefaults returns a copy of p with every omitted field set to its default.
func (p NewProject) WithDefaults() NewProject {
	if p.Duration <= 0 {
		p.Duration = DefaultDuration
	}
	if p.Style == "" {
		p.Style = DefaultStyle
	}
	if p.AspectRatio == "" {
		p.AspectRatio = DefaultAspectRatio
	}
	if p.VoiceOver == "" {
		p.VoiceOver = DefaultVoiceOver
	}
	if p.Template == "" {
		p.Template = DefaultTemplate
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	return p
}

// Nullable is a patch value that distinguishes an absent field from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Set returns a Nullable holding v.
func Set[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a Nullable that clears the field.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// ProjectPatch lists the fields to merge into an existing project. Nil
// pointers and unset Nullables leave the stored value untouched.
type ProjectPatch struct {
	Title        *string
	Script       *string
	Duration     *int
	Style        *string
	AspectRatio  *string
	VoiceOver    *string
	Template     *string
	Status       *string
	VideoURL     Nullable[string]
	ThumbnailURL Nullable[string]
	UserID       Nullable[int64]
}

// Apply merges the patch into project. UpdatedAt is left to the caller.
func (p ProjectPatch) Apply(project *VideoProject) {
	if p.Title != nil {
		project.Title = *p.Title
	}
	if p.Script != nil {
		project.Script = *p.Script
	}
	if p.Duration != nil {
		project.Duration = *p.Duration
	}
	if p.Style != nil {
		project.Style = *p.Style
	}
	if p.AspectRatio != nil {
		project.AspectRatio = *p.AspectRatio
	}
	if p.VoiceOver != nil {
		project.VoiceOver = *p.VoiceOver
	}
	if p.Template != nil {
		project.Template = *p.Template
	}
	if p.Status != nil {
		project.Status = *p.Status
	}
	if p.VideoURL.Set {
		project.VideoURL = clonePtr(p.VideoURL.Value)
	}
	if p.ThumbnailURL.Set {
		project.ThumbnailURL = clonePtr(p.ThumbnailURL.Value)
	}
	if p.UserID.Set {
		project.UserID = clonePtr(p.UserID.Value)
	}
}

// Template is a catalog entry users pick from when styling a project.
type Template struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Category     string `json:"category"`
	IsActive     int    `json:"isActive"`
}

// NewTemplate carries the fields of a template before an id is assigned.
type NewTemplate struct {
	Name         string
	Description  string
	ThumbnailURL string
	Category     string
	IsActive     int
}

// User is an account row. Password holds a bcrypt hash, never plain text.
type User struct {
	ID       int64
	Username string
	Password string
}

// NewUser carries the fields of a user before an id is assigned.
type NewUser struct {
	Username     string
	PasswordHash string
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Clone returns a deep copy of the project so callers cannot alias stored pointers.
func (p VideoProject) Clone() VideoProject {
	p.VideoURL = clonePtr(p.VideoURL)
	p.ThumbnailURL = clonePtr(p.ThumbnailURL)
	p.UserID = clonePtr(p.UserID)
	return p
}
