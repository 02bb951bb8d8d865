package schema

import "github.com/vidcraft/backend/internal/models"

// CreateProjectRequest is the body of POST /api/projects. Omitted
// categorical fields fall back to the store defaults.
type CreateProjectRequest struct {
	Title        string  `json:"title" validate:"required"`
	Script       string  `json:"script" validate:"required,max=1000"`
	Duration     *int    `json:"duration" validate:"omitempty,gt=0"`
	Style        string  `json:"style"`
	AspectRatio  string  `json:"aspectRatio"`
	VoiceOver    string  `json:"voiceOver"`
	Template     string  `json:"template"`
	Status       string  `json:"status" validate:"omitempty,oneof=draft generating completed failed"`
	VideoURL     *string `json:"videoUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	UserID       *int64  `json:"userId"`
}

// Model converts the request into store input.
func (r CreateProjectRequest) Model() models.NewProject {
	input := models.NewProject{
		Title:        r.Title,
		Script:       r.Script,
		Style:        r.Style,
		AspectRatio:  r.AspectRatio,
		VoiceOver:    r.VoiceOver,
		Template:     r.Template,
		Status:       r.Status,
		VideoURL:     r.VideoURL,
		ThumbnailURL: r.ThumbnailURL,
		UserID:       r.UserID,
	}
	if r.Duration != nil {
		input.Duration = *r.Duration
	}
	return input
}

// UpdateProjectRequest is the body of PATCH /api/projects/{id}. Every field is optional.
type UpdateProjectRequest struct {
	Title        *string          `json:"title" validate:"omitempty,min=1"`
	Script       *string          `json:"script" validate:"omitempty,min=1,max=1000"`
	Duration     *int             `json:"duration" validate:"omitempty,gt=0"`
	Style        *string          `json:"style" validate:"omitempty,min=1"`
	AspectRatio  *string          `json:"aspectRatio" validate:"omitempty,min=1"`
	VoiceOver    *string          `json:"voiceOver" validate:"omitempty,min=1"`
	Template     *string          `json:"template" validate:"omitempty,min=1"`
	Status       *string          `json:"status" validate:"omitempty,oneof=draft generating completed failed"`
	VideoURL     Nullable[string] `json:"videoUrl"`
	ThumbnailURL Nullable[string] `json:"thumbnailUrl"`
	UserID       Nullable[int64]  `json:"userId"`
}

// Patch converts the request into a store patch.
func (r UpdateProjectRequest) Patch() models.ProjectPatch {
	return models.ProjectPatch{
		Title:        r.Title,
		Script:       r.Script,
		Duration:     r.Duration,
		Style:        r.Style,
		AspectRatio:  r.AspectRatio,
		VoiceOver:    r.VoiceOver,
		Template:     r.Template,
		Status:       r.Status,
		VideoURL:     r.VideoURL.model(),
		ThumbnailURL: r.ThumbnailURL.model(),
		UserID:       r.UserID.model(),
	}
}
