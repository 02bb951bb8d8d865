package schema

import "github.com/vidcraft/backend/internal/models"

// CreateTemplateRequest is the body of POST /api/templates.
type CreateTemplateRequest struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description" validate:"required"`
	ThumbnailURL string `json:"thumbnailUrl" validate:"required"`
	Category     string `json:"category" validate:"required"`
	IsActive     *int   `json:"isActive" validate:"omitempty,oneof=0 1"`
}

// Model converts the request into store input; templates are active unless stated otherwise.
func (r CreateTemplateRequest) Model() models.NewTemplate {
	active := 1
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return models.NewTemplate{
		Name:         r.Name,
		Description:  r.Description,
		ThumbnailURL: r.ThumbnailURL,
		Category:     r.Category,
		IsActive:     active,
	}
}
