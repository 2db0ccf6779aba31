package dto

import (
	"strings"
	"time"

	"github.com/noah-isme/gema-interpret-api/internal/models"
)

// AudioAsset carries assignment or submission audio. Stored assets are referenced by URL,
// freshly recorded or uploaded ones carry their bytes in Data.
type AudioAsset struct {
	FileName    string `json:"file_name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Data        []byte `json:"data,omitempty"`
	URL         string `json:"url,omitempty"`
}

// IsEmpty reports whether the asset has neither content nor a stored reference.
func (a AudioAsset) IsEmpty() bool {
	return len(a.Data) == 0 && strings.TrimSpace(a.URL) == ""
}

// Clone returns a copy that does not share the underlying byte slice.
func (a AudioAsset) Clone() AudioAsset {
	clone := a
	if a.Data != nil {
		clone.Data = append([]byte(nil), a.Data...)
	}
	return clone
}

// AssignmentPayload is the full attribute set sent to create or patch an assignment.
type AssignmentPayload struct {
	ClassID             uint                  `json:"class_id" validate:"required,gt=0"`
	WeekNumber          int                   `json:"week_number" validate:"required"`
	DueDateTime         time.Time             `json:"due_date_time" validate:"required"`
	Name                string                `json:"name" validate:"required"`
	AssignmentType      models.AssignmentType `json:"assignment_type" validate:"required,oneof=TRANSLATION SEQUENTIAL SIMULTANEOUS DEVELOPMENT"`
	Keywords            string                `json:"keywords"`
	Description         string                `json:"description" validate:"required"`
	FeedbackCategoryIDs []uint                `json:"feedback_category_ids"`
	IsPublic            bool                  `json:"is_public"`
	MaxPlayCount        int                   `json:"max_play_count" validate:"gte=0"`
	PlaybackRate        float64               `json:"playback_rate"`
	TextFile            string                `json:"text_file"`
	AudioFile           AudioAsset            `json:"audio_file"`
	SequentialRegions   []models.Region       `json:"sequential_regions"`
}

// FeedbackCategoryResponse serializes a feedback category.
type FeedbackCategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID                 uint                       `json:"id"`
	ClassID            uint                       `json:"class_id"`
	WeekNumber         int                        `json:"week_number"`
	DueDateTime        time.Time                  `json:"due_date_time"`
	Name               string                     `json:"name"`
	AssignmentType     models.AssignmentType      `json:"assignment_type"`
	Keywords           string                     `json:"keywords"`
	Description        string                     `json:"description"`
	FeedbackCategories []FeedbackCategoryResponse `json:"feedback_categories"`
	IsPublic           bool                       `json:"is_public"`
	MaxPlayCount       int                        `json:"max_play_count"`
	PlaybackRate       float64                    `json:"playback_rate"`
	TextFile           string                     `json:"text_file"`
	AudioFileURL       string                     `json:"audio_file_url"`
	SequentialRegions  []models.Region            `json:"sequential_regions"`
	CreatedAt          time.Time                  `json:"created_at"`
	UpdatedAt          time.Time                  `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	categories := make([]FeedbackCategoryResponse, 0, len(model.FeedbackCategories))
	for _, category := range model.FeedbackCategories {
		categories = append(categories, FeedbackCategoryResponse{ID: category.ID, Name: category.Name})
	}

	regions := make([]models.Region, len(model.SequentialRegions))
	copy(regions, model.SequentialRegions)

	return AssignmentResponse{
		ID:                 model.ID,
		ClassID:            model.ClassID,
		WeekNumber:         model.WeekNumber,
		DueDateTime:        model.DueDateTime,
		Name:               model.Name,
		AssignmentType:     model.AssignmentType,
		Keywords:           model.Keywords,
		Description:        model.Description,
		FeedbackCategories: categories,
		IsPublic:           model.IsPublic,
		MaxPlayCount:       model.MaxPlayCount,
		PlaybackRate:       model.PlaybackRate,
		TextFile:           model.TextFile,
		AudioFileURL:       model.AudioFileURL,
		SequentialRegions:  regions,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
