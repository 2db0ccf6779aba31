package dto

import (
	"time"

	"github.com/noah-isme/gema-interpret-api/internal/models"
)

// SubmissionCreateRequest describes the payload for creating a submission.
type SubmissionCreateRequest struct {
	AssignmentID      uint            `json:"assignment_id" validate:"required,gt=0"`
	StudentID         uint            `json:"student_id" validate:"required,gt=0"`
	AudioFile         AudioAsset      `json:"audio_file"`
	TextFile          string          `json:"text_file"`
	PlayCount         *int            `json:"play_count" validate:"omitempty,gte=0"`
	PlaybackRate      *float64        `json:"playback_rate" validate:"omitempty,gte=0,lte=2"`
	SequentialRegions []models.Region `json:"sequential_regions"`
	Staged            bool            `json:"staged"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID                uint            `json:"id"`
	AssignmentID      uint            `json:"assignment_id"`
	StudentID         uint            `json:"student_id"`
	AudioFileURL      string          `json:"audio_file_url"`
	TextFile          string          `json:"text_file"`
	PlayCount         *int            `json:"play_count"`
	PlaybackRate      *float64        `json:"playback_rate"`
	SequentialRegions []models.Region `json:"sequential_regions"`
	Staged            bool            `json:"staged"`
	StagedAt          *time.Time      `json:"staged_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	regions := make([]models.Region, len(model.SequentialRegions))
	copy(regions, model.SequentialRegions)

	return SubmissionResponse{
		ID:                model.ID,
		AssignmentID:      model.AssignmentID,
		StudentID:         model.StudentID,
		AudioFileURL:      model.AudioFileURL,
		TextFile:          model.TextFile,
		PlayCount:         model.PlayCount,
		PlaybackRate:      model.PlaybackRate,
		SequentialRegions: regions,
		Staged:            model.Staged,
		StagedAt:          model.StagedAt,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

// SubmissionFilter narrows submission listings.
type SubmissionFilter struct {
	AssignmentID *uint `query:"assignment_id" validate:"omitempty,gt=0"`
	StudentID    *uint `query:"student_id" validate:"omitempty,gt=0"`
	Staged       *bool `query:"staged"`
}

// NewSubmissionResponseSlice converts multiple submissions into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
