package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission represents a student's recorded response to an assignment.
type Submission struct {
	ID                uint                        `gorm:"primaryKey" json:"id"`
	AssignmentID      uint                        `gorm:"not null;index" json:"assignment_id"`
	StudentID         uint                        `gorm:"not null;index" json:"student_id"`
	AudioFileURL      string                      `gorm:"size:512" json:"audio_file_url"`
	TextFile          string                      `gorm:"type:text" json:"text_file"`
	PlayCount         *int                        `json:"play_count"`
	PlaybackRate      *float64                    `json:"playback_rate"`
	SequentialRegions datatypes.JSONSlice[Region] `json:"sequential_regions"`
	Staged            bool                        `gorm:"not null" json:"staged"`
	StagedAt          *time.Time                  `json:"staged_at"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
	Assignment        Assignment                  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsStaged reports whether the submission has been finalized.
func (s Submission) IsStaged() bool {
	return s.Staged
}
