package models

import (
	"time"

	"gorm.io/datatypes"
)

// AssignmentType enumerates the assignment variants an instructor can pick.
type AssignmentType string

const (
	AssignmentTypeTranslation  AssignmentType = "TRANSLATION"
	AssignmentTypeSequential   AssignmentType = "SEQUENTIAL"
	AssignmentTypeSimultaneous AssignmentType = "SIMULTANEOUS"
	// AssignmentTypeDevelopment only exists while authoring; it is stored as SIMULTANEOUS.
	AssignmentTypeDevelopment AssignmentType = "DEVELOPMENT"
)

// IsValid reports whether the type is one of the known variants.
func (t AssignmentType) IsValid() bool {
	switch t {
	case AssignmentTypeTranslation, AssignmentTypeSequential, AssignmentTypeSimultaneous, AssignmentTypeDevelopment:
		return true
	default:
		return false
	}
}

// PersistedType returns the type written to storage.
func (t AssignmentType) PersistedType() AssignmentType {
	if t == AssignmentTypeDevelopment {
		return AssignmentTypeSimultaneous
	}
	return t
}

// Play count limits. Only PlayCountUnlimited is offered to instructors for now.
const (
	PlayCountUnlimited = 0
	PlayCountOnce      = 1
	PlayCountTwice     = 2
	PlayCountThrice    = 3
)

// Playback rate bounds and defaults.
const (
	DefaultPlaybackRate = 1.0
	MinPlaybackRate     = 0.0
	MaxPlaybackRate     = 2.0
	PlaybackRateStep    = 0.1
)

// Week range of a semester.
const (
	MinWeekNumber = 1
	MaxWeekNumber = 16
)

// Region delimits a segment of the assignment audio, in seconds.
type Region struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// FeedbackCategory is a rubric category instructors attach to assignments.
type FeedbackCategory struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:128;not null" json:"name"`
}

// Assignment represents an interpretation or translation assignment.
type Assignment struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	ClassID            uint                        `gorm:"not null;index" json:"class_id"`
	WeekNumber         int                         `gorm:"not null" json:"week_number"`
	DueDateTime        time.Time                   `gorm:"not null" json:"due_date_time"`
	Name               string                      `gorm:"size:255;not null" json:"name"`
	AssignmentType     AssignmentType              `gorm:"size:16;not null" json:"assignment_type"`
	Keywords           string                      `gorm:"size:512" json:"keywords"`
	Description        string                      `gorm:"type:text" json:"description"`
	IsPublic           bool                        `gorm:"not null" json:"is_public"`
	MaxPlayCount       int                         `gorm:"not null" json:"max_play_count"`
	PlaybackRate       float64                     `gorm:"not null" json:"playback_rate"`
	TextFile           string                      `gorm:"type:text" json:"text_file"`
	AudioFileURL       string                      `gorm:"size:512" json:"audio_file_url"`
	SequentialRegions  datatypes.JSONSlice[Region] `json:"sequential_regions"`
	FeedbackCategories []FeedbackCategory          `gorm:"many2many:assignment_feedback_categories" json:"feedback_categories"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}
