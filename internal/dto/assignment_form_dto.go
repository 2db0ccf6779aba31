package dto

import "github.com/noah-isme/gema-interpret-api/internal/models"

// AssignmentFields is the editable field set of an authoring form. DueDateTime is a
// timezone-naive local wall-clock string (2006-01-02T15:04).
type AssignmentFields struct {
	ClassID             uint                  `json:"class_id" validate:"required,gt=0"`
	WeekNumber          *int                  `json:"week_number" validate:"required"`
	DueDateTime         string                `json:"due_date_time" validate:"required"`
	Name                string                `json:"name" validate:"required"`
	AssignmentType      models.AssignmentType `json:"assignment_type" validate:"required,oneof=TRANSLATION SEQUENTIAL SIMULTANEOUS DEVELOPMENT"`
	Keywords            string                `json:"keywords"`
	Description         string                `json:"description" validate:"required"`
	FeedbackCategoryIDs []uint                `json:"feedback_category_ids"`
	IsPublic            bool                  `json:"is_public"`
	MaxPlayCount        int                   `json:"max_play_count" validate:"gte=0"`
	PlaybackRate        float64               `json:"playback_rate"`
	TextFile            string                `json:"text_file"`
}

// AssignmentFormCreateRequest opens a blank authoring form for a class.
type AssignmentFormCreateRequest struct {
	ClassID uint `json:"class_id" validate:"required,gt=0"`
}

// AssignmentFieldsPatch carries field edits. Nil members are left untouched.
type AssignmentFieldsPatch struct {
	WeekNumber          *int                   `json:"week_number"`
	DueDateTime         *string                `json:"due_date_time"`
	Name                *string                `json:"name"`
	AssignmentType      *models.AssignmentType `json:"assignment_type"`
	Keywords            *string                `json:"keywords"`
	Description         *string                `json:"description"`
	FeedbackCategoryIDs *[]uint                `json:"feedback_category_ids"`
	IsPublic            *bool                  `json:"is_public"`
	MaxPlayCount        *int                   `json:"max_play_count"`
	PlaybackRate        *float64               `json:"playback_rate"`
	TextFile            *string                `json:"text_file"`
}

// AssignmentRegionsRequest replaces the region list of a form.
type AssignmentRegionsRequest struct {
	Regions []models.Region `json:"regions"`
}

// Option is a selectable value shown by the form.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// AudioSummary describes the audio held by a form without echoing its bytes.
type AudioSummary struct {
	Present     bool   `json:"present"`
	FileName    string `json:"file_name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Size        int    `json:"size"`
	URL         string `json:"url,omitempty"`
}

// NewAudioSummary summarizes an audio asset.
func NewAudioSummary(asset AudioAsset) AudioSummary {
	return AudioSummary{
		Present:     !asset.IsEmpty(),
		FileName:    asset.FileName,
		ContentType: asset.ContentType,
		Size:        len(asset.Data),
		URL:         asset.URL,
	}
}

// AssignmentVariantResponse exposes how the selected type shapes the form.
type AssignmentVariantResponse struct {
	ShowPlaybackControls bool                  `json:"show_playback_controls"`
	PersistedType        models.AssignmentType `json:"persisted_type"`
	EditorKind           string                `json:"editor_kind"`
}

// EditorSection lists which sub-editors are active for the selected type.
type EditorSection struct {
	Kind    string `json:"kind"`
	Text    bool   `json:"text"`
	Audio   bool   `json:"audio"`
	Regions bool   `json:"regions"`
}

// AssignmentFormResponse is the full view of an authoring form.
type AssignmentFormResponse struct {
	ID               string                    `json:"id"`
	Mode             string                    `json:"mode"`
	AssignmentID     *uint                     `json:"assignment_id,omitempty"`
	State            string                    `json:"state"`
	CanSubmit        bool                      `json:"can_submit"`
	LastError        string                    `json:"last_error,omitempty"`
	Fields           AssignmentFields          `json:"fields"`
	Audio            AudioSummary              `json:"audio"`
	Regions          []models.Region           `json:"regions"`
	Variant          AssignmentVariantResponse `json:"variant"`
	Editor           EditorSection             `json:"editor"`
	TypeOptions      []Option                  `json:"type_options"`
	PlayCountOptions []Option                  `json:"max_play_count_options"`
}

// AuthoringResult reports the outcome of a successful form submission.
type AuthoringResult struct {
	Mode         string `json:"mode"`
	AssignmentID uint   `json:"assignment_id"`
	SubmissionID *uint  `json:"submission_id,omitempty"`
	Message      string `json:"message"`
	Navigate     string `json:"navigate"`
}
