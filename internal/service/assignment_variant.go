package service

import (
	"strconv"

	"github.com/noah-isme/gema-interpret-api/internal/dto"
	"github.com/noah-isme/gema-interpret-api/internal/models"
)

// EditorKind names the sub-editor that edits an assignment's content.
type EditorKind string

const (
	EditorKindText        EditorKind = "text"
	EditorKindAudioRegion EditorKind = "audio_region"
	EditorKindTextAudio   EditorKind = "text_audio"
)

// AssignmentVariant describes how a selected assignment type shapes the form.
type AssignmentVariant struct {
	ShowPlaybackControls bool
	PersistedType        models.AssignmentType
	EditorKind           EditorKind
}

// EditorVisitor handles each stored assignment type. Every dispatch site implements
// all methods, so a new stored type cannot be added without revisiting them.
type EditorVisitor[T any] interface {
	Translation() T
	Sequential() T
	Simultaneous() T
}

// DispatchEditor calls the visitor method matching the stored form of t.
func DispatchEditor[T any](t models.AssignmentType, visitor EditorVisitor[T]) (T, error) {
	switch t.PersistedType() {
	case models.AssignmentTypeTranslation:
		return visitor.Translation(), nil
	case models.AssignmentTypeSequential:
		return visitor.Sequential(), nil
	case models.AssignmentTypeSimultaneous:
		return visitor.Simultaneous(), nil
	default:
		var zero T
		return zero, newValidationError("assignment_type", "unknown assignment type "+strconv.Quote(string(t)))
	}
}

type variantVisitor struct{}

func (variantVisitor) Translation() AssignmentVariant {
	return AssignmentVariant{ShowPlaybackControls: false, PersistedType: models.AssignmentTypeTranslation, EditorKind: EditorKindText}
}

func (variantVisitor) Sequential() AssignmentVariant {
	return AssignmentVariant{ShowPlaybackControls: true, PersistedType: models.AssignmentTypeSequential, EditorKind: EditorKindAudioRegion}
}

func (variantVisitor) Simultaneous() AssignmentVariant {
	return AssignmentVariant{ShowPlaybackControls: true, PersistedType: models.AssignmentTypeSimultaneous, EditorKind: EditorKindTextAudio}
}

// ClassifyAssignmentType maps a user-facing type to its form variant.
// DEVELOPMENT shares the SIMULTANEOUS variant.
func ClassifyAssignmentType(t models.AssignmentType) (AssignmentVariant, error) {
	return DispatchEditor[AssignmentVariant](t, variantVisitor{})
}

type editorSectionVisitor struct{}

func (editorSectionVisitor) Translation() dto.EditorSection {
	return dto.EditorSection{Kind: string(EditorKindText), Text: true}
}

func (editorSectionVisitor) Sequential() dto.EditorSection {
	return dto.EditorSection{Kind: string(EditorKindAudioRegion), Audio: true, Regions: true}
}

func (editorSectionVisitor) Simultaneous() dto.EditorSection {
	return dto.EditorSection{Kind: string(EditorKindTextAudio), Text: true, Audio: true}
}

// contentVisitor checks that the content required by each editor is present.
type contentVisitor struct {
	fields dto.AssignmentFields
	audio  dto.AudioAsset
}

func (v contentVisitor) Translation() *ValidationError {
	result := &ValidationError{}
	v.requireText(result)
	return result
}

func (v contentVisitor) Sequential() *ValidationError {
	result := &ValidationError{}
	v.requireAudio(result)
	return result
}

func (v contentVisitor) Simultaneous() *ValidationError {
	result := &ValidationError{}
	v.requireText(result)
	v.requireAudio(result)
	return result
}

func (v contentVisitor) requireText(result *ValidationError) {
	if v.fields.TextFile == "" {
		result.add("text_file", "is required")
	}
}

func (v contentVisitor) requireAudio(result *ValidationError) {
	if v.audio.IsEmpty() {
		result.add("audio_file", "is required")
	}
}

// resetHiddenPlayback restores playback defaults when the variant hides those controls.
func resetHiddenPlayback(fields *dto.AssignmentFields, variant AssignmentVariant) {
	if variant.ShowPlaybackControls {
		return
	}
	fields.MaxPlayCount = models.PlayCountUnlimited
	fields.PlaybackRate = models.DefaultPlaybackRate
}

var assignmentTypeOptions = []dto.Option{
	{Label: "Translation", Value: string(models.AssignmentTypeTranslation)},
	{Label: "Sequential interpretation", Value: string(models.AssignmentTypeSequential)},
	{Label: "Simultaneous interpretation", Value: string(models.AssignmentTypeSimultaneous)},
	{Label: "Material collection", Value: string(models.AssignmentTypeDevelopment)},
}

// TODO: offer PlayCountOnce..PlayCountThrice once limited replays are enforced on playback.
var maxPlayCountOptions = []dto.Option{
	{Label: "Unlimited", Value: strconv.Itoa(models.PlayCountUnlimited)},
}

func isOfferedPlayCount(value int) bool {
	for _, option := range maxPlayCountOptions {
		if option.Value == strconv.Itoa(value) {
			return true
		}
	}
	return false
}

func cloneOptions(options []dto.Option) []dto.Option {
	return append([]dto.Option(nil), options...)
}
