package service

import (
	"math"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/gema-interpret-api/internal/dto"
	"github.com/noah-isme/gema-interpret-api/internal/models"
)

// FormState is the submit state of an authoring form.
type FormState string

const (
	FormStateIdle       FormState = "idle"
	FormStateSubmitting FormState = "submitting"
	FormStateSucceeded  FormState = "succeeded"
)

const (
	formModeCreate = "create"
	formModeEdit   = "edit"
)

// AssignmentForm holds one instructor's in-progress assignment edit. Field state, audio
// and regions are owned separately and each has its own update path. All mutations
// are local and never reach the network.
type AssignmentForm struct {
	mu           sync.Mutex
	id           string
	assignmentID uint
	fields       dto.AssignmentFields
	audio        dto.AudioAsset
	regions      []models.Region
	state        FormState
	lastError    string
	touchedAt    time.Time
}

// formSnapshot is what a submit attempt acts on, captured when the attempt starts.
type formSnapshot struct {
	assignmentID uint
	fields       dto.AssignmentFields
	audio        dto.AudioAsset
	regions      []models.Region
}

// NewAssignmentForm opens a blank form for a class with default field values.
func NewAssignmentForm(classID uint, offsetMinutes int, now time.Time) *AssignmentForm {
	return &AssignmentForm{
		id: uuid.NewString(),
		fields: dto.AssignmentFields{
			ClassID:             classID,
			AssignmentType:      models.AssignmentTypeTranslation,
			IsPublic:            false,
			DueDateTime:         DueDateToEditable(now, offsetMinutes),
			TextFile:            "",
			PlaybackRate:        models.DefaultPlaybackRate,
			MaxPlayCount:        models.PlayCountUnlimited,
			FeedbackCategoryIDs: []uint{},
		},
		regions:   []models.Region{},
		state:     FormStateIdle,
		touchedAt: now,
	}
}

func newEditAssignmentForm(assignmentID uint, fields dto.AssignmentFields, audio dto.AudioAsset, regions []models.Region, now time.Time) *AssignmentForm {
	return &AssignmentForm{
		id:           uuid.NewString(),
		assignmentID: assignmentID,
		fields:       fields,
		audio:        audio,
		regions:      regions,
		state:        FormStateIdle,
		touchedAt:    now,
	}
}

// ID returns the form identifier.
func (f *AssignmentForm) ID() string {
	return f.id
}

// AssignmentID returns the edited assignment, or false for a new one.
func (f *AssignmentForm) AssignmentID() (uint, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.assignmentID, f.assignmentID != 0
}

// Fields returns a copy of the field state.
func (f *AssignmentForm) Fields() dto.AssignmentFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneFields(f.fields)
}

// Audio returns a copy of the current audio asset.
func (f *AssignmentForm) Audio() dto.AudioAsset {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.audio.Clone()
}

// Regions returns a copy of the current region list.
func (f *AssignmentForm) Regions() []models.Region {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneRegions(f.regions)
}

// State returns the submit state and the detail of the last failed attempt.
func (f *AssignmentForm) State() (FormState, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.lastError
}

// ApplyFields applies a field patch. Playback fields are ignored while the selected
// type hides them.
func (f *AssignmentForm) ApplyFields(patch dto.AssignmentFieldsPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := cloneFields(f.fields)
	if patch.AssignmentType != nil {
		next.AssignmentType = *patch.AssignmentType
	}
	if !next.AssignmentType.IsValid() {
		return newValidationError("assignment_type", "must be one of TRANSLATION SEQUENTIAL SIMULTANEOUS DEVELOPMENT")
	}

	variant, err := ClassifyAssignmentType(next.AssignmentType)
	if err != nil {
		return err
	}

	if patch.WeekNumber != nil {
		week := *patch.WeekNumber
		next.WeekNumber = &week
	}
	if patch.DueDateTime != nil {
		next.DueDateTime = *patch.DueDateTime
	}
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Keywords != nil {
		next.Keywords = *patch.Keywords
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.FeedbackCategoryIDs != nil {
		next.FeedbackCategoryIDs = uniqueIDs(*patch.FeedbackCategoryIDs)
	}
	if patch.IsPublic != nil {
		next.IsPublic = *patch.IsPublic
	}
	if patch.TextFile != nil {
		next.TextFile = *patch.TextFile
	}
	if variant.ShowPlaybackControls {
		if patch.MaxPlayCount != nil {
			next.MaxPlayCount = *patch.MaxPlayCount
		}
		if patch.PlaybackRate != nil {
			next.PlaybackRate = *patch.PlaybackRate
		}
	}
	resetHiddenPlayback(&next, variant)

	f.fields = next
	f.touch()
	return nil
}

// SetAudio replaces the audio asset.
func (f *AssignmentForm) SetAudio(asset dto.AudioAsset) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audio = asset.Clone()
	f.touch()
}

// SetRegions replaces the region list, preserving order.
func (f *AssignmentForm) SetRegions(regions []models.Region) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regions = cloneRegions(regions)
	f.touch()
}

// beginSubmit moves the form to Submitting and captures the values to submit.
func (f *AssignmentForm) beginSubmit() (formSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case FormStateSubmitting:
		return formSnapshot{}, ErrFormSubmitting
	case FormStateSucceeded:
		return formSnapshot{}, ErrFormAlreadySubmitted
	}

	f.state = FormStateSubmitting
	f.lastError = ""
	f.touch()

	return formSnapshot{
		assignmentID: f.assignmentID,
		fields:       cloneFields(f.fields),
		audio:        f.audio.Clone(),
		regions:      cloneRegions(f.regions),
	}, nil
}

// finishSubmit records the outcome of the attempt started by beginSubmit.
func (f *AssignmentForm) finishSubmit(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err == nil {
		f.state = FormStateSucceeded
		f.lastError = ""
	} else {
		f.state = FormStateIdle
		f.lastError = err.Error()
	}
	f.touch()
}

func (f *AssignmentForm) idleSince() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touchedAt, f.state != FormStateSubmitting
}

func (f *AssignmentForm) touch() {
	f.touchedAt = time.Now()
}

// View renders the form for API clients.
func (f *AssignmentForm) View() dto.AssignmentFormResponse {
	f.mu.Lock()
	defer f.mu.Unlock()

	response := dto.AssignmentFormResponse{
		ID:               f.id,
		Mode:             formModeCreate,
		State:            string(f.state),
		CanSubmit:        f.state == FormStateIdle,
		LastError:        f.lastError,
		Fields:           cloneFields(f.fields),
		Audio:            dto.NewAudioSummary(f.audio),
		Regions:          cloneRegions(f.regions),
		TypeOptions:      cloneOptions(assignmentTypeOptions),
		PlayCountOptions: cloneOptions(maxPlayCountOptions),
	}
	if f.assignmentID != 0 {
		id := f.assignmentID
		response.Mode = formModeEdit
		response.AssignmentID = &id
	}

	if variant, err := ClassifyAssignmentType(f.fields.AssignmentType); err == nil {
		response.Variant = dto.AssignmentVariantResponse{
			ShowPlaybackControls: variant.ShowPlaybackControls,
			PersistedType:        variant.PersistedType,
			EditorKind:           string(variant.EditorKind),
		}
	}
	if section, err := DispatchEditor[dto.EditorSection](f.fields.AssignmentType, editorSectionVisitor{}); err == nil {
		response.Editor = section
	}

	return response
}

// validateSnapshot runs the checks that block a submit before any network call.
func validateSnapshot(validate *validator.Validate, snapshot formSnapshot) error {
	result := &ValidationError{}
	if err := validate.Struct(snapshot.fields); err != nil {
		result = validationErrorFrom(err)
	}

	if snapshot.fields.DueDateTime != "" {
		if _, err := DueDateToAbsolute(snapshot.fields.DueDateTime, 0); err != nil {
			result.add("due_date_time", ErrInvalidDateFormat.Error())
		}
	}
	checkAssignmentRanges(result, snapshot.fields.WeekNumber, snapshot.fields.PlaybackRate)
	if !isOfferedPlayCount(snapshot.fields.MaxPlayCount) {
		result.add("max_play_count", "is not an offered option")
	}
	if !onPlaybackStep(snapshot.fields.PlaybackRate) {
		result.add("playback_rate", "must be a multiple of 0.1")
	}

	content, err := DispatchEditor[*ValidationError](snapshot.fields.AssignmentType, contentVisitor{
		fields: snapshot.fields,
		audio:  snapshot.audio,
	})
	if err != nil {
		result.add("assignment_type", "is invalid")
	} else if content != nil {
		for field, message := range content.Fields {
			result.add(field, message)
		}
	}

	if result.empty() {
		return nil
	}
	return result
}

func onPlaybackStep(rate float64) bool {
	steps := rate / models.PlaybackRateStep
	return math.Abs(steps-math.Round(steps)) < 1e-6
}

func cloneFields(fields dto.AssignmentFields) dto.AssignmentFields {
	clone := fields
	if fields.WeekNumber != nil {
		week := *fields.WeekNumber
		clone.WeekNumber = &week
	}
	clone.FeedbackCategoryIDs = append([]uint{}, fields.FeedbackCategoryIDs...)
	return clone
}

func cloneRegions(regions []models.Region) []models.Region {
	return append([]models.Region{}, regions...)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
