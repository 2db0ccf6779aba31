package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-interpret-api/internal/dto"
	"github.com/noah-isme/gema-interpret-api/internal/models"
)

// AssignmentFormLoader builds edit forms from stored assignments.
type AssignmentFormLoader struct {
	assignments AssignmentService
	now         func() time.Time
}

// NewAssignmentFormLoader constructs a loader backed by the assignment service.
func NewAssignmentFormLoader(assignments AssignmentService) *AssignmentFormLoader {
	return &AssignmentFormLoader{assignments: assignments, now: time.Now}
}

// LoadExisting fetches an assignment and opens an edit form populated with its values.
func (l *AssignmentFormLoader) LoadExisting(ctx context.Context, assignmentID uint, offsetMinutes int) (*AssignmentForm, error) {
	assignment, err := l.assignments.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	fields, audio, regions := decomposeAssignment(assignment, offsetMinutes)
	return newEditAssignmentForm(assignment.ID, fields, audio, regions, l.now()), nil
}

// decomposeAssignment splits a stored assignment into the form's three ownership domains.
func decomposeAssignment(assignment dto.AssignmentResponse, offsetMinutes int) (dto.AssignmentFields, dto.AudioAsset, []models.Region) {
	week := assignment.WeekNumber
	categoryIDs := make([]uint, 0, len(assignment.FeedbackCategories))
	for _, category := range assignment.FeedbackCategories {
		categoryIDs = append(categoryIDs, category.ID)
	}

	fields := dto.AssignmentFields{
		ClassID:             assignment.ClassID,
		WeekNumber:          &week,
		DueDateTime:         DueDateToEditable(assignment.DueDateTime, offsetMinutes),
		Name:                assignment.Name,
		AssignmentType:      assignment.AssignmentType,
		Keywords:            assignment.Keywords,
		Description:         assignment.Description,
		FeedbackCategoryIDs: uniqueIDs(categoryIDs),
		IsPublic:            assignment.IsPublic,
		MaxPlayCount:        assignment.MaxPlayCount,
		PlaybackRate:        assignment.PlaybackRate,
		TextFile:            assignment.TextFile,
	}

	audio := dto.AudioAsset{URL: assignment.AudioFileURL}

	return fields, audio, cloneRegions(assignment.SequentialRegions)
}

// AssignmentFormService manages the lifecycle of server-side authoring forms.
type AssignmentFormService interface {
	Open(ctx context.Context, classID uint, offsetMinutes int) (dto.AssignmentFormResponse, error)
	OpenExisting(ctx context.Context, assignmentID uint, offsetMinutes int) (dto.AssignmentFormResponse, error)
	Get(ctx context.Context, formID string) (dto.AssignmentFormResponse, error)
	UpdateFields(ctx context.Context, formID string, patch dto.AssignmentFieldsPatch) (dto.AssignmentFormResponse, error)
	SetAudio(ctx context.Context, formID string, asset dto.AudioAsset) (dto.AssignmentFormResponse, error)
	SetRegions(ctx context.Context, formID string, regions []models.Region) (dto.AssignmentFormResponse, error)
	Submit(ctx context.Context, formID string, opts SubmitOptions) (dto.AuthoringResult, error)
	Discard(ctx context.Context, formID string) error
}

type assignmentFormService struct {
	registry  *FormRegistry
	loader    *AssignmentFormLoader
	authoring AssignmentAuthoringService
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAssignmentFormService wires the registry, loader and authoring orchestrator.
func NewAssignmentFormService(registry *FormRegistry, loader *AssignmentFormLoader, authoring AssignmentAuthoringService, logger zerolog.Logger) AssignmentFormService {
	return &assignmentFormService{
		registry:  registry,
		loader:    loader,
		authoring: authoring,
		logger:    logger.With().Str("component", "assignment_form_service").Logger(),
		now:       time.Now,
	}
}

func (s *assignmentFormService) Open(_ context.Context, classID uint, offsetMinutes int) (dto.AssignmentFormResponse, error) {
	if classID == 0 {
		return dto.AssignmentFormResponse{}, newValidationError("class_id", "is required")
	}

	form := NewAssignmentForm(classID, offsetMinutes, s.now())
	s.registry.Add(form)
	s.logger.Debug().Str("form_id", form.ID()).Uint("class_id", classID).Msg("assignment form opened")

	return form.View(), nil
}

func (s *assignmentFormService) OpenExisting(ctx context.Context, assignmentID uint, offsetMinutes int) (dto.AssignmentFormResponse, error) {
	form, err := s.loader.LoadExisting(ctx, assignmentID, offsetMinutes)
	if err != nil {
		return dto.AssignmentFormResponse{}, err
	}

	s.registry.Add(form)
	s.logger.Debug().Str("form_id", form.ID()).Uint("assignment_id", assignmentID).Msg("assignment form loaded")

	return form.View(), nil
}

func (s *assignmentFormService) Get(_ context.Context, formID string) (dto.AssignmentFormResponse, error) {
	form, err := s.registry.Get(formID)
	if err != nil {
		return dto.AssignmentFormResponse{}, err
	}
	return form.View(), nil
}

func (s *assignmentFormService) UpdateFields(_ context.Context, formID string, patch dto.AssignmentFieldsPatch) (dto.AssignmentFormResponse, error) {
	form, err := s.registry.Get(formID)
	if err != nil {
		return dto.AssignmentFormResponse{}, err
	}
	if err := form.ApplyFields(patch); err != nil {
		return dto.AssignmentFormResponse{}, err
	}
	return form.View(), nil
}

func (s *assignmentFormService) SetAudio(_ context.Context, formID string, asset dto.AudioAsset) (dto.AssignmentFormResponse, error) {
	form, err := s.registry.Get(formID)
	if err != nil {
		return dto.AssignmentFormResponse{}, err
	}

	if len(asset.Data) > 0 {
		contentType, err := detectAudioType(asset.Data)
		if err != nil {
			return dto.AssignmentFormResponse{}, newValidationError("audio_file", err.Error())
		}
		asset.ContentType = contentType
	}

	form.SetAudio(asset)
	return form.View(), nil
}

func (s *assignmentFormService) SetRegions(_ context.Context, formID string, regions []models.Region) (dto.AssignmentFormResponse, error) {
	form, err := s.registry.Get(formID)
	if err != nil {
		return dto.AssignmentFormResponse{}, err
	}
	form.SetRegions(regions)
	return form.View(), nil
}

func (s *assignmentFormService) Submit(ctx context.Context, formID string, opts SubmitOptions) (dto.AuthoringResult, error) {
	form, err := s.registry.Get(formID)
	if err != nil {
		return dto.AuthoringResult{}, err
	}
	return s.authoring.Submit(ctx, form, opts)
}

func (s *assignmentFormService) Discard(_ context.Context, formID string) error {
	if err := s.registry.Remove(formID); err != nil {
		return err
	}
	s.logger.Debug().Str("form_id", formID).Msg("assignment form discarded")
	return nil
}
