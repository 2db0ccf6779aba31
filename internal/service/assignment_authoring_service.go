package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-interpret-api/internal/dto"
	"github.com/noah-isme/gema-interpret-api/internal/models"
	"github.com/noah-isme/gema-interpret-api/internal/observability"
)

const (
	authoringPathEdit        = "edit"
	authoringPathCreate      = "create"
	authoringPathDevelopment = "create_development"

	authoringSavedMessage = "saved"
	authoringNavigateBack = "back"
)

// SubmitOptions carries the caller context of a submit attempt.
type SubmitOptions struct {
	ActingUserID  uint
	OffsetMinutes int
}

// AssignmentAuthoringService persists authoring forms.
type AssignmentAuthoringService interface {
	Submit(ctx context.Context, form *AssignmentForm, opts SubmitOptions) (dto.AuthoringResult, error)
}

type assignmentAuthoringService struct {
	assignments AssignmentService
	submissions SubmissionService
	validator   *validator.Validate
	events      EventPublisher
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewAssignmentAuthoringService constructs the authoring orchestrator. events may be nil.
func NewAssignmentAuthoringService(assignments AssignmentService, submissions SubmissionService, validate *validator.Validate, events EventPublisher, logger zerolog.Logger) AssignmentAuthoringService {
	return &assignmentAuthoringService{
		assignments: assignments,
		submissions: submissions,
		validator:   validate,
		events:      events,
		logger:      logger.With().Str("component", "assignment_authoring_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/gema-interpret-api/internal/service/authoring"),
	}
}

// Submit validates the form and runs the persistence sequence for its mode and type.
// A form that is already submitting or has succeeded is rejected without any call.
func (s *assignmentAuthoringService) Submit(ctx context.Context, form *AssignmentForm, opts SubmitOptions) (dto.AuthoringResult, error) {
	snapshot, err := form.beginSubmit()
	if err != nil {
		return dto.AuthoringResult{}, err
	}

	path := authoringPath(snapshot)
	start := time.Now()

	result, err := s.execute(ctx, snapshot, opts, path)
	form.finishSubmit(err)

	outcome := "succeeded"
	if err != nil {
		outcome = "failed"
		s.logger.Error().Err(err).Str("form_id", form.ID()).Str("path", path).Msg("assignment form submit failed")
	} else {
		s.logger.Info().Str("form_id", form.ID()).Str("path", path).Uint("assignment_id", result.AssignmentID).Msg("assignment form saved")
	}
	observability.AuthoringSubmissions().WithLabelValues(path, outcome).Inc()
	observability.AuthoringLatency().WithLabelValues(path).Observe(time.Since(start).Seconds())

	return result, err
}

func authoringPath(snapshot formSnapshot) string {
	switch {
	case snapshot.assignmentID != 0:
		return authoringPathEdit
	case snapshot.fields.AssignmentType == models.AssignmentTypeDevelopment:
		return authoringPathDevelopment
	default:
		return authoringPathCreate
	}
}

func (s *assignmentAuthoringService) execute(ctx context.Context, snapshot formSnapshot, opts SubmitOptions, path string) (dto.AuthoringResult, error) {
	ctx, span := s.tracer.Start(ctx, "authoring.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("authoring.path", path),
		attribute.String("authoring.assignment_type", string(snapshot.fields.AssignmentType)),
		attribute.Int("authoring.region_count", len(snapshot.regions)),
	)

	if err := validateSnapshot(s.validator, snapshot); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AuthoringResult{}, err
	}

	payload, err := buildAssignmentPayload(snapshot, opts.OffsetMinutes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "payload_failed")
		return dto.AuthoringResult{}, err
	}

	var result dto.AuthoringResult
	switch path {
	case authoringPathEdit:
		result, err = s.patch(ctx, snapshot.assignmentID, payload)
	case authoringPathDevelopment:
		result, err = s.createDevelopment(ctx, payload, snapshot.audio, opts.ActingUserID)
	default:
		result, err = s.create(ctx, payload)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist_failed")
		return dto.AuthoringResult{}, err
	}

	span.SetAttributes(attribute.Int64("authoring.assignment_id", int64(result.AssignmentID)))
	s.publish(ctx, EventAssignmentSaved, AssignmentSavedEvent{
		AssignmentID:   result.AssignmentID,
		ClassID:        payload.ClassID,
		AssignmentType: string(snapshot.fields.AssignmentType),
		Mode:           result.Mode,
		ActorID:        opts.ActingUserID,
	})

	return result, nil
}

func buildAssignmentPayload(snapshot formSnapshot, offsetMinutes int) (dto.AssignmentPayload, error) {
	fields := snapshot.fields

	variant, err := ClassifyAssignmentType(fields.AssignmentType)
	if err != nil {
		return dto.AssignmentPayload{}, err
	}
	resetHiddenPlayback(&fields, variant)

	dueDate, err := DueDateToAbsolute(fields.DueDateTime, offsetMinutes)
	if err != nil {
		return dto.AssignmentPayload{}, newValidationError("due_date_time", err.Error())
	}

	week := 0
	if fields.WeekNumber != nil {
		week = *fields.WeekNumber
	}

	return dto.AssignmentPayload{
		ClassID:             fields.ClassID,
		WeekNumber:          week,
		DueDateTime:         dueDate,
		Name:                fields.Name,
		AssignmentType:      fields.AssignmentType,
		Keywords:            fields.Keywords,
		Description:         fields.Description,
		FeedbackCategoryIDs: append([]uint{}, fields.FeedbackCategoryIDs...),
		IsPublic:            fields.IsPublic,
		MaxPlayCount:        fields.MaxPlayCount,
		PlaybackRate:        fields.PlaybackRate,
		TextFile:            fields.TextFile,
		AudioFile:           snapshot.audio,
		SequentialRegions:   cloneRegions(snapshot.regions),
	}, nil
}

func (s *assignmentAuthoringService) patch(ctx context.Context, id uint, payload dto.AssignmentPayload) (dto.AuthoringResult, error) {
	if _, err := s.assignments.Patch(ctx, id, payload); err != nil {
		return dto.AuthoringResult{}, &ServiceError{Op: "assignment.patch", Err: err}
	}

	return dto.AuthoringResult{
		Mode:         formModeEdit,
		AssignmentID: id,
		Message:      authoringSavedMessage,
		Navigate:     authoringNavigateBack,
	}, nil
}

func (s *assignmentAuthoringService) create(ctx context.Context, payload dto.AssignmentPayload) (dto.AuthoringResult, error) {
	created, err := s.assignments.Create(ctx, payload)
	if err != nil {
		return dto.AuthoringResult{}, &ServiceError{Op: "assignment.create", Err: err}
	}

	return dto.AuthoringResult{
		Mode:         formModeCreate,
		AssignmentID: created.ID,
		Message:      authoringSavedMessage,
		Navigate:     authoringNavigateBack,
	}, nil
}

// createDevelopment stores the assignment as SIMULTANEOUS without instructor audio and
// provisions the instructor's recording as a staged submission. A failed submission
// create deletes the assignment again; a failed stage leaves both records in place.
func (s *assignmentAuthoringService) createDevelopment(ctx context.Context, payload dto.AssignmentPayload, audio dto.AudioAsset, actingUserID uint) (dto.AuthoringResult, error) {
	flow := newSaga("development_assignment", s.logger)

	payload.AssignmentType = models.AssignmentTypeSimultaneous
	payload.AudioFile = dto.AudioAsset{}

	var assignment dto.AssignmentResponse
	err := flow.Run(ctx, "assignment.create",
		func(ctx context.Context) error {
			created, err := s.assignments.Create(ctx, payload)
			if err != nil {
				return &ServiceError{Op: "assignment.create", Err: err}
			}
			assignment = created
			return nil
		},
		func(ctx context.Context) error {
			return s.assignments.Delete(ctx, assignment.ID)
		},
	)
	if err != nil {
		return dto.AuthoringResult{}, flow.Abort(ctx, err)
	}

	var submission dto.SubmissionResponse
	err = flow.Run(ctx, "submission.create",
		func(ctx context.Context) error {
			created, err := s.submissions.Create(ctx, dto.SubmissionCreateRequest{
				AssignmentID:      assignment.ID,
				StudentID:         actingUserID,
				AudioFile:         audio,
				TextFile:          "",
				PlayCount:         nil,
				PlaybackRate:      nil,
				SequentialRegions: []models.Region{},
				Staged:            false,
			})
			if err != nil {
				return &ServiceError{Op: "submission.create", Err: err}
			}
			submission = created
			return nil
		},
		nil,
	)
	if err != nil {
		return dto.AuthoringResult{}, flow.Abort(ctx, err)
	}

	if _, err := s.submissions.Stage(ctx, submission.ID); err != nil {
		s.logger.Warn().
			Err(err).
			Uint("assignment_id", assignment.ID).
			Uint("submission_id", submission.ID).
			Strs("completed_steps", flow.Completed()).
			Msg("development submission left unstaged")
		return dto.AuthoringResult{}, fmt.Errorf("%w (assignment %d, submission %d): %w",
			ErrStagingIncomplete, assignment.ID, submission.ID, &ServiceError{Op: "submission.stage", Err: err})
	}

	s.publish(ctx, EventSubmissionStaged, SubmissionStagedEvent{
		AssignmentID: assignment.ID,
		SubmissionID: submission.ID,
		StudentID:    actingUserID,
	})

	submissionID := submission.ID
	return dto.AuthoringResult{
		Mode:         formModeCreate,
		AssignmentID: assignment.ID,
		SubmissionID: &submissionID,
		Message:      authoringSavedMessage,
		Navigate:     authoringNavigateBack,
	}, nil
}

func (s *assignmentAuthoringService) publish(ctx context.Context, subject string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, subject, payload); err != nil {
		s.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish authoring event")
	}
}
