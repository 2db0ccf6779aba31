package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-interpret-api/internal/dto"
	"github.com/noah-isme/gema-interpret-api/internal/models"
	"github.com/noah-isme/gema-interpret-api/internal/repository"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

const submissionAudioFolder = "submissions"

// SubmissionService orchestrates submission workflows.
type SubmissionService interface {
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	Create(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Stage(ctx context.Context, id uint) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	uploader    FileUploader
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, validate *validator.Validate, uploader FileUploader, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		assignments: assignmentRepo,
		validator:   validate,
		uploader:    uploader,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, validationErrorFrom(err)
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{
		AssignmentID: filter.AssignmentID,
		StudentID:    filter.StudentID,
		Staged:       filter.Staged,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Create(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, validationErrorFrom(err)
	}
	if err := validateRegions(payload.SequentialRegions); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.assignments.GetByID(ctx, payload.AssignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	audioURL, err := storeAudio(ctx, s.uploader, submissionAudioFolder, payload.AudioFile)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	regions := make([]models.Region, len(payload.SequentialRegions))
	copy(regions, payload.SequentialRegions)

	submission := models.Submission{
		AssignmentID:      payload.AssignmentID,
		StudentID:         payload.StudentID,
		AudioFileURL:      audioURL,
		TextFile:          payload.TextFile,
		PlayCount:         payload.PlayCount,
		PlaybackRate:      payload.PlaybackRate,
		SequentialRegions: regions,
		Staged:            payload.Staged,
	}
	if submission.Staged {
		stagedAt := s.now().UTC()
		submission.StagedAt = &stagedAt
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assignment_id", submission.AssignmentID).
		Msg("submission created")

	return dto.NewSubmissionResponse(submission), nil
}

// Stage marks a submission as finalized. Staging an already staged submission is a no-op.
func (s *submissionService) Stage(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if submission.IsStaged() {
		return dto.NewSubmissionResponse(submission), nil
	}

	stagedAt := s.now().UTC()
	submission.Staged = true
	submission.StagedAt = &stagedAt

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", submission.ID).Msg("submission staged")

	return dto.NewSubmissionResponse(submission), nil
}
