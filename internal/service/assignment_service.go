package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-interpret-api/internal/dto"
	"github.com/noah-isme/gema-interpret-api/internal/models"
	"github.com/noah-isme/gema-interpret-api/internal/observability"
	"github.com/noah-isme/gema-interpret-api/internal/repository"
)

var (
	// ErrAssignmentNotFound indicates the requested assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrFeedbackCategoryNotFound indicates a referenced feedback category does not exist.
	ErrFeedbackCategoryNotFound = errors.New("feedback category not found")
)

const assignmentAudioFolder = "assignments"

// AssignmentService exposes assignment domain use cases.
type AssignmentService interface {
	List(ctx context.Context, classID *uint) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, payload dto.AssignmentPayload) (dto.AssignmentResponse, error)
	Patch(ctx context.Context, id uint, payload dto.AssignmentPayload) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id uint) error
}

type assignmentService struct {
	repo       repository.AssignmentRepository
	categories repository.FeedbackCategoryRepository
	validator  *validator.Validate
	uploader   FileUploader
	sanitizer  *bluemonday.Policy
	cache      *redis.Client
	ttl        time.Duration
	logger     zerolog.Logger
}

// NewAssignmentService builds a new assignment service. cache may be nil.
func NewAssignmentService(repo repository.AssignmentRepository, categories repository.FeedbackCategoryRepository, validate *validator.Validate, uploader FileUploader, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AssignmentService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &assignmentService{
		repo:       repo,
		categories: categories,
		validator:  validate,
		uploader:   uploader,
		sanitizer:  bluemonday.UGCPolicy(),
		cache:      cache,
		ttl:        ttl,
		logger:     logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) List(ctx context.Context, classID *uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repo.List(ctx, repository.AssignmentFilter{ClassID: classID})
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	if cached, ok := s.fetchCache(ctx, id); ok {
		observability.AssignmentCacheRequests().WithLabelValues("hit").Inc()
		return cached, nil
	}

	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}

		return dto.AssignmentResponse{}, err
	}

	response := dto.NewAssignmentResponse(assignment)
	s.writeCache(ctx, response)
	observability.AssignmentCacheRequests().WithLabelValues("miss").Inc()

	return response, nil
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentPayload) (dto.AssignmentResponse, error) {
	if err := s.validatePayload(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	categories, err := s.resolveCategories(ctx, payload.FeedbackCategoryIDs)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	audioURL, err := storeAudio(ctx, s.uploader, assignmentAudioFolder, payload.AudioFile)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{FeedbackCategories: categories}
	s.applyPayload(&assignment, payload, audioURL)

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("class_id", assignment.ClassID).
		Str("assignment_type", string(assignment.AssignmentType)).
		Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Patch(ctx context.Context, id uint, payload dto.AssignmentPayload) (dto.AssignmentResponse, error) {
	if err := s.validatePayload(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}

		return dto.AssignmentResponse{}, err
	}

	categories, err := s.resolveCategories(ctx, payload.FeedbackCategoryIDs)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	audioURL, err := storeAudio(ctx, s.uploader, assignmentAudioFolder, payload.AudioFile)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.applyPayload(&assignment, payload, audioURL)
	assignment.FeedbackCategories = categories

	if err := s.repo.Update(ctx, &assignment); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}
	s.invalidateCache(ctx, id)

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}
	s.invalidateCache(ctx, id)

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	return nil
}

func (s *assignmentService) validatePayload(payload dto.AssignmentPayload) error {
	result := &ValidationError{}
	if err := s.validator.Struct(payload); err != nil {
		result = validationErrorFrom(err)
	}
	checkAssignmentRanges(result, &payload.WeekNumber, payload.PlaybackRate)
	if !result.empty() {
		return result
	}
	return validateRegions(payload.SequentialRegions)
}

// checkAssignmentRanges adds errors for a week outside the semester or a playback rate
// the player cannot use. A nil week is left to the required check.
func checkAssignmentRanges(result *ValidationError, week *int, rate float64) {
	if week != nil && (*week < models.MinWeekNumber || *week > models.MaxWeekNumber) {
		result.add("week_number", fmt.Sprintf("must be between %d and %d", models.MinWeekNumber, models.MaxWeekNumber))
	}
	if rate < models.MinPlaybackRate || rate > models.MaxPlaybackRate {
		result.add("playback_rate", fmt.Sprintf("must be between %.1f and %.1f", models.MinPlaybackRate, models.MaxPlaybackRate))
	}
}

// validateRegions rejects regions with negative bounds or an end before the start.
// Ordering and overlap between regions are not checked.
func validateRegions(regions []models.Region) error {
	for i, region := range regions {
		if region.Start < 0 || region.End < region.Start {
			return newValidationError("sequential_regions", fmt.Sprintf("region %d must satisfy 0 <= start <= end", i))
		}
	}
	return nil
}

func (s *assignmentService) applyPayload(assignment *models.Assignment, payload dto.AssignmentPayload, audioURL string) {
	regions := make([]models.Region, len(payload.SequentialRegions))
	copy(regions, payload.SequentialRegions)

	assignment.ClassID = payload.ClassID
	assignment.WeekNumber = payload.WeekNumber
	assignment.DueDateTime = payload.DueDateTime.UTC()
	assignment.Name = strings.TrimSpace(payload.Name)
	assignment.AssignmentType = payload.AssignmentType.PersistedType()
	assignment.Keywords = strings.TrimSpace(payload.Keywords)
	assignment.Description = s.sanitizer.Sanitize(payload.Description)
	assignment.IsPublic = payload.IsPublic
	assignment.MaxPlayCount = payload.MaxPlayCount
	assignment.PlaybackRate = payload.PlaybackRate
	assignment.TextFile = payload.TextFile
	assignment.AudioFileURL = audioURL
	assignment.SequentialRegions = regions
}

func (s *assignmentService) resolveCategories(ctx context.Context, ids []uint) ([]models.FeedbackCategory, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []models.FeedbackCategory{}, nil
	}

	categories, err := s.categories.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(categories) != len(ids) {
		return nil, ErrFeedbackCategoryNotFound
	}

	return categories, nil
}

func (s *assignmentService) cacheKey(id uint) string {
	return fmt.Sprintf("assignment:%d", id)
}

func (s *assignmentService) fetchCache(ctx context.Context, id uint) (dto.AssignmentResponse, bool) {
	if s.cache == nil {
		return dto.AssignmentResponse{}, false
	}
	payload, err := s.cache.Get(ctx, s.cacheKey(id)).Result()
	if err != nil {
		return dto.AssignmentResponse{}, false
	}

	var result dto.AssignmentResponse
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		s.logger.Warn().Err(err).Uint("assignment_id", id).Msg("failed to decode assignment cache")
		return dto.AssignmentResponse{}, false
	}
	return result, true
}

func (s *assignmentService) writeCache(ctx context.Context, response dto.AssignmentResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(response)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode assignment cache")
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(response.ID), payload, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store assignment cache")
	}
}

func (s *assignmentService) invalidateCache(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cacheKey(id)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("assignment_id", id).Msg("failed to invalidate assignment cache")
	}
}
