package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-interpret-api/internal/middleware"
	"github.com/noah-isme/gema-interpret-api/internal/service"
	"github.com/noah-isme/gema-interpret-api/internal/utils"
)

const headerTimezoneOffset = "X-Timezone-Offset"

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func parseOptionalUintQuery(c *fiber.Ctx, key string) (*uint, error) {
	value := c.Query(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	result := uint(parsed)
	return &result, nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if id, ok := c.Locals(middleware.LocalUserID).(uint); ok {
		return id
	}
	return 0
}

// timezoneOffset reads the caller's offset in minutes (local + offset = UTC).
func timezoneOffset(c *fiber.Ctx) (int, error) {
	return service.ParseTimezoneOffset(c.Get(headerTimezoneOffset))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// respondError maps domain errors of resource endpoints to HTTP responses.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return utils.SendErrorWithFields(c, fiber.StatusBadRequest, "validation failed", validationErr.Fields)
	case errors.Is(err, service.ErrInvalidDateFormat),
		errors.Is(err, service.ErrAudioTypeNotAllowed),
		errors.Is(err, service.ErrFeedbackCategoryNotFound):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrFormNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrFormSubmitting),
		errors.Is(err, service.ErrFormAlreadySubmitted):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	default:
		requestLogger(logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

// respondSubmitError maps a failed submit. Failures reported by the assignment or
// submission services surface as 502 with the raw detail.
func respondSubmitError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var serviceErr *service.ServiceError
	var compensationErr *service.CompensationError
	if errors.As(err, &serviceErr) || errors.As(err, &compensationErr) || errors.Is(err, service.ErrStagingIncomplete) {
		requestLogger(logger, c).Warn().Err(err).Msg("assignment form save failed")
		return utils.SendError(c, fiber.StatusBadGateway, "save failed: "+err.Error())
	}

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) ||
		errors.Is(err, service.ErrFormNotFound) ||
		errors.Is(err, service.ErrFormSubmitting) ||
		errors.Is(err, service.ErrFormAlreadySubmitted) {
		return respondError(c, logger, err)
	}

	requestLogger(logger, c).Error().Err(err).Msg("assignment form save failed")
	return utils.SendError(c, fiber.StatusBadGateway, "save failed: "+err.Error())
}
