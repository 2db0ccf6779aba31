package handler

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-interpret-api/internal/dto"
	"github.com/noah-isme/gema-interpret-api/internal/service"
	"github.com/noah-isme/gema-interpret-api/internal/utils"
)

const maxAudioUploadBytes = 50 << 20

// AssignmentFormHandler exposes the server-side authoring form.
type AssignmentFormHandler struct {
	service       service.AssignmentFormService
	validator     *validator.Validate
	submitLimiter fiber.Handler
	logger        zerolog.Logger
}

// NewAssignmentFormHandler constructs the handler. submitLimiter may be nil.
func NewAssignmentFormHandler(service service.AssignmentFormService, validator *validator.Validate, submitLimiter fiber.Handler, logger zerolog.Logger) *AssignmentFormHandler {
	if submitLimiter == nil {
		submitLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &AssignmentFormHandler{
		service:       service,
		validator:     validator,
		submitLimiter: submitLimiter,
		logger:        logger.With().Str("component", "assignment_form_handler").Logger(),
	}
}

// Register attaches authoring form endpoints to the router group.
func (h *AssignmentFormHandler) Register(router fiber.Router) {
	router.Post("", h.open)
	router.Post("/edit/:assignmentId", h.openExisting)
	router.Get("/:formId", h.get)
	router.Patch("/:formId", h.updateFields)
	router.Delete("/:formId", h.discard)
	router.Put("/:formId/audio", h.setAudio)
	router.Delete("/:formId/audio", h.clearAudio)
	router.Put("/:formId/regions", h.setRegions)
	router.Post("/:formId/submit", h.submitLimiter, h.submit)
}

func (h *AssignmentFormHandler) open(c *fiber.Ctx) error {
	offset, err := timezoneOffset(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AssignmentFormCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	form, err := h.service.Open(c.UserContext(), payload.ClassID, offset)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment form opened", form)
}

func (h *AssignmentFormHandler) openExisting(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	offset, err := timezoneOffset(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	form, err := h.service.OpenExisting(c.UserContext(), assignmentID, offset)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment form loaded", form)
}

func (h *AssignmentFormHandler) get(c *fiber.Ctx) error {
	form, err := h.service.Get(c.UserContext(), c.Params("formId"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment form retrieved", form)
}

func (h *AssignmentFormHandler) updateFields(c *fiber.Ctx) error {
	var patch dto.AssignmentFieldsPatch
	if err := c.BodyParser(&patch); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	form, err := h.service.UpdateFields(c.UserContext(), c.Params("formId"), patch)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment form updated", form)
}

func (h *AssignmentFormHandler) setAudio(c *fiber.Ctx) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "audio file is required")
	}
	if file.Size > maxAudioUploadBytes {
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "audio file is too large")
	}

	src, err := file.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to read audio file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxAudioUploadBytes))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to read audio file")
	}

	form, err := h.service.SetAudio(c.UserContext(), c.Params("formId"), dto.AudioAsset{
		FileName:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Data:        data,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment audio updated", form)
}

func (h *AssignmentFormHandler) clearAudio(c *fiber.Ctx) error {
	form, err := h.service.SetAudio(c.UserContext(), c.Params("formId"), dto.AudioAsset{})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment audio removed", form)
}

func (h *AssignmentFormHandler) setRegions(c *fiber.Ctx) error {
	var payload dto.AssignmentRegionsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	form, err := h.service.SetRegions(c.UserContext(), c.Params("formId"), payload.Regions)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment regions updated", form)
}

func (h *AssignmentFormHandler) submit(c *fiber.Ctx) error {
	offset, err := timezoneOffset(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	formID := c.Params("formId")
	result, err := h.service.Submit(c.UserContext(), formID, service.SubmitOptions{
		ActingUserID:  userID,
		OffsetMinutes: offset,
	})
	if err != nil {
		return respondSubmitError(c, h.logger, err)
	}

	requestLogger(h.logger, c).Info().
		Str("form_id", formID).
		Uint("assignment_id", result.AssignmentID).
		Str("mode", result.Mode).
		Msg("assignment form submitted")

	return utils.SendSuccess(c, result.Message, result)
}

func (h *AssignmentFormHandler) discard(c *fiber.Ctx) error {
	formID := strings.TrimSpace(c.Params("formId"))
	if err := h.service.Discard(c.UserContext(), formID); err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, fmt.Sprintf("assignment form %s discarded", formID), fiber.Map{"id": formID})
}
