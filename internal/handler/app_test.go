package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/gema-interpret-api/internal/config"
	"github.com/noah-isme/gema-interpret-api/internal/handler"
	"github.com/noah-isme/gema-interpret-api/internal/middleware"
	"github.com/noah-isme/gema-interpret-api/internal/models"
	"github.com/noah-isme/gema-interpret-api/internal/repository"
	"github.com/noah-isme/gema-interpret-api/internal/router"
	"github.com/noah-isme/gema-interpret-api/internal/service"
)

const kstOffset = "-540"

type testUploader struct {
	names []string
	err   error
}

func (u *testUploader) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	if _, err := io.ReadAll(reader); err != nil {
		return "", err
	}
	u.names = append(u.names, name)
	return "https://files.test/" + name, nil
}

type testApp struct {
	app      *fiber.App
	db       *gorm.DB
	uploader *testUploader
	role     string
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.FeedbackCategory{}, &models.Assignment{}, &models.Submission{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	validate := service.NewValidator()
	log := zerolog.New(io.Discard)
	uploader := &testUploader{}

	assignmentRepo := repository.NewAssignmentRepository(db)
	assignmentService := service.NewAssignmentService(assignmentRepo, repository.NewFeedbackCategoryRepository(db), validate, uploader, nil, 0, log)
	submissionService := service.NewSubmissionService(repository.NewSubmissionRepository(db), assignmentRepo, validate, uploader, log)
	authoring := service.NewAssignmentAuthoringService(assignmentService, submissionService, validate, nil, log)
	formService := service.NewAssignmentFormService(
		service.NewFormRegistry(0, log),
		service.NewAssignmentFormLoader(assignmentService),
		authoring,
		log,
	)

	harness := &testApp{db: db, uploader: uploader, role: middleware.RoleTeacher}

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", AppEnv: "test"}, router.Dependencies{
		AssignmentFormHandler: handler.NewAssignmentFormHandler(formService, validate, nil, log),
		AssignmentHandler:     handler.NewAssignmentHandler(assignmentService, log),
		SubmissionHandler:     handler.NewSubmissionHandler(submissionService, log),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals(middleware.LocalUserID, uint(77))
			c.Locals(middleware.LocalUserRole, harness.role)
			return c.Next()
		},
		InstructorMiddleware: middleware.RequireInstructor(),
	})
	harness.app = app

	return harness
}

func (h *testApp) do(t *testing.T, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	return h.send(t, newJSONRequest(t, method, path, body))
}

func newJSONRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Timezone-Offset", kstOffset)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return req
}

func (h *testApp) upload(t *testing.T, path, filename string, data []byte) (*http.Response, envelope) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("audio", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	return h.send(t, req)
}

func (h *testApp) send(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	}
	return resp, payload
}

func decodeData(t *testing.T, payload envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(payload.Data, target))
}

func wavBytes() []byte {
	header := []byte("RIFF\x24\x00\x00\x00WAVEfmt ")
	return append(header, make([]byte, 64)...)
}
