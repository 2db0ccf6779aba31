package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/gema-interpret-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// setupTestDB opens an in-memory database private to the calling test.
func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

type recordingUploader struct {
	names []string
	err   error
}

func (u *recordingUploader) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	if _, err := io.ReadAll(reader); err != nil {
		return "", err
	}
	u.names = append(u.names, name)
	return "https://cdn.test/" + name, nil
}
