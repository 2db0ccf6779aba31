package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-interpret-api/internal/dto"
	"github.com/noah-isme/gema-interpret-api/internal/models"
	"github.com/noah-isme/gema-interpret-api/internal/repository"
)

func newSubmissionFixture(t *testing.T) (SubmissionService, *recordingUploader, models.Assignment) {
	t.Helper()
	db := setupTestDB(t)

	assignment := models.Assignment{
		ClassID:        7,
		WeekNumber:     3,
		DueDateTime:    time.Date(2024, 3, 8, 1, 0, 0, 0, time.UTC),
		Name:           "Week 3",
		AssignmentType: models.AssignmentTypeSimultaneous,
		PlaybackRate:   1.0,
	}
	require.NoError(t, db.Create(&assignment).Error)

	uploader := &recordingUploader{}
	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssignmentRepository(db),
		newTestValidator(),
		uploader,
		testLogger(),
	)
	svc.(*submissionService).now = func() time.Time {
		return time.Date(2024, 3, 2, 12, 0, 0, 0, time.FixedZone("KST", 9*3600))
	}

	return svc, uploader, assignment
}

func TestSubmissionServiceCreateRequiresAssignment(t *testing.T) {
	svc, _, _ := newSubmissionFixture(t)

	_, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{AssignmentID: 404, StudentID: 77})
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestSubmissionServiceCreateUploadsAudio(t *testing.T) {
	svc, uploader, assignment := newSubmissionFixture(t)

	created, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID:      assignment.ID,
		StudentID:         77,
		AudioFile:         dto.AudioAsset{Data: wavBytes()},
		SequentialRegions: []models.Region{},
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, []string{"submissions/recording.wav"}, uploader.names)
	require.Equal(t, "https://cdn.test/submissions/recording.wav", created.AudioFileURL)
	require.False(t, created.Staged)
	require.Nil(t, created.StagedAt)
	require.Nil(t, created.PlayCount)
	require.Nil(t, created.PlaybackRate)
}

func TestSubmissionServiceCreateValidates(t *testing.T) {
	svc, _, assignment := newSubmissionFixture(t)

	_, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{AssignmentID: assignment.ID})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Fields, "student_id")
}

func TestSubmissionServiceStageIsIdempotent(t *testing.T) {
	svc, _, assignment := newSubmissionFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.SubmissionCreateRequest{AssignmentID: assignment.ID, StudentID: 77})
	require.NoError(t, err)

	staged, err := svc.Stage(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, staged.Staged)
	require.NotNil(t, staged.StagedAt)
	require.Equal(t, time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC), staged.StagedAt.UTC())

	svc.(*submissionService).now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	again, err := svc.Stage(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, again.Staged)
	require.True(t, again.StagedAt.Equal(*staged.StagedAt))
}

func TestSubmissionServiceStageUnknown(t *testing.T) {
	svc, _, _ := newSubmissionFixture(t)

	_, err := svc.Stage(context.Background(), 404)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestSubmissionServiceListFilters(t *testing.T) {
	svc, _, assignment := newSubmissionFixture(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, dto.SubmissionCreateRequest{AssignmentID: assignment.ID, StudentID: 77})
	require.NoError(t, err)
	_, err = svc.Create(ctx, dto.SubmissionCreateRequest{AssignmentID: assignment.ID, StudentID: 78})
	require.NoError(t, err)
	_, err = svc.Stage(ctx, first.ID)
	require.NoError(t, err)

	staged := true
	items, err := svc.List(ctx, dto.SubmissionFilter{Staged: &staged})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, uint(77), items[0].StudentID)

	student := uint(78)
	items, err = svc.List(ctx, dto.SubmissionFilter{AssignmentID: &assignment.ID, StudentID: &student})
	require.NoError(t, err)
	require.Len(t, items, 1)
}
