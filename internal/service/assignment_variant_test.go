package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-interpret-api/internal/dto"
	"github.com/noah-isme/gema-interpret-api/internal/models"
)

func TestClassifyAssignmentType(t *testing.T) {
	cases := []struct {
		input     models.AssignmentType
		playback  bool
		persisted models.AssignmentType
		editor    EditorKind
	}{
		{models.AssignmentTypeTranslation, false, models.AssignmentTypeTranslation, EditorKindText},
		{models.AssignmentTypeSequential, true, models.AssignmentTypeSequential, EditorKindAudioRegion},
		{models.AssignmentTypeSimultaneous, true, models.AssignmentTypeSimultaneous, EditorKindTextAudio},
		{models.AssignmentTypeDevelopment, true, models.AssignmentTypeSimultaneous, EditorKindTextAudio},
	}

	for _, tc := range cases {
		variant, err := ClassifyAssignmentType(tc.input)
		require.NoError(t, err, tc.input)
		require.Equal(t, tc.playback, variant.ShowPlaybackControls, tc.input)
		require.Equal(t, tc.persisted, variant.PersistedType, tc.input)
		require.Equal(t, tc.editor, variant.EditorKind, tc.input)
	}
}

func TestClassifyAssignmentTypeRejectsUnknown(t *testing.T) {
	_, err := ClassifyAssignmentType("QUIZ")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Fields, "assignment_type")
}

func TestDispatchEditorSelectsSection(t *testing.T) {
	section, err := DispatchEditor[dto.EditorSection](models.AssignmentTypeSequential, editorSectionVisitor{})
	require.NoError(t, err)
	require.Equal(t, dto.EditorSection{Kind: string(EditorKindAudioRegion), Audio: true, Regions: true}, section)

	section, err = DispatchEditor[dto.EditorSection](models.AssignmentTypeDevelopment, editorSectionVisitor{})
	require.NoError(t, err)
	require.True(t, section.Text)
	require.True(t, section.Audio)
	require.False(t, section.Regions)
}

func TestResetHiddenPlayback(t *testing.T) {
	fields := dto.AssignmentFields{MaxPlayCount: 3, PlaybackRate: 1.5}

	variant, err := ClassifyAssignmentType(models.AssignmentTypeSequential)
	require.NoError(t, err)
	resetHiddenPlayback(&fields, variant)
	require.Equal(t, 3, fields.MaxPlayCount)
	require.Equal(t, 1.5, fields.PlaybackRate)

	variant, err = ClassifyAssignmentType(models.AssignmentTypeTranslation)
	require.NoError(t, err)
	resetHiddenPlayback(&fields, variant)
	require.Equal(t, models.PlayCountUnlimited, fields.MaxPlayCount)
	require.Equal(t, models.DefaultPlaybackRate, fields.PlaybackRate)
}

func TestPlayCountOptionsOfferUnlimitedOnly(t *testing.T) {
	require.Len(t, maxPlayCountOptions, 1)
	require.True(t, isOfferedPlayCount(models.PlayCountUnlimited))
	require.False(t, isOfferedPlayCount(models.PlayCountOnce))
	require.False(t, isOfferedPlayCount(models.PlayCountThrice))
}
