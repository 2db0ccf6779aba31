package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-interpret-api/internal/models"
)

func TestAssignmentFormContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("testdata", "assignment_form.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	h := setupTestApp(t)
	form := openForm(t, h)
	fillForm(t, h, form.ID, models.AssignmentTypeSequential)

	_, payload := h.do(t, http.MethodPut, "/api/v2/assignment-forms/"+form.ID+"/regions", fiber.Map{
		"regions": []models.Region{{Start: 0, End: 3.5}},
	})
	require.True(t, payload.Success)

	resp, err := h.app.Test(newJSONRequest(t, http.MethodGet, "/api/v2/assignment-forms/"+form.ID, nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var document interface{}
	require.NoError(t, json.Unmarshal(body, &document))
	require.NoError(t, schema.Validate(document))
}
