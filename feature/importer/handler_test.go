package importer

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"content-importer/feature/importer/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) (*fiber.App, *memGateway) {
	t.Helper()

	gw := newMemGateway(testRelations)
	feature := NewFeature(gw, zap.NewNop())
	require.True(t, feature.IsEnabled())

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app, gw
}

func postImport(t *testing.T, app *fiber.App, body any) (*http.Response, []byte) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, "/import", bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, payload
}

func TestHandleImport_JSON(t *testing.T) {
	app, gw := newTestApp(t)

	resp, payload := postImport(t, app, fiber.Map{
		"collection": "articles",
		"format":     "json",
		"actorId":    "actor-1",
		"data": []fiber.Map{
			{"title": "Hello", "author": fiber.Map{"name": "Ada"}},
		},
	})

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report models.ImportReport
	require.NoError(t, json.Unmarshal(payload, &report))
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 0, report.Failed)

	assert.Equal(t, 1, gw.rowCount("articles"))
	assert.Equal(t, 1, gw.rowCount("users"))
}

func TestHandleImport_CSVDataIsString(t *testing.T) {
	app, gw := newTestApp(t)

	resp, payload := postImport(t, app, fiber.Map{
		"collection": "articles",
		"format":     "csv",
		"data":       "title,views\nHello,3\n",
	})

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report models.ImportReport
	require.NoError(t, json.Unmarshal(payload, &report))
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, gw.rowCount("articles"))
}

func TestHandleImport_BadRequests(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"missing collection", fiber.Map{"format": "json", "data": []fiber.Map{}}},
		{"missing data", fiber.Map{"collection": "articles", "format": "json"}},
		{"csv data not a string", fiber.Map{"collection": "articles", "format": "csv", "data": []fiber.Map{}}},
		{"unsupported format", fiber.Map{"collection": "articles", "format": "xml", "data": []fiber.Map{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postImport(t, app, tt.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandleImport_ParseErrorIsBadRequest(t *testing.T) {
	app, _ := newTestApp(t)

	// Structurally valid request whose document is not a record array.
	resp, payload := postImport(t, app, fiber.Map{
		"collection": "articles",
		"format":     "json",
		"data":       []int{1, 2, 3},
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(payload), "error")
}

func TestHandleImport_ReportsRowFailures(t *testing.T) {
	app, gw := newTestApp(t)
	gw.failCreate["articles"] = assert.AnError

	resp, payload := postImport(t, app, fiber.Map{
		"collection": "articles",
		"format":     "json",
		"data":       []fiber.Map{{"title": "doomed"}},
	})

	// Row-level failures are a successful response with a non-empty report.
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report models.ImportReport
	require.NoError(t, json.Unmarshal(payload, &report))
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "doomed", report.Failures[0].Data["title"])
}

func TestFeature_DisabledWithoutGateway(t *testing.T) {
	feature := NewFeature(nil, zap.NewNop())
	assert.False(t, feature.IsEnabled())
	assert.Equal(t, "importer", feature.Name())
}
