package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"nomenclator/internal/bootstrap"
	"nomenclator/internal/config"
	"nomenclator/internal/export"
	"nomenclator/internal/fieldblock"
	"nomenclator/internal/metrics"
	"nomenclator/internal/model"
	"nomenclator/internal/platform/database"
	"nomenclator/internal/transport/http/response"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	dir := t.TempDir()

	cfg, err := config.LoadFile(filepath.Join(dir, "absent.toml"))
	require.NoError(t, err)
	cfg.App.GinMode = gin.TestMode
	cfg.Database.Driver = database.DriverSQLite
	cfg.Database.SQLitePath = filepath.Join(dir, "nomenclature.db")
	cfg.Upload.Dir = filepath.Join(dir, "uploads")
	cfg.Redis.Enabled = false
	cfg.RabbitMQ.Enabled = false

	db, err := database.New(context.Background(), cfg.Database)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	app := &bootstrap.App{
		Config:    cfg,
		Logger:    zap.NewNop(),
		Metrics:   metrics.New(),
		DB:        db,
		StartedAt: time.Now(),
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func doUpload(t *testing.T, router *gin.Engine, path, field, filename, content string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestUpload(t *testing.T) {
	router := NewRouter(newTestApp(t))
	csv := "notes\n**Project**\nPRJ, ALT\n**Discipline**\nARC\n,STR,\n**Phase**\n"

	for _, path := range []string{"/api/v1/fields/upload", "/upload"} {
		t.Run(path, func(t *testing.T) {
			w, env := doUpload(t, router, path, "file", "fields.CSV", csv)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, response.CodeOK, env.Code)

			var data struct {
				Fields []fieldblock.FieldGroup `json:"fields"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &data))
			assert.Equal(t, []fieldblock.FieldGroup{
				{Name: "Project", Values: []string{"PRJ", "ALT"}},
				{Name: "Discipline", Values: []string{"ARC", "STR"}},
				{Name: "Phase", Values: []string{}},
			}, data.Fields)
		})
	}
}

func TestUploadEmptyValuesSerializeAsArray(t *testing.T) {
	router := NewRouter(newTestApp(t))

	w, env := doUpload(t, router, "/upload", "file", "f.csv", "**Name**\n")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"fields":[{"name":"Name","values":[]}]}`, string(env.Data))
}

func TestUploadRejects(t *testing.T) {
	router := NewRouter(newTestApp(t))

	tests := []struct {
		name     string
		field    string
		filename string
		wantCode int
	}{
		{name: "missing file part", field: "", wantCode: response.CodeBadRequest},
		{name: "wrong form field", field: "upload", filename: "f.csv", wantCode: response.CodeBadRequest},
		{name: "disallowed extension", field: "file", filename: "fields.txt", wantCode: response.CodeInvalidFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doUpload(t, router, "/api/v1/fields/upload", tt.field, tt.filename, "**A**\nx\n")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantCode, env.Code)
		})
	}
}

func TestSaveListExport(t *testing.T) {
	router := NewRouter(newTestApp(t))

	saves := []string{
		`{"nomenclature":"PRJ-ARC-001","project":"Tower","extension":"dwg","user":"ana"}`,
		`{"nomenclature":"PRJ-ARC-001","project":"Tower","extension":"dwg","user":"ana"}`,
		`{"nomenclature":"PRJ-STR-002","project":"Annex","extension":"pdf","user":"joan"}`,
	}
	for i, body := range saves {
		path := "/api/v1/nomenclatures"
		if i == 2 {
			path = "/save_nomenclature"
		}
		w, env := doJSON(t, router, http.MethodPost, path, body)
		require.Equal(t, http.StatusOK, w.Code)

		var data struct {
			Status  string `json:"status"`
			Message string `json:"message"`
			ID      uint   `json:"id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "success", data.Status)
		assert.Equal(t, "Nomenclature saved successfully", data.Message)
		assert.Equal(t, uint(i+1), data.ID)
	}

	w, env := doJSON(t, router, http.MethodGet, "/get_nomenclatures", "")
	require.Equal(t, http.StatusOK, w.Code)
	var records []model.Nomenclature
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 3)
	assert.Equal(t, "PRJ-STR-002", records[2].Nomenclature)
	assert.Equal(t, "joan", records[2].User)
	assert.NotEmpty(t, records[0].Date)
	assert.NotEmpty(t, records[0].Time)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nomenclatures/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.MediaType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=nomenclatures.xlsx", rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, len(records)+1)
	assert.Equal(t, export.Header, rows[0])
}

func TestListEmpty(t *testing.T) {
	router := NewRouter(newTestApp(t))

	w, env := doJSON(t, router, http.MethodGet, "/api/v1/nomenclatures", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestSaveMalformedBody(t *testing.T) {
	router := NewRouter(newTestApp(t))

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/nomenclatures", `{"nomenclature":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.CodeBadRequest, env.Code)
}

func TestCompose(t *testing.T) {
	router := NewRouter(newTestApp(t))

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/nomenclatures/compose", `{"separator":"-","values":["PRJ","","ARC"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"nomenclature":"PRJ-ARC"}`, string(env.Data))

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/nomenclatures/compose", `{"separator":"-"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStorageUnavailable(t *testing.T) {
	app := newTestApp(t)
	router := NewRouter(app)

	sqlDB, err := app.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/nomenclatures", `{"nomenclature":"X"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, response.CodeStorageUnavailable, env.Code)
	assert.Equal(t, "storage unavailable", env.Message)

	w, env = doJSON(t, router, http.MethodGet, "/export", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, response.CodeStorageUnavailable, env.Code)

	w, _ = doJSON(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router := NewRouter(newTestApp(t))

	w, _ := doJSON(t, router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "nomenclator", health["app"])

	doJSON(t, router, http.MethodPost, "/api/v1/nomenclatures", `{"nomenclature":"X"}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nomenclator_records_saved_total 1")
}
