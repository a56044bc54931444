package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"signoff-api/internal/client"
	"signoff-api/internal/config"
	"signoff-api/internal/database"
	"signoff-api/internal/metrics"
	"signoff-api/internal/response"
)

// setupTestRouter creates a router over an in-memory database
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	m := metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())

	return Setup(Config{
		DB:       db,
		Logger:   zap.NewNop(),
		Metrics:  m,
		S3Client: client.NewMockS3Client(),
		Upload: config.UploadConfig{
			MaxFileSize:      50 * 1024 * 1024,
			AllowedMimeTypes: []string{"image/png", "application/pdf"},
		},
		BasePath:       "/api",
		AllowedOrigins: []string{"http://localhost:3000"},
	})
}

// createProject posts a project through the API and returns the envelope data
func createProject(t *testing.T, r *gin.Engine, name string) map[string]interface{} {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"name": name})
	req := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	return data
}

func TestHealthEndpoints(t *testing.T) {
	r := setupTestRouter(t)

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# HELP")
}

func TestCreateProjectEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	data := createProject(t, r, "Logo Redesign")

	assert.Equal(t, "Logo Redesign", data["name"])
	assert.Equal(t, "PENDING", data["status"])
	assert.Len(t, data["adminToken"], 64)
	assert.Len(t, data["publicToken"], 64)
	assert.NotEqual(t, data["adminToken"], data["publicToken"])
}

func TestCreateProjectEndpoint_RejectsEmptyName(t *testing.T) {
	r := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewReader([]byte(`{"name":""}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutesRequireBearerToken(t *testing.T) {
	r := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/admin", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRejectPublicToken(t *testing.T) {
	r := setupTestRouter(t)
	data := createProject(t, r, "Logo Redesign")

	req := httptest.NewRequest(http.MethodGet, "/api/projects/admin", nil)
	req.Header.Set("Authorization", "Bearer "+data["publicToken"].(string))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminView(t *testing.T) {
	r := setupTestRouter(t)
	data := createProject(t, r, "Logo Redesign")

	req := httptest.NewRequest(http.MethodGet, "/api/projects/admin", nil)
	req.Header.Set("Authorization", "Bearer "+data["adminToken"].(string))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)

	view := envelope.Data.(map[string]interface{})
	assert.Equal(t, "Logo Redesign", view["name"])
}

func TestPublicView(t *testing.T) {
	r := setupTestRouter(t)
	data := createProject(t, r, "Logo Redesign")

	req := httptest.NewRequest(http.MethodGet, "/api/projects/view/"+data["publicToken"].(string), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	view := envelope.Data.(map[string]interface{})

	// The public projection never leaks the capability tokens
	assert.Equal(t, "Logo Redesign", view["name"])
	assert.NotContains(t, view, "adminToken")
	assert.NotContains(t, view, "publicToken")
}

func TestPublicView_UnknownToken(t *testing.T) {
	r := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/view/deadbeef", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitDecisionEndpoint(t *testing.T) {
	r := setupTestRouter(t)
	data := createProject(t, r, "Logo Redesign")
	publicToken := data["publicToken"].(string)

	body := []byte(`{"decision":"CHANGES_REQUESTED","comment":"More contrast please"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+publicToken+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	result := envelope.Data.(map[string]interface{})
	assert.Equal(t, "CHANGES_REQUESTED", result["status"])
}

func TestSubmitDecisionEndpoint_InvalidDecision(t *testing.T) {
	r := setupTestRouter(t)
	data := createProject(t, r, "Logo Redesign")
	publicToken := data["publicToken"].(string)

	body := []byte(`{"decision":"MAYBE"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+publicToken+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApprovedProjectLocksStatusEndpoint(t *testing.T) {
	r := setupTestRouter(t)
	data := createProject(t, r, "Logo Redesign")
	publicToken := data["publicToken"].(string)

	approve := []byte(`{"decision":"APPROVED"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+publicToken+"/status", bytes.NewReader(approve))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	retract := []byte(`{"decision":"CHANGES_REQUESTED","comment":"wait"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/projects/"+publicToken+"/status", bytes.NewReader(retract))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusLocked, w.Code)
}

func TestStorageRoutesRequireAuth(t *testing.T) {
	r := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/storage/files", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStorageSignAndConfirm(t *testing.T) {
	r := setupTestRouter(t)
	data := createProject(t, r, "Logo Redesign")
	adminToken := data["adminToken"].(string)

	signBody := []byte(`{"filename":"logo.png","mimetype":"image/png","size":2048}`)
	req := httptest.NewRequest(http.MethodPost, "/api/storage/sign-url", bytes.NewReader(signBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	signed := envelope.Data.(map[string]interface{})
	require.NotEmpty(t, signed["uploadUrl"])
	key := signed["key"].(string)

	confirmBody, _ := json.Marshal(map[string]interface{}{
		"key":      key,
		"filename": "logo.png",
		"mimetype": "image/png",
		"size":     2048,
	})
	req = httptest.NewRequest(http.MethodPost, "/api/storage/confirm", bytes.NewReader(confirmBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	file := envelope.Data.(map[string]interface{})
	assert.Equal(t, "logo.png", file["filename"])
	assert.Equal(t, key, file["storageKey"])
}
