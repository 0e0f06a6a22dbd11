package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicmgr/clinic-api/internal/handler"
	appointmentHandler "github.com/clinicmgr/clinic-api/internal/handler/appointment"
	authHandler "github.com/clinicmgr/clinic-api/internal/handler/auth"
	diagnosisHandler "github.com/clinicmgr/clinic-api/internal/handler/diagnosis"
	doctorHandler "github.com/clinicmgr/clinic-api/internal/handler/doctor"
	fileHandler "github.com/clinicmgr/clinic-api/internal/handler/file"
	patientHandler "github.com/clinicmgr/clinic-api/internal/handler/patient"
	"github.com/clinicmgr/clinic-api/internal/middleware"
	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/policy"
	appointmentService "github.com/clinicmgr/clinic-api/internal/service/appointment"
	authService "github.com/clinicmgr/clinic-api/internal/service/auth"
	diagnosisService "github.com/clinicmgr/clinic-api/internal/service/diagnosis"
	doctorService "github.com/clinicmgr/clinic-api/internal/service/doctor"
	fileService "github.com/clinicmgr/clinic-api/internal/service/file"
	patientService "github.com/clinicmgr/clinic-api/internal/service/patient"
	"github.com/clinicmgr/clinic-api/pkg/hasher"
	"github.com/clinicmgr/clinic-api/pkg/logger"
	"github.com/clinicmgr/clinic-api/pkg/token"
)

type testEnv struct {
	engine *gin.Engine
	store  *memoryStore
	hasher hasher.PasswordHasher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemoryStore()
	h := hasher.NewArgon2Hasher(hasher.Params{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	tokens, err := token.NewService("router-test-secret")
	require.NoError(t, err)

	engine := policy.NewEngine(memRelations{store})
	appLogger := logger.NewLogger(nil)

	authSvc := authService.NewService(memUserRepo{store}, h, tokens, nil, 0)
	patientSvc := patientService.NewService(memPatientRepo{store}, engine)
	doctorSvc := doctorService.NewService(memDoctorRepo{store}, engine)
	diagnosisSvc := diagnosisService.NewService(memDiagnosisRepo{store}, engine)
	appointmentSvc := appointmentService.NewService(memAppointmentRepo{store}, engine)
	fileSvc := fileService.NewService(memFileRepo{store}, newMemObjectStore(), engine, appLogger)

	r := NewRouter(
		middleware.NewAuthMiddleware(authSvc),
		authHandler.NewHandler(authSvc),
		patientHandler.NewHandler(patientSvc),
		doctorHandler.NewHandler(doctorSvc),
		diagnosisHandler.NewHandler(diagnosisSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		fileHandler.NewHandler(fileSvc),
		handler.NewHealthHandler(nil),
		Config{},
	)
	r.Setup()

	return &testEnv{engine: r.engine, store: store, hasher: h}
}

func (e *testEnv) seedUser(t *testing.T, username, password string, role model.Role) {
	t.Helper()

	digest, err := e.hasher.Hash(password)
	require.NoError(t, err)
	e.store.users[username] = &model.User{
		Username:     username,
		PasswordHash: digest,
		Role:         role,
		CreatedAt:    time.Now(),
	}
}

func (e *testEnv) request(t *testing.T, method, path, tokenStr string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tokenStr != "" {
		req.Header.Set("Authorization", "Bearer "+tokenStr)
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()

	w := e.request(t, http.MethodPost, "/api/v1/auth/token", "",
		model.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp model.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "bearer", resp.TokenType)
	return resp.AccessToken
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "test_admin", "pass123", model.RoleAdmin)

	w := env.request(t, http.MethodPost, "/api/v1/auth/token", "",
		model.LoginRequest{Username: "test_admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	assert.Contains(t, w.Body.String(), "incorrect username or password")

	w = env.request(t, http.MethodPost, "/api/v1/auth/token", "",
		model.LoginRequest{Username: "no_such_user", Password: "pass123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "incorrect username or password")
}

func TestMissingTokenChallenges(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/v1/patients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = env.request(t, http.MethodGet, "/api/v1/patients", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminCreatesPatientPatientCannot(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "test_admin", "pass123", model.RoleAdmin)
	env.seedUser(t, "alice", "pass123", model.RolePatient)

	adminToken := env.login(t, "test_admin", "pass123")
	body := map[string]interface{}{
		"username":   "alice",
		"name":       "Alice Jones",
		"birth_date": "1990-06-15T00:00:00Z",
	}

	w := env.request(t, http.MethodPost, "/api/v1/patients", adminToken, body)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	patientToken := env.login(t, "alice", "pass123")
	body["username"] = "carol"
	w = env.request(t, http.MethodPost, "/api/v1/patients", patientToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "not enough permissions")
}

func TestMeEchoesIdentity(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "test_doctor", "pass123", model.RoleDoctor)

	tok := env.login(t, "test_doctor", "pass123")
	w := env.request(t, http.MethodGet, "/api/v1/auth/users/me", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"test_doctor"`)
	assert.Contains(t, w.Body.String(), `"role":"doctor"`)
}

func TestSignupDefaultsToPatientRole(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/v1/auth/users", "",
		map[string]string{"username": "newuser", "password": "pass123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"role":"patient"`)
	assert.NotContains(t, w.Body.String(), "pass123")

	// Duplicate provisioning conflicts.
	w = env.request(t, http.MethodPost, "/api/v1/auth/users", "",
		map[string]string{"username": "newuser", "password": "other"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown roles are rejected by binding validation.
	w = env.request(t, http.MethodPost, "/api/v1/auth/users", "",
		map[string]string{"username": "eve", "password": "pass123", "role": "superuser"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDoctorCannotReadUnrelatedDiagnosis(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "drew", "pass123", model.RoleDoctor)
	env.seedUser(t, "sam", "pass123", model.RoleDoctor)

	// drew authors a diagnosis for alice.
	drewToken := env.login(t, "drew", "pass123")
	w := env.request(t, http.MethodPost, "/api/v1/diagnoses", drewToken, map[string]interface{}{
		"diagnosis_date": "2026-08-01T00:00:00Z",
		"icd":            "J06.9",
		"patient_id":     "alice",
		"doctor_id":      "drew",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data model.Diagnosis `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// sam has no relationship with alice or the diagnosis: the record must
	// be indistinguishable from an absent one.
	samToken := env.login(t, "sam", "pass123")
	path := fmt.Sprintf("/api/v1/diagnoses/%d", created.Data.ID)
	w = env.request(t, http.MethodGet, path, samToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// drew still reads it.
	w = env.request(t, http.MethodGet, path, drewToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminHasNoDiagnosisAccess(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "test_admin", "pass123", model.RoleAdmin)

	adminToken := env.login(t, "test_admin", "pass123")
	w := env.request(t, http.MethodGet, "/api/v1/diagnoses", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodPost, "/api/v1/diagnoses", adminToken, map[string]interface{}{
		"diagnosis_date": "2026-08-01T00:00:00Z",
		"patient_id":     "alice",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPatientSeesOnlyOwnDiagnoses(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "drew", "pass123", model.RoleDoctor)
	env.seedUser(t, "alice", "pass123", model.RolePatient)

	drewToken := env.login(t, "drew", "pass123")
	for _, patient := range []string{"alice", "bob"} {
		w := env.request(t, http.MethodPost, "/api/v1/diagnoses", drewToken, map[string]interface{}{
			"diagnosis_date": "2026-08-01T00:00:00Z",
			"patient_id":     patient,
			"doctor_id":      "drew",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	aliceToken := env.login(t, "alice", "pass123")
	w := env.request(t, http.MethodGet, "/api/v1/diagnoses", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []model.Diagnosis `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "alice", resp.Data[0].PatientID)
}

func TestFileUploadRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "drew", "pass123", model.RoleDoctor)
	env.seedUser(t, "alice", "pass123", model.RolePatient)

	drewToken := env.login(t, "drew", "pass123")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("patient_id", "alice"))
	require.NoError(t, mw.WriteField("doctor_id", "drew"))
	part, err := mw.CreateFormFile("file", "scan.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	// Each request gets its own reader over the encoded body; serving a
	// request drains whatever reader it was handed.
	raw := buf.Bytes()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", bytes.NewReader(raw))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+drewToken)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"original_name":"scan.pdf"`)

	// The owning patient sees the metadata; an upload attempt by the
	// patient role is rejected at the role gate.
	aliceToken := env.login(t, "alice", "pass123")
	listResp := env.request(t, http.MethodGet, "/api/v1/files", aliceToken, nil)
	require.Equal(t, http.StatusOK, listResp.Code)
	assert.Contains(t, listResp.Body.String(), `"patient_id":"alice"`)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/files", bytes.NewReader(raw))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	w = httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFileUploadGateRunsBeforeBodyValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", "pass123", model.RolePatient)

	// A caller the role gate rejects sees 403 even when the body would
	// not bind, so the response cannot reveal which fields the form
	// expects.
	aliceToken := env.login(t, "alice", "pass123")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", bytes.NewReader([]byte("not multipart")))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=nope")
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/v1/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/health/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
