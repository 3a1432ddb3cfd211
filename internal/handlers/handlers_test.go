package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aeeconecta/aee-service/internal/documents"
	"github.com/aeeconecta/aee-service/internal/metrics"
	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/repositories"
	"github.com/aeeconecta/aee-service/internal/repositories/postgres"
	"github.com/aeeconecta/aee-service/internal/services"
	"github.com/aeeconecta/aee-service/internal/session"
	"github.com/aeeconecta/aee-service/internal/storage"
	"github.com/aeeconecta/aee-service/internal/utils"
)

type testServer struct {
	router *gin.Engine
	repo   repositories.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, postgres.AutoMigrate(db))

	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	registry := prometheus.NewRegistry()
	sm := services.NewServiceManager(services.ServiceManagerConfig{
		DB:                 db,
		Repo:               repo,
		Sessions:           session.NewMemoryStore(time.Hour),
		Store:              storage.NewLocalStore(t.TempDir()),
		Generator:          documents.NewGenerator("ESCOLA TESTE", nil),
		Metrics:            metrics.New(registry),
		ProfilePhotoBucket: "fotos_alunos",
		LessonPhotoBucket:  "fotos_aee",
	})
	require.NoError(t, sm.Initialize(context.Background()))

	logger := utils.NewSlogLogger(nil)
	router := gin.New()
	SetupMiddleware(router, logger)
	NewHandlerManager(sm, logger, registry).SetupRoutes(router)

	return &testServer{router: router, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) addProfessor(t *testing.T, rf, nome, perfil, password string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.repo.Professor().Create(ctx, nil, &models.Professor{RF: rf, Nome: nome, Perfil: perfil}))
	require.NoError(t, s.repo.Credential().Upsert(ctx, nil, &models.Credential{RF: rf, SenhaHash: services.HashPassword(password)}))
}

func (s *testServer) login(t *testing.T, rf, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"rf": rf, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Message
}

func TestLoginFlow(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.repo.Professor().Create(context.Background(), nil, &models.Professor{RF: "111", Nome: "Ana", Perfil: "Professor"}))

	w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"rf": "111", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Primeiro acesso? Use seu RF como senha.", message(t, w))

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"rf": "404", "password": "404"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "RF não cadastrado.", message(t, w))

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"rf": "111", "password": "111"})
	require.Equal(t, http.StatusOK, w.Code)
	var first SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, session.StateAwaitingPasswordSet, first.State)

	w = s.do(t, http.MethodGet, "/api/v1/me", first.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "login is not complete yet")

	w = s.do(t, http.MethodPost, "/api/v1/auth/password", first.Token, map[string]string{"new_password": "abc", "confirm": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/password", first.Token, map[string]string{"new_password": "segredo", "confirm": "segredo"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/me", first.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "Ana", me.Nome)
	assert.Equal(t, []string{string(models.PermFileReport)}, me.Permissions)
	assert.False(t, me.Privileged)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"rf": "111", "password": "errada"})
	assert.Equal(t, "Senha incorreta.", message(t, w))

	w = s.do(t, http.MethodPost, "/api/v1/auth/logout", first.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/me", first.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RejectsBadHeaders(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/students", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	w = s.do(t, http.MethodGet, "/api/v1/students", "unknown-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPrivilegedRoutesBlockedForTeachers(t *testing.T) {
	s := newTestServer(t)
	s.addProfessor(t, "111", "Ana", "Gestor Escolar", "segredo")
	token := s.login(t, "111", "segredo")

	for _, path := range []string{
		"/api/v1/admin/students",
		"/api/v1/admin/logs",
		"/api/v1/admin/reports",
		"/api/v1/documents/export",
		"/api/v1/documents/students/R1/dossier",
	} {
		w := s.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
	w := s.do(t, http.MethodPost, "/api/v1/admin/reset", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestReportAndDocumentRoutes(t *testing.T) {
	s := newTestServer(t)
	s.addProfessor(t, "333", "Gil", "gestora", "segredo")
	token := s.login(t, "333", "segredo")

	w := s.do(t, http.MethodPost, "/api/v1/admin/students", token, map[string]string{"registro": "R1", "aluno": "Bia", "turma": "5A"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, "/api/v1/admin/students", token, map[string]string{"registro": "R1", "aluno": "Bia"})
	assert.Equal(t, http.StatusConflict, w.Code)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"registro_aluno":  "R1",
		"data":            "2024-03-05",
		"bimestre":        "1º Bimestre",
		"participou_aula": "Sim",
		"disciplina_tema": "Leitura",
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.WriteField("participacao", models.ParticipationOptions[1]))
	part, err := mw.CreateFormFile("photo", "aula.png")
	require.NoError(t, err)
	_, err = part.Write(testPNG(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var report models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, strings.HasPrefix(report.FotoPath, "aula_"))
	assert.Equal(t, models.ParticipationOptions[1], report.Participacao)

	w = s.do(t, http.MethodGet, "/api/v1/reports/mine", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/documents/students/R1/dossier?bimestre=Todos", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, documents.DOCXContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Relatos_Bia.docx")

	w = s.do(t, http.MethodGet, "/api/v1/documents/students/R1/dossier?bimestre=4%C2%BA%20Bimestre", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/documents/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, documents.XLSXContentType, w.Header().Get("Content-Type"))

	w = s.do(t, http.MethodDelete, "/api/v1/reports/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodDelete, "/api/v1/reports/999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"rf": "1", "password": "2"})
	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "aee_logins_total")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodOptions, "/api/v1/auth/login", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAdminReportListing(t *testing.T) {
	s := newTestServer(t)
	s.addProfessor(t, "333", "Gil", "Coordenadora", "segredo")
	ctx := context.Background()
	require.NoError(t, s.repo.Student().Create(ctx, nil, &models.Student{Registro: "R1", Aluno: "Bia"}))
	for i, day := range []int{3, 10, 17} {
		require.NoError(t, s.repo.Report().Create(ctx, nil, &models.Report{
			Data:           datatypes.Date(time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC)),
			RFProfessor:    "333",
			RegistroAluno:  "R1",
			Bimestre:       models.Bimestres[i%2],
			ParticipouAula: models.ParticipouSim,
		}))
	}
	token := s.login(t, "333", "segredo")

	w := s.do(t, http.MethodGet, "/api/v1/me", token, nil)
	var me SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.True(t, me.Privileged)

	w = s.do(t, http.MethodGet, "/api/v1/admin/reports?from=2025-03-05&to=2025-03-31&limit=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page services.ReportPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Reports, 1)
	assert.Equal(t, "17/03/2025", page.Reports[0].DataBR(), "newest lesson first")

	w = s.do(t, http.MethodGet, "/api/v1/admin/reports?sort_by=nome", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/admin/reports?limit=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
