package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aeeconecta/aee-service/internal/documents"
	"github.com/aeeconecta/aee-service/internal/metrics"
	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/repositories"
	"github.com/aeeconecta/aee-service/internal/repositories/postgres"
	"github.com/aeeconecta/aee-service/internal/session"
	"github.com/aeeconecta/aee-service/internal/storage"
	"github.com/aeeconecta/aee-service/internal/validator"
)

const (
	profileBucket = "fotos_alunos"
	lessonBucket  = "fotos_aee"
)

type recordingPublisher struct {
	mu     sync.Mutex
	logins []string
}

func (p *recordingPublisher) PublishLogin(_ context.Context, rf string, _ time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logins = append(p.logins, rf)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.logins)
}

type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	sessions  *session.MemoryStore
	store     *storage.LocalStore
	publisher *recordingPublisher
	manager   ServiceManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

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

	env := &testEnv{
		db:        db,
		repo:      postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db}),
		sessions:  session.NewMemoryStore(time.Hour),
		store:     storage.NewLocalStore(t.TempDir()),
		publisher: &recordingPublisher{},
	}

	env.manager = NewServiceManager(ServiceManagerConfig{
		DB:                 db,
		Repo:               env.repo,
		Sessions:           env.sessions,
		Store:              env.store,
		Publisher:          env.publisher,
		Generator:          documents.NewGenerator("ESCOLA TESTE", nil),
		Metrics:            metrics.New(prometheus.NewRegistry()),
		Validator:          validator.New(),
		ProfilePhotoBucket: profileBucket,
		LessonPhotoBucket:  lessonBucket,
	})
	require.NoError(t, env.manager.Initialize(context.Background()))
	return env
}

func (e *testEnv) addProfessor(t *testing.T, rf, nome, perfil, password string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.repo.Professor().Create(ctx, nil, &models.Professor{RF: rf, Nome: nome, Perfil: perfil}))
	if password != "" {
		require.NoError(t, e.repo.Credential().Upsert(ctx, nil, &models.Credential{RF: rf, SenhaHash: HashPassword(password)}))
	}
}

func (e *testEnv) addStudent(t *testing.T, registro, aluno string) {
	t.Helper()
	require.NoError(t, e.repo.Student().Create(context.Background(), nil, &models.Student{Registro: registro, Aluno: aluno, Turma: "5A"}))
}

// loggedIn returns a logged-in session for an existing professor.
func (e *testEnv) loggedIn(t *testing.T, rf string) *session.Session {
	t.Helper()
	professor, err := e.repo.Professor().GetByRF(context.Background(), nil, rf)
	require.NoError(t, err)
	sess := session.New()
	require.NoError(t, sess.LogIn(professor))
	require.NoError(t, e.sessions.Save(context.Background(), sess))
	return sess
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
