package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/aeeconecta/aee-service/internal/documents"
	"github.com/aeeconecta/aee-service/internal/metrics"
	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/repositories"
	"github.com/aeeconecta/aee-service/internal/session"
	"github.com/aeeconecta/aee-service/internal/storage"
	"github.com/aeeconecta/aee-service/internal/validator"
)

type documentService struct {
	repo          repositories.Repository
	db            *gorm.DB
	store         storage.ObjectStore
	generator     *documents.Generator
	profileBucket string
	lessonBucket  string
	metrics       *metrics.Metrics
	logger        *slog.Logger
	now           func() time.Time
}

func NewDocumentService(repo repositories.Repository, db *gorm.DB, store storage.ObjectStore, generator *documents.Generator,
	profileBucket, lessonBucket string, m *metrics.Metrics, logger *slog.Logger) DocumentService {
	return &documentService{
		repo:          repo,
		db:            db,
		store:         store,
		generator:     generator,
		profileBucket: profileBucket,
		lessonBucket:  lessonBucket,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *documentService) student(ctx context.Context, registro string) (*models.Student, error) {
	student, err := s.repo.Student().GetByRegistro(ctx, s.db, registro)
	if err != nil {
		return nil, mapNotFound(err, ErrStudentNotFound)
	}
	return student, nil
}

// fetchPhoto downloads a photo, returning nil when it cannot be read.
func (s *documentService) fetchPhoto(ctx context.Context, bucket, path string) []byte {
	if path == "" {
		return nil
	}
	data, err := s.store.Download(ctx, bucket, path)
	if err != nil {
		s.logger.Warn("Photo unavailable, rendering without it", "bucket", bucket, "path", path, "error", err)
		return nil
	}
	return data
}

func (s *documentService) CoverSheet(ctx context.Context, sess *session.Session, registro string) (*Document, error) {
	if err := requirePermission(sess, models.PermGenerateDocuments, "document", "cover"); err != nil {
		return nil, err
	}

	student, err := s.student(ctx, registro)
	if err != nil {
		return nil, err
	}

	photo := s.fetchPhoto(ctx, s.profileBucket, student.FotoPath)
	data, err := s.generator.CoverSheet(student, photo, s.now().Year())
	if err != nil {
		return nil, fmt.Errorf("failed to render cover sheet: %w", err)
	}

	s.metrics.DocumentGenerated(metrics.DocumentCover)
	return &Document{
		Filename:    fmt.Sprintf("Rosto_%s.docx", student.Aluno),
		ContentType: documents.DOCXContentType,
		Data:        data,
	}, nil
}

// Dossier renders the reports of a student for one bimester, or for all of
// them when bimestre is empty or "Todos".
func (s *documentService) Dossier(ctx context.Context, sess *session.Session, registro, bimestre string) (*Document, error) {
	if err := requirePermission(sess, models.PermGenerateDocuments, "document", "dossier"); err != nil {
		return nil, err
	}
	if bimestre == "" {
		bimestre = models.BimestreTodos
	}
	if bimestre != models.BimestreTodos && !models.IsBimestre(bimestre) {
		return nil, validator.ValidationErrors{{Field: "bimestre", Message: "is not a known bimester", Value: bimestre, Rule: "bimestre"}}
	}

	student, err := s.student(ctx, registro)
	if err != nil {
		return nil, err
	}

	reports, err := s.repo.Report().ListByStudent(ctx, s.db, registro, bimestre)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	if len(reports) == 0 {
		return nil, ErrNoReports
	}

	professors, err := s.professorNames(ctx, reports)
	if err != nil {
		return nil, err
	}

	photos := make(map[string][]byte)
	for _, r := range reports {
		if r.FotoPath == "" {
			continue
		}
		if data := s.fetchPhoto(ctx, s.lessonBucket, r.FotoPath); data != nil {
			photos[r.FotoPath] = data
		}
	}

	data, err := s.generator.Dossier(documents.DossierInput{
		Student:    student,
		Reports:    reports,
		Professors: professors,
		Photos:     photos,
		Year:       s.now().Year(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render dossier: %w", err)
	}

	s.metrics.DocumentGenerated(metrics.DocumentDossier)
	s.logger.Info("Dossier generated", "rf", sess.RF, "registro", registro, "bimestre", bimestre, "pages", len(reports))
	return &Document{
		Filename:    fmt.Sprintf("Relatos_%s.docx", student.Aluno),
		ContentType: documents.DOCXContentType,
		Data:        data,
	}, nil
}

func (s *documentService) professorNames(ctx context.Context, reports []*models.Report) (map[string]string, error) {
	seen := make(map[string]bool)
	var rfs []string
	for _, r := range reports {
		if !seen[r.RFProfessor] {
			seen[r.RFProfessor] = true
			rfs = append(rfs, r.RFProfessor)
		}
	}

	professors, err := s.repo.Professor().GetByRFs(ctx, s.db, rfs)
	if err != nil {
		return nil, fmt.Errorf("failed to load professors: %w", err)
	}

	names := make(map[string]string, len(professors))
	for _, p := range professors {
		names[p.RF] = p.Nome
	}
	return names, nil
}

// ExportReports builds the spreadsheet of every report, optionally narrowed
// to one bimester.
func (s *documentService) ExportReports(ctx context.Context, sess *session.Session, bimestre string) (*Document, error) {
	if err := requirePermission(sess, models.PermExport, "document", "export"); err != nil {
		return nil, err
	}

	var filters repositories.ReportFilters
	if bimestre != "" && bimestre != models.BimestreTodos {
		if !models.IsBimestre(bimestre) {
			return nil, validator.ValidationErrors{{Field: "bimestre", Message: "is not a known bimester", Value: bimestre, Rule: "bimestre"}}
		}
		filters.Bimestre = &bimestre
	}

	rows, err := s.repo.Report().ListForExport(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}

	data, err := documents.ExportReports(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to render export: %w", err)
	}

	s.metrics.DocumentGenerated(metrics.DocumentExport)
	return &Document{
		Filename:    fmt.Sprintf("relatorios_%s.xlsx", s.now().Format("20060102_150405")),
		ContentType: documents.XLSXContentType,
		Data:        data,
	}, nil
}
