package services

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/aeeconecta/aee-service/internal/documents"
	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/validator"
)

func documentXML(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(body)
	}
	t.Fatal("word/document.xml not found")
	return ""
}

func seedReports(t *testing.T, env *testEnv) {
	t.Helper()
	env.addProfessor(t, "111", "Ana", "Professor", "segredo")
	env.addProfessor(t, "333", "Gil", "Gestor", "segredo")
	env.addStudent(t, "R1", "Bia")
	author := env.loggedIn(t, "111")
	ctx := context.Background()

	for _, bimestre := range []string{"1º Bimestre", "1º Bimestre", "2º Bimestre"} {
		req := reportRequest("R1")
		req.Bimestre = bimestre
		_, err := env.manager.Reports().Create(ctx, author, req, testPNG(t))
		require.NoError(t, err)
	}
}

func TestDossier(t *testing.T) {
	env := newTestEnv(t)
	seedReports(t, env)
	manager := env.loggedIn(t, "333")
	ctx := context.Background()

	doc, err := env.manager.Documents().Dossier(ctx, manager, "R1", "")
	require.NoError(t, err)
	assert.Equal(t, "Relatos_Bia.docx", doc.Filename)
	assert.Equal(t, documents.DOCXContentType, doc.ContentType)
	xml := documentXML(t, doc.Data)
	assert.Equal(t, 2, strings.Count(xml, `type="page"`), "three pages, two breaks")
	assert.Contains(t, xml, "PROFESSOR: Ana | DISCIPLINA/TEMA: Matemática")

	doc, err = env.manager.Documents().Dossier(ctx, manager, "R1", "1º Bimestre")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(documentXML(t, doc.Data), `type="page"`))

	_, err = env.manager.Documents().Dossier(ctx, manager, "R1", "3º Bimestre")
	assert.ErrorIs(t, err, ErrNoReports)

	_, err = env.manager.Documents().Dossier(ctx, manager, "R1", "9º Bimestre")
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = env.manager.Documents().Dossier(ctx, manager, "R404", "")
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestDossier_ProfessorDeleted(t *testing.T) {
	env := newTestEnv(t)
	seedReports(t, env)
	manager := env.loggedIn(t, "333")
	ctx := context.Background()

	require.NoError(t, env.manager.Admin().DeleteProfessor(ctx, manager, "111"))

	doc, err := env.manager.Documents().Dossier(ctx, manager, "R1", "2º Bimestre")
	require.NoError(t, err)
	assert.Contains(t, documentXML(t, doc.Data), "Professor não identificado")
}

func TestDocuments_RequirePrivilege(t *testing.T) {
	env := newTestEnv(t)
	seedReports(t, env)
	teacher := env.loggedIn(t, "111")
	ctx := context.Background()

	var perr *PermissionError
	_, err := env.manager.Documents().Dossier(ctx, teacher, "R1", "")
	assert.ErrorAs(t, err, &perr)
	_, err = env.manager.Documents().CoverSheet(ctx, teacher, "R1")
	assert.ErrorAs(t, err, &perr)
	_, err = env.manager.Documents().ExportReports(ctx, teacher, "")
	assert.ErrorAs(t, err, &perr)
}

func TestCoverSheetWithPhoto(t *testing.T) {
	env := newTestEnv(t)
	seedReports(t, env)
	manager := env.loggedIn(t, "333")
	ctx := context.Background()

	_, err := env.manager.Admin().UploadStudentPhoto(ctx, manager, "R1", testPNG(t))
	require.NoError(t, err)

	doc, err := env.manager.Documents().CoverSheet(ctx, manager, "R1")
	require.NoError(t, err)
	assert.Equal(t, "Rosto_Bia.docx", doc.Filename)
	xml := documentXML(t, doc.Data)
	assert.Contains(t, xml, "Bia")
	assert.Contains(t, xml, "drawing")
}

func TestExportReports(t *testing.T) {
	env := newTestEnv(t)
	seedReports(t, env)
	manager := env.loggedIn(t, "333")
	ctx := context.Background()

	doc, err := env.manager.Documents().ExportReports(ctx, manager, "1º Bimestre")
	require.NoError(t, err)
	assert.Regexp(t, `^relatorios_\d{8}_\d{6}\.xlsx$`, doc.Filename)
	assert.Equal(t, documents.XLSXContentType, doc.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	require.NoError(t, err)
	rows, err := f.GetRows(documents.ExportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3, "header plus two first-bimester reports")
	assert.Equal(t, "Ana", rows[1][3])
	assert.Equal(t, models.ParticipouSim, rows[1][8])
}
