package documents

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/aeeconecta/aee-service/internal/models"
)

const (
	ExportSheet     = "Relatorios"
	ProfessorsSheet = "professores"
	StudentsSheet   = "alunos"

	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	DOCXContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var exportHeaders = []string{
	"Data", "Bimestre", "RF Professor", "Professor", "Registro", "Estudante",
	"Turma", "Disciplina/Tema", "Participou", "Participação",
}

// ExportReports writes the joined report rows to a single-sheet workbook.
func ExportReports(rows []*models.ReportExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ExportSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, r := range rows {
		values := []any{
			r.DataBR(), r.Bimestre, r.RFProfessor, r.ProfessorNome, r.RegistroAluno,
			r.AlunoNome, r.Turma, r.DisciplinaTema, r.ParticipouAula, r.Participacao,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(ExportSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Roster is the content of a roster workbook.
type Roster struct {
	Professors []*models.Professor
	Students   []*models.Student
}

var trailingZero = regexp.MustCompile(`\.0$`)

// ParseRoster reads the professores and alunos sheets. Headers are matched
// case-insensitively and numeric cells lose a trailing ".0".
func ParseRoster(r io.Reader) (*Roster, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	professorRows, err := readSheet(f, ProfessorsSheet)
	if err != nil {
		return nil, err
	}
	studentRows, err := readSheet(f, StudentsSheet)
	if err != nil {
		return nil, err
	}

	roster := &Roster{}
	for _, row := range professorRows {
		if row["rf"] == "" {
			continue
		}
		roster.Professors = append(roster.Professors, &models.Professor{
			RF:     row["rf"],
			Nome:   firstOf(row, "professor", "nome"),
			Perfil: row["perfil"],
		})
	}
	for _, row := range studentRows {
		if row["registro"] == "" {
			continue
		}
		roster.Students = append(roster.Students, &models.Student{
			Registro:          row["registro"],
			Aluno:             firstOf(row, "aluno", "nome"),
			Turma:             row["turma"],
			Necessidades:      necessidades(row),
			DataNascimento:    row["data_nascimento"],
			ObservacoesGerais: row["observacoes_gerais"],
		})
	}
	return roster, nil
}

// readSheet returns the sheet rows keyed by normalized header.
func readSheet(f *excelize.File, sheet string) ([]map[string]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	out := make([]map[string]string, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" || i >= len(cells) {
				continue
			}
			row[header] = cleanCell(cells[i])
		}
		out = append(out, row)
	}
	return out, nil
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "nan") {
		return ""
	}
	return strings.TrimSpace(trailingZero.ReplaceAllString(v, ""))
}

func firstOf(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := row[k]; v != "" {
			return v
		}
	}
	return ""
}

// necessidades picks the first column whose header mentions "nec".
func necessidades(row map[string]string) string {
	if v, ok := row["necessidades"]; ok {
		return v
	}
	for header, v := range row {
		if strings.Contains(header, "nec") {
			return v
		}
	}
	return ""
}
