package documents

import (
	"fmt"
	"slices"

	docx "github.com/fumiama/go-docx"

	"github.com/aeeconecta/aee-service/internal/models"
)

const unknownProfessor = "Professor não identificado"

// DossierInput carries everything a bimester dossier needs. Photos maps a
// report's foto_path to its bytes; missing entries render without picture.
type DossierInput struct {
	Student    *models.Student
	Reports    []*models.Report
	Professors map[string]string
	Photos     map[string][]byte
	Year       int
}

// Dossier renders one page per report, separated by page breaks.
func (g *Generator) Dossier(in DossierInput) ([]byte, error) {
	doc := g.newDocument()

	for i, report := range in.Reports {
		g.addReportPage(doc, in, report)
		if i < len(in.Reports)-1 {
			doc.AddParagraph().AddPageBreaks()
		}
	}
	return render(doc)
}

func (g *Generator) addReportPage(doc *docx.Docx, in DossierInput, report *models.Report) {
	professor, ok := in.Professors[report.RFProfessor]
	if !ok || professor == "" {
		professor = unknownProfessor
	}

	g.addHeader(doc)
	addCentered(doc, fmt.Sprintf("%s – ANO LETIVO %d", report.Bimestre, in.Year), true)

	addLine(doc, "ESTUDANTE: "+in.Student.Aluno)
	addLine(doc, "TURMA: "+in.Student.Turma)
	addLine(doc, fmt.Sprintf("PROFESSOR: %s | DISCIPLINA/TEMA: %s", professor, orNA(report.DisciplinaTema)))

	participation := addLine(doc, fmt.Sprintf("O ESTUDANTE PARTICIPOU DA SUA AULA? ( %s ) SIM ( %s ) NÃO.",
		mark(report.ParticipouAula == models.ParticipouSim),
		mark(report.ParticipouAula == models.ParticipouNao)))
	if report.ParticipouAula == models.ParticipouNao {
		participation.AddText(" RELATE O MOTIVO: " + report.MotivoNaoParticipou)
	}

	addHeading(doc, "ATIVIDADES PLANEJADAS:")
	addLine(doc, report.Planejado)
	addHeading(doc, "ATIVIDADE REALIZADA COM O ESTUDANTE:")
	addLine(doc, report.Realizado)

	if report.FotoPath != "" {
		g.addPicture(doc, in.Photos[report.FotoPath], dossierPhotoWidth)
	}

	addHeading(doc, "COMO FOI A PARTICIPAÇÃO DO ESTUDANTE?")
	levels := report.ParticipationLevels()
	for _, option := range models.ParticipationOptions {
		addLine(doc, fmt.Sprintf("( %s ) %s", mark(slices.Contains(levels, option)), option))
	}

	addLine(doc, "DATA DE REALIZAÇÃO DA ATIVIDADE: "+report.DataBR())
}

func mark(checked bool) string {
	if checked {
		return "x"
	}
	return " "
}
