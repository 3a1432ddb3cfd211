package documents

import (
	"fmt"

	"github.com/aeeconecta/aee-service/internal/models"
)

// CoverSheet renders the cover sheet of a student's file. photo may be nil.
func (g *Generator) CoverSheet(student *models.Student, photo []byte, year int) ([]byte, error) {
	doc := g.newDocument()

	g.addHeader(doc)
	addCentered(doc, fmt.Sprintf("ANO LETIVO %d", year), false)
	g.addPicture(doc, photo, coverPhotoWidth)

	addLine(doc, "ESTUDANTE: "+orNA(student.Aluno))
	addLine(doc, "TURMA: "+orNA(student.Turma))
	addLine(doc, "DEFICIÊNCIA/CONDIÇÃO: "+orNA(student.Necessidades))
	addLine(doc, "DATA DE NASCIMENTO: "+orNA(student.DataNascimento))

	addHeading(doc, "OBSERVAÇÕES DO PROFESSOR:")
	addLine(doc, student.ObservacoesGerais)

	return render(doc)
}
