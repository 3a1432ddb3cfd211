package documents

import (
	"bytes"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	docx "github.com/fumiama/go-docx"
)

const (
	emuPerInch = 914400

	coverPhotoWidth   = 3.0
	dossierPhotoWidth = 3.5

	programLine  = "AEE - ATENDIMENTO EDUCACIONAL ESPECIALIZADO"
	registryLine = "REGISTRO - ATIVIDADE FLEXIBILIZADA"
	notAvailable = "N/A"
)

// Generator renders the Word documents of the programme.
type Generator struct {
	schoolName string
	logger     *slog.Logger
}

func NewGenerator(schoolName string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{schoolName: schoolName, logger: logger}
}

func (g *Generator) newDocument() *docx.Docx {
	return docx.New().WithDefaultTheme().WithA4Page()
}

// addHeader writes the centered bold school header.
func (g *Generator) addHeader(doc *docx.Docx) {
	for _, line := range []string{g.schoolName, programLine, registryLine} {
		doc.AddParagraph().Justification("center").AddText(line).Bold().Size("24")
	}
}

func addCentered(doc *docx.Docx, text string, bold bool) {
	run := doc.AddParagraph().Justification("center").AddText(text)
	if bold {
		run.Bold()
	}
}

func addLine(doc *docx.Docx, text string) *docx.Paragraph {
	p := doc.AddParagraph()
	p.AddText(text)
	return p
}

func addHeading(doc *docx.Docx, text string) {
	doc.AddParagraph().AddText(text).Bold().Size("26")
}

// addPicture inserts a centered picture scaled to widthIn inches. Images the
// document library cannot decode are skipped.
func (g *Generator) addPicture(doc *docx.Docx, data []byte, widthIn float64) {
	if len(data) == 0 {
		return
	}
	p := doc.AddParagraph().Justification("center")
	run, err := p.AddInlineDrawing(data)
	if err != nil {
		g.logger.Warn("Skipping undecodable picture", "error", err)
		return
	}
	for _, child := range run.Children {
		drawing, ok := child.(*docx.Drawing)
		if !ok || drawing.Inline == nil || drawing.Inline.Extent == nil || drawing.Inline.Extent.CX == 0 {
			continue
		}
		cx := int64(widthIn * emuPerInch)
		cy := drawing.Inline.Extent.CY * cx / drawing.Inline.Extent.CX
		drawing.Inline.Size(cx, cy)
	}
}

func render(doc *docx.Docx) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	return buf.Bytes(), nil
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
