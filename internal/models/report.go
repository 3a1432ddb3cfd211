package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

const DateLayoutBR = "02/01/2006"

// Report is one lesson-participation record filed by a professor.
type Report struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	Data                datatypes.Date `json:"data" gorm:"not null"`
	RFProfessor         string         `json:"rf_professor" gorm:"not null;size:50;index"`
	RegistroAluno       string         `json:"registro_aluno" gorm:"not null;size:50;index"`
	Bimestre            string         `json:"bimestre" gorm:"not null;size:20;index"`
	ParticipouAula      string         `json:"participou_aula" gorm:"not null;size:3"`
	MotivoNaoParticipou string         `json:"motivo_nao_participou" gorm:"type:text"`
	DisciplinaTema      string         `json:"disciplina_tema" gorm:"size:200"`
	Planejado           string         `json:"planejado" gorm:"type:text"`
	Realizado           string         `json:"realizado" gorm:"type:text"`
	Participacao        string         `json:"participacao" gorm:"type:text"`
	FotoPath            string         `json:"foto_path" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Report) TableName() string {
	return "relatorios"
}

// DataBR formats the lesson date as dd/mm/yyyy.
func (r *Report) DataBR() string {
	t := time.Time(r.Data)
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayoutBR)
}

// Participated reports whether the student took part in the lesson.
func (r *Report) Participated() bool {
	return r.ParticipouAula == ParticipouSim
}

// ParticipationLevels splits the stored tag list.
func (r *Report) ParticipationLevels() []string {
	return SplitParticipation(r.Participacao)
}

// ReportExportRow is a report joined with professor and student data.
type ReportExportRow struct {
	Report
	ProfessorNome string `json:"professor_nome"`
	AlunoNome     string `json:"aluno_nome"`
	Turma         string `json:"turma"`
}

const participationSeparator = ", "

// JoinParticipation encodes the selected participation levels.
func JoinParticipation(levels []string) string {
	return strings.Join(levels, participationSeparator)
}

// SplitParticipation decodes a stored participation list.
func SplitParticipation(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, participationSeparator)
}
