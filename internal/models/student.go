package models

import "time"

// Student is a pupil followed by the AEE programme.
type Student struct {
	Registro          string `json:"registro" gorm:"primaryKey;size:50"`
	Aluno             string `json:"aluno" gorm:"not null;size:200;index"`
	Turma             string `json:"turma" gorm:"size:50"`
	Necessidades      string `json:"necessidades" gorm:"type:text"`
	DataNascimento    string `json:"data_nascimento" gorm:"size:20"`
	ObservacoesGerais string `json:"observacoes_gerais" gorm:"type:text"`
	FotoPath          string `json:"foto_path" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Student) TableName() string {
	return "estudantes"
}
