package validator

// LoginRequest carries the credentials typed on the login form.
type LoginRequest struct {
	RF       string `json:"rf" form:"rf" validate:"required,max=50"`
	Password string `json:"password" form:"password" validate:"required"`
}

// SetPasswordRequest is submitted while the session awaits a first password.
type SetPasswordRequest struct {
	NewPassword string `json:"new_password" form:"new_password"`
	Confirm     string `json:"confirm" form:"confirm"`
}

// ChangePasswordRequest lets a logged-in professor replace the password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" form:"new_password"`
	Confirm         string `json:"confirm" form:"confirm"`
}

// ReportCreateRequest is the lesson report form. Data uses the ISO layout.
type ReportCreateRequest struct {
	RegistroAluno       string   `json:"registro_aluno" form:"registro_aluno" validate:"required,max=50"`
	Data                string   `json:"data" form:"data" validate:"required,datetime=2006-01-02"`
	Bimestre            string   `json:"bimestre" form:"bimestre" validate:"required,bimestre"`
	ParticipouAula      string   `json:"participou_aula" form:"participou_aula" validate:"required,participou"`
	MotivoNaoParticipou string   `json:"motivo_nao_participou" form:"motivo_nao_participou" validate:"max=2000"`
	DisciplinaTema      string   `json:"disciplina_tema" form:"disciplina_tema" validate:"max=200"`
	Planejado           string   `json:"planejado" form:"planejado" validate:"max=5000"`
	Realizado           string   `json:"realizado" form:"realizado" validate:"max=5000"`
	Participacao        []string `json:"participacao" form:"participacao" validate:"omitempty,dive,participation_level"`
}

// ReportUpdateRequest edits an existing report; nil fields are left untouched.
type ReportUpdateRequest struct {
	Data                *string  `json:"data" validate:"omitempty,datetime=2006-01-02"`
	Bimestre            *string  `json:"bimestre" validate:"omitempty,bimestre"`
	ParticipouAula      *string  `json:"participou_aula" validate:"omitempty,participou"`
	MotivoNaoParticipou *string  `json:"motivo_nao_participou" validate:"omitempty,max=2000"`
	DisciplinaTema      *string  `json:"disciplina_tema" validate:"omitempty,max=200"`
	Planejado           *string  `json:"planejado" validate:"omitempty,max=5000"`
	Realizado           *string  `json:"realizado" validate:"omitempty,max=5000"`
	Participacao        []string `json:"participacao" validate:"omitempty,dive,participation_level"`
}

// ReportListQuery filters the report listing of the management panel. Dates
// use the ISO layout and both ends are inclusive.
type ReportListQuery struct {
	RegistroAluno string `form:"registro_aluno" validate:"max=50"`
	RFProfessor   string `form:"rf_professor" validate:"max=50"`
	Bimestre      string `form:"bimestre" validate:"omitempty,bimestre_filter"`
	From          string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To            string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Limit         int    `form:"limit" validate:"min=0,max=500"`
	Offset        int    `form:"offset" validate:"min=0"`
	SortBy        string `form:"sort_by" validate:"omitempty,oneof=data created_at bimestre id"`
	SortOrder     string `form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

// StudentCreateRequest registers a student.
type StudentCreateRequest struct {
	Registro          string `json:"registro" validate:"required,max=50"`
	Aluno             string `json:"aluno" validate:"required,max=200"`
	Turma             string `json:"turma" validate:"max=50"`
	Necessidades      string `json:"necessidades" validate:"max=2000"`
	DataNascimento    string `json:"data_nascimento" validate:"max=20"`
	ObservacoesGerais string `json:"observacoes_gerais" validate:"max=5000"`
}

// StudentUpdateRequest edits a student; nil fields are left untouched.
type StudentUpdateRequest struct {
	Aluno             *string `json:"aluno" validate:"omitempty,min=1,max=200"`
	Turma             *string `json:"turma" validate:"omitempty,max=50"`
	Necessidades      *string `json:"necessidades" validate:"omitempty,max=2000"`
	DataNascimento    *string `json:"data_nascimento" validate:"omitempty,max=20"`
	ObservacoesGerais *string `json:"observacoes_gerais" validate:"omitempty,max=5000"`
}

// ProfessorCreateRequest registers a professor.
type ProfessorCreateRequest struct {
	RF     string `json:"rf" validate:"required,max=50"`
	Nome   string `json:"nome" validate:"required,max=200"`
	Perfil string `json:"perfil" validate:"max=100"`
}

// ProfessorUpdateRequest edits a professor; nil fields are left untouched.
type ProfessorUpdateRequest struct {
	Nome   *string `json:"nome" validate:"omitempty,min=1,max=200"`
	Perfil *string `json:"perfil" validate:"omitempty,max=100"`
}
