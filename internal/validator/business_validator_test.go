package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReport() ReportCreateRequest {
	return ReportCreateRequest{
		RegistroAluno:  "1001",
		Data:           "2025-03-14",
		Bimestre:       "1º Bimestre",
		ParticipouAula: "Sim",
		Participacao:   []string{"REALIZOU COM AUTONOMIA"},
	}
}

func TestValidator_ReportCreate(t *testing.T) {
	v := New()

	req := validReport()
	assert.NoError(t, v.Validate(&req))

	tests := []struct {
		name   string
		mutate func(r *ReportCreateRequest)
		field  string
		rule   string
	}{
		{"missing student", func(r *ReportCreateRequest) { r.RegistroAluno = "" }, "registroaluno", "required"},
		{"bad date", func(r *ReportCreateRequest) { r.Data = "14/03/2025" }, "data", "datetime"},
		{"unknown bimestre", func(r *ReportCreateRequest) { r.Bimestre = "5º Bimestre" }, "bimestre", "bimestre"},
		{"bad participation flag", func(r *ReportCreateRequest) { r.ParticipouAula = "Talvez" }, "participouaula", "participou"},
		{"typo in level", func(r *ReportCreateRequest) { r.Participacao = []string{"REALIZOU WITH APOIO DE UM COLEGA"} }, "participacao[0]", "participation_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validReport()
			tt.mutate(&r)

			err := v.Validate(&r)
			require.Error(t, err)

			var ve ValidationErrors
			require.True(t, errors.As(err, &ve))
			require.Len(t, ve, 1)
			assert.Equal(t, tt.field, ve[0].Field)
			assert.Equal(t, tt.rule, ve[0].Rule)
		})
	}
}

func TestValidator_StudentAndProfessor(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&StudentCreateRequest{Registro: "1", Aluno: "Ana"}))
	assert.Error(t, v.Validate(&StudentCreateRequest{Registro: "1"}))

	empty := ""
	assert.Error(t, v.Validate(&StudentUpdateRequest{Aluno: &empty}))

	assert.NoError(t, v.Validate(&ProfessorCreateRequest{RF: "123", Nome: "Maria", Perfil: "gestor"}))
	assert.Error(t, v.Validate(&ProfessorCreateRequest{Nome: "Maria"}))
}

func TestValidationErrors_Error(t *testing.T) {
	assert.Equal(t, "validation failed", ValidationErrors{}.Error())
	assert.Equal(t, "validation failed: rf is required", ValidationErrors{{Field: "rf", Message: "is required"}}.Error())
	assert.Equal(t, "validation failed: 2 field errors", ValidationErrors{{}, {}}.Error())
}
