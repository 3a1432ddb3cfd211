package models

const (
	ParticipouSim = "Sim"
	ParticipouNao = "Não"

	BimestreTodos = "Todos"
)

// Bimestres are the school-term buckets reports are filed under.
var Bimestres = []string{
	"1º Bimestre",
	"2º Bimestre",
	"3º Bimestre",
	"4º Bimestre",
}

// ParticipationOptions is the fixed checklist printed in every dossier page.
var ParticipationOptions = []string{
	"REALIZOU COM AUTONOMIA",
	"REALIZOU COM APOIO E INTERVENÇÃO DE UM ADULTO",
	"REALIZOU COM APOIO DE UM COLEGA",
	"NÃO REALIZOU",
}

// IsBimestre reports whether s is one of the four school terms.
func IsBimestre(s string) bool {
	return contains(Bimestres, s)
}

// IsParticipationOption reports whether s belongs to ParticipationOptions.
func IsParticipationOption(s string) bool {
	return contains(ParticipationOptions, s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
