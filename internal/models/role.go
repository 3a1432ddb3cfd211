package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type UserRole string

const (
	RoleTeacher UserRole = "teacher"
	RoleManager UserRole = "manager"
	RoleAdmin   UserRole = "admin"
)

type Permission string

const (
	PermFileReport        Permission = "file_report"
	PermGenerateDocuments Permission = "generate_documents"
	PermExport            Permission = "export"
	PermManageRoster      Permission = "manage_roster"
	PermResetPasswords    Permission = "reset_passwords"
	PermViewLogs          Permission = "view_logs"
	PermResetAll          Permission = "reset_all"
)

// BootstrapPerfil is the perfil given to the first professor of an empty roster.
const BootstrapPerfil = "Administrador"

// privilegedPerfis maps normalized perfil strings to privileged roles.
var privilegedPerfis = map[string]UserRole{
	"gestor":         RoleManager,
	"gestora":        RoleManager,
	"coordenador":    RoleManager,
	"coordenadora":   RoleManager,
	"coordenacao":    RoleManager,
	"diretor":        RoleManager,
	"diretora":       RoleManager,
	"direcao":        RoleManager,
	"admin":          RoleAdmin,
	"administrador":  RoleAdmin,
	"administradora": RoleAdmin,
}

var rolePermissions = map[UserRole][]Permission{
	RoleTeacher: {PermFileReport},
	RoleManager: {
		PermFileReport, PermGenerateDocuments, PermExport,
		PermManageRoster, PermResetPasswords, PermViewLogs,
	},
	RoleAdmin: {
		PermFileReport, PermGenerateDocuments, PermExport,
		PermManageRoster, PermResetPasswords, PermViewLogs, PermResetAll,
	},
}

// NormalizeRole lower-cases perfil, strips diacritics and drops everything
// that is not a letter or digit.
func NormalizeRole(perfil string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, perfil)
	if err != nil {
		folded = perfil
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RoleFromPerfil derives the role of a professor from the free-text perfil.
func RoleFromPerfil(perfil string) UserRole {
	if role, ok := privilegedPerfis[NormalizeRole(perfil)]; ok {
		return role
	}
	return RoleTeacher
}

// Can reports whether the role grants p.
func (r UserRole) Can(p Permission) bool {
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}

// IsPrivileged reports whether the role unlocks the management panels.
func (r UserRole) IsPrivileged() bool {
	return r == RoleManager || r == RoleAdmin
}

// Permissions lists what the role grants.
func (r UserRole) Permissions() []Permission {
	return append([]Permission(nil), rolePermissions[r]...)
}
