package models

import "time"

// Professor is a staff member allowed to log in. RF is the login identifier and
// Perfil is the free-text role the permission set is derived from.
type Professor struct {
	RF     string `json:"rf" gorm:"primaryKey;size:50"`
	Nome   string `json:"nome" gorm:"not null;size:200;index"`
	Perfil string `json:"perfil" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Professor) TableName() string {
	return "professores"
}

// Credential holds the password hash of a professor. A missing row means the
// professor has never set a password and must log in with the RF itself.
type Credential struct {
	RF        string    `json:"rf" gorm:"primaryKey;size:50"`
	SenhaHash string    `json:"-" gorm:"not null;size:64"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Credential) TableName() string {
	return "credenciais"
}

// LoginLog is one row of the append-only login trail.
type LoginLog struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	RF       string `json:"rf" gorm:"not null;size:50;index"`
	DataHora string `json:"data_hora" gorm:"not null;size:20"`
}

func (LoginLog) TableName() string {
	return "logs"
}

// LoginLogEntry is a login row joined with the professor name.
type LoginLogEntry struct {
	DataHora  string `json:"data_hora"`
	Professor string `json:"professor"`
	RF        string `json:"rf"`
}
