package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"unicode/utf8"

	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/repositories"
	"github.com/aeeconecta/aee-service/internal/session"
)

const minPasswordLength = 6

// HashPassword returns the lowercase hex SHA-256 of the UTF-8 password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func passwordMatches(password, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashPassword(password)), []byte(hash)) == 1
}

// ValidateNewPassword checks the length (in characters) and confirmation.
func ValidateNewPassword(password, confirm string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrWeakPassword
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// requirePermission rejects sessions that are not logged in with p.
func requirePermission(sess *session.Session, p models.Permission, resource, action string) error {
	if sess == nil || !sess.IsLoggedIn() {
		return ErrNotAuthenticated
	}
	if !sess.Can(p) {
		return NewPermissionError(sess.RF, resource, action, "perfil lacks "+string(p))
	}
	return nil
}

// mapNotFound replaces the repository not-found sentinel with target.
func mapNotFound(err, target error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return target
	}
	return err
}
