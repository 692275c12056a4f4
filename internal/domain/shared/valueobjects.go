package shared

import (
	"strings"
	"unicode/utf8"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// Общие value objects, используемые во всех доменных пакетах.
// ══════════════════════════════════════════════════════════════════════════════

// ──────────────────────────────────────────────────────────────────────────────
// UserID
// ──────────────────────────────────────────────────────────────────────────────

// UserID - стабильный идентификатор аккаунта (ключ документа профиля).
type UserID string

// IsValid проверяет, что идентификатор не пустой.
func (u UserID) IsValid() bool {
	return strings.TrimSpace(string(u)) != ""
}

// String возвращает строковое представление.
func (u UserID) String() string {
	return string(u)
}

// Short возвращает первые n символов идентификатора.
// Используется для генерации запасных username вида user_abcde.
func (u UserID) Short(n int) string {
	s := string(u)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// ──────────────────────────────────────────────────────────────────────────────
// Username
// ──────────────────────────────────────────────────────────────────────────────

const (
	// MinUsernameLength - минимальная длина username.
	MinUsernameLength = 3
	// MaxUsernameLength - максимальная длина username.
	MaxUsernameLength = 20
)

// Username - каноническое (lowercase) имя пользователя.
// Все сравнения и ключи реестра используют только эту форму.
type Username string

// NormalizeUsername приводит ввод к канонической форме.
func NormalizeUsername(raw string) Username {
	return Username(strings.ToLower(strings.TrimSpace(raw)))
}

// NewUsername нормализует и валидирует username.
func NewUsername(raw string) (Username, error) {
	u := NormalizeUsername(raw)
	if !u.IsValid() {
		return "", ErrInvalidUsername
	}
	return u, nil
}

// IsValid проверяет длину и допустимые символы: латиница, цифры, подчёркивание.
func (u Username) IsValid() bool {
	s := string(u)
	if len(s) < MinUsernameLength || len(s) > MaxUsernameLength {
		return false
	}
	for _, r := range s {
		if !isUsernameRune(r) {
			return false
		}
	}
	return true
}

// String возвращает строковое представление.
func (u Username) String() string {
	return string(u)
}

// SanitizeUsername оставляет только допустимые символы и обрезает до
// максимальной длины. Результат может оказаться невалидным (слишком коротким).
func SanitizeUsername(raw string) Username {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if isUsernameRune(r) {
			b.WriteRune(r)
		}
		if b.Len() == MaxUsernameLength {
			break
		}
	}
	return Username(b.String())
}

func isUsernameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_'
}
