package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Sentinels matched with errors.Is by the HTTP layer.
var (
	ErrNotFound        = errors.New("não encontrado")
	ErrConflict        = errors.New("conflito")
	ErrForbidden       = errors.New("acesso negado")
	ErrUnauthenticated = errors.New("autenticação requerida")
	ErrInvalid         = errors.New("requisição inválida")
)

// Error carries a user-facing message and the sentinel it belongs to.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Is(target error) bool { return target == e.Kind }

func notFound(msg string) error  { return &Error{Kind: ErrNotFound, Msg: msg} }
func conflict(msg string) error  { return &Error{Kind: ErrConflict, Msg: msg} }
func forbidden(msg string) error { return &Error{Kind: ErrForbidden, Msg: msg} }
func invalid(msg string) error   { return &Error{Kind: ErrInvalid, Msg: msg} }

func unauthenticated() error {
	return &Error{Kind: ErrUnauthenticated, Msg: "autenticação requerida"}
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// isConstraint reports storage errors caused by a unique or foreign-key
// violation. glebarez/sqlite does not implement gorm's ErrorTranslator, so the
// driver message is inspected as a fallback.
func isConstraint(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "constraint failed") ||
		strings.Contains(msg, "violates foreign key") ||
		strings.Contains(msg, "violates unique")
}
