package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("Credenciais inválidas. Tente novamente.")
	ErrUnauthenticated    = errors.New("sessão inválida ou expirada")
	ErrTeamNotFound       = errors.New("time não encontrado")
	ErrPlayerNotFound     = errors.New("jogador não encontrado")
	ErrReportNotFound     = errors.New("relatório não encontrado")
	ErrNoChanges          = errors.New("Nenhuma alteração detectada")
	ErrSameTeam           = errors.New("O jogador já pertence a este time")
	ErrIndexOutOfRange    = errors.New("índice fora do intervalo")
	ErrInvalidSeason      = errors.New("temporada inválida")
)

// ValidationError reports a rejected form field. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UpstreamError is a failed league API call. Message is safe to show to users.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	return e.Message + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstream(message string, err error) error {
	return &UpstreamError{Message: message, Err: err}
}
