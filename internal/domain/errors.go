package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrAlreadyProcessed  = errors.New("transacción ya procesada")
	ErrInsufficientStock = errors.New("stock insuficiente")
)
