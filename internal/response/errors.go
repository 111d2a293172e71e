package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation        ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload    ErrCode = "INVALID_PAYLOAD"
	ErrInvalidRiskLevel  ErrCode = "INVALID_RISK_LEVEL"
	ErrInvalidTransition ErrCode = "INVALID_STATUS_TRANSITION"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound             ErrCode = "NOT_FOUND"
	ErrStudentNotFound      ErrCode = "STUDENT_NOT_FOUND"
	ErrInterventionNotFound ErrCode = "INTERVENTION_NOT_FOUND"
	ErrConflict             ErrCode = "CONFLICT"

	// ─── Import ────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"

	// ─── Server ────────────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"
	ErrQueueUnavailable  ErrCode = "QUEUE_UNAVAILABLE"
	ErrInternal          ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Dados inválidos. Verifique os campos enviados."
	case ErrInvalidPayload:
		return "Corpo da requisição inválido."
	case ErrInvalidRiskLevel:
		return "Nível de risco inválido. Valores permitidos: low, medium, high."
	case ErrInvalidTransition:
		return "Não é possível reabrir uma intervenção concluída."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Recurso não encontrado."
	case ErrStudentNotFound:
		return "Aluno não encontrado."
	case ErrInterventionNotFound:
		return "Intervenção não encontrada."
	case ErrConflict:
		return "Já existe um registro com este identificador."

	// ─── Import ────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "Envie uma planilha no campo \"file\"."
	case ErrUnsupportedFile:
		return "Formato de arquivo não suportado. Envie um arquivo .xlsx."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Muitas requisições. Tente novamente em instantes."
	case ErrQueueUnavailable:
		return "Fila de recálculo indisponível."
	case ErrInternal:
		return "Erro interno do servidor."
	default:
		return "Erro inesperado."
	}
}
