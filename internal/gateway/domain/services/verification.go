package services

// RejectReason - причина отказа конвейера проверки.
type RejectReason int

// Причины отказа.
const (
	ReasonMissingToken RejectReason = iota + 1
	ReasonBlacklisted
	ReasonInvalidSignatureOrExpiry
	// ReasonBackendUnavailable означает, что хранилище отзыва недоступно;
	// запрос отклоняется, поскольку отзыв нельзя исключить.
	ReasonBackendUnavailable
)

func (r RejectReason) String() string {
	switch r {
	case ReasonMissingToken:
		return "missing_token"
	case ReasonBlacklisted:
		return "blacklisted"
	case ReasonInvalidSignatureOrExpiry:
		return "invalid_signature_or_expiry"
	case ReasonBackendUnavailable:
		return "backend_unavailable"
	default:
		return "unknown"
	}
}

// VerificationResult - итог проверки запроса: либо Authenticated, либо Rejected.
type VerificationResult interface {
	verificationResult()
}

// Authenticated - токен принят.
type Authenticated struct {
	Claims Claims
}

// Rejected - токен отклонен.
type Rejected struct {
	Reason RejectReason
	Err    error
}

func (Authenticated) verificationResult() {}
func (Rejected) verificationResult()      {}
