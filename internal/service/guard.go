package service

import (
	"github.com/google/uuid"

	"github.com/spec-kit/billing-service/internal/domain"
	apperrors "github.com/spec-kit/billing-service/pkg/util/errorutil"
)

// Ownership failures never reveal whether the record exists.
const (
	msgCustomerForbidden = "unauthorized or customer not found"
	msgInvoiceForbidden  = "unauthorized or invoice not found"
)

func requireSession(session *domain.Session) error {
	if session == nil || session.UserID == "" {
		return apperrors.NewUnauthorized("session required")
	}
	return nil
}

// ensureOwner rejects any access to a record whose effective owner is not the
// session user.
func ensureOwner(session *domain.Session, ownerUserID, forbiddenMessage string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if ownerUserID == "" || ownerUserID != session.UserID {
		return apperrors.NewForbidden(forbiddenMessage)
	}
	return nil
}

// normalizeID returns the canonical form of a record id, or false when it
// cannot name any record.
func normalizeID(raw string) (string, bool) {
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
