package goGate

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventAccountCreated         = "account_created"
	auditEventEmailVerificationSent  = "email_verification_sent"
	auditEventEmailVerified          = "email_verified"
	auditEventPasswordResetRequested = "password_reset_requested"
	auditEventPasswordReset          = "password_reset"
	auditEventLogin                  = "login"
	auditEventBanChanged             = "ban_changed"
)

// AuditErrorCode is the stable error label carried by failed audit events.
type AuditErrorCode string

const (
	auditErrEmailTaken            AuditErrorCode = "email_taken"
	auditErrVerificationIDInvalid AuditErrorCode = "verification_id_invalid"
	auditErrResetIDInvalid        AuditErrorCode = "reset_id_invalid"
	auditErrResetIDExpired        AuditErrorCode = "reset_id_expired"
	auditErrAccountNotFound       AuditErrorCode = "account_not_found"
	auditErrTokenInvalid          AuditErrorCode = "token_invalid"
	auditErrInternal              AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		AccountID: accountID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrEmailTaken):
		return auditErrEmailTaken
	case errors.Is(err, ErrVerificationIDInvalid):
		return auditErrVerificationIDInvalid
	case errors.Is(err, ErrResetIDInvalid):
		return auditErrResetIDInvalid
	case errors.Is(err, ErrResetIDExpired):
		return auditErrResetIDExpired
	case errors.Is(err, ErrAccountNotFound):
		return auditErrAccountNotFound
	case errors.Is(err, ErrTokenInvalid):
		return auditErrTokenInvalid
	default:
		return auditErrInternal
	}
}

func (e *Engine) now() time.Time {
	if e != nil && e.clock != nil {
		return e.clock()
	}
	return time.Now()
}
