package api

import (
	"errors"
	"net/http"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/credential"
	"github.com/MrEthical07/goGate/envelope"
	"github.com/MrEthical07/goGate/gate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	noteEmailTaken     = "An account already exists with that email."
	noteLoginMismatch  = "That email and password combination do not match any on record."
	noteResetRequested = "If an account exists with that email it should receive an email with password reset instructions."
	notePasswordLength = "Password is too long."
)

type handlers struct {
	engine *goGate.Engine
	log    *zap.Logger
}

func (h *handlers) getAccount(w http.ResponseWriter, r *http.Request) {
	envelope.OK(w, gate.MetaFromContext(r.Context()), http.StatusOK, "", gate.AccountFromContext(r.Context()))
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	meta := gate.MetaFromContext(ctx)

	body, err := decodeValidBody[registerRequest](r)
	if err != nil {
		envelope.Fail(w, meta, http.StatusBadRequest, err.Error(), envelope.CodeBadRequest)
		return
	}

	existing, err := h.engine.LookupAccountByEmail(ctx, body.Email)
	if err != nil {
		h.internal(w, r, err)
		return
	}
	if existing != nil {
		envelope.Fail(w, meta, http.StatusBadRequest, noteEmailTaken, envelope.CodeUnauthorized)
		return
	}

	acc, err := h.engine.CreateAccount(ctx, body.Name, body.Email, body.Password)
	if errors.Is(err, goGate.ErrEmailTaken) {
		envelope.Fail(w, meta, http.StatusBadRequest, noteEmailTaken, envelope.CodeUnauthorized)
		return
	}
	if errors.Is(err, goGate.ErrPasswordTooLong) {
		envelope.Fail(w, meta, http.StatusBadRequest, notePasswordLength, envelope.CodeBadRequest)
		return
	}
	if err != nil {
		h.internal(w, r, err)
		return
	}

	token, err := h.engine.IssueToken(acc)
	if err != nil {
		h.internal(w, r, err)
		return
	}
	envelope.OK(w, meta, http.StatusCreated, "", accountResponse{Account: acc, Token: token})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	meta := gate.MetaFromContext(ctx)

	body, err := decodeValidBody[loginRequest](r)
	if err != nil {
		envelope.Fail(w, meta, http.StatusBadRequest, err.Error(), envelope.CodeBadRequest)
		return
	}

	acc, err := h.engine.LookupAccountByEmail(ctx, body.Email)
	if err != nil {
		h.internal(w, r, err)
		return
	}
	if acc == nil {
		envelope.Fail(w, meta, http.StatusBadRequest, noteLoginMismatch, envelope.CodeUnauthorized)
		return
	}

	ok, err := h.engine.TryLogin(ctx, acc, body.Password)
	if errors.Is(err, goGate.ErrPasswordTooLong) {
		ok, err = false, nil
	}
	if err != nil {
		h.internal(w, r, err)
		return
	}
	if !ok {
		envelope.Fail(w, meta, http.StatusBadRequest, noteLoginMismatch, envelope.CodeUnauthorized)
		return
	}

	token, err := h.engine.IssueToken(acc)
	if err != nil {
		h.internal(w, r, err)
		return
	}
	envelope.OK(w, meta, http.StatusOK, "", tokenResponse{Token: token})
}

func (h *handlers) sendEmailVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sent, err := h.engine.SendEmailVerification(ctx, gate.AccountFromContext(ctx))
	if err != nil {
		h.internal(w, r, err)
		return
	}
	envelope.OK(w, gate.MetaFromContext(ctx), http.StatusOK, "", successResponse{Success: sent})
}

func (h *handlers) verifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	meta := gate.MetaFromContext(ctx)

	body, err := decodeValidBody[verifyEmailRequest](r)
	if err != nil {
		envelope.Fail(w, meta, http.StatusBadRequest, err.Error(), envelope.CodeBadRequest)
		return
	}

	accountID, code, ok := credential.SplitToken(body.ID)
	if !ok {
		envelope.Fail(w, meta, http.StatusBadRequest, "", envelope.CodeVerificationIDInvalid)
		return
	}
	acc, err := h.engine.LookupAccountByID(ctx, accountID)
	if err != nil {
		h.internal(w, r, err)
		return
	}
	if acc == nil {
		envelope.Fail(w, meta, http.StatusBadRequest, "", envelope.CodeVerificationIDInvalid)
		return
	}

	err = h.engine.TryVerifyEmail(ctx, acc, code)
	switch {
	case errors.Is(err, goGate.ErrVerificationIDInvalid):
		envelope.Fail(w, meta, http.StatusBadRequest, "", envelope.CodeVerificationIDInvalid)
	case err != nil:
		h.internal(w, r, err)
	default:
		envelope.OK(w, meta, http.StatusOK, "", successResponse{Success: true})
	}
}

func (h *handlers) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	meta := gate.MetaFromContext(ctx)

	body, err := decodeValidBody[requestPasswordResetRequest](r)
	if err != nil {
		envelope.Fail(w, meta, http.StatusBadRequest, err.Error(), envelope.CodeBadRequest)
		return
	}

	acc, err := h.engine.LookupAccountByEmail(ctx, body.Email)
	if err != nil {
		h.internal(w, r, err)
		return
	}
	if acc != nil {
		if err := h.engine.InitiatePasswordReset(ctx, acc); err != nil {
			h.internal(w, r, err)
			return
		}
	}
	// Same answer whether or not the account exists.
	envelope.OK(w, meta, http.StatusOK, noteResetRequested, successResponse{Success: true})
}

func (h *handlers) resetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	meta := gate.MetaFromContext(ctx)

	body, err := decodeValidBody[resetPasswordRequest](r)
	if err != nil {
		envelope.Fail(w, meta, http.StatusBadRequest, err.Error(), envelope.CodeBadRequest)
		return
	}

	accountID, code, ok := credential.SplitToken(body.ID)
	if !ok {
		envelope.Fail(w, meta, http.StatusBadRequest, "", envelope.CodeResetIDInvalid)
		return
	}
	acc, err := h.engine.LookupAccountByID(ctx, accountID)
	if err != nil {
		h.internal(w, r, err)
		return
	}
	if acc == nil {
		envelope.Fail(w, meta, http.StatusBadRequest, "", envelope.CodeResetIDInvalid)
		return
	}

	err = h.engine.TryResetPassword(ctx, acc, code, body.NewPassword)
	switch {
	case errors.Is(err, goGate.ErrResetIDExpired):
		envelope.Fail(w, meta, http.StatusBadRequest, "", envelope.CodeResetIDExpired)
	case errors.Is(err, goGate.ErrResetIDInvalid):
		envelope.Fail(w, meta, http.StatusBadRequest, "", envelope.CodeResetIDInvalid)
	case errors.Is(err, goGate.ErrPasswordTooLong):
		envelope.Fail(w, meta, http.StatusBadRequest, notePasswordLength, envelope.CodeBadRequest)
	case err != nil:
		h.internal(w, r, err)
	default:
		envelope.OK(w, meta, http.StatusOK, "", successResponse{Success: true})
	}
}

func (h *handlers) internal(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("request failed",
		zap.String("error_id", uuid.NewString()),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	envelope.Fail(w, gate.MetaFromContext(r.Context()), http.StatusInternalServerError, "", envelope.CodeInternalError)
}
