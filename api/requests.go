package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrEthical07/goGate/account"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type registerRequest struct {
	Name     string `json:"name" validate:"max=64"`
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

type verifyEmailRequest struct {
	ID string `json:"id" validate:"required"`
}

type requestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

type resetPasswordRequest struct {
	ID          string `json:"id" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,max=1024"`
}

type requestBody interface {
	registerRequest | loginRequest | verifyEmailRequest | requestPasswordResetRequest | resetPasswordRequest
}

// decodeValidBody reads the JSON body into B and applies its validate tags.
func decodeValidBody[B requestBody](r *http.Request) (B, error) {
	var body B
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return body, fmt.Errorf("decode body: %w", err)
	}
	if err := validate.Struct(body); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return body, fmt.Errorf("%s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return body, err
	}
	return body, nil
}

type accountResponse struct {
	Account *account.Account `json:"account"`
	Token   string           `json:"token"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type successResponse struct {
	Success bool `json:"success"`
}
