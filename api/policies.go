package api

import "github.com/MrEthical07/goGate/gate"

// EmailRegex is the RFC 5322 style address pattern applied to every email
// body field. It only accepts lowercase local parts and domains.
const EmailRegex = `(?:[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*|"(?:[\x01-\x08\x0b\x0c\x0e-\x1f\x21\x23-\x5b\x5d-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])*")@(?:(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?|\[(?:(?:(2(5[0-5]|[0-4][0-9])|1[0-9][0-9]|[1-9]?[0-9]))\.){3}(?:(2(5[0-5]|[0-4][0-9])|1[0-9][0-9]|[1-9]?[0-9])|[a-z0-9-]*[a-z0-9]:(?:[\x01-\x08\x0b\x0c\x0e-\x1f\x21-\x5a\x53-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])+)\])`

var (
	registerPolicy = gate.Policy{
		RateLimit:          true,
		RequiredBodyFields: []string{"name", "email", "password"},
		BodyRegex:          map[string]string{"email": EmailRegex},
	}

	loginPolicy = gate.Policy{
		RateLimit:          true,
		RequiredBodyFields: []string{"email", "password"},
		BodyRegex:          map[string]string{"email": EmailRegex},
	}

	authorizedPolicy = gate.Policy{
		RateLimit:         true,
		RequiredHeaders:   []string{"Authorization"},
		RequireAuthHeader: true,
		RequireValidAuth:  true,
	}

	verifyEmailPolicy = gate.Policy{
		RateLimit:          true,
		RequiredBodyFields: []string{"id"},
	}

	requestPasswordResetPolicy = gate.Policy{
		RateLimit:          true,
		RequiredBodyFields: []string{"email"},
		BodyRegex:          map[string]string{"email": EmailRegex},
	}

	resetPasswordPolicy = gate.Policy{
		RateLimit:          true,
		RequiredBodyFields: []string{"id", "newPassword"},
	}
)
