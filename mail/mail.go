package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/MrEthical07/goGate/account"
	"github.com/MrEthical07/goGate/credential"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	SubjectVerifyEmail   = "Verify your email"
	SubjectResetPassword = "Reset your password"
)

// Sender delivers a rendered HTML message.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Config addresses the links embedded in outgoing mail.
type Config struct {
	VerifyURL string
	ResetURL  string
	// ResetValidFor is quoted in the reset mail.
	ResetValidFor time.Duration
}

// Composer renders account mail and passes it to a Sender.
type Composer struct {
	sender    Sender
	cfg       Config
	templates *template.Template
}

type templateData struct {
	Name     string
	Link     string
	ValidFor string
}

// NewComposer parses the embedded templates.
func NewComposer(sender Sender, cfg Config) (*Composer, error) {
	if sender == nil {
		return nil, errors.New("mail sender required")
	}
	if _, err := url.Parse(cfg.VerifyURL); err != nil || cfg.VerifyURL == "" {
		return nil, fmt.Errorf("invalid verify url %q", cfg.VerifyURL)
	}
	if _, err := url.Parse(cfg.ResetURL); err != nil || cfg.ResetURL == "" {
		return nil, fmt.Errorf("invalid reset url %q", cfg.ResetURL)
	}
	if cfg.ResetValidFor <= 0 {
		cfg.ResetValidFor = 15 * time.Minute
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Composer{sender: sender, cfg: cfg, templates: tmpl}, nil
}

func (c *Composer) SendVerification(ctx context.Context, acc *account.Account, code string) error {
	body, err := c.render("verify_email.html", templateData{
		Name: acc.Name,
		Link: Link(c.cfg.VerifyURL, acc.AccountID, code),
	})
	if err != nil {
		return err
	}
	return c.sender.Send(ctx, acc.Email, SubjectVerifyEmail, body)
}

func (c *Composer) SendPasswordReset(ctx context.Context, acc *account.Account, code string) error {
	body, err := c.render("reset_password.html", templateData{
		Name:     acc.Name,
		Link:     Link(c.cfg.ResetURL, acc.AccountID, code),
		ValidFor: c.cfg.ResetValidFor.String(),
	})
	if err != nil {
		return err
	}
	return c.sender.Send(ctx, acc.Email, SubjectResetPassword, body)
}

func (c *Composer) render(name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := c.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Link appends id=accountId:code to base, preserving any existing query.
func Link(base, accountID, code string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?id=" + url.QueryEscape(credential.JoinID(accountID, code))
	}
	q := u.Query()
	q.Set("id", credential.JoinID(accountID, code))
	u.RawQuery = q.Encode()
	return u.String()
}
