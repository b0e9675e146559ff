package flows

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goGate/account"
)

var (
	errNotReady     = errors.New("not ready")
	errEmailTaken   = errors.New("email taken")
	errNotFound     = errors.New("not found")
	errTokenInvalid = errors.New("token invalid")
	errVerify       = errors.New("verification invalid")
	errResetInvalid = errors.New("reset invalid")
	errResetExpired = errors.New("reset expired")
)

type testEnv struct {
	deps    AccountDeps
	store   *account.MemoryStore
	now     time.Time
	sent    map[string]string
	resets  map[string]string
	counter atomic.Int64
	events  []string
}

// newTestEnv uses a reversible fake hash so flows can be checked without
// paying for a real KDF.
func newTestEnv() *testEnv {
	env := &testEnv{
		store:  account.NewMemoryStore(),
		now:    time.UnixMilli(1_700_000_000_000),
		sent:   map[string]string{},
		resets: map[string]string{},
	}
	env.deps = AccountDeps{
		ResetTTL: 15 * time.Minute,
		Now:      func() time.Time { return env.now },
		NewAccountID: func() (string, error) {
			return "acc" + strconv.FormatInt(env.counter.Add(1), 10), nil
		},
		NewOneTimeCode: func() (string, error) {
			return "code" + strconv.FormatInt(env.counter.Add(1), 10), nil
		},
		HashPassword: func(p string) (string, error) { return "h(" + p + ")", nil },
		VerifyPassword: func(p, h string) (bool, error) {
			return h == "h("+p+")", nil
		},
		IssueToken: func(id, h string) (string, error) { return id + ":" + "h(" + h + ")", nil },
		ValidateChallenge: func(c, h string) bool {
			return c == "h("+h+")"
		},
		SplitToken: func(token string) (string, string, bool) {
			id, rest, ok := strings.Cut(token, ":")
			return id, rest, ok && id != "" && rest != ""
		},
		TokenAccountID: func(token string) string {
			id, _, _ := strings.Cut(token, ":")
			return id
		},
		Store: env.store,
		SendVerification: func(_ context.Context, acc *account.Account, code string) {
			env.sent[acc.AccountID] = code
		},
		SendPasswordReset: func(_ context.Context, acc *account.Account, code string) {
			env.resets[acc.AccountID] = code
		},
		EmitAudit: func(_ context.Context, event string, success bool, _ string, _ error, _ func() map[string]string) {
			env.events = append(env.events, event+":"+strconv.FormatBool(success))
		},
		Events: AccountEvents{
			AccountCreated:        "account_created",
			EmailVerificationSent: "email_verification_sent",
			EmailVerified:         "email_verified",
			PasswordResetRequest:  "password_reset_requested",
			PasswordReset:         "password_reset",
			Login:                 "login",
			BanChanged:            "ban_changed",
		},
		Errors: AccountErrors{
			EngineNotReady:        errNotReady,
			EmailTaken:            errEmailTaken,
			AccountNotFound:       errNotFound,
			TokenInvalid:          errTokenInvalid,
			VerificationIDInvalid: errVerify,
			ResetIDInvalid:        errResetInvalid,
			ResetIDExpired:        errResetExpired,
		},
	}
	return env
}

func (env *testEnv) create(t *testing.T, email string) *account.Account {
	t.Helper()
	acc, err := RunCreateAccount(context.Background(), CreateAccountRequest{Email: email, Password: "x"}, env.deps)
	if err != nil {
		t.Fatalf("RunCreateAccount failed: %v", err)
	}
	return acc
}

func TestCreateAccountNormalizesAndSendsVerification(t *testing.T) {
	env := newTestEnv()
	acc := env.create(t, "Alice@Example.com")

	if acc.Email != "alice@example.com" || acc.Name != "alice" {
		t.Fatalf("unexpected identity: %+v", acc)
	}
	if acc.PasswordHash != "h(x)" || acc.CreationTimestamp != env.now.UnixMilli() {
		t.Fatalf("unexpected credentials: %+v", acc)
	}
	if acc.EmailVerified || acc.EmailVerificationID == "" {
		t.Fatalf("expected pending verification: %+v", acc)
	}
	if env.sent[acc.AccountID] != acc.EmailVerificationID {
		t.Fatal("expected verification code handed to mailer")
	}

	stored, err := env.store.FindByEmail(context.Background(), "alice@example.com")
	if err != nil || stored.AccountID != acc.AccountID {
		t.Fatalf("expected persisted account: %v", err)
	}
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	env := newTestEnv()
	env.create(t, "a@x.io")

	_, err := RunCreateAccount(context.Background(), CreateAccountRequest{Email: "A@X.IO", Password: "y"}, env.deps)
	if !errors.Is(err, errEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestCreateAccountNotReady(t *testing.T) {
	env := newTestEnv()
	env.deps.Store = nil
	if _, err := RunCreateAccount(context.Background(), CreateAccountRequest{Email: "a@x.io"}, env.deps); !errors.Is(err, errNotReady) {
		t.Fatalf("expected not ready, got %v", err)
	}
}

func TestVerifyEmailSucceedsOnce(t *testing.T) {
	env := newTestEnv()
	acc := env.create(t, "a@x.io")
	code := acc.EmailVerificationID

	if err := RunVerifyEmail(context.Background(), acc, code, env.deps); err != nil {
		t.Fatalf("first verify failed: %v", err)
	}
	if !acc.EmailVerified || acc.EmailVerificationID != "" {
		t.Fatalf("expected verified with cleared code: %+v", acc)
	}
	if err := RunVerifyEmail(context.Background(), acc, code, env.deps); !errors.Is(err, errVerify) {
		t.Fatalf("expected second verify to fail, got %v", err)
	}
}

func TestVerifyEmailWrongCode(t *testing.T) {
	env := newTestEnv()
	acc := env.create(t, "a@x.io")

	if err := RunVerifyEmail(context.Background(), acc, "nope", env.deps); !errors.Is(err, errVerify) {
		t.Fatalf("expected invalid, got %v", err)
	}
	if err := RunVerifyEmail(context.Background(), acc, "", env.deps); !errors.Is(err, errVerify) {
		t.Fatalf("expected empty code to be invalid, got %v", err)
	}
}

func TestSendEmailVerificationSkipsVerifiedAndBanned(t *testing.T) {
	env := newTestEnv()
	acc := env.create(t, "a@x.io")
	first := acc.EmailVerificationID

	sent, err := RunSendEmailVerification(context.Background(), acc, env.deps)
	if err != nil || !sent {
		t.Fatalf("expected resend: sent=%v err=%v", sent, err)
	}
	if acc.EmailVerificationID == first {
		t.Fatal("expected a fresh code")
	}
	if err := RunVerifyEmail(context.Background(), acc, first, env.deps); !errors.Is(err, errVerify) {
		t.Fatal("superseded code must not verify")
	}

	acc.IsBanned = true
	if sent, _ := RunSendEmailVerification(context.Background(), acc, env.deps); sent {
		t.Fatal("banned account must not receive verification")
	}

	acc.IsBanned = false
	acc.EmailVerified = true
	if sent, _ := RunSendEmailVerification(context.Background(), acc, env.deps); sent {
		t.Fatal("verified account must not receive verification")
	}
}

func TestResetPasswordExpiryCheckedFirst(t *testing.T) {
	env := newTestEnv()
	acc := env.create(t, "a@x.io")

	if err := RunInitiatePasswordReset(context.Background(), acc, env.deps); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	code := acc.ResetRequestID
	if env.resets[acc.AccountID] != code {
		t.Fatal("expected reset code handed to mailer")
	}

	env.now = env.now.Add(16 * time.Minute)
	if err := RunResetPassword(context.Background(), acc, code, "new", env.deps); !errors.Is(err, errResetExpired) {
		t.Fatalf("expected expired with correct code, got %v", err)
	}
}

func TestResetPasswordWrongCodeWithinWindow(t *testing.T) {
	env := newTestEnv()
	acc := env.create(t, "a@x.io")
	_ = RunInitiatePasswordReset(context.Background(), acc, env.deps)

	env.now = env.now.Add(14 * time.Minute)
	if err := RunResetPassword(context.Background(), acc, "wrong", "new", env.deps); !errors.Is(err, errResetInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestResetPasswordSuccessInvalidatesTokens(t *testing.T) {
	env := newTestEnv()
	acc := env.create(t, "a@x.io")

	token, err := RunIssueToken(acc, env.deps)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	if !RunIsTokenValid(acc, token, env.deps) {
		t.Fatal("expected fresh token to be valid")
	}

	_ = RunInitiatePasswordReset(context.Background(), acc, env.deps)
	code := acc.ResetRequestID
	env.now = env.now.Add(time.Minute)

	if err := RunResetPassword(context.Background(), acc, code, "new", env.deps); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if acc.ResetRequestID != "" || acc.ResetRequestTimestamp != 0 || acc.PasswordHash != "h(new)" {
		t.Fatalf("unexpected account after reset: %+v", acc)
	}
	if RunIsTokenValid(acc, token, env.deps) {
		t.Fatal("token must not survive a password change")
	}
	if err := RunResetPassword(context.Background(), acc, code, "again", env.deps); !errors.Is(err, errResetExpired) {
		t.Fatalf("consumed code must not be reusable, got %v", err)
	}
}

func TestInitiatePasswordResetOverwrites(t *testing.T) {
	env := newTestEnv()
	acc := env.create(t, "a@x.io")

	_ = RunInitiatePasswordReset(context.Background(), acc, env.deps)
	first := acc.ResetRequestID
	_ = RunInitiatePasswordReset(context.Background(), acc, env.deps)

	if acc.ResetRequestID == first {
		t.Fatal("expected new reset code")
	}
	if err := RunResetPassword(context.Background(), acc, first, "n", env.deps); !errors.Is(err, errResetInvalid) {
		t.Fatalf("superseded reset code must be invalid, got %v", err)
	}
}

func TestTryLogin(t *testing.T) {
	env := newTestEnv()
	acc := env.create(t, "a@x.io")

	if ok, err := RunTryLogin(context.Background(), acc, "x", env.deps); err != nil || !ok {
		t.Fatalf("expected login success: ok=%v err=%v", ok, err)
	}
	if ok, _ := RunTryLogin(context.Background(), acc, "y", env.deps); ok {
		t.Fatal("expected wrong password to fail")
	}

	if err := RunSetBanned(context.Background(), acc, true, env.deps); err != nil {
		t.Fatalf("ban failed: %v", err)
	}
	if ok, _ := RunTryLogin(context.Background(), acc, "x", env.deps); ok {
		t.Fatal("banned account must not log in")
	}
}

func TestIsTokenValidRejections(t *testing.T) {
	env := newTestEnv()
	acc := env.create(t, "a@x.io")
	token, _ := RunIssueToken(acc, env.deps)

	other := acc.Clone()
	other.AccountID = "someone-else"
	if RunIsTokenValid(other, token, env.deps) {
		t.Fatal("token for another id must be rejected")
	}
	if RunIsTokenValid(acc, "no-separator", env.deps) {
		t.Fatal("malformed token must be rejected")
	}

	acc.IsBanned = true
	if RunIsTokenValid(acc, token, env.deps) {
		t.Fatal("banned account token must be rejected")
	}
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv()
	acc := env.create(t, "a@x.io")
	token, _ := RunIssueToken(acc, env.deps)
	ctx := context.Background()

	got, err := RunAuthenticate(ctx, token, env.deps)
	if err != nil || got.AccountID != acc.AccountID {
		t.Fatalf("expected authentication: %v", err)
	}

	if _, err := RunAuthenticate(ctx, "ghost:challenge", env.deps); !errors.Is(err, errNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := RunAuthenticate(ctx, "garbage", env.deps); !errors.Is(err, errNotFound) {
		t.Fatalf("expected not found for unknown id without challenge, got %v", err)
	}
	if _, err := RunAuthenticate(ctx, acc.AccountID, env.deps); !errors.Is(err, errTokenInvalid) {
		t.Fatalf("expected invalid for known id without challenge, got %v", err)
	}
	if _, err := RunAuthenticate(ctx, ":"+acc.AccountID, env.deps); !errors.Is(err, errNotFound) {
		t.Fatalf("expected not found for empty id, got %v", err)
	}
	if _, err := RunAuthenticate(ctx, acc.AccountID+":forged", env.deps); !errors.Is(err, errTokenInvalid) {
		t.Fatalf("expected invalid for forged challenge, got %v", err)
	}
}
