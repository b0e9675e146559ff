// Package catalog names every goGate metric for the exporters.
package catalog

import (
	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/internal/metrics"
)

// Def names one exported metric.
type Def struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// AuditDropped is exported alongside the registry counters.
var AuditDropped = Def{Name: "gogate_audit_dropped_total", Help: "Audit events dropped because the dispatcher buffer was full."}

// Counters lists the counters in exposition order.
var Counters = []Def{
	{ID: goGate.MetricAccountCreated, Name: "gogate_account_created_total", Help: "Accounts registered."},
	{ID: goGate.MetricAccountCreationDuplicate, Name: "gogate_account_creation_duplicate_total", Help: "Registrations rejected because the email was taken."},
	{ID: goGate.MetricEmailVerificationSent, Name: "gogate_email_verification_sent_total", Help: "Verification codes issued."},
	{ID: goGate.MetricEmailVerificationSuccess, Name: "gogate_email_verification_success_total", Help: "Emails verified."},
	{ID: goGate.MetricEmailVerificationFailure, Name: "gogate_email_verification_failure_total", Help: "Verification attempts with a wrong or spent code."},
	{ID: goGate.MetricPasswordResetRequest, Name: "gogate_password_reset_request_total", Help: "Password reset codes issued."},
	{ID: goGate.MetricPasswordResetSuccess, Name: "gogate_password_reset_success_total", Help: "Passwords reset."},
	{ID: goGate.MetricPasswordResetInvalid, Name: "gogate_password_reset_invalid_total", Help: "Reset attempts with a wrong code."},
	{ID: goGate.MetricPasswordResetExpired, Name: "gogate_password_reset_expired_total", Help: "Reset attempts after the request expired."},
	{ID: goGate.MetricLoginSuccess, Name: "gogate_login_success_total", Help: "Successful logins."},
	{ID: goGate.MetricLoginFailure, Name: "gogate_login_failure_total", Help: "Failed logins."},
	{ID: goGate.MetricTokenIssued, Name: "gogate_token_issued_total", Help: "Tokens minted."},
	{ID: goGate.MetricTokenRejected, Name: "gogate_token_rejected_total", Help: "Bearer tokens that failed validation."},
	{ID: goGate.MetricMailFailure, Name: "gogate_mail_failure_total", Help: "Verification or reset mails that could not be delivered."},
	{ID: goGate.MetricGateAllowed, Name: "gogate_gate_allowed_total", Help: "Requests passed to their handler."},
	{ID: goGate.MetricGateLintRejected, Name: "gogate_gate_lint_rejected_total", Help: "Requests rejected for missing or malformed inputs."},
	{ID: goGate.MetricGateRateLimited, Name: "gogate_gate_rate_limited_total", Help: "Requests rejected by the rate limiter."},
	{ID: goGate.MetricGateAuthRejected, Name: "gogate_gate_auth_rejected_total", Help: "Requests rejected by authentication rules."},
	{ID: goGate.MetricGateInternalError, Name: "gogate_gate_internal_error_total", Help: "Requests that failed with an internal error inside the gate."},
}

// Histograms lists the latency histograms.
var Histograms = []Def{
	{ID: goGate.MetricGateLatency, Name: "gogate_gate_latency_seconds", Help: "Time spent in the request gate."},
}

// Bounds are the upper bucket bounds in seconds, in Prometheus "le" notation.
var Bounds = [metrics.BucketCount]string{"0.005", "0.01", "0.025", "0.05", "0.1", "0.25", "0.5", "+Inf"}

// BoundSuffix is Bounds made safe for instrument names.
var BoundSuffix = [metrics.BucketCount]string{"0_005", "0_01", "0_025", "0_05", "0_1", "0_25", "0_5", "inf"}

// Cumulative turns per-bucket counts into running totals. Missing buckets
// count as zero and extra ones are ignored.
func Cumulative(raw []uint64) [metrics.BucketCount]uint64 {
	var out [metrics.BucketCount]uint64
	var running uint64
	for i := range out {
		if i < len(raw) {
			running += raw[i]
		}
		out[i] = running
	}
	return out
}
