package gate

import (
	"context"

	"github.com/MrEthical07/goGate/account"
	"github.com/MrEthical07/goGate/ratelimit"
)

type requestDataContextKey struct{}

// RequestData is attached to every request that passes the gate.
// Account is nil for anonymous requests.
type RequestData struct {
	Account *account.Account
	Meta    ratelimit.SessionMeta
}

// WithRequestData stores data on ctx.
func WithRequestData(ctx context.Context, data *RequestData) context.Context {
	return context.WithValue(ctx, requestDataContextKey{}, data)
}

// FromContext returns the data attached by the gate.
func FromContext(ctx context.Context) (*RequestData, bool) {
	if ctx == nil {
		return nil, false
	}
	data, ok := ctx.Value(requestDataContextKey{}).(*RequestData)
	return data, ok && data != nil
}

// AccountFromContext returns the authenticated account, or nil.
func AccountFromContext(ctx context.Context) *account.Account {
	data, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	return data.Account
}

// MetaFromContext returns the caller's rate-limit standing, or nil when the
// request did not pass the gate.
func MetaFromContext(ctx context.Context) *ratelimit.SessionMeta {
	data, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	return &data.Meta
}
