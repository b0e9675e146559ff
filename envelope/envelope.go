package envelope

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/MrEthical07/goGate/ratelimit"
)

// Response header names.
const (
	HeaderRequestedAs      = "x-requested-as"
	HeaderRemaining        = "x-ratelimit-remaining"
	HeaderSuccess          = "x-ratelimit-success"
	HeaderCounted          = "x-request-counted-against-ratelimit"
	contentTypeHeader      = "Content-Type"
	contentTypeApplication = "application/json"
)

// ErrorCode is a machine-readable failure code placed in the errors array.
type ErrorCode string

// Body is the serialized envelope.
type Body struct {
	Data   any         `json:"data"`
	Errors []ErrorCode `json:"errors"`
	Note   string      `json:"__note,omitempty"`
}

// SetMetaHeaders writes the rate-limit headers for meta. A nil meta writes nothing.
func SetMetaHeaders(h http.Header, meta *ratelimit.SessionMeta) {
	if meta == nil {
		return
	}
	h.Set(HeaderRequestedAs, meta.IP)
	h.Set(HeaderRemaining, strconv.FormatInt(meta.Remaining, 10))
	h.Set(HeaderSuccess, strconv.FormatBool(!meta.ShouldBlock()))
	h.Set(HeaderCounted, strconv.FormatBool(meta.Counted))
}

// Write serializes an envelope with the given status.
func Write(w http.ResponseWriter, meta *ratelimit.SessionMeta, status int, note string, data any, codes ...ErrorCode) {
	if codes == nil {
		codes = []ErrorCode{}
	}
	SetMetaHeaders(w.Header(), meta)
	w.Header().Set(contentTypeHeader, contentTypeApplication)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Body{Data: data, Errors: codes, Note: note})
}

// OK writes a successful envelope carrying data.
func OK(w http.ResponseWriter, meta *ratelimit.SessionMeta, status int, note string, data any) {
	Write(w, meta, status, note, data)
}

// Fail writes an error envelope with null data.
func Fail(w http.ResponseWriter, meta *ratelimit.SessionMeta, status int, note string, codes ...ErrorCode) {
	Write(w, meta, status, note, nil, codes...)
}

// TooManyRequests writes the 429 envelope for a blocked caller.
func TooManyRequests(w http.ResponseWriter, meta *ratelimit.SessionMeta) {
	Fail(w, meta, http.StatusTooManyRequests, "", CodeTooManyRequests)
}
