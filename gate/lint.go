package gate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/MrEthical07/goGate/envelope"
)

// rejection is a lint failure mapped to a 400 response.
type rejection struct {
	code envelope.ErrorCode
	note string
}

// bodyError marks a request body that could not be read as a JSON object.
type bodyError struct{ err error }

func (e *bodyError) Error() string { return e.err.Error() }
func (e *bodyError) Unwrap() error { return e.err }

// patternCache compiles each pattern once, anchored for full-string matching.
type patternCache struct {
	compiled sync.Map
}

func (c *patternCache) matches(pattern, value string) (bool, error) {
	if re, ok := c.compiled.Load(pattern); ok {
		return re.(*regexp.Regexp).MatchString(value), nil
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return false, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	actual, _ := c.compiled.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp).MatchString(value), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// lint checks presence and pattern rules. It consumes and restores r.Body
// when the policy inspects the body.
func (g *Gate) lint(p Policy, r *http.Request) (*rejection, error) {
	query := r.URL.Query()

	for _, name := range p.RequiredQueryParams {
		if !query.Has(name) {
			return &rejection{envelope.CodeMissingQueryParameter, fmt.Sprintf("Missing required query parameter: %s", name)}, nil
		}
	}

	for _, name := range p.RequiredHeaders {
		if len(r.Header.Values(name)) == 0 {
			return &rejection{envelope.CodeMissingHeader, fmt.Sprintf("Missing required header: %s", name)}, nil
		}
	}

	var body map[string]json.RawMessage
	if p.needsBody() {
		var err error
		if body, err = readBodyObject(r, g.maxBody); err != nil {
			return nil, err
		}
	}

	for _, name := range p.RequiredBodyFields {
		if _, ok := body[name]; !ok {
			return &rejection{envelope.CodeMissingBodyProperty, fmt.Sprintf("Missing required property in the body: %s", name)}, nil
		}
	}

	for _, name := range sortedKeys(p.QueryRegex) {
		pattern := p.QueryRegex[name]
		for _, value := range query[name] {
			ok, err := g.patterns.matches(pattern, value)
			if err != nil {
				return nil, err
			}
			if !ok {
				return &rejection{envelope.CodeInvalidQueryValue, fmt.Sprintf("Invalid query value %s=%s, (must match /%s/)", name, value, pattern)}, nil
			}
		}
	}

	for _, name := range sortedKeys(p.HeaderRegex) {
		pattern := p.HeaderRegex[name]
		for _, value := range r.Header.Values(name) {
			ok, err := g.patterns.matches(pattern, value)
			if err != nil {
				return nil, err
			}
			if !ok {
				return &rejection{envelope.CodeInvalidHeaderValue, fmt.Sprintf("Invalid header value [%s: %s], (must match /%s/)", name, value, pattern)}, nil
			}
		}
	}

	for _, name := range sortedKeys(p.BodyRegex) {
		pattern := p.BodyRegex[name]
		value, present, err := stringifyBodyValue(body[name])
		if err != nil {
			return nil, &bodyError{err}
		}
		if !present {
			continue
		}
		ok, err := g.patterns.matches(pattern, value)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &rejection{envelope.CodeInvalidBodyValue, fmt.Sprintf("Invalid body value {%s: %s}, (must match /%s/)", name, value, pattern)}, nil
		}
	}

	return nil, nil
}

func readBodyObject(r *http.Request, limit int64) (map[string]json.RawMessage, error) {
	if r.Body == nil {
		return nil, &bodyError{fmt.Errorf("request body is empty")}
	}
	raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, limit))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, &bodyError{fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)}
	}
	if err != nil {
		return nil, &bodyError{fmt.Errorf("read request body: %w", err)}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &bodyError{fmt.Errorf("request body is not a JSON object: %w", err)}
	}
	if obj == nil {
		return nil, &bodyError{fmt.Errorf("request body is not a JSON object")}
	}
	return obj, nil
}

// stringifyBodyValue renders a JSON value for pattern matching. Absent and
// null values report present=false.
func stringifyBodyValue(raw json.RawMessage) (string, bool, error) {
	if len(raw) == 0 {
		return "", false, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false, err
	}

	switch val := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return val, true, nil
	case bool:
		return strconv.FormatBool(val), true, nil
	case json.Number:
		return formatNumber(val), true, nil
	default:
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return "", false, err
		}
		return compact.String(), true, nil
	}
}

func formatNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
