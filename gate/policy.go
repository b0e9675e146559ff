package gate

// Policy declares what a route requires before its handler runs.
//
// Pattern maps hold regular expressions that must match a value in full.
type Policy struct {
	RateLimit bool

	RequireAuthHeader    bool
	RequireValidAuth     bool
	RequireVerifiedEmail bool

	RequiredQueryParams []string
	RequiredHeaders     []string
	RequiredBodyFields  []string

	QueryRegex  map[string]string
	HeaderRegex map[string]string
	BodyRegex   map[string]string
}

func (p Policy) needsBody() bool {
	return len(p.RequiredBodyFields) > 0 || len(p.BodyRegex) > 0
}
