// Package envelope writes the uniform JSON response body and the rate-limit
// headers shared by every gated endpoint.
//
//	{"data": <value|null>, "errors": ["CODE", ...], "__note": "optional"}
//
// errors is always an array, empty on success.
package envelope
