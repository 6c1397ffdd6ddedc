package cors

import "net/http"

// Header is a single response header the gateway must attach.
type Header struct {
	Name  string
	Value string
}

// Decision is the outcome of evaluating one request against one policy.
// A denied Decision carries no headers at all: the gateway's only
// obligation on denial is to omit permissive headers, the browser does
// the actual blocking.
type Decision struct {
	Allowed bool

	// EffectiveOrigin is the Access-Control-Allow-Origin value, either
	// the echoed request origin or the literal "*". Empty when denied or
	// when the request was not cross-origin.
	EffectiveOrigin string

	// Headers preserves insertion order so responses are deterministic.
	Headers []Header
}

// Apply copies the decision's headers into h.
func (d Decision) Apply(h http.Header) {
	for _, hdr := range d.Headers {
		h.Set(hdr.Name, hdr.Value)
	}
}

func (d *Decision) add(name, value string) {
	d.Headers = append(d.Headers, Header{Name: name, Value: value})
}
