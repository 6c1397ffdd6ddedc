package cors

// originAllowed reports whether origin satisfies the policy's origin rule.
//
// An absent Origin header means the request is same-origin or not from a
// browser; CORS does not apply and the request is allowed without
// consulting the policy. Otherwise the origin must either be covered by
// the any-origin flag or be byte-exact present in the configured set.
// There is no subdomain wildcarding and no scheme relaxation: origins are
// opaque tokens and compare case-sensitively.
func originAllowed(p *Policy, origin string) bool {
	if origin == "" {
		return true
	}
	if p.allowAnyOrigin {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}
