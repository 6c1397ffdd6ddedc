package cors

// buildActual computes the headers to merge into the downstream response
// of a non-preflight request that carries an Origin header. A denied
// actual request is still forwarded by the gateway; denial here only means
// the response goes out without permissive headers.
func buildActual(p *Policy, req Request) Decision {
	if !originAllowed(p, req.Origin) {
		return Decision{}
	}

	d := Decision{
		Allowed:         true,
		EffectiveOrigin: p.effectiveOrigin(req.Origin),
	}
	d.add(headerACAO, d.EffectiveOrigin)
	if p.allowCredentials {
		d.add(headerACAC, "true")
	}
	if p.exposeHeadersJoined != "" {
		d.add(headerACEH, p.exposeHeadersJoined)
	}
	return d
}
