package cors

// evaluatePreflight answers an OPTIONS request that carries Origin and
// Access-Control-Request-Method. The caller must short-circuit regardless
// of the outcome: preflights are answered by the engine and never reach
// the downstream handler.
func evaluatePreflight(p *Policy, req Request) Decision {
	if !originAllowed(p, req.Origin) {
		return Decision{}
	}

	// The requested method compares case-sensitively against the
	// configured list; requested headers compare case-insensitively.
	// That asymmetry comes from HTTP, not from this engine.
	if !p.methodAllowed(req.RequestedMethod) {
		return Decision{}
	}
	for _, name := range req.RequestedHeaders {
		if !p.headerAllowed(name) {
			return Decision{}
		}
	}

	d := Decision{
		Allowed:         true,
		EffectiveOrigin: p.effectiveOrigin(req.Origin),
	}
	d.add(headerACAO, d.EffectiveOrigin)
	if p.allowCredentials {
		d.add(headerACAC, "true")
	}
	// The full configured lists are advertised, not just the requested
	// method and headers, so the browser can cache this preflight result
	// for subsequent requests with different shapes.
	d.add(headerACAM, p.methodsJoined)
	if p.allowHeadersJoined != "" {
		d.add(headerACAH, p.allowHeadersJoined)
	}
	if p.maxAgeValue != "" {
		d.add(headerACMA, p.maxAgeValue)
	}
	return d
}
