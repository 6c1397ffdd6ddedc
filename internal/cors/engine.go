package cors

// Evaluate is the engine's single entry point. It dispatches preflights to
// the preflight evaluator and everything else to the actual-response
// builder, and reports via shortCircuit whether the gateway must answer
// the request itself instead of forwarding it.
//
// shortCircuit is true exactly for preflights, allowed or denied. Requests
// without an Origin header are not cross-origin: they come back allowed
// with no headers, and the gateway forwards them untouched.
func Evaluate(p *Policy, req Request) (d Decision, shortCircuit bool) {
	if req.IsPreflight {
		return evaluatePreflight(p, req), true
	}
	if req.Origin == "" {
		return Decision{Allowed: true}, false
	}
	return buildActual(p, req), false
}
