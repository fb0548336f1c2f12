package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const anyOrigin = "*"

// originPolicy decides which browser origins may open a WebSocket.
type originPolicy struct {
	any     bool
	allowed map[string]struct{}
}

// newOriginPolicy builds a policy from configured origins and returns the
// entries it kept in canonical form. Entries that are not scheme://host are
// skipped.
func newOriginPolicy(origins []string) (originPolicy, []string) {
	p := originPolicy{allowed: make(map[string]struct{}, len(origins))}
	var kept []string

	for _, raw := range origins {
		raw = strings.TrimSpace(raw)
		switch {
		case raw == "":
			continue
		case raw == anyOrigin:
			p.any = true
			kept = append(kept, anyOrigin)
			continue
		}

		origin, ok := canonicalOrigin(raw)
		if !ok {
			slog.Warn("ignoring invalid origin in configuration", "origin", raw)
			continue
		}
		if _, dup := p.allowed[origin]; !dup {
			p.allowed[origin] = struct{}{}
			kept = append(kept, origin)
		}
	}
	return p, kept
}

// allows reports whether an Origin header value passes the policy. A missing
// or unparsable origin never does, even with the wildcard.
func (p originPolicy) allows(header string) bool {
	origin, ok := canonicalOrigin(header)
	if !ok {
		return false
	}
	if p.any {
		return true
	}
	_, ok = p.allowed[origin]
	return ok
}

// canonicalOrigin lower-cases scheme and host and drops any path.
func canonicalOrigin(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), true
}

func isOriginAllowed(r *http.Request) bool {
	configMu.RLock()
	policy := activeOrigins
	configMu.RUnlock()

	return policy.allows(r.Header.Get("Origin"))
}

// originChecker is the upgrader's CheckOrigin; rejections are logged on log.
func originChecker(log *slog.Logger) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if isOriginAllowed(r) {
			return true
		}
		log.Warn("blocked websocket connection from disallowed origin", "origin", r.Header.Get("Origin"), "addr", r.RemoteAddr)
		return false
	}
}
