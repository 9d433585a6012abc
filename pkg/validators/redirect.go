package validators

import "strings"

// SafeRedirect returns p when it is a path on this site, otherwise fallback.
// Protocol-relative and absolute URLs are rejected so a magic link can't be
// turned into an open redirect.
func SafeRedirect(p, fallback string) string {
	p = strings.TrimSpace(p)

	if p == "" || !strings.HasPrefix(p, "/") {
		return fallback
	}

	if strings.HasPrefix(p, "//") || strings.ContainsAny(p, "\\\r\n") {
		return fallback
	}

	return p
}
