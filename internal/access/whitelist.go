package access

import "claudecode-es/backend/pkg/validators"

// Whitelist is the static allow-list of one course tier. It's built once at
// startup and only ever read afterwards.
type Whitelist struct {
	emails map[string]struct{}
}

func NewWhitelist(emails []string) *Whitelist {
	w := &Whitelist{emails: make(map[string]struct{}, len(emails))}

	for _, e := range emails {
		if e = validators.NormalizeEmail(e); e != "" {
			w.emails[e] = struct{}{}
		}
	}

	return w
}

// Contains is case insensitive
func (w *Whitelist) Contains(email string) bool {
	if w == nil {
		return false
	}

	_, ok := w.emails[validators.NormalizeEmail(email)]
	return ok
}

func (w *Whitelist) Len() int {
	if w == nil {
		return 0
	}

	return len(w.emails)
}
