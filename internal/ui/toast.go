package ui

import (
	"time"
)

// Toast is a transient notification. It is printed once when raised and
// listed by ActiveToasts until it expires.
type Toast struct {
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// Expired reports whether the toast has outlived its duration at now.
func (t Toast) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// Toast raises a notification. A non-positive ttl uses the configured default.
func (d *Display) Toast(msg string, ttl time.Duration) {
	d.mu.Lock()
	if ttl <= 0 {
		ttl = d.toastTTL
	}
	now := d.now()
	d.toasts = append(pruneToasts(d.toasts, now), Toast{Message: msg, CreatedAt: now, Duration: ttl})
	st := d.styles
	d.mu.Unlock()

	d.write(st.Toast.Render(msg))
}

// ActiveToasts returns the toasts that have not expired yet.
func (d *Display) ActiveToasts() []Toast {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toasts = pruneToasts(d.toasts, d.now())
	out := make([]Toast, len(d.toasts))
	copy(out, d.toasts)
	return out
}

func pruneToasts(toasts []Toast, now time.Time) []Toast {
	kept := toasts[:0]
	for _, t := range toasts {
		if !t.Expired(now) {
			kept = append(kept, t)
		}
	}
	return kept
}
