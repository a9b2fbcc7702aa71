package library

import (
	"sync"
	"time"
)

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// DefaultToastTTL is how long a toast stays visible.
const DefaultToastTTL = 3 * time.Second

// Notifier receives user-facing messages. Calls are fire-and-forget.
type Notifier interface {
	Notify(message string, severity Severity)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string, severity Severity)

func (f NotifierFunc) Notify(message string, severity Severity) { f(message, severity) }

// Toast is one stacked notification.
type Toast struct {
	ID        uint64
	Message   string
	Severity  Severity
	ExpiresAt time.Time
}

// Toaster is a process-wide notification stack. Toasts stack rather than
// replace each other and disappear once their TTL has elapsed.
type Toaster struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	nextID uint64
	toasts []Toast
}

// ToasterOption customizes a Toaster.
type ToasterOption func(*Toaster)

// WithTTL sets how long each toast stays visible.
func WithTTL(d time.Duration) ToasterOption {
	return func(t *Toaster) {
		if d > 0 {
			t.ttl = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ToasterOption {
	return func(t *Toaster) { t.now = now }
}

func NewToaster(opts ...ToasterOption) *Toaster {
	t := &Toaster{ttl: DefaultToastTTL, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Notify pushes a toast. An empty severity is treated as info.
func (t *Toaster) Notify(message string, severity Severity) {
	if severity == "" {
		severity = SeverityInfo
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.toasts = append(t.toasts, Toast{
		ID:        t.nextID,
		Message:   message,
		Severity:  severity,
		ExpiresAt: t.now().Add(t.ttl),
	})
}

// Active returns the unexpired toasts, oldest first, and forgets the rest.
func (t *Toaster) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked()
	out := make([]Toast, len(t.toasts))
	copy(out, t.toasts)
	return out
}

// Dismiss removes a toast before it expires.
func (t *Toaster) Dismiss(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.toasts {
		if t.toasts[i].ID == id {
			t.toasts = append(t.toasts[:i], t.toasts[i+1:]...)
			return
		}
	}
}

func (t *Toaster) pruneLocked() {
	now := t.now()
	kept := t.toasts[:0]
	for _, toast := range t.toasts {
		if now.Before(toast.ExpiresAt) {
			kept = append(kept, toast)
		}
	}
	t.toasts = kept
}

// Navigator moves the user between screens.
type Navigator interface {
	ToList()
	ToEdit(id string)
	ToCreate()
}
