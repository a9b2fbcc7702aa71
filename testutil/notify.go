package testutil

import (
	"sync"

	"book-catalog/library"
)

// Compile-time interface checks.
var (
	_ library.Notifier  = (*Notifications)(nil)
	_ library.Navigator = (*Navigation)(nil)
)

// Notification is one recorded user-facing message.
type Notification struct {
	Message  string
	Severity library.Severity
}

// Notifications records every Notify call.
type Notifications struct {
	mu  sync.Mutex
	all []Notification
}

func (n *Notifications) Notify(message string, severity library.Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.all = append(n.all, Notification{Message: message, Severity: severity})
}

// All returns a copy of the recorded notifications in order.
func (n *Notifications) All() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.all...)
}

// Messages returns just the message texts in order.
func (n *Notifications) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.all))
	for _, x := range n.all {
		out = append(out, x.Message)
	}
	return out
}

// Navigation records screen changes.
type Navigation struct {
	mu      sync.Mutex
	history []string
}

func (n *Navigation) ToList()          { n.push("list") }
func (n *Navigation) ToCreate()        { n.push("create") }
func (n *Navigation) ToEdit(id string) { n.push("edit/" + id) }

func (n *Navigation) push(s string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.history = append(n.history, s)
}

// History returns the visited screens in order: "list", "create" or "edit/<id>".
func (n *Navigation) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}
