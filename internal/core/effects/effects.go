// Package effects defines effect types as data structures representing I/O operations.
// Core planners return effects; the application shell interprets them after
// state has been persisted.
package effects

// Effect is the base interface for all effects.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// LogEffect represents a logging operation.
type LogEffect struct {
	Level   string
	Message string
	Fields  map[string]any
}

func (e LogEffect) EffectType() string { return "log" }

// NotifyEffect asks the notification collaborator to tell someone about a
// promotion event. Delivery is the collaborator's concern.
type NotifyEffect struct {
	RecipientID string
	EventType   string // manager_approved, manager_rejected, employee_rejected, completed
	PromotionID string
	Message     string
}

func (e NotifyEffect) EffectType() string { return "notify" }

// CertificateEffect asks the certificate collaborator to issue a certificate
// for a completed promotion.
type CertificateEffect struct {
	PromotionID string
	EmployeeID  string
	JobTitleID  string
	GradeID     string
}

func (e CertificateEffect) EffectType() string { return "certificate" }

// AdvanceLevelEffect moves an employee's current level to a promotion target.
type AdvanceLevelEffect struct {
	EmployeeID string
	JobTitleID string
	GradeID    string
}

func (e AdvanceLevelEffect) EffectType() string { return "advance_level" }
