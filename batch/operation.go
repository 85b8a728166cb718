package batch

import (
	"fmt"
	"strings"
	"time"
)

// Kind tags the closed set of operation variants.
type Kind string

const (
	// KindUnit creates a planned unit of instruction.
	KindUnit Kind = "unit"
	// KindLesson creates a lesson inside a unit.
	KindLesson Kind = "lesson"
	// KindExpectation creates a curriculum expectation.
	KindExpectation Kind = "expectation"
	// KindResource attaches a resource to a unit.
	KindResource Kind = "resource"
)

// Status tracks an operation through its lifecycle.
type Status string

const (
	// StatusPending means the operation is queued and untouched.
	StatusPending Status = "pending"
	// StatusProcessing means a drain is currently executing the operation.
	StatusProcessing Status = "processing"
	// StatusCompleted means the operation succeeded.
	StatusCompleted Status = "completed"
	// StatusError means the operation exhausted its retry budget.
	StatusError Status = "error"
)

// Payload is the discriminated data carried by an operation. The set of
// implementations is closed: each variant lives in this package and reports
// its own kind, validation rules and duplicate-detection key.
type Payload interface {
	// Kind returns the variant tag.
	Kind() Kind
	// Validate reports the first structural problem with the payload.
	Validate() error
	// DuplicateKey returns the semantic identity used for duplicate
	// detection within one submitted batch.
	DuplicateKey() string
}

// UnitPayload creates a unit: a titled block of instruction belonging to a
// long-range plan, covering at least one expectation, with a date range.
type UnitPayload struct {
	Title          string    `json:"title"`
	PlanID         string    `json:"planId"`
	ExpectationIDs []string  `json:"expectationIds"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
}

// Kind implements Payload.
func (p UnitPayload) Kind() Kind { return KindUnit }

// Validate implements Payload. The end date must fall strictly after the
// start date.
func (p UnitPayload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("unit title is required")
	}
	if p.PlanID == "" {
		return fmt.Errorf("unit %q: parent plan reference is required", p.Title)
	}
	if len(p.ExpectationIDs) == 0 {
		return fmt.Errorf("unit %q: at least one expectation id is required", p.Title)
	}
	if !p.EndDate.After(p.StartDate) {
		return fmt.Errorf("unit %q: end date must be after start date", p.Title)
	}
	return nil
}

// DuplicateKey implements Payload: kind + title + parent plan.
func (p UnitPayload) DuplicateKey() string {
	return fmt.Sprintf("%s|%s|%s", KindUnit, p.Title, p.PlanID)
}

// LessonPayload creates a lesson inside an existing unit.
type LessonPayload struct {
	Title      string   `json:"title"`
	UnitID     string   `json:"unitId"`
	Objectives []string `json:"objectives,omitempty"`
}

// Kind implements Payload.
func (p LessonPayload) Kind() Kind { return KindLesson }

// Validate implements Payload.
func (p LessonPayload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("lesson title is required")
	}
	if p.UnitID == "" {
		return fmt.Errorf("lesson %q: parent unit reference is required", p.Title)
	}
	return nil
}

// DuplicateKey implements Payload: kind + title + parent unit.
func (p LessonPayload) DuplicateKey() string {
	return fmt.Sprintf("%s|%s|%s", KindLesson, p.Title, p.UnitID)
}

// ExpectationPayload creates a curriculum expectation.
type ExpectationPayload struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Subject     string `json:"subject"`
}

// Kind implements Payload.
func (p ExpectationPayload) Kind() Kind { return KindExpectation }

// Validate implements Payload.
func (p ExpectationPayload) Validate() error {
	if strings.TrimSpace(p.Code) == "" {
		return fmt.Errorf("expectation code is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("expectation %q: description is required", p.Code)
	}
	return nil
}

// DuplicateKey implements Payload: kind + code + subject.
func (p ExpectationPayload) DuplicateKey() string {
	return fmt.Sprintf("%s|%s|%s", KindExpectation, p.Code, p.Subject)
}

// ResourcePayload attaches supporting material to a unit.
type ResourcePayload struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	UnitID string `json:"unitId"`
}

// Kind implements Payload.
func (p ResourcePayload) Kind() Kind { return KindResource }

// Validate implements Payload.
func (p ResourcePayload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("resource title is required")
	}
	if p.UnitID == "" {
		return fmt.Errorf("resource %q: parent unit reference is required", p.Title)
	}
	return nil
}

// DuplicateKey implements Payload: kind + title + parent unit.
func (p ResourcePayload) DuplicateKey() string {
	return fmt.Sprintf("%s|%s|%s", KindResource, p.Title, p.UnitID)
}

// Operation is one submitted unit of work. It is owned by the actor's queue
// and mutated in place as it moves through processing; callers receive
// copies from status queries, never live references.
type Operation struct {
	ID        string    `json:"id"`
	Payload   Payload   `json:"payload"`
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	Errors    []string  `json:"errors,omitempty"`
	Retries   int       `json:"retries"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Kind returns the payload's variant tag, or "" for a missing payload.
func (op Operation) Kind() Kind {
	if op.Payload == nil {
		return ""
	}
	return op.Payload.Kind()
}

// clone returns a deep-enough copy for external consumption. Payloads are
// value types and safe to share.
func (op *Operation) clone() Operation {
	cp := *op
	cp.Errors = append([]string(nil), op.Errors...)
	return cp
}
