package store

import "time"

// Unit is a multi-week block of planned instruction tied to a long-range plan
// and a set of curriculum expectations.
type Unit struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	PlanID         string    `json:"planId"`
	ExpectationIDs []string  `json:"expectationIds"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Lesson is a single teachable session inside a unit.
type Lesson struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	UnitID     string    `json:"unitId"`
	Objectives []string  `json:"objectives,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Expectation is one curriculum outcome students are assessed against.
type Expectation struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Subject     string    `json:"subject"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Resource is supporting material attached to a unit.
type Resource struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	UnitID    string    `json:"unitId"`
	CreatedAt time.Time `json:"createdAt"`
}
