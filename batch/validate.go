package batch

import "fmt"

// Issue is one validation problem, tied back to the offending payload by its
// position in the submitted batch.
type Issue struct {
	Index   int    `json:"index"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of a pre-flight Validate call. Valid is
// false when any error was found; warnings alone do not invalidate a batch.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []Issue  `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Validate checks a batch before submission: every payload is validated per
// its variant, duplicate payloads (same semantic key, e.g. kind+title+parent
// for a unit) are flagged, and oversized batches draw a warning. No queue
// state is read or mutated.
func (q *Queue) Validate(payloads []Payload) ValidationResult {
	result := ValidationResult{Valid: true}

	if len(payloads) > q.config.WarnBatchSize {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("batch of %d operations exceeds the recommended maximum of %d; consider splitting it", len(payloads), q.config.WarnBatchSize))
	}

	seen := make(map[string]int, len(payloads))
	for i, p := range payloads {
		if p == nil {
			result.Errors = append(result.Errors, Issue{Index: i, Message: "payload is required"})
			continue
		}
		if err := p.Validate(); err != nil {
			result.Errors = append(result.Errors, Issue{Index: i, Kind: p.Kind(), Message: err.Error()})
			continue
		}
		key := p.DuplicateKey()
		if first, dup := seen[key]; dup {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("operation %d duplicates operation %d (%s)", i, first, key))
			continue
		}
		seen[key] = i
	}

	result.Valid = len(result.Errors) == 0
	return result
}
