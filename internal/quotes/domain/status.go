// Package domain holds the quote aggregate: its group tree, the status
// state machine and the structural invariants every mutation preserves.
package domain

import "quotedesk_backend/platform/apperr"

// Status is a quote lifecycle state.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusExpired     Status = "expired"
)

// allowedTransitions is the adjacency table of the status machine.
// expired has no outgoing edges.
var allowedTransitions = map[Status][]Status{
	StatusDraft:       {StatusSubmitted},
	StatusSubmitted:   {StatusUnderReview},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusRejected:    {StatusDraft},
	StatusApproved:    {StatusExpired},
	StatusExpired:     nil,
}

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := allowedTransitions[s]; !ok {
		return "", apperr.Validation("unknown quote status").WithDetails(map[string]string{"status": raw})
	}
	return s, nil
}

// CanTransition reports whether from -> to is an edge of the state machine.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsLocked reports whether structural edits are refused in this state.
func (s Status) IsLocked() bool {
	return s == StatusApproved || s == StatusExpired
}

func (s Status) String() string { return string(s) }

// VATType selects how VAT relates to the pre-VAT total.
type VATType string

const (
	VATExclusive VATType = "exclusive"
	VATInclusive VATType = "inclusive"
)

// ParseVATType validates a raw VAT type. Empty input defaults to exclusive.
func ParseVATType(raw string) (VATType, error) {
	switch VATType(raw) {
	case "":
		return VATExclusive, nil
	case VATExclusive, VATInclusive:
		return VATType(raw), nil
	default:
		return "", apperr.Validation("unknown vat type").WithDetails(map[string]string{"vatType": raw})
	}
}
