package enums

import "fmt"

// IntentStatus tracks the local lifecycle of a payment intent.
type IntentStatus string

const (
	IntentStatusInitiated             IntentStatus = "initiated"
	IntentStatusProcessing            IntentStatus = "processing"
	IntentStatusPending               IntentStatus = "pending"
	IntentStatusRequiresAction        IntentStatus = "requires_action"
	IntentStatusMicrodepositsVerified IntentStatus = "microdeposits_verified"
	IntentStatusSucceeded             IntentStatus = "succeeded"
	IntentStatusFailed                IntentStatus = "failed"
	IntentStatusCancelled             IntentStatus = "cancelled"
)

var validIntentStatuses = []IntentStatus{
	IntentStatusInitiated,
	IntentStatusProcessing,
	IntentStatusPending,
	IntentStatusRequiresAction,
	IntentStatusMicrodepositsVerified,
	IntentStatusSucceeded,
	IntentStatusFailed,
	IntentStatusCancelled,
}

// intentStatusRanks orders non-terminal statuses by checkout progression so
// late-arriving notifications cannot walk a record backwards. Terminal
// statuses rank above everything.
var intentStatusRanks = map[IntentStatus]int{
	IntentStatusInitiated:             1,
	IntentStatusRequiresAction:        2,
	IntentStatusPending:               3,
	IntentStatusMicrodepositsVerified: 3,
	IntentStatusProcessing:            4,
	IntentStatusSucceeded:             5,
	IntentStatusFailed:                5,
	IntentStatusCancelled:             5,
}

// String implements fmt.Stringer.
func (s IntentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known IntentStatus.
func (s IntentStatus) IsValid() bool {
	for _, candidate := range validIntentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the intent lifecycle.
func (s IntentStatus) IsTerminal() bool {
	switch s {
	case IntentStatusSucceeded, IntentStatusFailed, IntentStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is a forward move.
// Re-applying the same value is always allowed; terminal statuses accept
// nothing else.
func (s IntentStatus) CanTransition(next IntentStatus) bool {
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	return intentStatusRanks[next] >= intentStatusRanks[s]
}

// ParseIntentStatus converts raw input into an IntentStatus.
func ParseIntentStatus(value string) (IntentStatus, error) {
	for _, candidate := range validIntentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid intent status %q", value)
}
