package domain

// StateDiff represents the changes between two walker states.
// It is serialized to JSON for partial updates pushed to clients.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentNodeID *string          `json:"current_node_id,omitempty"`
	Status        *ExecutionStatus `json:"status,omitempty"`

	// History carries appended node ids, or the full path when it was reset.
	History *HistoryDelta `json:"history,omitempty"`

	// Outcome is set when a run finished between the two snapshots.
	Outcome *Recommendation `json:"outcome,omitempty"`
}

// HistoryDelta represents changes to the visited path.
type HistoryDelta struct {
	Appended []string `json:"appended,omitempty"`
	// Reset means the client must drop its local history before appending.
	Reset bool `json:"reset,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState.
// It returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{SessionID: newState.SessionID}

	if oldState == nil || oldState.CurrentNodeID != newState.CurrentNodeID {
		node := newState.CurrentNodeID
		diff.CurrentNodeID = &node
	}
	if oldState == nil || oldState.Status != newState.Status {
		status := newState.Status
		diff.Status = &status
	}
	diff.History = diffHistory(oldState, newState)
	diff.Outcome = diffOutcome(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffHistory(old, new *State) *HistoryDelta {
	if old == nil {
		if len(new.History) == 0 {
			return nil
		}
		return &HistoryDelta{Appended: new.History}
	}

	if hasPrefix(new.History, old.History) {
		if len(new.History) == len(old.History) {
			return nil
		}
		return &HistoryDelta{Appended: new.History[len(old.History):]}
	}

	// Restart or cancel rewrote the path.
	return &HistoryDelta{Appended: new.History, Reset: true}
}

func diffOutcome(old, new *State) *Recommendation {
	if new.Outcome == nil {
		return nil
	}
	if old != nil && old.Outcome != nil && *old.Outcome == *new.Outcome && old.Status == new.Status {
		return nil
	}
	rec := *new.Outcome
	return &rec
}

func hasPrefix(s, prefix []string) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.CurrentNodeID == nil &&
		d.Status == nil &&
		d.History == nil &&
		d.Outcome == nil
}
