package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	active := StatusActive
	term := StatusTerminated
	idle := StatusIdle
	empty := ""
	rec := Recommend(Cardiology, "see a cardiologist")

	tests := []struct {
		name     string
		old      *State
		new      *State
		wantDiff *StateDiff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new: &State{
				SessionID:     "sess-1",
				CurrentNodeID: "start",
				Status:        StatusActive,
				History:       []string{"start"},
			},
			wantDiff: &StateDiff{
				SessionID:     "sess-1",
				CurrentNodeID: &[]string{"start"}[0],
				Status:        &active,
				History:       &HistoryDelta{Appended: []string{"start"}},
			},
		},
		{
			name: "No Changes",
			old: &State{
				SessionID:     "sess-1",
				CurrentNodeID: "start",
				Status:        StatusActive,
				History:       []string{"start"},
			},
			new: &State{
				SessionID:     "sess-1",
				CurrentNodeID: "start",
				Status:        StatusActive,
				History:       []string{"start"},
			},
			wantDiff: nil,
		},
		{
			name: "History Append",
			old: &State{
				SessionID:     "sess-1",
				CurrentNodeID: "start",
				Status:        StatusActive,
				History:       []string{"start"},
			},
			new: &State{
				SessionID:     "sess-1",
				CurrentNodeID: "pain_location",
				Status:        StatusActive,
				History:       []string{"start", "pain_location"},
			},
			wantDiff: &StateDiff{
				SessionID:     "sess-1",
				CurrentNodeID: &[]string{"pain_location"}[0],
				History:       &HistoryDelta{Appended: []string{"pain_location"}},
			},
		},
		{
			name: "Terminal Outcome",
			old: &State{
				SessionID:     "sess-1",
				CurrentNodeID: "chest_head_urgent",
				Status:        StatusActive,
				History:       []string{"start", "pain_location", "chest_head_urgent"},
			},
			new: &State{
				SessionID: "sess-1",
				Status:    StatusTerminated,
				History:   []string{"start", "pain_location", "chest_head_urgent"},
				Outcome:   &rec,
			},
			wantDiff: &StateDiff{
				SessionID:     "sess-1",
				CurrentNodeID: &empty,
				Status:        &term,
				Outcome:       &rec,
			},
		},
		{
			name: "Cancel Resets History",
			old: &State{
				SessionID:     "sess-1",
				CurrentNodeID: "pain_location",
				Status:        StatusActive,
				History:       []string{"start", "pain_location"},
			},
			new: &State{
				SessionID: "sess-1",
				Status:    StatusIdle,
			},
			wantDiff: &StateDiff{
				SessionID:     "sess-1",
				CurrentNodeID: &empty,
				Status:        &idle,
				History:       &HistoryDelta{Reset: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.wantDiff == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			if d := cmp.Diff(tt.wantDiff, got); d != "" {
				t.Errorf("Diff() mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Unchanged Fields Omitted", func(t *testing.T) {
		s1 := &State{SessionID: "s", CurrentNodeID: "start", Status: StatusActive, History: []string{"start"}}
		s2 := &State{SessionID: "s", CurrentNodeID: "body_pain", Status: StatusActive, History: []string{"start", "body_pain"}}
		diff := Diff(s1, s2)
		require.NotNil(t, diff)

		bytes, err := json.Marshal(diff)
		require.NoError(t, err)
		assert.NotContains(t, string(bytes), `"status"`)
		assert.NotContains(t, string(bytes), `"outcome"`)
		assert.Contains(t, string(bytes), `"appended":["body_pain"]`)
	})

	t.Run("Outcome Without Tag", func(t *testing.T) {
		closeRec := NoRecommendation("bye")
		s1 := &State{SessionID: "s", CurrentNodeID: "routine_check", Status: StatusActive}
		s2 := &State{SessionID: "s", Status: StatusTerminated, Outcome: &closeRec}

		bytes, err := json.Marshal(Diff(s1, s2))
		require.NoError(t, err)
		assert.Contains(t, string(bytes), `"outcome":{"message":"bye"}`)
	})
}
