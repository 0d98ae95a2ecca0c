package handlers

import (
	"testing"

	"student-score-network/app/server/constants"
)

func TestParseSkipLimit(t *testing.T) {
	a := &App{}

	tests := []struct {
		name      string
		skip      string
		limit     string
		wantSkip  int
		wantLimit int
	}{
		{"defaults", "", "", 0, constants.ScoreListDefaultLimit},
		{"explicit", "20", "10", 20, 10},
		{"zero limit", "0", "0", 0, 0},
		{"negative skip falls back", "-5", "10", 0, 10},
		{"negative limit falls back", "5", "-1", 5, constants.ScoreListDefaultLimit},
		{"garbage falls back", "abc", "xyz", 0, constants.ScoreListDefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skip, limit := a.parseSkipLimit(tt.skip, tt.limit)
			if skip != tt.wantSkip || limit != tt.wantLimit {
				t.Errorf("parseSkipLimit(%q, %q) = (%d, %d), want (%d, %d)",
					tt.skip, tt.limit, skip, limit, tt.wantSkip, tt.wantLimit)
			}
		})
	}
}
