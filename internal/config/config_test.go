package config

import "testing"

func TestParseAdminIDs(t *testing.T) {
	ids := ParseAdminIDs("123, 456,abc, ,789")
	want := []int64{123, 456, 789}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
	if got := ParseAdminIDs(""); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}
