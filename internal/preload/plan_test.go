package preload

import (
	"reflect"
	"testing"
)

func TestSkipFactor(t *testing.T) {
	rules := []SkipRule{{MaxWidth: 768, Skip: 2}, {MaxWidth: 400, Skip: 3}}

	tests := []struct {
		width float64
		want  int
	}{
		{1920, 1},
		{768, 1},
		{767, 2},
		{500, 2},
		{375, 3},
	}
	for _, tt := range tests {
		if got := SkipFactor(tt.width, rules); got != tt.want {
			t.Errorf("SkipFactor(%v) = %d, want %d", tt.width, got, tt.want)
		}
	}

	if got := SkipFactor(300, nil); got != 1 {
		t.Errorf("no rules should load every frame, got %d", got)
	}
}

func TestPlanSplitBatches(t *testing.T) {
	if got := Plan(7, 2); !reflect.DeepEqual(got, []int{0, 2, 4, 6}) {
		t.Errorf("Plan(7,2) = %v", got)
	}
	if got := Plan(3, 0); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("Plan(3,0) = %v", got)
	}

	prio, bulk := Split(Plan(10, 1), 4)
	if len(prio) != 4 || len(bulk) != 6 || bulk[0] != 4 {
		t.Errorf("Split = %v %v", prio, bulk)
	}
	prio, bulk = Split(Plan(3, 1), 30)
	if len(prio) != 3 || len(bulk) != 0 {
		t.Errorf("Split short plan = %v %v", prio, bulk)
	}

	batches := Batches(Plan(45, 1), 20)
	if len(batches) != 3 || len(batches[2]) != 5 {
		t.Errorf("Batches sizes wrong: %d batches", len(batches))
	}
}
