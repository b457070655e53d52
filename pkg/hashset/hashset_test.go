package hashset

import (
	"slices"
	"testing"
)

func TestSetBasics(t *testing.T) {
	set := NewSet[string]()

	set.Set("a")
	set.Set("b")
	set.Set("a")

	if set.Len() != 2 {
		t.Errorf("got len %d, want 2", set.Len())
	}
	if !set.Has("a") || !set.Has("b") {
		t.Error("expected a and b present")
	}
	if set.Has("c") {
		t.Error("c should not be present")
	}

	set.Unset("a")
	if set.Has("a") {
		t.Error("a should be gone after Unset")
	}
	set.Unset("missing") // no-op
}

func TestSetFromSlice(t *testing.T) {
	set := SetFromSlice([]int{1, 2, 2, 3})

	if set.Len() != 3 {
		t.Errorf("got len %d, want 3", set.Len())
	}

	got := set.AsSlice()
	slices.Sort(got)
	if !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("got %v, want [1 2 3]", got)
	}
}
