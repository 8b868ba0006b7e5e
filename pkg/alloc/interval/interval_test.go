package interval

import "testing"

func TestWidthAndEmpty(t *testing.T) {
	iv := New(3, 7)
	if got := iv.Width(); got != 4 {
		t.Errorf("Width() = %d, want 4", got)
	}
	if iv.Empty() {
		t.Error("New(3, 7) should not be empty")
	}
	if !New(5, 5).Empty() {
		t.Error("New(5, 5) should be empty")
	}
	if !New(5, 3).Empty() {
		t.Error("New(5, 3) should be empty")
	}
}

func TestContains(t *testing.T) {
	iv := New(2, 5)
	tests := []struct {
		t    int64
		want bool
	}{
		{1, false},
		{2, true},
		{4, true},
		{5, false},
	}
	for _, tt := range tests {
		if got := iv.Contains(tt.t); got != tt.want {
			t.Errorf("Contains(%d) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		a, b Interval
		want bool
	}{
		{New(0, 5), New(5, 10), false},
		{New(0, 5), New(4, 10), true},
		{New(0, 5), New(1, 2), true},
		{New(0, 0), New(0, 5), false},
	}
	for _, tt := range tests {
		if got := tt.a.Overlaps(tt.b); got != tt.want {
			t.Errorf("%v.Overlaps(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := tt.b.Overlaps(tt.a); got != tt.want {
			t.Errorf("%v.Overlaps(%v) = %v, want %v (not symmetric)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	if Compare(New(0, 5), New(0, 10)) >= 0 {
		t.Error("New(0, 5) should sort before New(0, 10)")
	}
	if Compare(New(1, 2), New(0, 100)) <= 0 {
		t.Error("New(1, 2) should sort after New(0, 100)")
	}
	if Compare(New(3, 4), New(3, 4)) != 0 {
		t.Error("equal intervals should compare equal")
	}
}
