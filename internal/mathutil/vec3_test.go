package mathutil

import (
	"math"
	"testing"
)

func TestNormalizeZeroVector(t *testing.T) {
	got := Vec3{}.Normalize()
	if !got.IsZero() {
		t.Fatalf("zero vector should normalize to zero: got=%v", got)
	}
	for _, c := range got {
		if math.IsNaN(c) {
			t.Fatalf("normalize produced NaN: %v", got)
		}
	}
}

func TestNormalizeUnitLength(t *testing.T) {
	testCases := []struct {
		name string
		in   Vec3
		want Vec3
	}{
		{name: "axis x", in: Vec3{5, 0, 0}, want: Vec3{1, 0, 0}},
		{name: "negative y", in: Vec3{0, -0.25, 0}, want: Vec3{0, -1, 0}},
		{name: "3-4-5", in: Vec3{3, 4, 0}, want: Vec3{0.6, 0.8, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if !got.ApproxEqual(tc.want, 1e-12) {
				t.Fatalf("normalize mismatch: got=%v want=%v", got, tc.want)
			}
			if l := got.Len(); math.Abs(l-1) > 1e-12 {
				t.Fatalf("normalized length should be 1: got=%f", l)
			}
		})
	}
}

func TestVecArithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{0.5, -1, 2}
	if got := a.Add(b); got != (Vec3{1.5, 1, 5}) {
		t.Fatalf("add mismatch: got=%v", got)
	}
	if got := a.Sub(b); got != (Vec3{0.5, 3, 1}) {
		t.Fatalf("sub mismatch: got=%v", got)
	}
	if got := a.Scale(2); got != (Vec3{2, 4, 6}) {
		t.Fatalf("scale mismatch: got=%v", got)
	}
	if (Vec3{0, 0, 1e-30}).IsZero() {
		t.Fatalf("tiny non-zero vector reported as zero")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Fatalf("clamp high: got=%d", got)
	}
	if got := Clamp(-0.5, 0.0, 1.0); got != 0 {
		t.Fatalf("clamp low: got=%f", got)
	}
	if got := Clamp(2, 1, 4); got != 2 {
		t.Fatalf("clamp inside: got=%d", got)
	}
}

func TestRotYQuarterTurn(t *testing.T) {
	got := RotY(Deg2Rad(90)).MulVec3(Vec3{1, 2, 0})
	want := Vec3{0, 2, -1}
	if !got.ApproxEqual(want, 1e-12) {
		t.Fatalf("rotation mismatch: got=%v want=%v", got, want)
	}
}
