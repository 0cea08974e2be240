package systems

import (
	"math"
	"testing"
)

func TestDedupByTarget(t *testing.T) {
	tests := []struct {
		name       string
		targets    []int
		candidates []bool
		want       []bool
	}{
		{
			name:       "distinct targets all kept",
			targets:    []int{3, 1, 2},
			candidates: []bool{true, true, true},
			want:       []bool{true, true, true},
		},
		{
			name:       "lowest slot wins a shared target",
			targets:    []int{7, 7, 7},
			candidates: []bool{true, true, true},
			want:       []bool{true, false, false},
		},
		{
			name:       "non-candidates do not claim",
			targets:    []int{7, 7, 7},
			candidates: []bool{false, true, true},
			want:       []bool{false, true, false},
		},
		{
			name:       "interleaved runs",
			targets:    []int{4, 2, 4, 2, 9},
			candidates: []bool{true, true, true, true, false},
			want:       []bool{true, true, false, false, false},
		},
		{
			name:       "empty",
			targets:    nil,
			candidates: nil,
			want:       []bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DedupByTarget(tt.targets, tt.candidates)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("DedupByTarget = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestLogitSigmoid(t *testing.T) {
	for _, p := range []float64{0.01, 0.25, 0.5, 0.9} {
		if got := sigmoid(logit(p)); math.Abs(got-p) > 1e-12 {
			t.Errorf("sigmoid(logit(%v)) = %v", p, got)
		}
	}
	if got := clamp(15, logitMin, logitMax); got != logitMax {
		t.Errorf("clamp high = %v, want %v", got, logitMax)
	}
	if got := clamp01(-0.5); got != 0 {
		t.Errorf("clamp01(-0.5) = %v, want 0", got)
	}
}

func TestStreamsIndependent(t *testing.T) {
	s := NewStreams(42)

	a := s.Source(PhaseMovement)
	b := s.Source(PhaseMovement)
	for i := 0; i < 8; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatal("same phase should replay the same sequence")
		}
	}

	m := s.Source(PhaseMovement).Uint64()
	e := s.Source(PhaseEating).Uint64()
	if m == e {
		t.Error("different phases should not share a sequence")
	}
	if NewStreams(43).Source(PhaseMovement).Uint64() == m {
		t.Error("different seeds should not share a sequence")
	}
}
