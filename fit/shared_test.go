package fit

import (
	"errors"
	"math"
	"testing"

	"github.com/yuefan98/NLEIS-Toolbox/internal/testutil"
)

func TestSplitParameters(t *testing.T) {
	tests := []struct {
		name       string
		edited     string
		params     []float64
		constants1 map[string]float64
		constants2 map[string]float64
		wantP1     []float64
		wantP2     []float64
	}{
		{
			name:   "single nonlinear element",
			edited: "TDSn0",
			params: []float64{1, 2, 3, 4, 5, 6, 7},
			wantP1: []float64{1, 2, 3, 4, 5},
			wantP2: []float64{1, 2, 3, 4, 5, 6, 7},
		},
		{
			name:   "linear prefix stays first harmonic only",
			edited: "L0-R0-TDSn0",
			params: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9},
			wantP1: []float64{1, 2, 3, 4, 5, 6, 7},
			wantP2: []float64{3, 4, 5, 6, 7, 8, 9},
		},
		{
			name:       "first harmonic constant removes shared parameter",
			edited:     "R0-TDSn0",
			params:     []float64{1, 2, 3, 4, 5, 6, 7},
			constants1: map[string]float64{"TDS0_0": 10},
			wantP1:     []float64{1, 2, 3, 4, 5},
			wantP2:     []float64{2, 3, 4, 5, 6, 7},
		},
		{
			name:       "second harmonic constant removes tail parameter",
			edited:     "TDSn0",
			params:     []float64{1, 2, 3, 4, 5, 6},
			constants2: map[string]float64{"TDSn0_6": 0.1},
			wantP1:     []float64{1, 2, 3, 4, 5},
			wantP2:     []float64{1, 2, 3, 4, 5, 6},
		},
		{
			name:       "single parameter constant",
			edited:     "L0-R0",
			params:     []float64{3},
			constants1: map[string]float64{"R0": 5},
			wantP1:     []float64{3},
			wantP2:     nil,
		},
		{
			name:   "two nonlinear elements",
			edited: "RCOn0-TPOn0",
			params: []float64{1, 2, 3, 4, 5, 6, 7},
			wantP1: []float64{1, 2, 4, 5, 6},
			wantP2: []float64{1, 2, 3, 4, 5, 6, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p1, p2, err := SplitParameters(tt.edited, tt.params, tt.constants1, tt.constants2)
			if err != nil {
				t.Fatalf("SplitParameters: %v", err)
			}

			testutil.RequireSliceNearlyEqual(t, p1, tt.wantP1, 0)
			testutil.RequireSliceNearlyEqual(t, p2, tt.wantP2, 0)
		})
	}
}

func TestSplitParametersLengthMismatch(t *testing.T) {
	_, _, err := SplitParameters("TDSn0", []float64{1, 2, 3}, nil, nil)
	if !errors.Is(err, ErrParamCount) {
		t.Fatalf("got %v, want ErrParamCount", err)
	}
}

func TestSharedParamsBounds(t *testing.T) {
	shared, err := sharedParams("TDSn0", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(shared) != 7 {
		t.Fatalf("got %d shared parameters, want 7", len(shared))
	}

	// kappa is unbounded, eps lies in [-0.5, 0.5], the rest are positive.
	kappa := shared[5]
	if !math.IsInf(kappa.lower, -1) || !math.IsInf(kappa.upper, 1) {
		t.Errorf("kappa bounds = [%v, %v], want unbounded", kappa.lower, kappa.upper)
	}

	eps := shared[6]
	if eps.lower != -0.5 || eps.upper != 0.5 {
		t.Errorf("eps bounds = [%v, %v], want [-0.5, 0.5]", eps.lower, eps.upper)
	}

	for i := 0; i < 5; i++ {
		if shared[i].lower != 0 {
			t.Errorf("parameter %d lower bound = %v, want 0", i, shared[i].lower)
		}
	}
}
