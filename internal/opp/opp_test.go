package opp

import (
	"errors"
	"math"
	"testing"
)

func TestSelectExtremum(t *testing.T) {
	values := []float64{-5.0, -1.0, 3.0, 7.0}

	cases := []struct {
		name   string
		policy ExtremumPolicy
		custom float64
		want   float64
	}{
		{"negative minimum", MinimumPolicy, 0, -5.0},
		{"positive maximum", MaximumPolicy, 0, 7.0},
		{"custom", CustomPolicy, 2.5, 2.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SelectExtremum(values, tc.policy, tc.custom)
			if err != nil {
				t.Fatalf("SelectExtremum failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSelectExtremumInvalid(t *testing.T) {
	if _, err := SelectExtremum(nil, MinimumPolicy, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty field min: got %v, want ErrInvalidArgument", err)
	}
	if _, err := SelectExtremum(nil, MaximumPolicy, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty field max: got %v, want ErrInvalidArgument", err)
	}
	if _, err := SelectExtremum([]float64{1}, CustomPolicy, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero custom extremum: got %v, want ErrInvalidArgument", err)
	}
}

func TestParsePolicy(t *testing.T) {
	for name, want := range map[string]ExtremumPolicy{
		"min":    MinimumPolicy,
		"max":    MaximumPolicy,
		"custom": CustomPolicy,
	} {
		got, err := ParsePolicy(name)
		if err != nil || got != want {
			t.Errorf("ParsePolicy(%q) = %v, %v; want %v, nil", name, got, err, want)
		}
	}
	if _, err := ParsePolicy("median"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unknown policy: got %v, want ErrInvalidArgument", err)
	}
}

func TestTransformUnityRatioIsZero(t *testing.T) {
	for _, temperature := range []float64{1, 300, 1273.15} {
		out, maxOPP, err := Transform([]float64{4.5}, temperature, 4.5)
		if err != nil {
			t.Fatalf("Transform failed: %v", err)
		}
		if out[0] != 0 {
			t.Errorf("T=%g: opp of v=extremum is %v, want exactly 0", temperature, out[0])
		}
		if maxOPP != 0 {
			t.Errorf("T=%g: max finite OPP is %v, want 0", temperature, maxOPP)
		}
	}
}

func TestTransformKnownValue(t *testing.T) {
	// v/extremum = 1/e, so opp = k_B·T exactly up to log rounding.
	const temperature = 300.0
	out, _, err := Transform([]float64{math.Exp(-1) * 2}, temperature, 2)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	want := BoltzmannEV * temperature
	if math.Abs(out[0]-want) > 1e-12 {
		t.Errorf("got %v, want %v", out[0], want)
	}
}

func TestTransformClampsSingularities(t *testing.T) {
	const extremum = 2.5
	out, maxOPP, err := Transform([]float64{extremum, 0.0, -extremum}, 300, extremum)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	// v=0 and the negative ratio are both non-finite and clamp to the only
	// finite potential, which is 0.
	want := []float64{0, 0, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("value %d: got %v, want %v", i, out[i], want[i])
		}
	}
	if maxOPP != 0 {
		t.Errorf("max finite OPP: got %v, want 0", maxOPP)
	}
}

func TestTransformNegativeExtremum(t *testing.T) {
	// A negative extremum flips which densities are physical: negative
	// densities give positive ratios.
	out, _, err := Transform([]float64{-1.0, -4.0, 3.0}, 300, -4.0)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if out[1] != 0 {
		t.Errorf("v=extremum: got %v, want 0", out[1])
	}
	if out[0] <= 0 {
		t.Errorf("ratio 0.25 should give positive OPP, got %v", out[0])
	}
	// The positive density has a negative ratio and clamps to the barrier.
	if out[2] != out[0] {
		t.Errorf("clamped voxel: got %v, want max finite %v", out[2], out[0])
	}
}

func TestTransformDegenerateField(t *testing.T) {
	_, _, err := Transform([]float64{0.0, -5.0}, 300, 5.0)
	if !errors.Is(err, ErrDegenerateField) {
		t.Fatalf("got %v, want ErrDegenerateField", err)
	}
}

func TestTransformInvalidArguments(t *testing.T) {
	if _, _, err := Transform([]float64{1}, 0, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero temperature: got %v, want ErrInvalidArgument", err)
	}
	if _, _, err := Transform([]float64{1}, -10, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative temperature: got %v, want ErrInvalidArgument", err)
	}
	if _, _, err := Transform([]float64{1}, 300, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero extremum: got %v, want ErrInvalidArgument", err)
	}
}
