// Package opp turns scatterer densities into effective one-particle
// potentials by Boltzmann inversion and prepares the result for
// visualization.
package opp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// BoltzmannEV is the Boltzmann constant in eV K⁻¹ (CODATA 2018, exact).
// The transform is reproducible bit-for-bit across implementations only if
// everyone uses this value, so do not round it.
const BoltzmannEV = 8.617333262e-5

var (
	// ErrInvalidArgument reports malformed caller input such as a zero
	// extremal density or a non-positive temperature.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDegenerateField reports a field in which every voxel is
	// non-physical, leaving no finite potential to clamp to.
	ErrDegenerateField = errors.New("no finite potential in field")
)

// ExtremumPolicy selects the reference density for the inversion.
type ExtremumPolicy int

const (
	// MinimumPolicy uses the most negative density in the grid, for data
	// with a single unique negative scatterer.
	MinimumPolicy ExtremumPolicy = iota
	// MaximumPolicy uses the most positive density in the grid.
	MaximumPolicy
	// CustomPolicy uses a caller-supplied extremal density.
	CustomPolicy
)

func (p ExtremumPolicy) String() string {
	switch p {
	case MinimumPolicy:
		return "min"
	case MaximumPolicy:
		return "max"
	case CustomPolicy:
		return "custom"
	default:
		return "unknown"
	}
}

// ParsePolicy maps the external policy names onto ExtremumPolicy values.
func ParsePolicy(s string) (ExtremumPolicy, error) {
	switch s {
	case "min":
		return MinimumPolicy, nil
	case "max":
		return MaximumPolicy, nil
	case "custom":
		return CustomPolicy, nil
	default:
		return 0, fmt.Errorf("unknown extremum policy %q: %w", s, ErrInvalidArgument)
	}
}

// SelectExtremum resolves the reference density for a field according to
// policy. Custom values pass through unmodified but must be non-zero; the
// min/max policies require a non-empty field.
func SelectExtremum(values []float64, policy ExtremumPolicy, custom float64) (float64, error) {
	switch policy {
	case CustomPolicy:
		if custom == 0 {
			return 0, fmt.Errorf("custom extremal density is zero: %w", ErrInvalidArgument)
		}
		return custom, nil
	case MinimumPolicy, MaximumPolicy:
		if len(values) == 0 {
			return 0, fmt.Errorf("no extremum in empty field: %w", ErrInvalidArgument)
		}
		if policy == MinimumPolicy {
			return floats.Min(values), nil
		}
		return floats.Max(values), nil
	default:
		return 0, fmt.Errorf("unknown extremum policy %d: %w", policy, ErrInvalidArgument)
	}
}

// Transform computes opp(v) = -k_B·T·ln(v/extremum) element-wise and
// returns the clamped potential field together with its maximum finite
// value.
//
// Voxels whose density ratio is not strictly positive have no defined
// potential; they sit behind an insurmountable barrier. Rather than leak
// NaN or ±Inf into the output (which breaks isosurface rendering), every
// such voxel is set to the worst finite potential actually present in the
// field. A field with no finite potential at all fails with
// ErrDegenerateField.
func Transform(values []float64, temperature, extremum float64) ([]float64, float64, error) {
	if temperature <= 0 {
		return nil, 0, fmt.Errorf("temperature %g K is not positive: %w", temperature, ErrInvalidArgument)
	}
	if extremum == 0 {
		return nil, 0, fmt.Errorf("extremal density is zero: %w", ErrInvalidArgument)
	}

	out := make([]float64, len(values))
	maxFinite := math.Inf(-1)
	finite := false
	for i, v := range values {
		ratio := v / extremum
		if !(ratio > 0) {
			out[i] = math.NaN()
			continue
		}
		p := -BoltzmannEV * temperature * math.Log(ratio)
		out[i] = p
		if !math.IsInf(p, 0) && !math.IsNaN(p) {
			finite = true
			if p > maxFinite {
				maxFinite = p
			}
		}
	}
	if !finite {
		return nil, 0, fmt.Errorf("every voxel is non-physical: %w", ErrDegenerateField)
	}

	for i, p := range out {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			out[i] = maxFinite
		}
	}
	return out, maxFinite, nil
}
