package warehouse

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Unit codes
// ---------------------------------------------------------------------------

// UnitCode is an ISO unit code for a linear measurement
type UnitCode string

const (
	UnitCentimeter UnitCode = "CMT"
	UnitMillimeter UnitCode = "MMT"
	UnitMeter      UnitCode = "MTR"
)

// IsValid returns true if the unit code is known
func (u UnitCode) IsValid() bool {
	switch u {
	case UnitCentimeter, UnitMillimeter, UnitMeter:
		return true
	default:
		return false
	}
}

// VolumeCode is an ISO unit code for a volume
type VolumeCode string

const (
	VolumeCubicCentimeter VolumeCode = "CMQ"
	VolumeCubicMeter      VolumeCode = "MTQ"
)

// TargetSystem selects the base of a conversion
type TargetSystem int

const (
	TargetCentimeter TargetSystem = iota
	TargetMeter
)

// TargetSystem returns the conversion base for the volume code
func (v VolumeCode) TargetSystem() (TargetSystem, error) {
	switch v {
	case VolumeCubicCentimeter:
		return TargetCentimeter, nil
	case VolumeCubicMeter:
		return TargetMeter, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidVolumeUnit, string(v))
	}
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

const measurePrecision = 3

var (
	ten      = decimal.NewFromInt(10)
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// Round3 rounds a measurement to three decimals, half away from zero.
func Round3(value float64) float64 {
	return roundMeasure(decimal.NewFromFloat(value))
}

func roundMeasure(d decimal.Decimal) float64 {
	return d.Round(measurePrecision).InexactFloat64()
}

// Adjust converts value given in unit into the target system and rounds it
// to three decimals.
func Adjust(unit UnitCode, value float64, target TargetSystem) (float64, error) {
	d, err := adjust(unit, decimal.NewFromFloat(value), target)
	if err != nil {
		return 0, err
	}
	return roundMeasure(d), nil
}

func adjust(unit UnitCode, d decimal.Decimal, target TargetSystem) (decimal.Decimal, error) {
	switch unit {
	case UnitCentimeter:
		if target == TargetMeter {
			return d.Div(hundred).Round(measurePrecision), nil
		}
		return d.Round(measurePrecision), nil
	case UnitMillimeter:
		if target == TargetMeter {
			return d.Div(thousand).Round(measurePrecision), nil
		}
		return d.Div(ten).Round(measurePrecision), nil
	case UnitMeter:
		if target == TargetMeter {
			return d.Round(measurePrecision), nil
		}
		return d.Mul(hundred).Round(measurePrecision), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidUnitCode, string(unit))
	}
}

// ComputeVolume converts every dimension by its own unit into the system
// selected by volumeUnit and multiplies the results.
func ComputeVolume(length, width, height float64, lengthUnit, widthUnit, heightUnit UnitCode, volumeUnit VolumeCode) (float64, error) {
	target, err := volumeUnit.TargetSystem()
	if err != nil {
		return 0, err
	}

	l, err := adjust(lengthUnit, decimal.NewFromFloat(length), target)
	if err != nil {
		return 0, fmt.Errorf("length: %w", err)
	}
	w, err := adjust(widthUnit, decimal.NewFromFloat(width), target)
	if err != nil {
		return 0, fmt.Errorf("width: %w", err)
	}
	h, err := adjust(heightUnit, decimal.NewFromFloat(height), target)
	if err != nil {
		return 0, fmt.Errorf("height: %w", err)
	}

	return roundMeasure(l.Mul(w).Mul(h)), nil
}
