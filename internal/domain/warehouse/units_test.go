package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjust(t *testing.T) {
	tests := []struct {
		name     string
		unit     UnitCode
		value    float64
		target   TargetSystem
		expected float64
	}{
		{"CMT to centimeter", UnitCentimeter, 12.3456, TargetCentimeter, 12.346},
		{"CMT to meter", UnitCentimeter, 250, TargetMeter, 2.5},
		{"MMT to centimeter", UnitMillimeter, 125, TargetCentimeter, 12.5},
		{"MMT to meter", UnitMillimeter, 2500, TargetMeter, 2.5},
		{"MTR to centimeter", UnitMeter, 2.5, TargetCentimeter, 250},
		{"MTR to meter", UnitMeter, 1.23456, TargetMeter, 1.235},
		{"half rounds away from zero", UnitCentimeter, 0.0005, TargetCentimeter, 0.001},
		{"negative half rounds away from zero", UnitCentimeter, -0.0005, TargetCentimeter, -0.001},
		{"small millimeters to meter", UnitMillimeter, 1, TargetMeter, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Adjust(tt.unit, tt.value, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAdjust_InvalidUnit(t *testing.T) {
	_, err := Adjust(UnitCode("INH"), 1, TargetCentimeter)
	assert.ErrorIs(t, err, ErrInvalidUnitCode)
}

func TestComputeVolume(t *testing.T) {
	tests := []struct {
		name       string
		l, w, h    float64
		lu, wu, hu UnitCode
		volume     VolumeCode
		expected   float64
	}{
		{"cubic centimeters", 100, 50, 30, UnitCentimeter, UnitCentimeter, UnitCentimeter, VolumeCubicCentimeter, 150000},
		{"cubic meters", 100, 50, 30, UnitCentimeter, UnitCentimeter, UnitCentimeter, VolumeCubicMeter, 0.15},
		{"mixed units", 1, 500, 30, UnitMeter, UnitMillimeter, UnitCentimeter, VolumeCubicCentimeter, 150000},
		{"zero dimension", 0, 50, 30, UnitCentimeter, UnitCentimeter, UnitCentimeter, VolumeCubicCentimeter, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeVolume(tt.l, tt.w, tt.h, tt.lu, tt.wu, tt.hu, tt.volume)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestComputeVolume_Errors(t *testing.T) {
	t.Run("unsupported volume unit", func(t *testing.T) {
		_, err := ComputeVolume(1, 1, 1, UnitCentimeter, UnitCentimeter, UnitCentimeter, VolumeCode("LTR"))
		assert.ErrorIs(t, err, ErrInvalidVolumeUnit)
		assert.ErrorIs(t, err, ErrInvalidUnitCode)
	})

	t.Run("unsupported dimension unit", func(t *testing.T) {
		_, err := ComputeVolume(1, 1, 1, UnitCentimeter, UnitCode("FOT"), UnitCentimeter, VolumeCubicMeter)
		assert.ErrorIs(t, err, ErrInvalidUnitCode)
		assert.Contains(t, err.Error(), "width")
	})
}

func TestRound3(t *testing.T) {
	assert.Equal(t, 1.235, Round3(1.2345))
	assert.Equal(t, 2.0, Round3(1.9999))
	assert.Equal(t, -1.235, Round3(-1.2345))
}
