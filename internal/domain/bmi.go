package domain

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

type Category string

const (
	Underweight  Category = "Underweight"
	NormalWeight Category = "Normal weight"
	Overweight   Category = "Overweight"
	Obese        Category = "Obese"
)

const (
	normalLowerBound     = 18.5
	overweightLowerBound = 25.0
	obeseLowerBound      = 30.0
)

// ComputeBMI returns weightKg / heightM^2 where heightM = heightCm / 100.
// Inputs whose quotient overflows or underflows are rejected, so a nil error
// always comes with a finite, positive BMI.
func ComputeBMI(weightKg, heightCm float64) (float64, error) {
	if err := checkPositive("weight", weightKg); err != nil {
		return 0, err
	}
	if err := checkPositive("height", heightCm); err != nil {
		return 0, err
	}
	heightM := heightCm / 100
	bmi := weightKg / (heightM * heightM)
	if math.IsNaN(bmi) || math.IsInf(bmi, 0) || bmi <= 0 {
		return 0, NewValidationError("bmi", "weight and height are out of range")
	}
	return bmi, nil
}

// Classify maps a BMI onto its band. Lower bounds are inclusive, so 18.5, 25
// and 30 land in the higher category.
func Classify(bmi float64) Category {
	switch {
	case bmi < normalLowerBound:
		return Underweight
	case bmi < overweightLowerBound:
		return NormalWeight
	case bmi < obeseLowerBound:
		return Overweight
	default:
		return Obese
	}
}

// FormatBMI renders a BMI with two decimals, e.g. "22.86".
func FormatBMI(bmi float64) string {
	if math.IsNaN(bmi) || math.IsInf(bmi, 0) {
		return strconv.FormatFloat(bmi, 'f', 2, 64)
	}
	return decimal.NewFromFloat(bmi).StringFixed(2)
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case Underweight, NormalWeight, Overweight, Obese:
		return true
	}
	return false
}

func checkPositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NewValidationError(field, "must be a finite number")
	}
	if v <= 0 {
		return NewValidationError(field, "must be a positive number")
	}
	return nil
}
