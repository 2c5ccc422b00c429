package domain

import "math"

// Evaluation is the derived picture of the street segment: injected
// power reconciled against everything accounted for downstream.
type Evaluation struct {
	StreetInputPower float64    `json:"streetInputPower"`
	ToNextPower      float64    `json:"toNextPower"`
	HouseTotalPower  float64    `json:"houseTotalPower"`
	TotalConsumed    float64    `json:"totalConsumed"`
	PowerLoss        float64    `json:"powerLoss"`
	LossPercentage   float64    `json:"lossPercentage"`
	Classification   AlertState `json:"theftStatus"`
}

// Evaluate reconciles the four meter readings into a loss figure and
// its classification. It is pure: same meters in, same result out, and
// house ordering does not matter. An empty slice yields the zeroed
// result so reads never fail during the startup window.
func Evaluate(meters []Meter) Evaluation {
	var street, toNext, houseTotal float64
	for _, m := range meters {
		switch m.Role {
		case RoleStreetInput:
			street += m.Watts
		case RoleToNext:
			toNext += m.Watts
		case RoleHouse:
			houseTotal += m.Watts
		}
	}

	totalConsumed := toNext + houseTotal
	powerLoss := street - totalConsumed

	lossPct := 0.0
	if street > 0 {
		lossPct = math.Abs(powerLoss) / street * 100
	}

	return Evaluation{
		StreetInputPower: RoundWatts(street),
		ToNextPower:      RoundWatts(toNext),
		HouseTotalPower:  RoundWatts(houseTotal),
		TotalConsumed:    RoundWatts(totalConsumed),
		PowerLoss:        RoundWatts(powerLoss),
		LossPercentage:   RoundPercent(lossPct),
		Classification:   Classify(street, powerLoss, lossPct),
	}
}

// Classify applies the tiered loss rule, first match wins:
// no injected power reads as a cut-off, losses above 10% of input as
// theft, above 5% as a fault, anything else as normal. Boundaries are
// strictly exclusive.
func Classify(streetInput, powerLoss, lossPct float64) AlertState {
	switch {
	case streetInput == 0:
		return LightCutOff
	case powerLoss > 0 && lossPct > 10:
		return TheftDetected
	case powerLoss > 0 && lossPct > 5:
		return SystemFault
	default:
		return NoTheft
	}
}

// RoundWatts rounds a wattage to 2 decimal places.
func RoundWatts(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundCurrent rounds an ampere reading to 3 decimal places.
func RoundCurrent(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// RoundPercent rounds a percentage to 1 decimal place.
func RoundPercent(v float64) float64 {
	return math.Round(v*10) / 10
}
