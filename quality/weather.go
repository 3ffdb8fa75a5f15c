package quality

import "math"

// Physically plausible extremes for common meteorological sensors.
const (
	TemperatureMinC = -35.0
	TemperatureMaxC = 50.0
	HumidityMinPct  = 0.0
	HumidityMaxPct  = 100.0
	WindSpeedMinMPS = 0.0
	WindSpeedMaxMPS = 60.0
)

// TemperatureLimits returns true where air temperature (degrees C) is
// within a physically plausible range.
func TemperatureLimits(values []float64) []bool {
	return withinClosed(values, TemperatureMinC, TemperatureMaxC)
}

// RelativeHumidityLimits returns true where relative humidity (percent)
// is within 0 to 100.
func RelativeHumidityLimits(values []float64) []bool {
	return withinClosed(values, HumidityMinPct, HumidityMaxPct)
}

// WindLimits returns true where wind speed (m/s) is within a physically
// plausible range.
func WindLimits(values []float64) []bool {
	return withinClosed(values, WindSpeedMinMPS, WindSpeedMaxMPS)
}

func withinClosed(values []float64, lo, hi float64) []bool {
	out := make([]bool, len(values))
	for i, v := range values {
		out[i] = !math.IsNaN(v) && v >= lo && v <= hi
	}
	return out
}
