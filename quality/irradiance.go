package quality

import (
	"math"

	"pv-quality-lab/timeseries"
)

// IrradianceLimit parameterizes a QCRad upper bound of the form
// mult * dniExtra * cos(zenith)^exp + min.
type IrradianceLimit struct {
	Mult float64
	Exp  float64
	Min  float64
}

func (l IrradianceLimit) upper(dniExtra, zenith float64) float64 {
	cosZ := math.Cos(zenith * math.Pi / 180)
	if cosZ < 0 {
		cosZ = 0
	}
	return l.Mult*dniExtra*math.Pow(cosZ, l.Exp) + l.Min
}

// QCRadLimits holds the per-component bounds used by the QCRad
// plausibility checks.
type QCRadLimits struct {
	GHIUpper IrradianceLimit
	DHIUpper IrradianceLimit
	DNIUpper IrradianceLimit
	GHILower float64
	DHILower float64
	DNILower float64
}

// DefaultQCRadLimits returns the standard QCRad extremely-rare limits.
func DefaultQCRadLimits() QCRadLimits {
	return QCRadLimits{
		GHIUpper: IrradianceLimit{Mult: 1.5, Exp: 1.2, Min: 100},
		DHIUpper: IrradianceLimit{Mult: 0.95, Exp: 1.2, Min: 50},
		DNIUpper: IrradianceLimit{Mult: 1.0, Exp: 0.0, Min: 0},
		GHILower: -4,
		DHILower: -4,
		DNILower: -4,
	}
}

func qcRadCheck(values, zenith, dniExtra []float64, lower float64, upper IrradianceLimit) ([]bool, error) {
	if len(values) != len(zenith) || len(values) != len(dniExtra) {
		return nil, timeseries.ErrLengthMismatch
	}
	out := make([]bool, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		ub := upper.upper(dniExtra[i], zenith[i])
		out[i] = v > lower && v < ub
	}
	return out, nil
}

// CheckGHILimits returns true where global horizontal irradiance is
// within the QCRad physically-possible bounds. zenith is the solar
// zenith angle in degrees and dniExtra the extraterrestrial normal
// irradiance, both aligned with ghi.
func CheckGHILimits(ghi, zenith, dniExtra []float64, limits QCRadLimits) ([]bool, error) {
	return qcRadCheck(ghi, zenith, dniExtra, limits.GHILower, limits.GHIUpper)
}

// CheckDHILimits returns true where diffuse horizontal irradiance is
// within the QCRad physically-possible bounds.
func CheckDHILimits(dhi, zenith, dniExtra []float64, limits QCRadLimits) ([]bool, error) {
	return qcRadCheck(dhi, zenith, dniExtra, limits.DHILower, limits.DHIUpper)
}

// CheckDNILimits returns true where direct normal irradiance is within
// the QCRad physically-possible bounds.
func CheckDNILimits(dni, zenith, dniExtra []float64, limits QCRadLimits) ([]bool, error) {
	return qcRadCheck(dni, zenith, dniExtra, limits.DNILower, limits.DNIUpper)
}

// ConsistencyBand is one row of the QCRad component-consistency test:
// within ZenithBounds and GHIBounds, the tested ratio must fall inside
// RatioBounds.
type ConsistencyBand struct {
	ZenithBounds [2]float64
	GHIBounds    [2]float64
	RatioBounds  [2]float64
}

func (b ConsistencyBand) applies(zenith, ghi float64) bool {
	return zenith >= b.ZenithBounds[0] && zenith < b.ZenithBounds[1] &&
		ghi >= b.GHIBounds[0] && ghi < b.GHIBounds[1]
}

func (b ConsistencyBand) holds(ratio float64) bool {
	return ratio >= b.RatioBounds[0] && ratio <= b.RatioBounds[1]
}

// QCRadConsistency holds the band parameters for the GHI ratio and
// diffuse ratio tests, split by low and high zenith angle.
type QCRadConsistency struct {
	GHILowZenith  ConsistencyBand
	GHIHighZenith ConsistencyBand
	DHILowZenith  ConsistencyBand
	DHIHighZenith ConsistencyBand
}

// DefaultQCRadConsistency returns the standard QCRad consistency bands.
func DefaultQCRadConsistency() QCRadConsistency {
	inf := math.Inf(1)
	return QCRadConsistency{
		GHILowZenith:  ConsistencyBand{[2]float64{0, 75}, [2]float64{50, inf}, [2]float64{0.92, 1.08}},
		GHIHighZenith: ConsistencyBand{[2]float64{75, 93}, [2]float64{50, inf}, [2]float64{0.85, 1.15}},
		DHILowZenith:  ConsistencyBand{[2]float64{0, 75}, [2]float64{50, inf}, [2]float64{0.0, 1.05}},
		DHIHighZenith: ConsistencyBand{[2]float64{75, 93}, [2]float64{50, inf}, [2]float64{0.0, 1.10}},
	}
}

// CheckIrradianceConsistency runs the QCRad component-consistency test.
// The first mask flags samples where measured GHI agrees with
// dni*cos(zenith)+dhi, the second where the diffuse fraction dhi/ghi is
// plausible. Samples outside every band are false in both masks.
func CheckIrradianceConsistency(ghi, dhi, dni, zenith, dniExtra []float64, params QCRadConsistency) ([]bool, []bool, error) {
	if len(ghi) != len(dhi) || len(ghi) != len(dni) || len(ghi) != len(zenith) || len(ghi) != len(dniExtra) {
		return nil, nil, timeseries.ErrLengthMismatch
	}
	ghiOK := make([]bool, len(ghi))
	dhiOK := make([]bool, len(ghi))
	for i := range ghi {
		if math.IsNaN(ghi[i]) || math.IsNaN(dhi[i]) || math.IsNaN(dni[i]) || math.IsNaN(zenith[i]) {
			continue
		}
		component := dni[i]*math.Cos(zenith[i]*math.Pi/180) + dhi[i]
		if component != 0 {
			ratio := ghi[i] / component
			for _, band := range []ConsistencyBand{params.GHILowZenith, params.GHIHighZenith} {
				if band.applies(zenith[i], ghi[i]) {
					ghiOK[i] = band.holds(ratio)
					break
				}
			}
		}
		if ghi[i] != 0 {
			ratio := dhi[i] / ghi[i]
			for _, band := range []ConsistencyBand{params.DHILowZenith, params.DHIHighZenith} {
				if band.applies(zenith[i], ghi[i]) {
					dhiOK[i] = band.holds(ratio)
					break
				}
			}
		}
	}
	return ghiOK, dhiOK, nil
}

// GHIClearskyLimits returns true where measured GHI does not exceed
// csiMax times the clear-sky expectation.
func GHIClearskyLimits(ghi, clearsky []float64, csiMax float64) ([]bool, error) {
	if len(ghi) != len(clearsky) {
		return nil, timeseries.ErrLengthMismatch
	}
	out := make([]bool, len(ghi))
	for i, v := range ghi {
		out[i] = !math.IsNaN(v) && v <= csiMax*clearsky[i]
	}
	return out, nil
}
