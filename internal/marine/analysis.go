package marine

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Oil-spill risk model parameters.
const (
	speedChangeKnots   = 5.0
	headingChangeDeg   = 45.0
	sensitiveRadiusKm  = 50.0
	speedChangeWeight  = 10
	headingWeight      = 15
	sensitiveWeight    = 20
	maxRiskScore       = 100
	insufficientFactor = "Insufficient data"
)

var sensitiveAreas = []SensitiveArea{
	{Coordinate: Coordinate{Lat: 60.0, Lon: -3.0}, Name: "North Sea Protected Area"},
	{Coordinate: Coordinate{Lat: 43.5, Lon: -8.0}, Name: "Bay of Biscay Marine Park"},
}

// SensitiveAreas returns a copy of the protected zones checked by
// AnalyzeOilSpillRisk.
func SensitiveAreas() []SensitiveArea {
	return append([]SensitiveArea(nil), sensitiveAreas...)
}

// CalculateDensity returns seawater density in kg/m³ from temperature (°C),
// salinity (PSU) and an optional pressure (dbar, default 0), using the
// simplified UNESCO equation of state.
func CalculateDensity(temperature, salinity float64, pressure ...float64) float64 {
	t, s := temperature, salinity
	p := 0.0
	if len(pressure) > 0 {
		p = pressure[0]
	}

	rho0 := 999.842594 + 6.793952e-2*t - 9.095290e-3*t*t + 1.001685e-4*t*t*t

	a := 8.24493e-1 - 4.0899e-3*t + 7.6438e-5*t*t - 8.2467e-7*t*t*t + 5.3875e-9*t*t*t*t
	b := -5.72466e-3 + 1.0227e-4*t - 1.6546e-6*t*t
	c := 4.8314e-4

	rho := rho0 + a*s + b*s*math.Sqrt(s) + c*s*s

	return rho * (1 + p*4.5e-6)
}

// CalculateDistance returns the great-circle distance in kilometres between
// two coordinates using the haversine formula.
func CalculateDistance(a, b Coordinate) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// CalculateShannonDiversity returns the Shannon-Weaver index -Σ p·ln(p)
// where p is each species' share of the total count. Observations of the
// same species are aggregated first. An empty or all-zero input yields 0.
func CalculateShannonDiversity(observations []SpeciesObservation) float64 {
	counts := make(map[string]int)
	total := 0
	for _, obs := range observations {
		counts[obs.Species] += obs.Count
		total += obs.Count
	}
	if total <= 0 {
		return 0
	}

	diversity := 0.0
	for _, n := range counts {
		p := float64(n) / float64(total)
		if p > 0 {
			diversity -= p * math.Log(p)
		}
	}
	return diversity
}

// CalculateTemperatureGradient returns dT/dz between consecutive samples.
// A zero depth step yields a zero gradient.
func CalculateTemperatureGradient(profile OceanProfile) []float64 {
	n := min(len(profile.Temperature), len(profile.Depth))
	if n < 2 {
		return []float64{}
	}
	gradients := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		dT := profile.Temperature[i] - profile.Temperature[i-1]
		dz := profile.Depth[i] - profile.Depth[i-1]
		if dz == 0 {
			gradients = append(gradients, 0)
			continue
		}
		gradients = append(gradients, dT/dz)
	}
	return gradients
}

// FindThermoclineDepth returns the depth at the lower end of the steepest
// cooling step, that is the interval with the most negative gradient.
// Profiles with fewer than two samples yield 0.
func FindThermoclineDepth(profile OceanProfile) float64 {
	gradients := CalculateTemperatureGradient(profile)
	if len(gradients) == 0 {
		return 0
	}
	idx := 0
	for i, g := range gradients {
		if g < gradients[idx] {
			idx = i
		}
	}
	return profile.Depth[idx+1]
}

// AnalyzeOilSpillRisk scores a vessel track for spill risk.
//
// A speed change above 5 knots between consecutive points adds 10 (once),
// a heading change above 45 degrees adds 15 (once), and every point within
// 50 km of a sensitive area adds 20 for that area. The score is capped at
// 100. Fewer than two points yield a zero score with "Insufficient data".
func AnalyzeOilSpillRisk(track []VesselPosition) RiskAssessment {
	if len(track) < 2 {
		return RiskAssessment{RiskScore: 0, RiskFactors: []string{insufficientFactor}}
	}

	score := 0
	factors := []string{}

	for i := 1; i < len(track); i++ {
		if math.Abs(track[i].Speed-track[i-1].Speed) > speedChangeKnots {
			score += speedChangeWeight
			factors = append(factors, "Sudden speed change detected")
			break
		}
	}

	for i := 1; i < len(track); i++ {
		change := math.Abs(track[i].Heading - track[i-1].Heading)
		if math.Min(change, 360-change) > headingChangeDeg {
			score += headingWeight
			factors = append(factors, "Erratic course changes detected")
			break
		}
	}

	for _, point := range track {
		for _, area := range sensitiveAreas {
			if CalculateDistance(point.Coordinates, area.Coordinate) < sensitiveRadiusKm {
				score += sensitiveWeight
				factors = append(factors, fmt.Sprintf("Near sensitive area: %s", area.Name))
			}
		}
	}

	return RiskAssessment{RiskScore: min(score, maxRiskScore), RiskFactors: factors}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
