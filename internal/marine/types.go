package marine

import "time"

// Coordinate is a geographic position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// OceanProfile is a vertical water-column profile. Temperature, Salinity,
// Depth and Timestamp are parallel slices ordered by increasing depth.
type OceanProfile struct {
	Temperature []float64   `json:"temperature"`
	Salinity    []float64   `json:"salinity"`
	Depth       []float64   `json:"depth"`
	Coordinates Coordinate  `json:"coordinates"`
	Timestamp   []time.Time `json:"timestamp"`
}

// SpeciesObservation is a single survey sighting.
type SpeciesObservation struct {
	Species     string     `json:"species"`
	Count       int        `json:"count"`
	Coordinates Coordinate `json:"coordinates"`
	Depth       float64    `json:"depth"`
	Timestamp   time.Time  `json:"timestamp"`
}

// VesselPosition is one point of a vessel track.
type VesselPosition struct {
	VesselID    string     `json:"vesselId"`
	Coordinates Coordinate `json:"coordinates"`
	Speed       float64    `json:"speed"`
	Heading     float64    `json:"heading"`
	Timestamp   time.Time  `json:"timestamp"`
}

// RiskAssessment is the result of AnalyzeOilSpillRisk.
type RiskAssessment struct {
	// RiskScore is in the range 0 to 100.
	RiskScore   int      `json:"riskScore"`
	RiskFactors []string `json:"riskFactors"`
}

// SensitiveArea is a protected zone considered by the oil-spill risk model.
type SensitiveArea struct {
	Coordinate
	Name string `json:"name"`
}
