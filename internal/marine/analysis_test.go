package marine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDensity(t *testing.T) {
	t.Run("pure water at zero", func(t *testing.T) {
		assert.InDelta(t, 999.842594, CalculateDensity(0, 0), 1e-9)
	})

	t.Run("pressure defaults to zero", func(t *testing.T) {
		assert.Equal(t, CalculateDensity(15, 35), CalculateDensity(15, 35, 0))
	})

	t.Run("pressure correction is linear", func(t *testing.T) {
		base := CalculateDensity(10, 35)
		assert.InDelta(t, base*(1+1000*4.5e-6), CalculateDensity(10, 35, 1000), 1e-9)
	})

	t.Run("typical seawater", func(t *testing.T) {
		rho := CalculateDensity(20, 35)
		assert.Greater(t, rho, 1024.0)
		assert.Less(t, rho, 1026.0)
	})

	t.Run("salt water is denser than fresh", func(t *testing.T) {
		assert.Greater(t, CalculateDensity(10, 35), CalculateDensity(10, 0))
	})
}

func TestCalculateDistance(t *testing.T) {
	t.Run("same point", func(t *testing.T) {
		c := Coordinate{Lat: 51.5, Lon: -0.12}
		assert.Zero(t, CalculateDistance(c, c))
	})

	t.Run("quarter of the equator", func(t *testing.T) {
		d := CalculateDistance(Coordinate{0, 0}, Coordinate{0, 90})
		assert.InDelta(t, EarthRadiusKm*math.Pi/2, d, 1e-6)
		assert.InDelta(t, 10007.54, d, 0.01)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Coordinate{Lat: 60, Lon: -3}
		b := Coordinate{Lat: 43.5, Lon: -8}
		assert.InDelta(t, CalculateDistance(a, b), CalculateDistance(b, a), 1e-9)
	})
}

func TestCalculateShannonDiversity(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Zero(t, CalculateShannonDiversity(nil))
	})

	t.Run("single species", func(t *testing.T) {
		obs := []SpeciesObservation{{Species: "Cod", Count: 5}, {Species: "Cod", Count: 7}}
		assert.Zero(t, CalculateShannonDiversity(obs))
	})

	t.Run("two equal species", func(t *testing.T) {
		obs := []SpeciesObservation{
			{Species: "Cod", Count: 4},
			{Species: "Tuna", Count: 1},
			{Species: "Tuna", Count: 3},
		}
		assert.InDelta(t, math.Ln2, CalculateShannonDiversity(obs), 1e-12)
	})

	t.Run("zero counts", func(t *testing.T) {
		obs := []SpeciesObservation{{Species: "Cod", Count: 0}}
		assert.Zero(t, CalculateShannonDiversity(obs))
	})
}

func TestCalculateTemperatureGradient(t *testing.T) {
	p := OceanProfile{
		Temperature: []float64{20, 19, 19, 10},
		Depth:       []float64{0, 10, 10, 20},
	}
	assert.Equal(t, []float64{-0.1, 0, -0.9}, CalculateTemperatureGradient(p))
	assert.Empty(t, CalculateTemperatureGradient(OceanProfile{Temperature: []float64{1}, Depth: []float64{0}}))
}

func TestFindThermoclineDepth(t *testing.T) {
	t.Run("steepest cooling step", func(t *testing.T) {
		p := OceanProfile{
			Temperature: []float64{20, 19, 10, 9},
			Depth:       []float64{0, 10, 20, 30},
		}
		assert.Equal(t, 20.0, FindThermoclineDepth(p))
	})

	t.Run("first minimum wins on ties", func(t *testing.T) {
		p := OceanProfile{
			Temperature: []float64{20, 18, 16},
			Depth:       []float64{0, 10, 20},
		}
		assert.Equal(t, 10.0, FindThermoclineDepth(p))
	})

	t.Run("too short", func(t *testing.T) {
		assert.Zero(t, FindThermoclineDepth(OceanProfile{}))
		assert.Zero(t, FindThermoclineDepth(OceanProfile{Temperature: []float64{5}, Depth: []float64{7}}))
	})
}

func TestAnalyzeOilSpillRisk(t *testing.T) {
	openSea := Coordinate{Lat: 50, Lon: -20}
	northSea := Coordinate{Lat: 60, Lon: -3}

	t.Run("insufficient data", func(t *testing.T) {
		got := AnalyzeOilSpillRisk([]VesselPosition{{Coordinates: northSea}})
		assert.Equal(t, RiskAssessment{RiskScore: 0, RiskFactors: []string{"Insufficient data"}}, got)
	})

	t.Run("calm track", func(t *testing.T) {
		got := AnalyzeOilSpillRisk([]VesselPosition{
			{Coordinates: openSea, Speed: 12, Heading: 350},
			{Coordinates: openSea, Speed: 14, Heading: 10},
		})
		assert.Zero(t, got.RiskScore)
		assert.Empty(t, got.RiskFactors)
	})

	t.Run("each factor", func(t *testing.T) {
		got := AnalyzeOilSpillRisk([]VesselPosition{
			{Coordinates: openSea, Speed: 10, Heading: 0},
			{Coordinates: openSea, Speed: 20, Heading: 90},
			{Coordinates: northSea, Speed: 30, Heading: 200},
		})
		assert.Equal(t, 10+15+20, got.RiskScore)
		assert.Equal(t, []string{
			"Sudden speed change detected",
			"Erratic course changes detected",
			"Near sensitive area: North Sea Protected Area",
		}, got.RiskFactors)
	})

	t.Run("capped at 100", func(t *testing.T) {
		track := make([]VesselPosition, 6)
		for i := range track {
			track[i] = VesselPosition{Coordinates: northSea, Speed: float64(i * 10), Heading: float64(i * 90)}
		}
		got := AnalyzeOilSpillRisk(track)
		assert.Equal(t, 100, got.RiskScore)
		require.Len(t, got.RiskFactors, 8)
	})
}

func TestSensitiveAreas_ReturnsCopy(t *testing.T) {
	areas := SensitiveAreas()
	require.Len(t, areas, 2)
	areas[0].Name = "renamed"

	assert.Len(t, SensitiveAreas(), 2)
	assert.Equal(t, "North Sea Protected Area", SensitiveAreas()[0].Name)
}
