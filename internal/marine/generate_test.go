package marine

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedGenerator() *Generator {
	g := NewGenerator(rand.NewPCG(1, 2))
	g.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return g
}

func TestGenerator_OceanData(t *testing.T) {
	p := fixedGenerator().OceanData(200)

	require.Len(t, p.Depth, 11)
	require.Len(t, p.Temperature, 11)
	require.Len(t, p.Salinity, 11)
	require.Len(t, p.Timestamp, 11)

	for i, d := range p.Depth {
		assert.InDelta(t, float64(i)*20, d, 1e-9)
		assert.InDelta(t, 20-d*0.1, p.Temperature[i], 1.0)
		assert.InDelta(t, 35, p.Salinity[i], 0.25)
	}
	assert.GreaterOrEqual(t, p.Coordinates.Lat, 45.0)
	assert.Less(t, p.Coordinates.Lat, 55.0)
	assert.GreaterOrEqual(t, p.Coordinates.Lon, -10.0)
	assert.Less(t, p.Coordinates.Lon, 10.0)
}

func TestGenerator_OceanData_DefaultDepth(t *testing.T) {
	p := fixedGenerator().OceanData()
	assert.Equal(t, 100.0, p.Depth[10])
}

func TestGenerator_Deterministic(t *testing.T) {
	assert.Equal(t, fixedGenerator().SpeciesData(5), fixedGenerator().SpeciesData(5))
}

func TestGenerator_SpeciesData(t *testing.T) {
	g := fixedGenerator()
	now := g.now()

	obs := g.SpeciesData(200)
	require.Len(t, obs, 200)
	for _, o := range obs {
		assert.Contains(t, sampleSpecies, o.Species)
		assert.GreaterOrEqual(t, o.Count, 1)
		assert.LessOrEqual(t, o.Count, 50)
		assert.GreaterOrEqual(t, o.Depth, 0.0)
		assert.Less(t, o.Depth, 200.0)
		assert.False(t, o.Timestamp.After(now))
		assert.True(t, o.Timestamp.After(now.Add(-31*24*time.Hour)))
	}

	assert.Len(t, g.SpeciesData(), 10)
	assert.Empty(t, g.SpeciesData(-3))
}

func TestPackageGenerators(t *testing.T) {
	assert.Len(t, GenerateOceanData().Depth, 11)
	assert.Len(t, GenerateSpeciesData(3), 3)
}

func TestSampleSpecies_ReturnsCopy(t *testing.T) {
	names := SampleSpecies()
	require.NotEmpty(t, names)
	names[0] = "Kraken"

	assert.Equal(t, "Cod", SampleSpecies()[0])
	assert.NotContains(t, sampleSpecies, "Kraken")
}
