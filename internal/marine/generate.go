package marine

import (
	"math/rand/v2"
	"sync"
	"time"
)

const (
	defaultProfileDepth = 100.0
	defaultSpeciesCount = 10
	profileSamples      = 11
	observationWindow   = 30 * 24 * time.Hour
)

var sampleSpecies = []string{"Cod", "Haddock", "Herring", "Mackerel", "Tuna", "Sardine", "Anchovy"}

// SampleSpecies returns a copy of the species names drawn by
// GenerateSpeciesData.
func SampleSpecies() []string {
	return append([]string(nil), sampleSpecies...)
}

// Generator produces synthetic survey data from a random source.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewGenerator creates a generator over the given source. A nil source
// uses a randomly seeded PCG.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Generator{rnd: rand.New(src), now: time.Now}
}

var defaultGenerator = NewGenerator(nil)

// GenerateOceanData returns a synthetic profile of eleven evenly spaced
// samples from the surface down to depth metres (default 100).
func GenerateOceanData(depth ...float64) OceanProfile {
	return defaultGenerator.OceanData(depth...)
}

// GenerateSpeciesData returns count synthetic observations (default 10).
func GenerateSpeciesData(count ...int) []SpeciesObservation {
	return defaultGenerator.SpeciesData(count...)
}

// OceanData returns a synthetic profile. Temperature falls 0.1 °C per metre
// from 20 °C with ±1 °C noise; salinity is 35 ±0.25 PSU.
func (g *Generator) OceanData(depth ...float64) OceanProfile {
	maxDepth := defaultProfileDepth
	if len(depth) > 0 {
		maxDepth = depth[0]
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	p := OceanProfile{
		Temperature: make([]float64, profileSamples),
		Salinity:    make([]float64, profileSamples),
		Depth:       make([]float64, profileSamples),
		Timestamp:   make([]time.Time, profileSamples),
	}
	for i := range profileSamples {
		d := float64(i) * (maxDepth / 10)
		p.Depth[i] = d
		p.Temperature[i] = 20 - d*0.1 + g.rnd.Float64()*2 - 1
		p.Salinity[i] = 35 + g.rnd.Float64()*0.5 - 0.25
		p.Timestamp[i] = now
	}
	p.Coordinates = Coordinate{
		Lat: 45 + g.rnd.Float64()*10,
		Lon: -10 + g.rnd.Float64()*20,
	}
	return p
}

// SpeciesData returns synthetic observations in the North-East Atlantic,
// each with a count of 1 to 50, a depth under 200 m and a timestamp within
// the last 30 days.
func (g *Generator) SpeciesData(count ...int) []SpeciesObservation {
	n := defaultSpeciesCount
	if len(count) > 0 {
		n = max(count[0], 0)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	out := make([]SpeciesObservation, 0, n)
	for range n {
		out = append(out, SpeciesObservation{
			Species: sampleSpecies[g.rnd.IntN(len(sampleSpecies))],
			Count:   g.rnd.IntN(50) + 1,
			Coordinates: Coordinate{
				Lat: 45 + g.rnd.Float64()*10,
				Lon: -10 + g.rnd.Float64()*20,
			},
			Depth:     g.rnd.Float64() * 200,
			Timestamp: now.Add(-time.Duration(g.rnd.Float64() * float64(observationWindow))),
		})
	}
	return out
}
