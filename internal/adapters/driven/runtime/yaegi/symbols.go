package yaegi

import (
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/custodia-labs/marinebook/internal/marine"
)

// MarinePath is the import path cells use for the marine helpers.
const MarinePath = "marine"

// blockedPackages cannot be imported from a cell.
var blockedPackages = map[string]bool{
	"os/exec":   true,
	"os/signal": true,
	"net":       true,
	"net/http":  true,
	"net/rpc":   true,
	"net/smtp":  true,
	"plugin":    true,
	"syscall":   true,
	"unsafe":    true,
}

// safeStdlib returns the interpreter stdlib without the blocked packages.
func safeStdlib() interp.Exports {
	out := make(interp.Exports, len(stdlib.Symbols))
	for key, syms := range stdlib.Symbols {
		if blockedPackages[importPath(key)] {
			continue
		}
		out[key] = syms
	}
	return out
}

// importPath strips the trailing package name from an Exports key such as
// "net/http/http".
func importPath(key string) string {
	if i := strings.LastIndex(key, "/"); i > 0 {
		return key[:i]
	}
	return key
}

// marineSymbols exposes the marine package to interpreted code.
func marineSymbols() interp.Exports {
	return interp.Exports{
		MarinePath + "/marine": {
			// Types
			"Coordinate":         reflect.ValueOf((*marine.Coordinate)(nil)),
			"OceanProfile":       reflect.ValueOf((*marine.OceanProfile)(nil)),
			"SpeciesObservation": reflect.ValueOf((*marine.SpeciesObservation)(nil)),
			"VesselPosition":     reflect.ValueOf((*marine.VesselPosition)(nil)),
			"RiskAssessment":     reflect.ValueOf((*marine.RiskAssessment)(nil)),
			"SensitiveArea":      reflect.ValueOf((*marine.SensitiveArea)(nil)),

			// Analysis
			"CalculateDensity":             reflect.ValueOf(marine.CalculateDensity),
			"CalculateDistance":            reflect.ValueOf(marine.CalculateDistance),
			"CalculateShannonDiversity":    reflect.ValueOf(marine.CalculateShannonDiversity),
			"CalculateTemperatureGradient": reflect.ValueOf(marine.CalculateTemperatureGradient),
			"FindThermoclineDepth":         reflect.ValueOf(marine.FindThermoclineDepth),
			"AnalyzeOilSpillRisk":          reflect.ValueOf(marine.AnalyzeOilSpillRisk),
			"SensitiveAreas":               reflect.ValueOf(marine.SensitiveAreas),

			// Generation
			"GenerateOceanData":   reflect.ValueOf(marine.GenerateOceanData),
			"GenerateSpeciesData": reflect.ValueOf(marine.GenerateSpeciesData),
			"SampleSpecies":       reflect.ValueOf(marine.SampleSpecies),

			// Formatting
			"FormatCoordinates": reflect.ValueOf(marine.FormatCoordinates),
			"FormatDepth":       reflect.ValueOf(marine.FormatDepth),
			"FormatTemperature": reflect.ValueOf(marine.FormatTemperature),
			"FormatSalinity":    reflect.ValueOf(marine.FormatSalinity),
		},
	}
}
