package services

import (
	"time"

	"github.com/custodia-labs/marinebook/internal/core/domain"
)

// Notebook metadata written on every new notebook.
const (
	notebookLanguage   = "go"
	notebookKernelName = "yaegi"
)

// Default content for cells added by the editor.
const (
	DefaultCodeTemplate     = "// Enter your code here\n"
	DefaultMarkdownTemplate = "# New Markdown Cell\n\nEnter your markdown content here..."
)

const welcomeMarkdown = `# Marine Analysis Notebook

Welcome to your interactive marine data analysis environment! This notebook allows you to:

- **Analyse oceanographic profiles** with temperature, salinity and density helpers
- **Study species diversity** from survey observations
- **Assess vessel tracks** for oil spill risk
- **Document your research** with markdown cells

## Getting Started

Code cells are Go. The ` + "`marine`" + ` package is already imported together with
` + "`fmt`, `math`, `strings` and `sort`" + `. Run a cell to see its printed output.`

const oceanProfileCode = `// Ocean profile analysis with the built-in marine helpers
profile := marine.GenerateOceanData(50)

fmt.Println("Generated oceanographic profile")
fmt.Println("Location:", marine.FormatCoordinates(profile.Coordinates))

minT, maxT := math.Inf(1), math.Inf(-1)
for _, t := range profile.Temperature {
	minT = math.Min(minT, t)
	maxT = math.Max(maxT, t)
}
fmt.Println("Temperature range:", marine.FormatTemperature(minT), "to", marine.FormatTemperature(maxT))

thermocline := marine.FindThermoclineDepth(profile)
fmt.Println("Thermocline depth:", marine.FormatDepth(thermocline))

last := len(profile.Temperature) - 1
surface := marine.CalculateDensity(profile.Temperature[0], profile.Salinity[0])
deep := marine.CalculateDensity(profile.Temperature[last], profile.Salinity[last], profile.Depth[last])
fmt.Printf("Surface density: %.2f kg/m³\n", surface)
fmt.Printf("Deep water density: %.2f kg/m³\n", deep)
`

const speciesDiversityCode = `// Species diversity analysis
observations := marine.GenerateSpeciesData(15)
fmt.Println("Generated", len(observations), "species observations")
fmt.Printf("Shannon diversity index: %.3f\n", marine.CalculateShannonDiversity(observations))

counts := map[string]int{}
for _, o := range observations {
	counts[o.Species] += o.Count
}
names := make([]string, 0, len(counts))
for name := range counts {
	names = append(names, name)
}
sort.Slice(names, func(i, j int) bool { return counts[names[i]] > counts[names[j]] })

fmt.Println("\nSpecies distribution:")
for _, name := range names {
	fmt.Printf("  %s: %d individuals\n", name, counts[name])
}

if len(observations) >= 2 {
	d := marine.CalculateDistance(observations[0].Coordinates, observations[1].Coordinates)
	fmt.Printf("\nDistance between first two observations: %.2f km\n", d)
}
`

const oilSpillHeading = `## Oil Spill Risk Assessment

The notebook includes marine monitoring capabilities. Try the oil spill risk analysis below:`

const oilSpillCode = `// Oil spill risk assessment for a simulated tanker track
track := []marine.VesselPosition{
	{VesselID: "TANKER_001", Coordinates: marine.Coordinate{Lat: 60.1, Lon: -3.2}, Speed: 12, Heading: 45},
	{VesselID: "TANKER_001", Coordinates: marine.Coordinate{Lat: 60.15, Lon: -3.1}, Speed: 8, Heading: 90},
	{VesselID: "TANKER_001", Coordinates: marine.Coordinate{Lat: 60.2, Lon: -3.0}, Speed: 15, Heading: 135},
	{VesselID: "TANKER_001", Coordinates: marine.Coordinate{Lat: 60.25, Lon: -2.9}, Speed: 3, Heading: 180},
}

risk := marine.AnalyzeOilSpillRisk(track)
fmt.Printf("Risk score: %d/100\n", risk.RiskScore)
fmt.Println("Risk factors:")
for _, factor := range risk.RiskFactors {
	fmt.Println("  -", factor)
}

switch {
case risk.RiskScore > 30:
	fmt.Println("\nHIGH RISK: immediate monitoring recommended")
case risk.RiskScore > 15:
	fmt.Println("\nMODERATE RISK: continue surveillance")
default:
	fmt.Println("\nLOW RISK: normal operations")
}
`

// newNotebook builds a seeded notebook: a welcome cell followed by example
// code cells for the ocean profile, species diversity and oil spill helpers.
func newNotebook(name string, now time.Time) domain.Notebook {
	if name == "" {
		name = "Untitled Notebook " + now.Format("2006-01-02")
	}
	return domain.Notebook{
		ID:   NewNotebookID(),
		Name: name,
		Cells: []domain.Cell{
			newCell(domain.CellTypeMarkdown, welcomeMarkdown),
			newCell(domain.CellTypeCode, oceanProfileCode),
			newCell(domain.CellTypeCode, speciesDiversityCode),
			newCell(domain.CellTypeMarkdown, oilSpillHeading),
			newCell(domain.CellTypeCode, oilSpillCode),
		},
		CreatedAt: now,
		UpdatedAt: now,
		Metadata: domain.NotebookMetadata{
			Language:   notebookLanguage,
			KernelName: notebookKernelName,
		},
	}
}

func newCell(cellType domain.CellType, content string) domain.Cell {
	return domain.Cell{
		ID:      NewCellID(),
		Type:    cellType,
		Content: content,
	}
}

// templateFor returns the default content for a new cell of the given type.
func templateFor(cellType domain.CellType) string {
	if cellType == domain.CellTypeMarkdown {
		return DefaultMarkdownTemplate
	}
	return DefaultCodeTemplate
}
