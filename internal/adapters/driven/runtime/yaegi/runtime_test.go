package yaegi

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marinebook/internal/marine"
)

func TestRun_PrintedOutput(t *testing.T) {
	var out bytes.Buffer
	_, err := New().Run(context.Background(), `fmt.Println("hello", 1+2)`, &out)
	require.NoError(t, err)
	assert.Equal(t, "hello 3\n", out.String())
}

func TestRun_LastExpressionValue(t *testing.T) {
	var out bytes.Buffer
	res, err := New().Run(context.Background(), "x := 20\nx * 2", &out)
	require.NoError(t, err)
	assert.Empty(t, out.String())
	require.True(t, res.HasValue)
	assert.EqualValues(t, 40, res.Value)
}

func TestRun_DeclarationsHaveNoValue(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"var", "var x = 1"},
		{"short assignment", "x := 5"},
		{"const", "const n = 3"},
		{"type", "type Station struct{ Depth float64 }"},
		{"import only", `import "time"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			res, err := New().Run(context.Background(), tt.source, &out)
			require.NoError(t, err)
			assert.False(t, res.HasValue)
			assert.Nil(t, res.Value)
			assert.Empty(t, out.String())
		})
	}
}

func TestRun_DeclarationThenStatements(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"var", "var depth = 50.0\nfmt.Println(depth)", "50\n"},
		{"const", "const n = 3\nfmt.Println(n * 2)", "6\n"},
		{"type", "type Probe struct{ Depth float64 }\np := Probe{Depth: 12}\nfmt.Println(p.Depth)", "12\n"},
		{"statement first", "fmt.Println(1)\nvar y = 2\nfmt.Println(y)", "1\n2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := New().Run(context.Background(), tt.source, &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRun_CellImports(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"single", "import \"time\"\nfmt.Println(time.Second)", "1s\n"},
		{"grouped", "import (\n\t\"fmt\"\n\t\"strconv\"\n)\n\nfmt.Println(strconv.Itoa(7))", "7\n"},
		{"aliased", "import str \"strings\"\nfmt.Println(str.ToUpper(\"cod\"))", "COD\n"},
		{"prelude repeated", "import \"marine\"\nfmt.Println(marine.FormatDepth(12))", marine.FormatDepth(12) + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := New().Run(context.Background(), tt.source, &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRun_ErrorLineNumbersSurviveImports(t *testing.T) {
	var out bytes.Buffer
	_, err := New().Run(context.Background(), "import \"time\"\n\nundefinedThing(time.Second)", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":3:")
}

func TestRun_HelperDataIsNotShared(t *testing.T) {
	rt := New()
	ctx := context.Background()
	risk := `
track := []marine.VesselPosition{
	{Coordinates: marine.Coordinate{Lat: 60, Lon: -3}, Speed: 10},
	{Coordinates: marine.Coordinate{Lat: 60, Lon: -3}, Speed: 10},
}
fmt.Print(marine.AnalyzeOilSpillRisk(track).RiskScore)
`
	var before bytes.Buffer
	_, err := rt.Run(ctx, risk, &before)
	require.NoError(t, err)
	assert.Equal(t, "40", before.String())

	var discard bytes.Buffer
	_, _ = rt.Run(ctx, "marine.SensitiveAreas = nil", &discard)
	_, err = rt.Run(ctx, "areas := marine.SensitiveAreas()\nareas[0].Lat = 0\nspecies := marine.SampleSpecies()\nspecies[0] = \"Kraken\"", &discard)
	require.NoError(t, err)

	var after bytes.Buffer
	_, err = rt.Run(ctx, risk, &after)
	require.NoError(t, err)
	assert.Equal(t, before.String(), after.String())

	var species bytes.Buffer
	_, err = rt.Run(ctx, "fmt.Print(len(marine.GenerateSpeciesData(2)), \" \", marine.SampleSpecies()[0])", &species)
	require.NoError(t, err)
	assert.Equal(t, "2 Cod", species.String())
}

func TestRun_MarineHelpers(t *testing.T) {
	src := `
a := marine.Coordinate{Lat: 0, Lon: 0}
b := marine.Coordinate{Lat: 0, Lon: 1}
fmt.Printf("%.1f", marine.CalculateDistance(a, b))
`
	var out bytes.Buffer
	_, err := New().Run(context.Background(), src, &out)
	require.NoError(t, err)

	want := marine.CalculateDistance(marine.Coordinate{}, marine.Coordinate{Lon: 1})
	assert.InDelta(t, want, 111.2, 0.1)
	assert.Equal(t, "111.2", out.String())
}

func TestRun_PreludeImports(t *testing.T) {
	src := `
xs := []string{"b", "a"}
sort.Strings(xs)
fmt.Print(strings.Join(xs, ","), " ", math.Sqrt(16))
`
	var out bytes.Buffer
	_, err := New().Run(context.Background(), src, &out)
	require.NoError(t, err)
	assert.Equal(t, "a,b 4", out.String())
}

func TestRun_Program(t *testing.T) {
	src := `package main

import "fmt"

func main() { fmt.Println("from main") }
`
	var out bytes.Buffer
	_, err := New().Run(context.Background(), src, &out)
	require.NoError(t, err)
	assert.Equal(t, "from main\n", out.String())
}

func TestRun_CompileError(t *testing.T) {
	var out bytes.Buffer
	_, err := New().Run(context.Background(), "undefinedThing()", &out)
	assert.Error(t, err)
}

func TestRun_BlockedImport(t *testing.T) {
	var out bytes.Buffer
	_, err := New().Run(context.Background(), `import "os/exec"`, &out)
	assert.Error(t, err)
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	_, err := New().Run(ctx, "for {}", &out)
	assert.Error(t, err)
}

func TestRun_IsolatedOutput(t *testing.T) {
	rt := New()
	var a, b bytes.Buffer

	_, err := rt.Run(context.Background(), `fmt.Print("first")`, &a)
	require.NoError(t, err)
	_, err = rt.Run(context.Background(), `fmt.Print("second")`, &b)
	require.NoError(t, err)

	assert.Equal(t, "first", a.String())
	assert.Equal(t, "second", b.String())
}

func TestIsProgram(t *testing.T) {
	assert.True(t, isProgram("// header\n\npackage main\n"))
	assert.False(t, isProgram("fmt.Println(1)"))
	assert.False(t, isProgram(""))
}

func TestSplitImports(t *testing.T) {
	imports, body, err := splitImports("// notes\nimport (\n\t\"time\"\n\tm \"math\"\n)\nx := 1")
	require.NoError(t, err)
	require.Len(t, imports, 2)
	assert.Equal(t, `"time"`, imports[0].Path.Value)
	assert.Equal(t, "m", imports[1].Name.Name)
	assert.Equal(t, "\n\n\n\n\nx := 1", body)

	imports, body, err = splitImports("fmt.Println(1)")
	require.NoError(t, err)
	assert.Empty(t, imports)
	assert.Equal(t, "fmt.Println(1)", body)

	_, _, err = splitImports(`import time`)
	assert.Error(t, err)
}

func TestAsStatements(t *testing.T) {
	assert.Equal(t, "var x = 1", asStatements("var x = 1"))
	assert.Equal(t, ";var x = 1\nfmt.Println(x)", asStatements("var x = 1\nfmt.Println(x)"))
	assert.Equal(t, "fmt.Println(1)", asStatements("fmt.Println(1)"))
}

func TestEndsWithExpression(t *testing.T) {
	assert.True(t, endsWithExpression("x := 2\nx * 3"))
	assert.True(t, endsWithExpression(";var x = 1\nx\n"))
	assert.False(t, endsWithExpression("x := 2"))
	assert.False(t, endsWithExpression("var x = 1"))
	assert.False(t, endsWithExpression(""))
	assert.False(t, endsWithExpression("if {"))
}

func TestImportPath(t *testing.T) {
	assert.Equal(t, "net/http", importPath("net/http/http"))
	assert.Equal(t, "fmt", importPath("fmt/fmt"))
}
