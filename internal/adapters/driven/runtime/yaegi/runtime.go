package yaegi

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/traefik/yaegi/interp"

	"github.com/custodia-labs/marinebook/internal/core/ports/driven"
)

// Ensure Runtime implements the interface.
var _ driven.ScriptRuntime = (*Runtime)(nil)

// preludeImports are in scope for every statement-style cell.
var preludeImports = []string{"fmt", "math", "strings", "sort", MarinePath}

// Runtime evaluates cells with a fresh interpreter per call.
type Runtime struct {
	stdlib interp.Exports
	marine interp.Exports
}

// New creates a Runtime.
func New() *Runtime {
	return &Runtime{
		stdlib: safeStdlib(),
		marine: marineSymbols(),
	}
}

// Run evaluates source, writing printed output to stdout.
func (r *Runtime) Run(ctx context.Context, source string, stdout io.Writer) (driven.RunResult, error) {
	if stdout == nil {
		stdout = io.Discard
	}

	i := interp.New(interp.Options{Stdout: stdout, Stderr: stdout})
	if err := i.Use(r.stdlib); err != nil {
		return driven.RunResult{}, fmt.Errorf("failed to load stdlib: %w", err)
	}
	if err := i.Use(r.marine); err != nil {
		return driven.RunResult{}, fmt.Errorf("failed to load marine helpers: %w", err)
	}

	if isProgram(source) {
		if _, err := i.EvalWithContext(ctx, source); err != nil {
			return driven.RunResult{}, cleanError(ctx, err)
		}
		return driven.RunResult{}, nil
	}

	imports, body, err := splitImports(source)
	if err != nil {
		return driven.RunResult{}, err
	}
	if err := r.importAll(i, imports); err != nil {
		return driven.RunResult{}, err
	}

	body = asStatements(body)
	v, err := i.EvalWithContext(ctx, body)
	if err != nil {
		return driven.RunResult{}, cleanError(ctx, err)
	}
	if !endsWithExpression(body) {
		return driven.RunResult{}, nil
	}
	return toResult(v), nil
}

// importAll loads the prelude packages and then the cell's own imports.
func (r *Runtime) importAll(i *interp.Interpreter, imports []*ast.ImportSpec) error {
	loaded := make(map[string]bool, len(preludeImports))
	for _, pkg := range preludeImports {
		if _, err := i.Eval(fmt.Sprintf("import %q", pkg)); err != nil {
			return fmt.Errorf("import %s: %w", pkg, err)
		}
		loaded[pkg] = true
	}

	for _, spec := range imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			return fmt.Errorf("import %s: %w", spec.Path.Value, err)
		}
		name := ""
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if name == "" && loaded[path] {
			continue
		}
		if _, err := i.Eval(strings.TrimSpace(fmt.Sprintf("import %s %q", name, path))); err != nil {
			return err
		}
		if name == "" {
			loaded[path] = true
		}
	}
	return nil
}

// isProgram reports whether source declares its own package clause.
func isProgram(source string) bool {
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		return strings.HasPrefix(line, "package ")
	}
	return false
}

func cleanError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}

func toResult(v reflect.Value) driven.RunResult {
	if !v.IsValid() || !v.CanInterface() {
		return driven.RunResult{}
	}
	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return driven.RunResult{}
	}
	if (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && v.IsNil() {
		return driven.RunResult{}
	}
	return driven.RunResult{Value: v.Interface(), HasValue: true}
}
