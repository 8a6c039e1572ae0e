package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/marinebook/internal/core/domain"
	"github.com/custodia-labs/marinebook/internal/core/ports/driven"
	"github.com/custodia-labs/marinebook/internal/core/ports/driving"
	"github.com/custodia-labs/marinebook/internal/logger"
)

// Ensure ExecutionEngine implements the interface.
var _ driving.ExecutionEngine = (*ExecutionEngine)(nil)

// ExecutionEngine runs code cells through a script runtime. Every call gets
// its own output buffer, so concurrent executions never mix their output.
type ExecutionEngine struct {
	runtime driven.ScriptRuntime

	mu      sync.RWMutex
	timeout time.Duration
	limiter *rate.Limiter
}

// NewExecutionEngine creates an engine over the given runtime.
func NewExecutionEngine(runtime driven.ScriptRuntime, settings domain.ExecutionSettings) *ExecutionEngine {
	e := &ExecutionEngine{runtime: runtime}
	e.Configure(settings)
	return e
}

// Configure applies timeout and admission rate settings. A zero timeout
// disables the bound; a zero rate disables admission limiting.
func (e *ExecutionEngine) Configure(settings domain.ExecutionSettings) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.timeout = settings.Timeout
	e.limiter = nil
	if settings.RatePerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(settings.RatePerSecond), max(settings.Burst, 1))
	}
	logger.Debug("execution engine configured: timeout=%s rate=%.2f/s burst=%d",
		settings.Timeout, settings.RatePerSecond, settings.Burst)
}

// Execute runs source and returns its captured output or failure message.
//
// Output policy: printed text when anything was printed, otherwise the
// value of the final expression, otherwise a fixed success message.
func (e *ExecutionEngine) Execute(ctx context.Context, source string) (result domain.ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("execution panicked: %v", r)
			result = domain.ExecutionResult{Error: fmt.Sprint(r)}
		}
	}()

	e.mu.RLock()
	timeout, limiter := e.timeout, e.limiter
	e.mu.RUnlock()

	if limiter != nil && !limiter.Allow() {
		return domain.ExecutionResult{Error: fmt.Sprintf("%v: too many executions, try again shortly", domain.ErrRateLimited)}
	}
	if e.runtime == nil {
		return domain.ExecutionResult{Error: "no script runtime configured"}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout bytes.Buffer
	run, err := e.runtime.Run(ctx, source, &stdout)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.ExecutionResult{Error: fmt.Sprintf("%v after %s", domain.ErrExecutionTimeout, timeout)}
		}
		return domain.ExecutionResult{Error: err.Error()}
	}

	return domain.ExecutionResult{Output: SelectOutput(stdout.String(), run)}
}

// SelectOutput applies the output policy to what a run printed and returned.
func SelectOutput(printed string, run driven.RunResult) string {
	if printed != "" {
		return strings.TrimSuffix(printed, "\n")
	}
	if run.HasValue {
		return FormatValue(run.Value)
	}
	return domain.NoOutputMessage
}

// FormatValue renders a result value. Structs, maps, slices and arrays are
// shown as indented JSON; everything else through fmt.
func FormatValue(v any) string {
	if v == nil {
		return "nil"
	}
	rv := reflect.ValueOf(v)
	kind := rv.Kind()
	if kind == reflect.Pointer && !rv.IsNil() {
		kind = rv.Elem().Kind()
	}
	switch kind {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		data, err := json.MarshalIndent(v, "", "  ")
		if err == nil {
			return string(data)
		}
		return fmt.Sprintf("%+v", v)
	default:
		return fmt.Sprint(v)
	}
}
