package domain

// NoOutputMessage is the output of a successful execution that printed
// nothing and produced no value.
const NoOutputMessage = "Code executed successfully (no output)"

// ExecutionResult is the outcome of running one code cell.
// Exactly one of Output and Error is meaningful: a non-empty Error marks
// a failed execution.
type ExecutionResult struct {
	Output string
	Error  string
}

// Failed reports whether the execution failed.
func (r ExecutionResult) Failed() bool {
	return r.Error != ""
}

// AsOutput converts the result to a cell output with the given duration.
func (r ExecutionResult) AsOutput(elapsedMs int64) *CellOutput {
	out := &CellOutput{Type: OutputTypeText, Content: r.Output, ExecutionTime: &elapsedMs}
	if r.Failed() {
		out.Type = OutputTypeError
		out.Content = r.Error
	}
	return out
}
