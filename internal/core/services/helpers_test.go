package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/custodia-labs/marinebook/internal/core/domain"
	"github.com/custodia-labs/marinebook/internal/core/ports/driven"
)

var errStoreDown = errors.New("store unavailable")

// failingStore refuses every operation.
type failingStore struct {
	err error
}

func (f *failingStore) Name() string { return "failing" }
func (f *failingStore) Get(_ context.Context, _ string) (string, bool, error) {
	return "", false, f.err
}
func (f *failingStore) Set(_ context.Context, _, _ string) error { return f.err }
func (f *failingStore) Delete(_ context.Context, _ string) error { return f.err }

// mockRuntime runs a callback in place of an interpreter.
type mockRuntime struct {
	mu    sync.Mutex
	calls []string
	run   func(ctx context.Context, source string, stdout io.Writer) (driven.RunResult, error)
}

func (m *mockRuntime) Run(ctx context.Context, source string, stdout io.Writer) (driven.RunResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, source)
	m.mu.Unlock()
	if m.run == nil {
		_, err := io.WriteString(stdout, "ran: "+source+"\n")
		return driven.RunResult{}, err
	}
	return m.run(ctx, source, stdout)
}

func (m *mockRuntime) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// recordingFileSink keeps written files in memory.
type recordingFileSink struct {
	files map[string]string
	err   error
}

func (r *recordingFileSink) Write(_ context.Context, filename, _ string, content []byte) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if r.files == nil {
		r.files = map[string]string{}
	}
	r.files[filename] = string(content)
	return "/downloads/" + filename, nil
}

var fixedTime = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// testNotebook builds a small notebook with one markdown and two code cells.
func testNotebook() domain.Notebook {
	count := 2
	elapsed := int64(12)
	collapsed := true
	return domain.Notebook{
		ID:   "nb-1",
		Name: "Survey 2024",
		Cells: []domain.Cell{
			{ID: "c1", Type: domain.CellTypeMarkdown, Content: "# Title\n\nSome notes"},
			{
				ID:      "c2",
				Type:    domain.CellTypeCode,
				Content: "fmt.Println(\"hi\")\nfmt.Println(\"there\")",
				Output: &domain.CellOutput{
					Type:          domain.OutputTypeText,
					Content:       "hi\nthere",
					ExecutionTime: &elapsed,
				},
				Metadata: domain.CellMetadata{ExecutionCount: &count, Collapsed: &collapsed},
			},
			{
				ID:      "c3",
				Type:    domain.CellTypeCode,
				Content: "boom()",
				Output:  &domain.CellOutput{Type: domain.OutputTypeError, Content: "undefined: boom"},
			},
		},
		CreatedAt: fixedTime,
		UpdatedAt: fixedTime.Add(time.Hour),
		Metadata:  domain.NotebookMetadata{Language: "go", KernelName: "yaegi"},
	}
}
