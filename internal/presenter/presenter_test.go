package presenter

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lehigh-university-libraries/slideshow/internal/navigation"
	"github.com/lehigh-university-libraries/slideshow/internal/slides"
)

func TestParseKeys(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []navigation.KeyEvent
	}{
		{
			name:  "arrows",
			input: "\x1b[A\x1b[B\x1b[C\x1b[D",
			expected: []navigation.KeyEvent{
				{Key: navigation.KeyArrowUp},
				{Key: navigation.KeyArrowDown},
				{Key: navigation.KeyArrowRight},
				{Key: navigation.KeyArrowLeft},
			},
		},
		{
			name:  "application mode arrows",
			input: "\x1bOB",
			expected: []navigation.KeyEvent{
				{Key: navigation.KeyArrowDown},
			},
		},
		{
			name:  "paging and home end",
			input: "\x1b[5~\x1b[6~\x1b[H\x1b[4~",
			expected: []navigation.KeyEvent{
				{Key: navigation.KeyPageUp},
				{Key: navigation.KeyPageDown},
				{Key: navigation.KeyHome},
				{Key: navigation.KeyEnd},
			},
		},
		{
			name:  "control keys and runes",
			input: "\x05\x03 qé",
			expected: []navigation.KeyEvent{
				{Key: "e", Ctrl: true},
				{Key: "c", Ctrl: true},
				{Key: navigation.KeySpace},
				{Key: "q"},
				{Key: "é"},
			},
		},
		{
			name:  "unknown sequences dropped",
			input: "\x1b[99~\x1b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseKeys([]byte(tt.input))
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Unexpected events (-want +got):\n%s", diff)
			}
		})
	}
}

func deck() []slides.Record {
	return slides.Default().Records()
}

func newTestPresenter(export func()) *Presenter {
	p := New("Test deck", deck(), export)
	p.FrameDelay = 0
	p.Steps = 3
	return p
}

func TestRunNavigates(t *testing.T) {
	p := newTestPresenter(nil)
	var out bytes.Buffer

	in := strings.NewReader("\x1b[B\x1b[B \x1b[A")
	if err := p.Run(context.Background(), in, &out, Size{Cols: 80, Rows: 24}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := p.Current(); got != 2 {
		t.Errorf("Expected slide 2, got %d", got)
	}
	if !strings.Contains(out.String(), deck()[2].Title) {
		t.Error("Expected slide 2 title in output")
	}
}

func TestRunClampsAtEnds(t *testing.T) {
	p := newTestPresenter(nil)
	n := len(deck())

	keys := strings.Repeat("\x1b[6~", n+3)
	if err := p.Run(context.Background(), strings.NewReader(keys), &bytes.Buffer{}, Size{Cols: 80, Rows: 10}); err != nil {
		t.Fatal(err)
	}
	if got := p.Current(); got != n-1 {
		t.Errorf("Expected last slide %d, got %d", n-1, got)
	}

	if err := p.Run(context.Background(), strings.NewReader("\x1b[A\x1b[A"), &bytes.Buffer{}, Size{Cols: 80, Rows: 10}); err != nil {
		t.Fatal(err)
	}
	if got := p.Current(); got != 0 {
		t.Errorf("Expected first slide, got %d", got)
	}
}

func TestRunExportAndQuit(t *testing.T) {
	exports := 0
	p := newTestPresenter(func() { exports++ })

	in := strings.NewReader("\x05q\x1b[B")
	if err := p.Run(context.Background(), in, &bytes.Buffer{}, Size{Cols: 80, Rows: 24}); err != nil {
		t.Fatal(err)
	}
	if exports != 1 {
		t.Errorf("Expected one export, got %d", exports)
	}
	if p.Current() != 0 {
		t.Error("Expected keys after quit to be ignored")
	}
}

func TestStatusLine(t *testing.T) {
	p := newTestPresenter(nil)
	p.SetStatus("Exporting 33%")
	var out bytes.Buffer
	if err := p.Run(context.Background(), strings.NewReader(""), &out, Size{Cols: 80, Rows: 24}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Exporting 33%") {
		t.Error("Expected status line in output")
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	if err := New("empty", nil, nil).Run(context.Background(), strings.NewReader(""), &bytes.Buffer{}, Size{Cols: 80, Rows: 24}); err == nil {
		t.Error("Expected error for empty deck")
	}
	if err := newTestPresenter(nil).Run(context.Background(), strings.NewReader(""), &bytes.Buffer{}, Size{}); err == nil {
		t.Error("Expected error for zero rows")
	}
}

func TestRunTerminalRequiresTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := newTestPresenter(nil).RunTerminal(context.Background(), f, &bytes.Buffer{}); err != ErrNotTerminal {
		t.Errorf("Expected ErrNotTerminal, got %v", err)
	}
}

func TestAlign(t *testing.T) {
	if got := align("Marrakech", 20); got != "Marrakech" {
		t.Errorf("Expected left-to-right text unchanged, got %q", got)
	}
	got := align("مراكش", 10)
	if !strings.HasSuffix(got, "مراكش") || len(got)-len("مراكش") != 5 {
		t.Errorf("Expected right-aligned text, got %q", got)
	}
}
