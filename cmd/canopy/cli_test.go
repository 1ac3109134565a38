package main

import (
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/dreamware/canopy/internal/config"
	"github.com/dreamware/canopy/internal/overlay"
	"github.com/dreamware/canopy/internal/render"
)

// newTestCLI builds a CLI with a fixed RNG seed and a capture buffer.
func newTestCLI(t *testing.T) (*CLI, *strings.Builder) {
	t.Helper()
	cfg := config.Default()
	var out strings.Builder
	cli := NewCLI(
		overlay.New(cfg.Overlay.Salt),
		render.New(8, 4),
		rand.New(rand.NewSource(7)),
		strings.NewReader(""),
		&out,
	)
	return cli, &out
}

// TestRunLineAdd tests the add command
func TestRunLineAdd(t *testing.T) {
	cli, out := newTestCLI(t)

	if err := cli.RunLine("add"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !strings.Contains(out.String(), "added zone N02") {
		t.Errorf("Expected added-zone message, got %q", out.String())
	}
}

// TestRunLineDel tests delete paths
func TestRunLineDel(t *testing.T) {
	t.Run("successful delete", func(t *testing.T) {
		cli, out := newTestCLI(t)
		if err := cli.RunLine("add"); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		if err := cli.RunLine("del n02"); err != nil {
			t.Fatalf("del failed: %v", err)
		}
		if !strings.Contains(out.String(), "deleted zone N02") {
			t.Errorf("Expected deleted-zone message, got %q", out.String())
		}
	})

	t.Run("delete only zone", func(t *testing.T) {
		cli, out := newTestCLI(t)

		if err := cli.RunLine("del N01"); err == nil {
			t.Error("Expected error deleting the only zone")
		}
		if !strings.Contains(out.String(), "only zone") {
			t.Errorf("Expected only-zone message, got %q", out.String())
		}
	})

	t.Run("unknown zone", func(t *testing.T) {
		cli, out := newTestCLI(t)
		cli.RunLine("add")

		if err := cli.RunLine("del N77"); err == nil {
			t.Error("Expected error for unknown zone")
		}
		if !strings.Contains(out.String(), "no such zone N77") {
			t.Errorf("Expected no-such-zone message, got %q", out.String())
		}
	})

	t.Run("missing argument", func(t *testing.T) {
		cli, out := newTestCLI(t)

		if err := cli.RunLine("del"); err == nil {
			t.Error("Expected usage error")
		}
		if !strings.Contains(out.String(), "usage: del") {
			t.Errorf("Expected usage message, got %q", out.String())
		}
	})
}

// TestRunLinePutGet tests the put/get round trip through the CLI
func TestRunLinePutGet(t *testing.T) {
	cli, out := newTestCLI(t)

	if err := cli.RunLine("put alice 1"); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if !strings.Contains(out.String(), `put "alice"`) {
		t.Errorf("Expected put confirmation, got %q", out.String())
	}

	out.Reset()
	if err := cli.RunLine("get alice"); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "result: 1") {
		t.Errorf("Expected 'result: 1', got %q", got)
	}
	if !strings.Contains(got, "owner N01") {
		t.Errorf("Expected owner in output, got %q", got)
	}
	// The lookup view follows the result.
	if !strings.Contains(got, "TT") {
		t.Errorf("Expected target marker in lookup view, got %q", got)
	}
}

// TestRunLinePutMultiWordValue tests values containing spaces
func TestRunLinePutMultiWordValue(t *testing.T) {
	cli, out := newTestCLI(t)

	if err := cli.RunLine("put greeting hello can world"); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	out.Reset()
	if err := cli.RunLine("get greeting"); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !strings.Contains(out.String(), "result: hello can world") {
		t.Errorf("Expected multi-word value, got %q", out.String())
	}
}

// TestRunLineGetMissing tests the NOT FOUND path
func TestRunLineGetMissing(t *testing.T) {
	cli, out := newTestCLI(t)

	if err := cli.RunLine("get ghost"); err != nil {
		t.Fatalf("get on missing key should not error from RunLine: %v", err)
	}
	if !strings.Contains(out.String(), "NOT FOUND") {
		t.Errorf("Expected NOT FOUND, got %q", out.String())
	}
}

// TestRunLineStats tests the stats report
func TestRunLineStats(t *testing.T) {
	cli, out := newTestCLI(t)
	cli.RunLine("add")
	cli.RunLine("put alice 1")

	out.Reset()
	if err := cli.RunLine("stats"); err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "N01") || !strings.Contains(got, "N02") {
		t.Errorf("Expected both zones in stats, got %q", got)
	}
}

// TestRunLineRebalance tests rebalance output both ways
func TestRunLineRebalance(t *testing.T) {
	t.Run("with keys", func(t *testing.T) {
		cli, out := newTestCLI(t)
		cli.RunLine("put alice 1")

		out.Reset()
		if err := cli.RunLine("rebalance"); err != nil {
			t.Fatalf("rebalance failed: %v", err)
		}
		if !strings.Contains(out.String(), "added N02") {
			t.Errorf("Expected rebalance to add N02, got %q", out.String())
		}
	})

	t.Run("all empty", func(t *testing.T) {
		cli, out := newTestCLI(t)
		cli.RunLine("add")

		out.Reset()
		if err := cli.RunLine("rebalance"); err != nil {
			t.Fatalf("rebalance failed: %v", err)
		}
		if !strings.Contains(out.String(), "skipped") {
			t.Errorf("Expected skip message, got %q", out.String())
		}
	})
}

// TestRunLineMap tests the map command
func TestRunLineMap(t *testing.T) {
	cli, out := newTestCLI(t)

	if err := cli.RunLine("map"); err != nil {
		t.Fatalf("map failed: %v", err)
	}
	if !strings.Contains(out.String(), "01") {
		t.Errorf("Expected zone suffix in map, got %q", out.String())
	}
}

// TestRunLineExit tests that exit returns io.EOF
func TestRunLineExit(t *testing.T) {
	cli, _ := newTestCLI(t)

	if err := cli.RunLine("exit"); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

// TestRunLineUnknown tests unknown commands and blank lines
func TestRunLineUnknown(t *testing.T) {
	cli, out := newTestCLI(t)

	if err := cli.RunLine(""); err != nil {
		t.Errorf("Blank line should be ignored, got %v", err)
	}
	if err := cli.RunLine("frobnicate"); err == nil {
		t.Error("Expected error for unknown command")
	}
	if !strings.Contains(out.String(), "unknown command") {
		t.Errorf("Expected unknown-command message, got %q", out.String())
	}
}

// TestRunREPL drives the scanner loop end to end
func TestRunREPL(t *testing.T) {
	cfg := config.Default()
	var out strings.Builder
	cli := NewCLI(
		overlay.New(cfg.Overlay.Salt),
		render.New(8, 4),
		rand.New(rand.NewSource(7)),
		strings.NewReader("add\nput alice 1\nget alice\nexit\n"),
		&out,
	)

	if err := cli.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "added zone N02") {
		t.Errorf("Expected add output, got %q", got)
	}
	if !strings.Contains(got, "result: 1") {
		t.Errorf("Expected get result, got %q", got)
	}
	if !strings.Contains(got, "goodbye") {
		t.Errorf("Expected goodbye on exit, got %q", got)
	}
}
