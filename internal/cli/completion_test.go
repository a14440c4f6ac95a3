package cli

import (
	"bytes"
	"context"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// complete runs cobra's completion request for args and returns the
// candidates and the directive line.
func complete(t *testing.T, args ...string) ([]string, string) {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{cobra.ShellCompRequestCmd}, args...))
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("complete %v error = %v", args, err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	var candidates []string
	for _, l := range lines[:len(lines)-1] {
		candidates = append(candidates, strings.SplitN(l, "\t", 2)[0])
	}
	return candidates, lines[len(lines)-1]
}

func TestCompleteFormats(t *testing.T) {
	tests := []struct {
		name       string
		toComplete string
		want       []string
	}{
		{"first entry", "", []string{"json", "pdf", "png", "svg"}},
		{"after one format", "svg,", []string{"svg,json", "svg,pdf", "svg,png"}},
		{"after two formats", "svg,png,", []string{"svg,png,json", "svg,png,pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := complete(t, "layout", "--format", tt.toComplete)
			if !slices.Equal(got, tt.want) {
				t.Errorf("completions = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompleteThemes(t *testing.T) {
	got, _ := complete(t, "layout", "--theme", "")
	if !slices.Equal(got, []string{"dark", "light"}) {
		t.Errorf("completions = %v, want [dark light]", got)
	}
}

func TestCompleteItemFile(t *testing.T) {
	for _, name := range []string{"layout", "browse", "serve"} {
		got, directive := complete(t, name, "")
		if !slices.Equal(got, itemFileExts) || directive != ":8" {
			t.Errorf("%s completions = %v %s, want %v :8", name, got, directive, itemFileExts)
		}
	}

	got, directive := complete(t, "layout", "items.json", "")
	if len(got) != 0 || directive != ":4" {
		t.Errorf("second argument completions = %v %s, want none :4", got, directive)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			root := New(io.Discard, LogInfo).RootCommand()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})
			if err := root.ExecuteContext(context.Background()); err != nil {
				t.Fatalf("completion %s error = %v", shell, err)
			}
			if !strings.Contains(out.String(), appName) {
				t.Errorf("completion %s script does not mention %s", shell, appName)
			}
		})
	}

	if err := writeCompletion(New(io.Discard, LogInfo).RootCommand(), "tcsh", io.Discard); err == nil {
		t.Error("writeCompletion(tcsh) error = nil, want unsupported")
	}
}
