package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/xostack/docsum/provider"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	faint  = color.New(color.Faint)
)

// brand renders a provider's display name in its brand colour.
func brand(d provider.Descriptor) string {
	if d.Color == "" || color.NoColor {
		return d.DisplayName
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(d.Color)).Render(d.DisplayName)
}

func success(w io.Writer, format string, args ...any) {
	green.Fprint(w, "✓ ")
	fmt.Fprintf(w, format+"\n", args...)
}

func warn(w io.Writer, format string, args ...any) {
	yellow.Fprintf(w, "! "+format+"\n", args...)
}

func failure(w io.Writer, format string, args ...any) {
	red.Fprint(w, "✗ ")
	fmt.Fprintf(w, format+"\n", args...)
}

// readSecret prompts for a secret. On an interactive terminal the input is
// hidden; otherwise one line is read from in.
func readSecret(in io.Reader, prompt io.Writer, label string) (string, error) {
	fmt.Fprintf(prompt, "%s: ", label)

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}
