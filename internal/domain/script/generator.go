// Package script renders re-runnable install/uninstall/check scripts for
// posix-sh, PowerShell, and batch, composing each package's invocation via
// internal/compose so every argument is escaped exactly once (§4.J).
package script

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"
	"text/template"
	"time"

	"github.com/felixgeelhaar/santa/internal/compose"
	"github.com/felixgeelhaar/santa/internal/domain/pkgsource"
	"github.com/felixgeelhaar/santa/internal/domainerr"
)

// Format is the target scripting language.
type Format string

const (
	FormatPOSIXShell Format = "posix-sh"
	FormatPowerShell Format = "powershell"
	FormatBatch      Format = "batch"
)

// Extension returns the conventional file extension for f.
func (f Format) Extension() string {
	switch f {
	case FormatPowerShell:
		return "ps1"
	case FormatBatch:
		return "bat"
	default:
		return "sh"
	}
}

// DetectFormat picks the native script format for goos (as returned by
// runtime.GOOS), used when the caller does not specify one explicitly.
func DetectFormat(goos string) Format {
	if goos == "windows" {
		return FormatPowerShell
	}
	return FormatPOSIXShell
}

func targetShell(f Format) compose.ShellTarget {
	if f == FormatPOSIXShell {
		return compose.ShellPOSIX
	}
	return compose.ShellWindows
}

// Request describes one script-generation call: an operation against a
// single resolved source, covering a set of packages.
type Request struct {
	Operation     compose.Operation
	Source        pkgsource.Source
	Packages      []pkgsource.Package
	Format        Format // zero value auto-detects from runtime.GOOS
	SchemaVersion string
	RunID         string
	GeneratedAt   time.Time
}

// renderData is the template execution context; it never carries a time.Time
// directly so Generate's output is a pure function of its (already
// formatted) string inputs.
type renderData struct {
	Operation     compose.Operation
	SourceName    string
	ShellCommand  string
	SchemaVersion string
	GeneratedAt   string
	RunID         string
	PreHook       string
	Lines         []string
}

// Generate renders a complete script for req. The script is re-runnable:
// running it twice composes and issues the same invocations both times,
// modulo whatever side effects the underlying package manager itself has.
func Generate(req Request) (string, error) {
	format := req.Format
	if format == "" {
		format = DetectFormat(runtime.GOOS)
	}

	composer := compose.NewComposer(targetShell(format))

	var preHook string
	lines := make([]string, 0, len(req.Packages))
	for _, pkg := range req.Packages {
		cmd, err := composer.Compose(req.Source, []pkgsource.Package{pkg}, req.Operation)
		if err != nil {
			return "", err
		}
		if ov, ok := pkg.Overrides[req.Source.Name]; ok && ov.Pre != "" && preHook == "" {
			// The "pre" fragment is source-setup, not per-package; emit it
			// once even if more than one selected package names it.
			preHook = ov.Pre
			cmd = strings.TrimPrefix(cmd, ov.Pre+"\n")
		}
		lines = append(lines, decorateLine(cmd, format))
	}

	data := renderData{
		Operation:     req.Operation,
		SourceName:    req.Source.Name,
		ShellCommand:  req.Source.ShellCommand,
		SchemaVersion: req.SchemaVersion,
		GeneratedAt:   req.GeneratedAt.UTC().Format(time.RFC3339),
		RunID:         req.RunID,
		PreHook:       preHook,
		Lines:         lines,
	}

	var tmplText string
	switch format {
	case FormatPowerShell:
		tmplText = powershellTemplate
	case FormatBatch:
		tmplText = batchTemplate
	default:
		tmplText = posixTemplate
	}

	tmpl, err := template.New(string(format)).Parse(tmplText)
	if err != nil {
		return "", domainerr.New(domainerr.KindIO, "failed to parse script template").WithUnderlying(err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", domainerr.New(domainerr.KindIO, "failed to render script").WithUnderlying(err)
	}

	return buf.String(), nil
}

// decorateLine appends the format-specific halt-on-error suffix a single
// invocation line needs. posix-sh and PowerShell already halt on error via
// their strict-mode preamble; batch has none, so each line checks
// %errorlevel% itself.
func decorateLine(cmd string, format Format) string {
	if format != FormatBatch {
		return cmd
	}
	return fmt.Sprintf("%s\nif errorlevel 1 exit /b %%errorlevel%%", cmd)
}

// OutputFilename returns the conventional script filename for op against
// source, formatted per §6 ("install_<source>_<timestamp>.<ext>").
func OutputFilename(op compose.Operation, source string, generatedAt time.Time, format Format) string {
	return fmt.Sprintf("%s_%s_%d.%s", op, source, generatedAt.UTC().Unix(), format.Extension())
}
