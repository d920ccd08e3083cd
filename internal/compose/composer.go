package compose

import (
	"strings"

	"github.com/felixgeelhaar/santa/internal/domain/pkgsource"
	"github.com/felixgeelhaar/santa/internal/domainerr"
)

// Operation is the package-manager action a composed command performs.
type Operation string

const (
	OperationInstall   Operation = "install"
	OperationUninstall Operation = "uninstall"
	OperationCheck     Operation = "check"
)

// Composer assembles command strings for a single source. It holds no
// state beyond the target shell convention and is safe for concurrent use.
type Composer struct {
	Target ShellTarget
}

// NewComposer creates a Composer for target.
func NewComposer(target ShellTarget) *Composer {
	return &Composer{Target: target}
}

// Compose builds a single shell-ready command string for op against src,
// covering pkgs. Each package's name is resolved through its per-source
// override (if any), sanitized, prefixed with the source's
// prepend_to_package_name, and escaped, before being substituted into the
// source's template command. Any "pre" fragment attached to a package's
// override for this source is emitted first, one statement per line.
//
// Compose never runs anything; a non-nil error means the command was
// rejected and must not be passed to a shell.
func (c *Composer) Compose(src pkgsource.Source, pkgs []pkgsource.Package, op Operation) (string, error) {
	template, err := commandFor(src, op)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(pkgs))
	var pre []string
	for _, pkg := range pkgs {
		resolved, err := c.resolveName(src, pkg)
		if err != nil {
			return "", err
		}
		names = append(names, resolved)
		if ov, ok := pkg.Overrides[src.Name]; ok && ov.Pre != "" {
			pre = append(pre, ov.Pre)
		}
	}

	joined := strings.Join(names, " ")

	var cmd string
	switch {
	case strings.Contains(template, "{package}"):
		cmd = strings.ReplaceAll(template, "{package}", joined)
	case joined != "":
		cmd = template + " " + joined
	default:
		cmd = template
	}

	var b strings.Builder
	for _, hook := range pre {
		b.WriteString(hook)
		b.WriteString("\n")
	}
	b.WriteString(cmd)
	return b.String(), nil
}

// resolveName applies the full per-package sanitize -> override ->
// prepend -> escape pipeline for a single package under src.
func (c *Composer) resolveName(src pkgsource.Source, pkg pkgsource.Package) (string, error) {
	if _, err := Sanitize(pkg.Name); err != nil {
		return "", err
	}
	name := pkg.NameFor(src.Name)

	sanitized, err := Sanitize(name)
	if err != nil {
		return "", err
	}

	if src.PrependToPackageName != "" {
		sanitized = src.PrependToPackageName + sanitized
	}

	return Escape(sanitized, c.Target), nil
}

// commandFor selects src's template command for op.
func commandFor(src pkgsource.Source, op Operation) (string, error) {
	switch op {
	case OperationInstall:
		if src.InstallCommand == "" {
			return "", missingCommand(src.Name, "install_command")
		}
		return src.InstallCommand, nil
	case OperationUninstall:
		if src.UninstallCommand == "" {
			return "", missingCommand(src.Name, "uninstall_command")
		}
		return src.UninstallCommand, nil
	case OperationCheck:
		if src.CheckCommand == "" {
			return "", missingCommand(src.Name, "check_command")
		}
		return src.CheckCommand, nil
	default:
		return "", domainerr.New(domainerr.KindValidation, "unknown composer operation").WithContext(string(op))
	}
}

func missingCommand(source, field string) error {
	return domainerr.New(domainerr.KindConfig, "source is missing a required command template").
		WithContext(source + "." + field)
}
