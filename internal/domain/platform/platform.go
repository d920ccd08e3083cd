// Package platform detects the running OS/architecture/Linux distro and
// probes PATH for package-manager commands, so the layered config resolver
// and planner can pick the right platform override and skip sources whose
// backend isn't installed (§4.N).
package platform

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/felixgeelhaar/santa/internal/domain/pkgsource"
)

// OS is the detected operating system family.
type OS string

const (
	OSDarwin  OS = "darwin"
	OSLinux   OS = "linux"
	OSWindows OS = "windows"
	OSUnknown OS = "unknown"
)

// Environment narrows a Linux OS detection to native, WSL, or a container,
// since source availability (and occasionally a command's exact behavior)
// differs across them even though runtime.GOOS reports "linux" for all
// three.
type Environment string

const (
	EnvNative Environment = "native"
	EnvWSL1   Environment = "wsl1"
	EnvWSL2   Environment = "wsl2"
	EnvDocker Environment = "docker"
)

// Platform is the detected execution context: what PlatformMatch.Matches
// needs (os, arch, distro) plus a cached PATH probe.
type Platform struct {
	os          OS
	arch        string
	environment Environment
	distro      string // /etc/os-release ID, e.g. "ubuntu", "fedora", "arch"

	probeMu sync.Mutex
	probed  map[string]bool
}

var (
	once      sync.Once
	detected  *Platform
	overrides *Platform // set by SetTestPlatform, nil outside tests
)

// Detect returns the process's platform, detected once and cached for the
// lifetime of the process.
func Detect() *Platform {
	if overrides != nil {
		return overrides
	}
	once.Do(func() {
		detected = detect()
	})
	return detected
}

// SetTestPlatform overrides Detect's result; pass nil to restore real
// detection.
func SetTestPlatform(p *Platform) {
	overrides = p
}

// New constructs a Platform directly, for tests and for SetTestPlatform
// callers that already know the values they want.
func New(os OS, arch string, env Environment, distro string) *Platform {
	return &Platform{os: os, arch: arch, environment: env, distro: distro, probed: map[string]bool{}}
}

func detect() *Platform {
	p := &Platform{arch: runtime.GOARCH, environment: EnvNative, probed: map[string]bool{}}

	switch runtime.GOOS {
	case "darwin":
		p.os = OSDarwin
	case "linux":
		p.os = OSLinux
		p.distro = readDistroID()
		p.environment = detectLinuxEnvironment()
	case "windows":
		p.os = OSWindows
	default:
		p.os = OSUnknown
	}

	return p
}

// readDistroID reads the "ID=" line of /etc/os-release, the same field
// PlatformOverride.Match.Distro is expected to compare against.
func readDistroID() string {
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if id, ok := strings.CutPrefix(line, "ID="); ok {
			return strings.Trim(id, `"`)
		}
	}
	return ""
}

func detectLinuxEnvironment() Environment {
	if isWSL() {
		if _, err := os.Stat("/run/WSL"); err == nil {
			return EnvWSL2
		}
		return EnvWSL1
	}
	if isDocker() {
		return EnvDocker
	}
	return EnvNative
}

func isWSL() bool {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	v := strings.ToLower(string(data))
	return strings.Contains(v, "microsoft") || strings.Contains(v, "wsl")
}

func isDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	data, err := os.ReadFile("/proc/1/cgroup")
	if err != nil {
		return false
	}
	return strings.Contains(string(data), "docker") || strings.Contains(string(data), "containerd")
}

// OS returns the detected operating system family.
func (p *Platform) OS() OS { return p.os }

// Arch returns the detected architecture (runtime.GOARCH on real detection).
func (p *Platform) Arch() string { return p.arch }

// Environment returns native, a WSL version, or a container runtime.
func (p *Platform) Environment() Environment { return p.environment }

// Distro returns the Linux distribution ID (empty on non-Linux, or when
// /etc/os-release has no ID= line).
func (p *Platform) Distro() string { return p.distro }

// IsWindows reports whether the platform is Windows.
func (p *Platform) IsWindows() bool { return p.os == OSWindows }

// IsWSL reports whether the platform is Linux running under WSL.
func (p *Platform) IsWSL() bool { return p.environment == EnvWSL1 || p.environment == EnvWSL2 }

// String renders a human-readable "os/arch[/environment][/distro]" form,
// used in diagnostics output.
func (p *Platform) String() string {
	parts := []string{string(p.os), p.arch}
	if p.environment != EnvNative {
		parts = append(parts, string(p.environment))
	}
	if p.distro != "" {
		parts = append(parts, p.distro)
	}
	return strings.Join(parts, "/")
}

// HasCommand reports whether name resolves on PATH, caching the result for
// the Platform's lifetime: the planner probes a source's shell_command on
// every Status call, and exec.LookPath is a filesystem walk.
func (p *Platform) HasCommand(name string) bool {
	p.probeMu.Lock()
	defer p.probeMu.Unlock()

	if got, ok := p.probed[name]; ok {
		return got
	}
	_, err := exec.LookPath(name)
	ok := err == nil
	p.probed[name] = ok
	return ok
}

// ResolveSource applies src's platform overrides through
// pkgsource.Source.Resolved, passing this Platform's distro. An override's
// OS and architecture are matched against runtime.GOOS/GOARCH, not against
// this Platform's OS and Arch.
func (p *Platform) ResolveSource(src pkgsource.Source) pkgsource.Source {
	return src.Resolved(p.distro)
}

// Available filters sources down to those whose (platform-resolved)
// shell_command resolves on PATH, preserving order, so callers can skip
// backends that aren't installed rather than failing every check/install
// call against them.
func (p *Platform) Available(sources map[string]pkgsource.Source, order []string) []string {
	var out []string
	for _, name := range order {
		src, ok := sources[name]
		if !ok {
			continue
		}
		if p.HasCommand(p.ResolveSource(src).ShellCommand) {
			out = append(out, name)
		}
	}
	return out
}
