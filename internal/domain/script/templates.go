package script

// posixTemplate renders a POSIX shell script. pipefail is a bashism, not
// POSIX, so the strict-mode line uses only the options POSIX sh actually
// defines; "set -eu" is the closest POSIX equivalent to the spec's
// "set -euo pipefail or equivalent".
const posixTemplate = `#!/bin/sh
set -eu
# santa {{.Operation}} script
# schema version: {{.SchemaVersion}}
# generated: {{.GeneratedAt}}
# run: {{.RunID}}

if ! command -v {{.ShellCommand}} >/dev/null 2>&1; then
  echo "santa: {{.SourceName}} ({{.ShellCommand}}) not found on PATH" >&2
  exit 9
fi
{{if .PreHook}}
{{.PreHook}}
{{end}}
{{range .Lines}}{{.}}
{{end}}`

// powershellTemplate renders a Windows PowerShell script.
const powershellTemplate = `# santa {{.Operation}} script
# schema version: {{.SchemaVersion}}
# generated: {{.GeneratedAt}}
# run: {{.RunID}}
$ErrorActionPreference = "Stop"

if (-not (Get-Command {{.ShellCommand}} -ErrorAction SilentlyContinue)) {
  Write-Error "santa: {{.SourceName}} ({{.ShellCommand}}) not found on PATH"
  exit 9
}
{{if .PreHook}}
{{.PreHook}}
{{end}}
{{range .Lines}}{{.}}
{{end}}`

// batchTemplate renders a Windows cmd.exe batch script. Batch has no
// set -e equivalent, so each invocation line is followed by its own
// errorlevel check (added by the generator, not this template).
const batchTemplate = `@echo off
setlocal enabledelayedexpansion
rem santa {{.Operation}} script
rem schema version: {{.SchemaVersion}}
rem generated: {{.GeneratedAt}}
rem run: {{.RunID}}

where {{.ShellCommand}} >nul 2>nul
if errorlevel 1 (
  echo santa: {{.SourceName}} ({{.ShellCommand}}) not found on PATH 1>&2
  exit /b 9
)
{{if .PreHook}}
{{.PreHook}}
{{end}}
{{range .Lines}}{{.}}
{{end}}`
