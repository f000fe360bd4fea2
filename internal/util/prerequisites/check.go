// Package prerequisites verifies required client tools and cloud credentials
// before any mutating action. A late credential failure can leave a cluster
// half-created, so the full check runs ahead of orchestration.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool represents a client tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string
}

// DefaultTools returns the default set of tools to check. kubectl is required
// so an operator can follow diagnostic remediation hints by hand.
func DefaultTools() []Tool {
	return []Tool{
		{
			Name:        "kubectl",
			Required:    true,
			Description: "Required for inspecting workloads and following remediation hints",
			InstallURL:  "https://kubernetes.io/docs/tasks/tools/",
		},
	}
}

// OptionalTools returns tools that are useful but not required. All cloud
// calls go through the SDK, so the aws CLI is convenience only.
func OptionalTools() []Tool {
	return []Tool{
		{
			Name:        "aws",
			Required:    false,
			Description: "Useful for manual inspection of cluster resources",
			InstallURL:  "https://docs.aws.amazon.com/cli/latest/userguide/getting-started-install.html",
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckReport contains the results of checking multiple tools.
type CheckReport struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckReport) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error naming every missing required tool with its
// installation URL, or nil.
func (r *CheckReport) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallURL))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Check verifies that the specified tools are available.
func Check(tools []Tool) *CheckReport {
	report := &CheckReport{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		path, err := exec.LookPath(tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
			// Best effort; a tool without a version probe still counts.
			result.Version = toolVersion(tool.Name)
		} else {
			report.Missing = append(report.Missing, tool)
		}

		report.Results = append(report.Results, result)
	}

	return report
}

// CheckDefault checks the default required tools.
func CheckDefault() *CheckReport {
	return Check(DefaultTools())
}

// CheckAll checks all tools (default + optional).
func CheckAll() *CheckReport {
	defaults := DefaultTools()
	optional := OptionalTools()
	all := make([]Tool, 0, len(defaults)+len(optional))
	all = append(all, defaults...)
	all = append(all, optional...)
	return Check(all)
}

// toolVersion attempts to get the version of a tool. Returns empty string if
// the version cannot be determined.
func toolVersion(name string) string {
	versionFlags := []string{"--version", "version", "-v"}

	for _, flag := range versionFlags {
		// #nosec G204 - name comes from trusted Tool definitions, not user input
		cmd := exec.Command(name, flag)
		output, err := cmd.Output()
		if err == nil {
			lines := strings.Split(string(output), "\n")
			if len(lines) > 0 {
				return strings.TrimSpace(lines[0])
			}
		}
	}

	return ""
}
