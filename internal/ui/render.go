// Package ui renders status, diagnostic and orphan reports for the terminal.
// Styled output is reserved for interactive TTYs; pipes get plain text.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/imamik/eksops/internal/diagnostics"
	"github.com/imamik/eksops/internal/orchestrator"
	"github.com/imamik/eksops/internal/reaper"
)

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorAmber = lipgloss.Color("#f59e0b")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f9fafb")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	passStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	failStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorAmber)
)

// IsInteractive reports whether stdout is an interactive terminal.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// RenderStatus produces the cluster status summary.
func RenderStatus(obs *orchestrator.Observation, name, region string, styled bool) string {
	var b strings.Builder

	writeTitle(&b, fmt.Sprintf("eksops status: %s (%s)", name, region), styled)

	stateLine := fmt.Sprintf("  State: %s\n", obs.State)
	switch obs.State {
	case orchestrator.StateReady:
		b.WriteString(style(passStyle, stateLine, styled))
	case orchestrator.StateDegraded:
		b.WriteString(style(failStyle, stateLine, styled))
	case orchestrator.StateAbsent, orchestrator.StateGone:
		b.WriteString(style(dimStyle, stateLine, styled))
	default:
		b.WriteString(style(warnStyle, stateLine, styled))
	}

	if obs.Cluster != nil {
		b.WriteString(fmt.Sprintf("  Version:  %s\n", obs.Cluster.Version))
		b.WriteString(fmt.Sprintf("  Endpoint: %s\n", obs.Cluster.Endpoint))
		if obs.Cluster.VPCID != "" {
			b.WriteString(fmt.Sprintf("  VPC:      %s\n", obs.Cluster.VPCID))
		}
	}

	if len(obs.NodeGroups) > 0 {
		b.WriteString("\n")
		b.WriteString(style(sectionStyle, "  Node groups\n", styled))
		for _, ng := range obs.NodeGroups {
			line := fmt.Sprintf("    %-24s %-14s %d desired (min %d, max %d)\n",
				ng.Name, ng.Status, ng.DesiredNodes, ng.MinNodes, ng.MaxNodes)
			if ng.Status == "ACTIVE" {
				b.WriteString(style(passStyle, line, styled))
			} else {
				b.WriteString(style(warnStyle, line, styled))
			}
		}
	}

	return b.String()
}

// RenderDiagnostics produces the diagnostic report listing.
func RenderDiagnostics(report *diagnostics.Report, styled bool) string {
	var b strings.Builder

	writeTitle(&b, fmt.Sprintf("eksops diagnose: %s", report.ClusterName), styled)

	for _, check := range report.Checks {
		marker, markerStyle := "?", warnStyle
		switch check.Status {
		case diagnostics.StatusPass:
			marker, markerStyle = "✓", passStyle
		case diagnostics.StatusFail:
			marker, markerStyle = "✗", failStyle
		}

		b.WriteString("  ")
		b.WriteString(style(markerStyle, marker, styled))
		b.WriteString(fmt.Sprintf(" %-26s %s\n", check.Name, check.Evidence))
		if check.Status == diagnostics.StatusFail && check.Remediation != "" {
			b.WriteString(style(dimStyle, fmt.Sprintf("      remediation: %s\n", check.Remediation), styled))
		}
	}

	b.WriteString("\n")
	if report.Healthy() {
		b.WriteString(style(passStyle, "  All checks passed\n", styled))
	} else {
		b.WriteString(style(failStyle, "  Some checks failed\n", styled))
	}
	return b.String()
}

// RenderOrphans produces the orphaned resource listing.
func RenderOrphans(orphans []reaper.OrphanResource, clusterName string, styled bool) string {
	var b strings.Builder

	if len(orphans) == 0 {
		b.WriteString(style(passStyle, fmt.Sprintf("No orphaned resources found for cluster %s\n", clusterName), styled))
		return b.String()
	}

	writeTitle(&b, fmt.Sprintf("Orphaned resources for cluster %s", clusterName), styled)
	for _, o := range orphans {
		b.WriteString(style(warnStyle, fmt.Sprintf("  %-16s %s", o.Kind, o.ID), styled))
		b.WriteString(style(dimStyle, fmt.Sprintf("  (matched by %s)\n", o.MatchedBy), styled))
	}
	b.WriteString("\n")
	b.WriteString(style(dimStyle, "  These resources keep billing until removed. Review and delete them manually.\n", styled))
	return b.String()
}

func writeTitle(b *strings.Builder, title string, styled bool) {
	b.WriteString("\n")
	b.WriteString(style(titleStyle, "  "+title, styled))
	b.WriteString("\n")
	b.WriteString(style(dimStyle, "  "+strings.Repeat("═", len(title)), styled))
	b.WriteString("\n\n")
}

func style(s lipgloss.Style, text string, styled bool) string {
	if !styled {
		return text
	}
	return s.Render(text)
}
