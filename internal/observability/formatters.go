// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/hiring-coach/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		line = truncate(line, boxWidth-4)
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// writeList writes up to limit items under heading, noting how many were left out.
func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	for _, item := range items[:min(len(items), limit)] {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
	if len(items) > limit {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-limit)
	}
	sb.WriteString("\n")
}

// PrintEvaluation outputs the recommendation, criteria and findings of a
// candidate evaluation.
func (p *Printer) PrintEvaluation(result *types.EvaluationResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Position:        %s\n", result.Position)
	fmt.Fprintf(&sb, "Overall score:   %.1f / 10\n", result.OverallScore)
	fmt.Fprintf(&sb, "Recommendation:  %s\n\n", result.Recommendation)

	c := result.Criteria
	sb.WriteString("Criteria:\n")
	for _, row := range []struct {
		name  string
		score float64
	}{
		{"Technical skills", c.TechnicalSkills},
		{"Communication", c.Communication},
		{"Problem solving", c.ProblemSolving},
		{"Cultural fit", c.CulturalFit},
		{"Experience relevance", c.ExperienceRelevance},
	} {
		fmt.Fprintf(&sb, "  %-22s %4.1f\n", row.name, row.score)
	}
	sb.WriteString("\n")

	writeList(&sb, "Strengths", result.Strengths, maxItemsToShow)
	writeList(&sb, "Weaknesses", result.Weaknesses, maxItemsToShow)

	p.printBox("CANDIDATE EVALUATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGapAnalysis outputs a summary of a CV gap analysis.
func (p *Printer) PrintGapAnalysis(gap *types.GapAnalysis) {
	if gap == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Current level:  %s\n", gap.CurrentLevel)
	fmt.Fprintf(&sb, "Readiness:      %.0f / 100\n\n", gap.OverallReadinessScore.Float())

	skills := make([]string, 0, len(gap.TechnicalSkillsGaps))
	for _, s := range gap.TechnicalSkillsGaps {
		if s.Importance != "" {
			skills = append(skills, fmt.Sprintf("%s (%s)", s.Skill, s.Importance))
		} else {
			skills = append(skills, s.Skill)
		}
	}
	writeList(&sb, "Technical gaps", skills, maxItemsToShow)

	priorities := make([]string, 0, len(gap.PriorityImprovements))
	for _, pi := range gap.PriorityImprovements {
		priorities = append(priorities, fmt.Sprintf("%s [%g]", pi.Area, pi.Priority.Float()))
	}
	writeList(&sb, "Priorities", priorities, 3)
	writeList(&sb, "Strengths", gap.Strengths, 3)

	p.printBox("CV GAP ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecommendations outputs the quick wins and resource counts of a
// learning plan.
func (p *Printer) PrintRecommendations(recs *types.LearningRecommendations) {
	if recs == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Certifications: %d  Courses: %d  Projects: %d\n",
		len(recs.Certifications), len(recs.Courses), len(recs.Projects))
	fmt.Fprintf(&sb, "Books: %d  Communities: %d\n\n", len(recs.Books), len(recs.Communities))
	writeList(&sb, "Quick wins", recs.QuickWins, maxItemsToShow)
	if recs.Summary != "" {
		sb.WriteString(recs.Summary)
	}

	p.printBox("LEARNING RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobFit outputs the headline numbers of a job fit report.
func (p *Printer) PrintJobFit(report *types.JobFitReport) {
	if report == nil {
		return
	}

	fit := report.Fit
	e := fit.EligibilityAssessment
	var sb strings.Builder
	title := fit.JobAnalysis.JobTitle
	if title == "" {
		title = report.Requirements.JobTitle
	}
	fmt.Fprintf(&sb, "Role:                %s\n", title)
	if report.SourceURL != "" {
		fmt.Fprintf(&sb, "Source:              %s\n", report.SourceURL)
	}
	fmt.Fprintf(&sb, "Overall fit:         %.0f%%\n", e.OverallFitScore.Float())
	fmt.Fprintf(&sb, "Skills match:        %.0f%%\n", e.SkillsMatchPercentage.Float())
	fmt.Fprintf(&sb, "Experience match:    %.0f%%\n", e.ExperienceMatchPercentage.Float())
	fmt.Fprintf(&sb, "Hiring probability:  %s\n\n", e.HiringProbability)

	missing := make([]string, 0, len(fit.MissingCriticalSkills))
	for _, m := range fit.MissingCriticalSkills {
		missing = append(missing, m.Skill)
	}
	writeList(&sb, "Missing critical skills", missing, maxItemsToShow)

	p.printBox("JOB FIT", strings.TrimSuffix(sb.String(), "\n"))
}
