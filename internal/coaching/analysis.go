// Package coaching implements CV gap analysis, learning recommendations,
// job fit analysis and the user dashboard.
package coaching

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/hiring-coach/internal/extract"
	"github.com/jonathan/hiring-coach/internal/llm"
	"github.com/jonathan/hiring-coach/internal/logger"
	"github.com/jonathan/hiring-coach/internal/prompts"
	"github.com/jonathan/hiring-coach/internal/types"
)

// Defaults applied to recommendation requests.
const (
	DefaultAvailableTime = "flexible"
	DefaultBudget        = "not specified"
)

// Analyzer runs the single-stage coaching calls.
type Analyzer struct {
	client llm.Client
}

// NewAnalyzer creates an Analyzer over client.
func NewAnalyzer(client llm.Client) *Analyzer {
	return &Analyzer{client: client}
}

// AnalyzeCV identifies the gaps in a CV for the given profession.
func (a *Analyzer) AnalyzeCV(ctx context.Context, cvText, profession, experienceLevel string) (string, types.GapAnalysis, error) {
	if experienceLevel == "" {
		experienceLevel = types.DefaultExperienceLevel
	}
	raw, err := a.generate(ctx, "cv-gap-analysis", llm.TierStandard, map[string]string{
		"Profession":      profession,
		"ExperienceLevel": experienceLevel,
		"CVContent":       cvText,
	})
	if err != nil {
		return "", types.GapAnalysis{}, err
	}
	return raw, extract.Decode(ctx, raw, extract.GapAnalysis), nil
}

// Recommend suggests learning resources for the gaps in gap. Empty
// availableTime and budget take their defaults.
func (a *Analyzer) Recommend(ctx context.Context, gap types.GapAnalysis, profession, budget, availableTime string) (string, types.LearningRecommendations, error) {
	if availableTime == "" {
		availableTime = DefaultAvailableTime
	}
	if budget == "" {
		budget = DefaultBudget
	}

	technical := make([]string, 0, len(gap.TechnicalSkillsGaps))
	for _, g := range gap.TechnicalSkillsGaps {
		technical = append(technical, describe(g.Skill, g.Importance, g.CurrentLevel, g.RequiredLevel))
	}
	certs := make([]string, 0, len(gap.MissingCertifications))
	for _, g := range gap.MissingCertifications {
		certs = append(certs, describe(g.Certification, g.Importance, g.Provider))
	}
	priorities := make([]string, 0, len(gap.PriorityImprovements))
	for _, p := range gap.PriorityImprovements {
		priorities = append(priorities, describe(p.Area, fmt.Sprintf("priority %g", p.Priority.Float()), p.EstimatedTime))
	}

	raw, err := a.generate(ctx, "learning-recommendations", llm.TierStandard, map[string]string{
		"Profession":           profession,
		"CurrentLevel":         gap.CurrentLevel,
		"AvailableTime":        availableTime,
		"Budget":               budget,
		"TechnicalGaps":        bulletList(technical),
		"CertificationGaps":    bulletList(certs),
		"PriorityImprovements": bulletList(priorities),
	})
	if err != nil {
		return "", types.LearningRecommendations{}, err
	}
	return raw, extract.Decode(ctx, raw, extract.LearningRecommendations), nil
}

// AnalyzeJobFit assesses a candidate summary against a job description.
func (a *Analyzer) AnalyzeJobFit(ctx context.Context, jobDescription, candidateSummary, profession string) (string, types.JobFit, error) {
	raw, err := a.generate(ctx, "job-fit-analysis", llm.TierStandard, map[string]string{
		"Profession":       profession,
		"JobDescription":   jobDescription,
		"CandidateSummary": candidateSummary,
	})
	if err != nil {
		return "", types.JobFit{}, err
	}
	return raw, extract.Decode(ctx, raw, extract.JobFit), nil
}

// ExtractJobRequirements lists the requirements stated in a job description.
func (a *Analyzer) ExtractJobRequirements(ctx context.Context, jobDescription string) (string, types.JobRequirements, error) {
	raw, err := a.generate(ctx, "job-requirements", llm.TierLite, map[string]string{
		"JobDescription": jobDescription,
	})
	if err != nil {
		return "", types.JobRequirements{}, err
	}
	return raw, extract.Decode(ctx, raw, extract.JobRequirements), nil
}

func (a *Analyzer) generate(ctx context.Context, key string, tier llm.ModelTier, data map[string]string) (string, error) {
	prompt, err := prompts.Render(prompts.CoachingFile, key, data)
	if err != nil {
		return "", err
	}
	logger.Ctx(ctx).Debug().Str("prompt", key).Int("prompt_length", len(prompt)).
		Str("model", a.client.GetModel(tier)).Msg("calling collaborator")

	raw, err := a.client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, upstream(key, err))
	}
	return raw, nil
}

// CandidateSummary describes the candidate for a job fit prompt: from the
// CV analysis when there is one, else from the user profile, else a fixed
// note.
func CandidateSummary(analysis *types.CVAnalysis, user *types.User) string {
	switch {
	case analysis != nil:
		g := analysis.Gaps
		profession := analysis.Profession
		if profession == "" && user != nil {
			profession = user.Profession
		}
		technical := make([]string, 0, len(g.TechnicalSkillsGaps))
		for _, s := range g.TechnicalSkillsGaps {
			technical = append(technical, s.Skill)
		}
		experience := make([]string, 0, len(g.ExperienceGaps))
		for _, e := range g.ExperienceGaps {
			experience = append(experience, firstNonEmpty(e.Description, e.GapType))
		}
		certs := make([]string, 0, len(g.MissingCertifications))
		for _, c := range g.MissingCertifications {
			certs = append(certs, c.Certification)
		}
		return prompts.Format(prompts.MustGet(prompts.CoachingFile, "candidate-from-cv"), map[string]string{
			"Profession":        profession,
			"CurrentLevel":      g.CurrentLevel,
			"ReadinessScore":    fmt.Sprintf("%g", g.OverallReadinessScore.Float()),
			"Strengths":         inlineList(g.Strengths),
			"TechnicalGaps":     inlineList(technical),
			"ExperienceGaps":    inlineList(experience),
			"CertificationGaps": inlineList(certs),
		})
	case user != nil:
		return prompts.Format(prompts.MustGet(prompts.CoachingFile, "candidate-from-profile"), map[string]string{
			"Name":            user.Name,
			"Profession":      user.Profession,
			"ExperienceLevel": firstNonEmpty(user.ExperienceLevel, types.DefaultExperienceLevel),
		})
	default:
		return prompts.MustGet(prompts.CoachingFile, "candidate-none")
	}
}

func describe(name string, details ...string) string {
	var parts []string
	for _, d := range details {
		if d = strings.TrimSpace(d); d != "" {
			parts = append(parts, d)
		}
	}
	if len(parts) == 0 {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, strings.Join(parts, ", "))
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "- none identified"
	}
	return "- " + strings.Join(items, "\n- ")
}

func inlineList(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
