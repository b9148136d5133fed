package evaluation

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-coach/internal/types"
)

// EvaluatedBy identifies the pipeline on stored results.
const EvaluatedBy = "AI Hiring Evaluation Crew"

// Feedback section headers.
const (
	HeaderEvaluation = "# COMPREHENSIVE CANDIDATE EVALUATION"
	HeaderResume     = "## RESUME ANALYSIS"
	HeaderInterview  = "## INTERVIEW EVALUATION"
	HeaderScoring    = "## FINAL SCORING AND RECOMMENDATION"
)

// MergeUnique concatenates lists in order, keeping the first occurrence of
// each exact string. Empty strings are dropped.
func MergeUnique(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, s := range list {
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// Assemble builds the evaluation result from the three stage outputs.
func Assemble(in Input,
	resume types.StageOutput[types.ResumeAnalysis],
	interview types.StageOutput[types.InterviewEvaluation],
	scoring types.StageOutput[types.ScoringRecord],
	at time.Time,
) *types.EvaluationResult {
	return &types.EvaluationResult{
		ID:             uuid.New(),
		CandidateID:    in.CandidateID,
		Position:       in.Position,
		OverallScore:   types.Clamp(scoring.Record.OverallScore.Float(), 0, 10),
		Criteria:       Criteria(scoring.Record.DetailedScores),
		Recommendation: types.ParseRecommendation(scoring.Record.Recommendation),
		Strengths: MergeUnique(
			resume.Record.Strengths,
			interview.Record.StrengthsDemonstrated,
			scoring.Record.KeyStrengths,
		),
		Weaknesses: MergeUnique(
			resume.Record.Weaknesses,
			interview.Record.AreasForImprovement,
			scoring.Record.MainConcerns,
		),
		DetailedFeedback: Feedback(resume.Raw, interview.Raw, scoring.Raw),
		ResumeAnalysis:   resume,
		Interview:        interview,
		Scoring:          scoring,
		EvaluatedAt:      at,
		EvaluatedBy:      EvaluatedBy,
	}
}

// Criteria converts the scoring stage's detailed scores, clamped to [0,10].
func Criteria(d types.DetailedScores) types.EvaluationCriteria {
	return types.EvaluationCriteria{
		TechnicalSkills:     types.Clamp(d.TechnicalSkills.Float(), 0, 10),
		Communication:       types.Clamp(d.Communication.Float(), 0, 10),
		ProblemSolving:      types.Clamp(d.ProblemSolving.Float(), 0, 10),
		CulturalFit:         types.Clamp(d.CulturalFit.Float(), 0, 10),
		ExperienceRelevance: types.Clamp(d.ExperienceRelevance.Float(), 0, 10),
	}
}

// Feedback joins the raw stage responses under the fixed section headers.
func Feedback(resumeRaw, interviewRaw, scoringRaw string) string {
	var sb strings.Builder
	sb.WriteString(HeaderEvaluation)
	sb.WriteString("\n\n")
	for _, section := range []struct{ header, body string }{
		{HeaderResume, resumeRaw},
		{HeaderInterview, interviewRaw},
		{HeaderScoring, scoringRaw},
	} {
		sb.WriteString(section.header)
		sb.WriteString("\n")
		sb.WriteString(strings.TrimSpace(section.body))
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}
