package extract

import (
	"github.com/jonathan/hiring-coach/internal/types"
)

// Shape names, also used as schema names.
const (
	NameResumeAnalysis          = "resume_analysis"
	NameInterviewEvaluation     = "interview_evaluation"
	NameScoring                 = "scoring"
	NameGapAnalysis             = "gap_analysis"
	NameLearningRecommendations = "learning_recommendations"
	NameJobFit                  = "job_fit"
	NameJobRequirements         = "job_requirements"
	NameQuestionSet             = "question_set"
	NameAnswerEvaluation        = "answer_evaluation"
	NameFollowUpQuestion        = "follow_up_question"
	NamePerformanceAnalysis     = "performance_analysis"
	NamePracticePlan            = "practice_plan"
)

// ResumeAnalysis is the shape of the resume analysis stage.
// Diagnostic field: overall_assessment.
var ResumeAnalysis = Shape[types.ResumeAnalysis]{
	Name:    NameResumeAnalysis,
	Default: defaultResumeAnalysis,
	Fallback: func(raw string) types.ResumeAnalysis {
		rec := defaultResumeAnalysis()
		rec.OverallAssessment = raw
		return rec
	},
	Normalize: func(r *types.ResumeAnalysis) {
		if r.ExperienceYears < 0 {
			r.ExperienceYears = 0
		}
		r.Skills = orEmpty(r.Skills)
		r.Education = orEmpty(r.Education)
		r.WorkExperience = orEmpty(r.WorkExperience)
		r.Certifications = orEmpty(r.Certifications)
		r.Achievements = orEmpty(r.Achievements)
		r.RedFlags = orEmpty(r.RedFlags)
		r.Strengths = orEmpty(r.Strengths)
		r.Weaknesses = orEmpty(r.Weaknesses)
	},
}

// InterviewEvaluation is the shape of the interview evaluation stage.
// Scores default to 5 on a 0-10 scale. Diagnostic field: overall_assessment.
var InterviewEvaluation = Shape[types.InterviewEvaluation]{
	Name:    NameInterviewEvaluation,
	Default: defaultInterviewEvaluation,
	Fallback: func(raw string) types.InterviewEvaluation {
		rec := defaultInterviewEvaluation()
		rec.OverallAssessment = raw
		return rec
	},
	Normalize: func(r *types.InterviewEvaluation) {
		r.CommunicationScore = types.ClampScore(r.CommunicationScore, 0, 10)
		r.ProblemSolvingScore = types.ClampScore(r.ProblemSolvingScore, 0, 10)
		r.TechnicalKnowledgeScore = types.ClampScore(r.TechnicalKnowledgeScore, 0, 10)
		r.CulturalFitScore = types.ClampScore(r.CulturalFitScore, 0, 10)
		r.LeadershipScore = types.ClampScore(r.LeadershipScore, 0, 10)
		r.QuestionsAnsweredWell = orEmpty(r.QuestionsAnsweredWell)
		r.QuestionsStruggledWith = orEmpty(r.QuestionsStruggledWith)
		r.KeyInsights = orEmpty(r.KeyInsights)
		r.RedFlags = orEmpty(r.RedFlags)
		r.StrengthsDemonstrated = orEmpty(r.StrengthsDemonstrated)
		r.AreasForImprovement = orEmpty(r.AreasForImprovement)
	},
}

// Scoring is the shape of the final scoring stage.
// Diagnostic field: detailed_reasoning.
var Scoring = Shape[types.ScoringRecord]{
	Name:    NameScoring,
	Default: defaultScoring,
	Fallback: func(raw string) types.ScoringRecord {
		rec := defaultScoring()
		rec.DetailedReasoning = raw
		return rec
	},
	Normalize: func(r *types.ScoringRecord) {
		r.OverallScore = types.ClampScore(r.OverallScore, 0, 10)
		d := &r.DetailedScores
		d.TechnicalSkills = types.ClampScore(d.TechnicalSkills, 0, 10)
		d.Communication = types.ClampScore(d.Communication, 0, 10)
		d.ProblemSolving = types.ClampScore(d.ProblemSolving, 0, 10)
		d.CulturalFit = types.ClampScore(d.CulturalFit, 0, 10)
		d.ExperienceRelevance = types.ClampScore(d.ExperienceRelevance, 0, 10)
		r.Confidence = types.ClampScore(r.Confidence, 0, 1)
		r.KeyStrengths = orEmpty(r.KeyStrengths)
		r.MainConcerns = orEmpty(r.MainConcerns)
		r.NextSteps = orEmpty(r.NextSteps)
		r.RiskFactors = orEmpty(r.RiskFactors)
		r.OpportunityFactors = orEmpty(r.OpportunityFactors)
	},
}

// GapAnalysisFallbackSummary is the recommendations summary of an unparseable gap analysis.
const GapAnalysisFallbackSummary = "Unable to parse detailed recommendations"

// GapAnalysis is the shape of the CV gap analysis stage.
// Diagnostic field: career_stage_analysis.
var GapAnalysis = Shape[types.GapAnalysis]{
	Name:    NameGapAnalysis,
	Default: defaultGapAnalysis,
	Fallback: func(raw string) types.GapAnalysis {
		rec := defaultGapAnalysis()
		rec.CareerStageAnalysis = raw
		rec.RecommendationsSummary = GapAnalysisFallbackSummary
		return rec
	},
	Normalize: func(r *types.GapAnalysis) {
		r.OverallReadinessScore = types.ClampScore(r.OverallReadinessScore, 0, 100)
		r.TechnicalSkillsGaps = orEmpty(r.TechnicalSkillsGaps)
		r.MissingCertifications = orEmpty(r.MissingCertifications)
		r.ExperienceGaps = orEmpty(r.ExperienceGaps)
		r.SoftSkillsGaps = orEmpty(r.SoftSkillsGaps)
		r.EducationalGaps = orEmpty(r.EducationalGaps)
		r.Strengths = orEmpty(r.Strengths)
		r.PriorityImprovements = orEmpty(r.PriorityImprovements)
	},
}

// LearningRecommendations is the shape of the learning recommendation stage.
// Diagnostic field: summary.
var LearningRecommendations = Shape[types.LearningRecommendations]{
	Name:    NameLearningRecommendations,
	Default: defaultLearningRecommendations,
	Fallback: func(raw string) types.LearningRecommendations {
		rec := defaultLearningRecommendations()
		rec.Summary = raw
		return rec
	},
	Normalize: func(r *types.LearningRecommendations) {
		r.Certifications = orEmpty(r.Certifications)
		r.Courses = orEmpty(r.Courses)
		r.Projects = orEmpty(r.Projects)
		r.Books = orEmpty(r.Books)
		r.Communities = orEmpty(r.Communities)
		r.LearningPaths = orEmptyMap(r.LearningPaths)
		r.BudgetBreakdown = orEmptyMap(r.BudgetBreakdown)
		r.QuickWins = orEmpty(r.QuickWins)
	},
}

// JobFit is the shape of the job fit analysis. Diagnostic field: raw_text.
var JobFit = Shape[types.JobFit]{
	Name:    NameJobFit,
	Default: defaultJobFit,
	Fallback: func(raw string) types.JobFit {
		rec := defaultJobFit()
		rec.RawText = raw
		return rec
	},
	Normalize: func(r *types.JobFit) {
		e := &r.EligibilityAssessment
		e.OverallFitScore = types.ClampScore(e.OverallFitScore, 0, 100)
		e.SkillsMatchPercentage = types.ClampScore(e.SkillsMatchPercentage, 0, 100)
		e.ExperienceMatchPercentage = types.ClampScore(e.ExperienceMatchPercentage, 0, 100)
		e.EducationMatchPercentage = types.ClampScore(e.EducationMatchPercentage, 0, 100)
		if e.HiringProbability == "" {
			e.HiringProbability = "medium"
		}
		r.ApplicationAdvice.ReadinessPercentage = types.ClampScore(r.ApplicationAdvice.ReadinessPercentage, 0, 100)
		r.RequiredSkills = orEmpty(r.RequiredSkills)
		r.PreferredSkills = orEmpty(r.PreferredSkills)
		r.RequiredQualifications = orEmpty(r.RequiredQualifications)
		r.MatchingQualifications = orEmpty(r.MatchingQualifications)
		r.MissingCriticalSkills = orEmpty(r.MissingCriticalSkills)
		r.MissingPreferredSkills = orEmpty(r.MissingPreferredSkills)
		r.ImprovementRecommendations = orEmpty(r.ImprovementRecommendations)
		r.NextSteps = orEmpty(r.NextSteps)
	},
}

// JobRequirements is the shape of job requirement extraction. Diagnostic field: raw_text.
var JobRequirements = Shape[types.JobRequirements]{
	Name:    NameJobRequirements,
	Default: defaultJobRequirements,
	Fallback: func(raw string) types.JobRequirements {
		rec := defaultJobRequirements()
		rec.RawText = raw
		return rec
	},
	Normalize: func(r *types.JobRequirements) {
		r.TechnicalSkills = orEmpty(r.TechnicalSkills)
		r.SoftSkills = orEmpty(r.SoftSkills)
		r.EducationRequired = orEmpty(r.EducationRequired)
		r.ExperienceRequired.Types = orEmpty(r.ExperienceRequired.Types)
		r.Certifications = orEmpty(r.Certifications)
		r.ToolsAndTechnologies = orEmpty(r.ToolsAndTechnologies)
		r.KeyResponsibilities = orEmpty(r.KeyResponsibilities)
	},
}

// QuestionSet is the shape of interview question generation. Diagnostic field: raw_text.
var QuestionSet = Shape[types.QuestionSet]{
	Name:    NameQuestionSet,
	Default: defaultQuestionSet,
	Fallback: func(raw string) types.QuestionSet {
		rec := defaultQuestionSet()
		rec.RawText = raw
		return rec
	},
	Normalize: func(r *types.QuestionSet) {
		r.Questions = orEmpty(r.Questions)
		r.InterviewStructure.DifficultyDistribution = orEmptyMap(r.InterviewStructure.DifficultyDistribution)
		for i := range r.Questions {
			r.Questions[i].EvaluationCriteria = orEmpty(r.Questions[i].EvaluationCriteria)
			r.Questions[i].FollowUpQuestions = orEmpty(r.Questions[i].FollowUpQuestions)
		}
	},
}

// AnswerEvaluation is the shape of single-answer evaluation. Scores use a
// 0-10 scale. Diagnostic field: raw_text.
var AnswerEvaluation = Shape[types.AnswerEvaluation]{
	Name:    NameAnswerEvaluation,
	Default: defaultAnswerEvaluation,
	Fallback: func(raw string) types.AnswerEvaluation {
		rec := defaultAnswerEvaluation()
		rec.RawText = raw
		return rec
	},
	Normalize: func(r *types.AnswerEvaluation) {
		r.Score = types.ClampScore(r.Score, 0, 10)
		r.TechnicalAccuracy = types.ClampScore(r.TechnicalAccuracy, 0, 10)
		r.ClarityOfExplanation = types.ClampScore(r.ClarityOfExplanation, 0, 10)
		r.DepthOfKnowledge = types.ClampScore(r.DepthOfKnowledge, 0, 10)
		r.PracticalApplication = types.ClampScore(r.PracticalApplication, 0, 10)
		r.Strengths = orEmpty(r.Strengths)
		r.Weaknesses = orEmpty(r.Weaknesses)
		r.MissingPoints = orEmpty(r.MissingPoints)
		r.ImprovementSuggestions = orEmpty(r.ImprovementSuggestions)
	},
}

// FollowUpQuestion is the shape of adaptive follow-up generation. Diagnostic field: raw_text.
var FollowUpQuestion = Shape[types.FollowUpQuestion]{
	Name:    NameFollowUpQuestion,
	Default: defaultFollowUpQuestion,
	Fallback: func(raw string) types.FollowUpQuestion {
		rec := defaultFollowUpQuestion()
		rec.RawText = raw
		return rec
	},
	Normalize: func(r *types.FollowUpQuestion) {
		r.EvaluationCriteria = orEmpty(r.EvaluationCriteria)
	},
}

// PerformanceAnalysis is the shape of round performance analysis. The overall
// score uses a 0-100 scale and defaults to 50. Diagnostic field: raw_analysis.
var PerformanceAnalysis = Shape[types.PerformanceAnalysis]{
	Name:    NamePerformanceAnalysis,
	Default: defaultPerformanceAnalysis,
	Fallback: func(raw string) types.PerformanceAnalysis {
		rec := defaultPerformanceAnalysis()
		rec.RawAnalysis = raw
		return rec
	},
	Normalize: func(r *types.PerformanceAnalysis) {
		r.OverallScore = types.ClampScore(r.OverallScore, 0, 100)
		r.CategoryScores = orEmptyMap(r.CategoryScores)
		for k, v := range r.CategoryScores {
			r.CategoryScores[k] = types.ClampScore(v, 0, 100)
		}
		r.Strengths = orEmpty(r.Strengths)
		r.Weaknesses = orEmpty(r.Weaknesses)
		r.WeakTopics = orEmpty(r.WeakTopics)
		r.QuestionTypeAnalysis = orEmptyMap(r.QuestionTypeAnalysis)
		r.BehavioralPatterns = orEmpty(r.BehavioralPatterns)
		r.PreparationPlan = orEmptyMap(r.PreparationPlan)
		r.NextInterviewReadiness.AreasToPractice = orEmpty(r.NextInterviewReadiness.AreasToPractice)
	},
}

// PracticePlan is the shape of practice plan generation. Diagnostic field: raw_text.
var PracticePlan = Shape[types.PracticePlan]{
	Name:    NamePracticePlan,
	Default: defaultPracticePlan,
	Fallback: func(raw string) types.PracticePlan {
		rec := defaultPracticePlan()
		rec.RawText = raw
		return rec
	},
	Normalize: func(r *types.PracticePlan) {
		r.DailySchedule = orEmpty(r.DailySchedule)
		r.MockInterviewQuestions = orEmpty(r.MockInterviewQuestions)
		r.ProgressCheckpoints = orEmpty(r.ProgressCheckpoints)
		r.SuccessTips = orEmpty(r.SuccessTips)
	},
}

func defaultResumeAnalysis() types.ResumeAnalysis {
	return types.ResumeAnalysis{
		Skills:         []types.SkillAssessment{},
		Education:      []types.Education{},
		WorkExperience: []types.WorkExperience{},
		Certifications: []string{},
		Achievements:   []string{},
		RedFlags:       []string{},
		Strengths:      []string{},
		Weaknesses:     []string{},
	}
}

func defaultInterviewEvaluation() types.InterviewEvaluation {
	return types.InterviewEvaluation{
		CommunicationScore:      5,
		ProblemSolvingScore:     5,
		TechnicalKnowledgeScore: 5,
		CulturalFitScore:        5,
		LeadershipScore:         5,
		QuestionsAnsweredWell:   []string{},
		QuestionsStruggledWith:  []string{},
		KeyInsights:             []string{},
		RedFlags:                []string{},
		StrengthsDemonstrated:   []string{},
		AreasForImprovement:     []string{},
	}
}

func defaultScoring() types.ScoringRecord {
	return types.ScoringRecord{
		OverallScore: types.DefaultCriterionScore,
		DetailedScores: types.DetailedScores{
			TechnicalSkills:     types.DefaultCriterionScore,
			Communication:       types.DefaultCriterionScore,
			ProblemSolving:      types.DefaultCriterionScore,
			CulturalFit:         types.DefaultCriterionScore,
			ExperienceRelevance: types.DefaultCriterionScore,
		},
		Recommendation:     "maybe",
		Confidence:         0.5,
		KeyStrengths:       []string{},
		MainConcerns:       []string{},
		NextSteps:          []string{},
		RiskFactors:        []string{},
		OpportunityFactors: []string{},
	}
}

func defaultGapAnalysis() types.GapAnalysis {
	return types.GapAnalysis{
		CurrentLevel:          "unknown",
		OverallReadinessScore: 50,
		TechnicalSkillsGaps:   []types.SkillGap{},
		MissingCertifications: []types.CertificationGap{},
		ExperienceGaps:        []types.ExperienceGap{},
		SoftSkillsGaps:        []types.SoftSkillGap{},
		EducationalGaps:       []types.EducationalGap{},
		Strengths:             []string{},
		PriorityImprovements:  []types.PriorityImprovement{},
	}
}

func defaultLearningRecommendations() types.LearningRecommendations {
	return types.LearningRecommendations{
		Certifications:  []types.LearningResource{},
		Courses:         []types.LearningResource{},
		Projects:        []types.LearningResource{},
		Books:           []types.LearningResource{},
		Communities:     []types.LearningResource{},
		LearningPaths:   map[string]types.LearningPath{},
		BudgetBreakdown: map[string]any{},
		QuickWins:       []string{},
	}
}

func defaultJobFit() types.JobFit {
	return types.JobFit{
		RequiredSkills:         []types.JobSkill{},
		PreferredSkills:        []types.JobSkill{},
		RequiredQualifications: []types.Qualification{},
		EligibilityAssessment: types.EligibilityAssessment{
			OverallFitScore:   50,
			HiringProbability: "medium",
		},
		MatchingQualifications:     []types.Qualification{},
		MissingCriticalSkills:      []types.MissingSkill{},
		MissingPreferredSkills:     []types.MissingSkill{},
		ImprovementRecommendations: []types.ImprovementRecommendation{},
		NextSteps:                  []string{},
	}
}

func defaultJobRequirements() types.JobRequirements {
	return types.JobRequirements{
		TechnicalSkills:      []string{},
		SoftSkills:           []string{},
		EducationRequired:    []string{},
		ExperienceRequired:   types.ExperienceRequirement{Types: []string{}},
		Certifications:       []string{},
		ToolsAndTechnologies: []string{},
		KeyResponsibilities:  []string{},
	}
}

func defaultQuestionSet() types.QuestionSet {
	return types.QuestionSet{
		Questions: []types.Question{},
		InterviewStructure: types.InterviewStructure{
			DifficultyDistribution: map[string]types.Score{},
		},
	}
}

func defaultAnswerEvaluation() types.AnswerEvaluation {
	return types.AnswerEvaluation{
		Strengths:              []string{},
		Weaknesses:             []string{},
		MissingPoints:          []string{},
		ImprovementSuggestions: []string{},
	}
}

func defaultFollowUpQuestion() types.FollowUpQuestion {
	return types.FollowUpQuestion{EvaluationCriteria: []string{}}
}

func defaultPerformanceAnalysis() types.PerformanceAnalysis {
	return types.PerformanceAnalysis{
		OverallScore:         50,
		CategoryScores:       map[string]types.Score{},
		Strengths:            []types.PerformanceNote{},
		Weaknesses:           []types.PerformanceNote{},
		WeakTopics:           []types.WeakTopic{},
		QuestionTypeAnalysis: map[string]any{},
		BehavioralPatterns:   []map[string]any{},
		PreparationPlan:      map[string]any{},
		NextInterviewReadiness: types.Readiness{
			AreasToPractice: []string{},
		},
	}
}

func defaultPracticePlan() types.PracticePlan {
	return types.PracticePlan{
		DailySchedule:          []types.PracticeDay{},
		MockInterviewQuestions: []types.MockQuestion{},
		ProgressCheckpoints:    []types.Checkpoint{},
		SuccessTips:            []string{},
	}
}
