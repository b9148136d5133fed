package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-coach/internal/coaching"
	"github.com/jonathan/hiring-coach/internal/types"
)

var analyzeCVCmd = &cobra.Command{
	Use:   "analyze-cv",
	Short: "Analyze a CV for gaps against a profession",
	Long:  `Run CV gap analysis on a local file and, with --recommend, follow it with learning recommendations.`,
	RunE:  runAnalyzeCV,
}

var (
	cvFile       string
	cvProfession string
	cvLevel      string
	cvRecommend  bool
	cvBudget     string
	cvAvailable  string
	cvOut        string
)

func init() {
	analyzeCVCmd.Flags().StringVarP(&cvFile, "cv", "f", "", "CV file (pdf, docx, txt, md)")
	analyzeCVCmd.Flags().StringVarP(&cvProfession, "profession", "p", "", "Target profession")
	analyzeCVCmd.Flags().StringVarP(&cvLevel, "level", "l", types.DefaultExperienceLevel, "Experience level")
	analyzeCVCmd.Flags().BoolVar(&cvRecommend, "recommend", false, "Also generate learning recommendations")
	analyzeCVCmd.Flags().StringVar(&cvBudget, "budget", "", "Learning budget for recommendations")
	analyzeCVCmd.Flags().StringVar(&cvAvailable, "available-time", "", "Time available for recommendations")
	analyzeCVCmd.Flags().StringVarP(&cvOut, "out", "o", "", "Output file (stdout when empty)")

	_ = analyzeCVCmd.MarkFlagRequired("cv")
	_ = analyzeCVCmd.MarkFlagRequired("profession")

	rootCmd.AddCommand(analyzeCVCmd)
}

// cvReport is the analyze-cv output.
type cvReport struct {
	Profession      string                         `json:"profession"`
	GapAnalysis     types.GapAnalysis              `json:"gap_analysis"`
	Recommendations *types.LearningRecommendations `json:"recommendations,omitempty"`
}

func runAnalyzeCV(cmd *cobra.Command, _ []string) error {
	text, err := readDocument(cvFile)
	if err != nil {
		return err
	}

	ctx, stop := withSignals(cmd.Context())
	defer stop()

	client, err := newLLMClient(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	analyzer := coaching.NewAnalyzer(client)
	_, gap, err := analyzer.AnalyzeCV(ctx, text, cvProfession, cvLevel)
	if err != nil {
		return err
	}
	report := cvReport{Profession: cvProfession, GapAnalysis: gap}

	if cvRecommend {
		_, recs, err := analyzer.Recommend(ctx, gap, cvProfession, cvBudget, cvAvailable)
		if err != nil {
			return err
		}
		report.Recommendations = &recs
	}
	if p := summary(cmd); p != nil {
		p.PrintGapAnalysis(&report.GapAnalysis)
		p.PrintRecommendations(report.Recommendations)
	}

	return writeJSON(cmd.OutOrStdout(), cvOut, report)
}
