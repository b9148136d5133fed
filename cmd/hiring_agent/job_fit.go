package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/hiring-coach/internal/coaching"
	"github.com/jonathan/hiring-coach/internal/types"
)

var jobFitCmd = &cobra.Command{
	Use:   "job-fit",
	Short: "Assess fit for a job posting",
	Long: `Assess how well a candidate fits a job posting read from a file or fetched from a URL. ` +
		`With --cv the candidate is described by a fresh CV gap analysis, otherwise by profession and level.`,
	RunE: runJobFit,
}

var (
	fitJobFile    string
	fitJobURL     string
	fitBrowser    bool
	fitCV         string
	fitProfession string
	fitLevel      string
	fitOut        string
)

func init() {
	jobFitCmd.Flags().StringVarP(&fitJobFile, "job-file", "j", "", "Job description file")
	jobFitCmd.Flags().StringVarP(&fitJobURL, "job-url", "u", "", "Job posting URL")
	jobFitCmd.Flags().BoolVar(&fitBrowser, "browser", false, "Render the posting with a headless browser")
	jobFitCmd.Flags().StringVarP(&fitCV, "cv", "f", "", "CV file (optional)")
	jobFitCmd.Flags().StringVarP(&fitProfession, "profession", "p", "", "Candidate profession")
	jobFitCmd.Flags().StringVarP(&fitLevel, "level", "l", types.DefaultExperienceLevel, "Candidate experience level")
	jobFitCmd.Flags().StringVarP(&fitOut, "out", "o", "", "Output file (stdout when empty)")

	_ = jobFitCmd.MarkFlagRequired("profession")
	jobFitCmd.MarkFlagsMutuallyExclusive("job-file", "job-url")
	jobFitCmd.MarkFlagsOneRequired("job-file", "job-url")

	rootCmd.AddCommand(jobFitCmd)
}

func runJobFit(cmd *cobra.Command, _ []string) error {
	ctx, stop := withSignals(cmd.Context())
	defer stop()

	report := &types.JobFitReport{ID: uuid.New(), SourceURL: fitJobURL}

	var description string
	if fitJobFile != "" {
		text, err := readDocument(fitJobFile)
		if err != nil {
			return err
		}
		description = text
	} else {
		text, meta, err := jobFetcher(cfg.Fetch)(ctx, fitJobURL, fitBrowser)
		if err != nil {
			return fmt.Errorf("failed to fetch job posting: %w", err)
		}
		description = text
		report.SourcePlatform = meta.Platform
		report.PostingHash = meta.Hash
	}

	client, err := newLLMClient(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()
	analyzer := coaching.NewAnalyzer(client)

	user := &types.User{Profession: fitProfession, ExperienceLevel: fitLevel}
	var analysis *types.CVAnalysis
	if fitCV != "" {
		text, err := readDocument(fitCV)
		if err != nil {
			return err
		}
		_, gap, err := analyzer.AnalyzeCV(ctx, text, fitProfession, fitLevel)
		if err != nil {
			return err
		}
		analysis = &types.CVAnalysis{Profession: fitProfession, Gaps: gap}
	}
	candidateSummary := coaching.CandidateSummary(analysis, user)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, reqs, err := analyzer.ExtractJobRequirements(gCtx, description)
		report.Requirements = reqs
		return err
	})
	g.Go(func() error {
		_, fit, err := analyzer.AnalyzeJobFit(gCtx, description, candidateSummary, fitProfession)
		report.Fit = fit
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	report.CreatedAt = time.Now().UTC()
	if p := summary(cmd); p != nil {
		p.PrintJobFit(report)
	}

	return writeJSON(cmd.OutOrStdout(), fitOut, report)
}
