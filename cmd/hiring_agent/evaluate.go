package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-coach/internal/evaluation"
	"github.com/jonathan/hiring-coach/internal/logger"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a candidate from local files",
	Long:  `Run resume analysis, interview evaluation and final scoring on a resume and an interview transcript, and write the result as JSON.`,
	RunE:  runEvaluate,
}

var (
	evalResume     string
	evalTranscript string
	evalPosition   string
	evalOut        string
)

func init() {
	evaluateCmd.Flags().StringVarP(&evalResume, "resume", "r", "", "Resume file (pdf, docx, txt, md)")
	evaluateCmd.Flags().StringVarP(&evalTranscript, "transcript", "t", "", "Interview transcript file")
	evaluateCmd.Flags().StringVarP(&evalPosition, "position", "p", "", "Position applied for")
	evaluateCmd.Flags().StringVarP(&evalOut, "out", "o", "", "Output file (stdout when empty)")

	_ = evaluateCmd.MarkFlagRequired("resume")
	_ = evaluateCmd.MarkFlagRequired("transcript")
	_ = evaluateCmd.MarkFlagRequired("position")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	resume, err := readDocument(evalResume)
	if err != nil {
		return err
	}
	transcript, err := readDocument(evalTranscript)
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

	result, err := evaluation.NewPipeline(client).Run(ctx, evaluation.Input{
		CandidateID: uuid.New(),
		Position:    evalPosition,
		Resume:      resume,
		Transcript:  transcript,
	}, func(event evaluation.ProgressEvent) {
		logger.Info().Str("step", event.Step).Str("status", event.Status).Msg(event.Message)
	})
	if err != nil {
		return err
	}
	if p := summary(cmd); p != nil {
		p.PrintEvaluation(result)
	}

	return writeJSON(cmd.OutOrStdout(), evalOut, result)
}

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("result written")
	return nil
}
