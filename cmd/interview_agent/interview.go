package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/observability"
	"github.com/jonathan/interview-agent/internal/rubric"
	"github.com/jonathan/interview-agent/internal/scoring"
	"github.com/jonathan/interview-agent/internal/session"
	"github.com/jonathan/interview-agent/internal/sink"
	"github.com/jonathan/interview-agent/internal/types"
)

var (
	interviewDataset    string
	interviewIndex      int
	interviewCompetency string
	interviewRounds     int
	interviewMode       string
	interviewOutfile    string
	interviewModel      string
	interviewTimeoutSec int
	interviewConfigPath string
	interviewVerbose    bool
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an interactive mock interview in the terminal",
	Long: `Run a mock interview against one sample from the dataset. Questions are
printed to the terminal, answers are read from stdin, and every graded round
is appended to the record sink.`,
	RunE: runInterview,
}

func init() {
	interviewCmd.Flags().StringVar(&interviewDataset, "dataset", "", "Path to the JSONL sample dataset (required)")
	interviewCmd.Flags().IntVar(&interviewIndex, "index", 0, "Zero-based sample index")
	interviewCmd.Flags().StringVar(&interviewCompetency, "competency", "", "Competency to target (default: highest weight)")
	interviewCmd.Flags().IntVar(&interviewRounds, "rounds", 0, "Number of rounds (default 3)")
	interviewCmd.Flags().StringVar(&interviewMode, "mode", session.ModePractice, "Interview mode: practice or official")
	interviewCmd.Flags().StringVar(&interviewOutfile, "outfile", "", "Path to the JSONL record sink")
	interviewCmd.Flags().StringVar(&interviewModel, "model", "", "LLM model name override")
	interviewCmd.Flags().IntVar(&interviewTimeoutSec, "timeout", 0, "Per-call LLM timeout in seconds")
	interviewCmd.Flags().StringVar(&interviewConfigPath, "config", "", "Path to a JSON config file")
	interviewCmd.Flags().BoolVar(&interviewVerbose, "verbose", false, "Print detailed sample and grading information")
	rootCmd.AddCommand(interviewCmd)
}

func runInterview(_ *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(config.Config{
		Dataset:        interviewDataset,
		Outfile:        interviewOutfile,
		Rounds:         interviewRounds,
		Competency:     interviewCompetency,
		Model:          interviewModel,
		TimeoutSeconds: interviewTimeoutSec,
	}, interviewConfigPath)
	if err != nil {
		return err
	}
	if cfg.Dataset == "" {
		return fmt.Errorf("a sample dataset is required: pass --dataset or set it in the config file")
	}
	if !session.ValidMode(interviewMode) {
		return fmt.Errorf("unknown mode %q: must be practice or official", interviewMode)
	}

	sample, err := rubric.LoadSample(cfg.Dataset, interviewIndex)
	if err != nil {
		return err
	}
	comp, err := rubric.SelectCompetency(&sample.Rubric, cfg.Competency)
	if err != nil {
		return err
	}

	ctx := context.Background()
	manager, cleanup, err := buildChainManager(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	thresholds := scoring.DefaultThresholds()
	if cfg.BandL2 != 0 {
		thresholds = scoring.Thresholds{L2: cfg.BandL2, L3: cfg.BandL3, L4: cfg.BandL4}
	}

	var printer *observability.Printer
	if interviewVerbose {
		printer = observability.NewPrinter(os.Stdout)
		printer.PrintSample(sample, comp)
	}

	writer := sink.NewWriter(cfg.Outfile)
	registry := session.NewRegistry(0)
	sess := registry.Create(sample, comp, cfg.Rounds, interviewMode)

	question, err := manager.GenerateQuestion(ctx, sample, comp)
	if err != nil {
		return err
	}
	if printer != nil {
		printer.PrintQuestion(question)
	}
	if err := sess.Begin(question.Question); err != nil {
		return err
	}

	fmt.Printf("Mock interview: %s (%d rounds, %s mode)\n", comp.Name, cfg.Rounds, sess.Mode)
	fmt.Printf("Session: %s\n\n", sess.ID)

	stdin := bufio.NewScanner(os.Stdin)
	stdin.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		round := sess.CurrentRound()
		fmt.Printf("[Round %d/%d] %s\n", round, cfg.Rounds, sess.CurrentQuestion())
		fmt.Print("Your answer: ")

		answer, err := readAnswer(stdin)
		if err != nil {
			return err
		}

		grade, err := manager.GradeAnswer(ctx, comp, sess.CurrentQuestion(), answer)
		if err != nil {
			return err
		}
		followup, err := manager.RewriteFollowup(ctx, grade.FollowupQuestion)
		if err != nil {
			return err
		}

		rec := types.EvalRecord{
			SessionID:        sess.ID,
			Round:            round,
			Competency:       comp.Name,
			Question:         sess.CurrentQuestion(),
			Answer:           answer,
			Score:            grade.Score,
			Band:             thresholds.BandFromScore(grade.Score),
			Justification:    grade.Justification,
			FollowupQuestion: followup,
			Timestamp:        time.Now().UTC(),
		}
		if err := writer.Append(&rec); err != nil {
			return err
		}

		if printer != nil {
			printer.PrintRound(&rec)
		} else {
			fmt.Printf("\nScore: %.2f (%s)\n%s\n\n", rec.Score, rec.Band, rec.Justification)
		}

		done, err := sess.RecordAnswer(rec, followup)
		if err != nil {
			return err
		}
		if done {
			break
		}
	}

	return printSummary(sess, thresholds, writer.Path())
}

// readAnswer reads one non-empty line from stdin.
func readAnswer(stdin *bufio.Scanner) (string, error) {
	for {
		if !stdin.Scan() {
			if err := stdin.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("stdin closed before the interview finished")
		}
		answer := strings.TrimSpace(stdin.Text())
		if answer != "" {
			return answer, nil
		}
		fmt.Print("Your answer: ")
	}
}

func printSummary(sess *session.Session, thresholds scoring.Thresholds, recordPath string) error {
	records, err := sess.Feedback()
	if err != nil {
		return err
	}

	scores := make([]float64, len(records))
	for i, rec := range records {
		scores[i] = rec.Score
	}
	mean := scoring.Mean(scores)

	fmt.Println("Interview complete.")
	fmt.Printf("Overall: %.2f (%s) across %d round(s)\n", mean, thresholds.BandFromScore(mean), len(records))
	for _, rec := range records {
		fmt.Printf("  round %d: %.2f (%s)\n", rec.Round, rec.Score, rec.Band)
	}
	fmt.Printf("Records written to %s\n", recordPath)
	return nil
}
