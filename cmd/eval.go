package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shelfscan/shelfscan/internal/detector"
	"github.com/shelfscan/shelfscan/internal/eval"
	"github.com/shelfscan/shelfscan/internal/llm"
	"github.com/shelfscan/shelfscan/internal/openlibrary"
)

func newEvalCmd() *cobra.Command {
	var datasetPath string
	var strategy string
	var model string
	var sampleSize int
	var concurrency int

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate detection accuracy against a labeled dataset",
		Long: `Runs the detector over a labeled dataset of shelf photographs and scores
the detected titles against the expected ones.

The dataset is a Parquet or JSONL file of records with an image path or URL
and the list of titles a cataloger confirmed are visible. Results are saved
as YAML under evals/.`,
		Example: `  # Evaluate 10 records with the tool-calling strategy
  shelfscan eval --dataset shelves.parquet --sample 10

  # Evaluate the full dataset with the simple strategy
  shelfscan eval --dataset shelves.jsonl --strategy simple --sample -1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(datasetPath); os.IsNotExist(err) {
				return fmt.Errorf("dataset file not found: %s", datasetPath)
			}

			records, err := eval.NewLoader(datasetPath).Load()
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}
			if sampleSize > 0 && sampleSize < len(records) {
				records = records[:sampleSize]
			}

			gateway, err := llm.NewClient()
			if err != nil {
				return err
			}

			if strategy == "" {
				strategy = detector.DefaultStrategy()
			}
			if model == "" {
				model = llm.DefaultModel()
			}
			det, err := detector.New(strategy, gateway, model, openlibrary.NewClient())
			if err != nil {
				return err
			}

			results := eval.Run(cmd.Context(), det, records, concurrency)

			summary := eval.Summarize(results)
			fmt.Printf("\nItems: %d  Failed: %d\n", summary.Items, summary.Failed)
			fmt.Printf("Precision: %.3f  Recall: %.3f  F1: %.3f\n", summary.MeanPrecision, summary.MeanRecall, summary.MeanF1)

			path, err := eval.SaveToYAML(strategy, model, datasetPath, results)
			if err != nil {
				return err
			}
			fmt.Printf("\nResults saved to: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&datasetPath, "dataset", "d", "", "Path to the labeled dataset (.parquet or .jsonl)")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "Detection strategy: tools or simple (default tools)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "LLM model to use")
	cmd.Flags().IntVar(&sampleSize, "sample", 10, "Number of records to evaluate (-1 for all)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Number of items to process in parallel")

	if err := cmd.MarkFlagRequired("dataset"); err != nil {
		panic(err)
	}

	return cmd
}
