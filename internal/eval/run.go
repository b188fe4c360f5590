package eval

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/shelfscan/shelfscan/internal/detector"
	"github.com/shelfscan/shelfscan/internal/models"
)

// ItemResult is the outcome of running the detector over one dataset record
type ItemResult struct {
	ID     string        `yaml:"id"`
	Score  Score         `yaml:"score"`
	Result models.Result `yaml:"result"`
	Error  string        `yaml:"error,omitempty"`
}

// Summary aggregates item scores over a whole run
type Summary struct {
	Items         int     `yaml:"items"`
	Failed        int     `yaml:"failed"`
	MeanPrecision float64 `yaml:"meanprecision"`
	MeanRecall    float64 `yaml:"meanrecall"`
	MeanF1        float64 `yaml:"meanf1"`
}

// Run evaluates the detector over every dataset record with bounded
// concurrency and returns per-item results sorted by record ID
func Run(ctx context.Context, det detector.Detector, records []Record, concurrency int) []ItemResult {
	if concurrency < 1 {
		concurrency = 1
	}

	slog.Info("Processing items", "count", len(records), "concurrency", concurrency)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)
	resultsChan := make(chan ItemResult, len(records))

	for i, record := range records {
		wg.Add(1)
		go func(idx int, record Record) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Info("Processing item", "id", record.ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(records)))
			resultsChan <- processItem(ctx, det, record)
		}(i, record)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]ItemResult, 0, len(records))
	for result := range resultsChan {
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results
}

func processItem(ctx context.Context, det detector.Detector, record Record) ItemResult {
	result := ItemResult{
		ID: record.ID,
	}

	img, err := recordImage(record)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	detection := det.DetectBooks(ctx, img)
	result.Result = detection
	result.Score = ScoreDetection(record.ExpectedTitles, detection.Books)
	return result
}

// recordImage resolves a dataset record's image, preferring a local path
// over a remote URL
func recordImage(record Record) (detector.Image, error) {
	if record.ImagePath != "" {
		data, err := os.ReadFile(record.ImagePath)
		if err != nil {
			return detector.Image{}, fmt.Errorf("failed to read image file: %w", err)
		}
		return detector.ImageFromBytes(data), nil
	}
	if record.ImageURL != "" {
		return detector.ImageFromURL(record.ImageURL), nil
	}
	return detector.Image{}, fmt.Errorf("no image available for record %s", record.ID)
}

// Summarize computes aggregate statistics over a run
func Summarize(results []ItemResult) Summary {
	summary := Summary{Items: len(results)}

	scored := 0
	for _, r := range results {
		if r.Error != "" {
			summary.Failed++
			continue
		}
		scored++
		summary.MeanPrecision += r.Score.Precision
		summary.MeanRecall += r.Score.Recall
		summary.MeanF1 += r.Score.F1
	}

	if scored > 0 {
		summary.MeanPrecision /= float64(scored)
		summary.MeanRecall /= float64(scored)
		summary.MeanF1 /= float64(scored)
	}
	return summary
}
