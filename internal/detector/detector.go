package detector

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/shelfscan/shelfscan/internal/llm"
	"github.com/shelfscan/shelfscan/internal/models"
	"github.com/shelfscan/shelfscan/internal/openlibrary"
)

// Strategy names accepted by New
const (
	StrategySimple      = "simple"
	StrategyToolCalling = "tools"
)

// Detector identifies the books visible in a photograph
type Detector interface {
	// DetectBooks always returns a displayable result: internal faults are
	// reported through Result.Message rather than raised to the caller.
	DetectBooks(ctx context.Context, img Image) models.Result
}

// pipeline is the internal strategy surface. Strategies report faults as
// errors; the boundary wrapper collapses them into the message-bearing result.
type pipeline interface {
	run(ctx context.Context, img Image) (models.Result, error)
}

type boundary struct {
	strategy pipeline
}

func (b boundary) DetectBooks(ctx context.Context, img Image) models.Result {
	result, err := b.strategy.run(ctx, img)
	if err != nil {
		slog.Error("Detection failed", "err", err)
		return models.Result{Message: "Error: " + err.Error()}
	}
	return result
}

// New builds a detector for the named strategy. The tool-calling strategy is
// more accurate because the LLM sees real bibliographic data before it
// finalizes, at the cost of an extra round-trip.
func New(strategy string, gateway llm.Gateway, model string, library *openlibrary.Client) (Detector, error) {
	if model == "" {
		model = llm.DefaultModel()
	}

	switch strategy {
	case StrategySimple:
		return boundary{&simpleDetector{llm: gateway, model: model, library: library}}, nil
	case StrategyToolCalling, "":
		return boundary{&toolCallingDetector{llm: gateway, model: model, library: library}}, nil
	default:
		return nil, fmt.Errorf("unsupported detection strategy: %s", strategy)
	}
}

// DefaultStrategy returns the strategy to use when none was requested,
// from SHELFSCAN_STRATEGY or the tool-calling default
func DefaultStrategy() string {
	if strategy := os.Getenv("SHELFSCAN_STRATEGY"); strategy != "" {
		return strategy
	}
	return StrategyToolCalling
}
