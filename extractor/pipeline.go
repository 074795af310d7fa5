package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"showroom-etl/internal/types"
	"showroom-etl/normalizer"
)

// RecordStore appends clean rows to a showroom table
type RecordStore interface {
	Append(ctx context.Context, showroom string, records []types.CleanRecord) (int, error)
}

// Pipeline runs lister, extractor, normalizer and store in sequence
type Pipeline struct {
	extractor  *ShowroomExtractor
	normalizer *normalizer.Normalizer
	store      RecordStore
	config     *types.Config
	logger     types.Logger
}

// NewPipeline creates a pipeline. A nil store skips persistence.
func NewPipeline(config *types.Config, logger types.Logger, extractor *ShowroomExtractor, store RecordStore) *Pipeline {
	return &Pipeline{
		extractor:  extractor,
		normalizer: normalizer.NewNormalizer(logger),
		store:      store,
		config:     config,
		logger:     logger,
	}
}

// Run performs one full pass over the showroom. Only a listing page that
// cannot be read, or a store that rejects the rows, fails the run.
func (p *Pipeline) Run(ctx context.Context) (*types.RunResult, error) {
	startTime := time.Now()
	result := &types.RunResult{
		RunID:    uuid.NewString(),
		Store:    p.extractor.StoreName(),
		Showroom: p.config.Showroom,
	}

	scrapeTime := p.config.ScrapeTime
	if scrapeTime.IsZero() {
		scrapeTime = startTime
	}
	stamp := scrapeTime.Format(types.ScrapeTimeFormat)

	p.logger.Infof("Starting run %s for %s showroom %s at %s", result.RunID, result.Store, p.config.Showroom, stamp)

	p.logger.Info("Step 1: Listing products...")
	listing, err := p.extractor.List(ctx)
	if err != nil {
		var listingErr *types.ListingError
		if !errors.As(err, &listingErr) {
			return nil, err
		}
		p.logger.Warnf("Listing incomplete: %v", err)
		result.SkippedCards = len(listingErr.Issues)
		result.ListingWarning = err.Error()
	}
	result.Listed = len(listing)
	p.logger.Infof("Found %d products", len(listing))

	p.logger.Info("Step 2: Extracting product details...")
	details := p.extractor.ExtractDetails(ctx, listing, stamp)
	result.DetailRows = len(details)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s interrupted: %w", result.RunID, err)
	}

	p.logger.Info("Step 3: Normalizing...")
	result.Records = p.normalizer.Normalize(details)

	if p.store != nil {
		p.logger.Info("Step 4: Storing...")
		n, err := p.store.Append(ctx, p.config.Showroom, result.Records)
		if err != nil {
			return result, fmt.Errorf("failed to store showroom %s: %w", p.config.Showroom, err)
		}
		result.Stored = n
	}

	result.Duration = time.Since(startTime)
	p.logger.Infof("Run %s completed in %v: %d listed, %d detail rows, %d stored",
		result.RunID, result.Duration, result.Listed, result.DetailRows, result.Stored)
	return result, nil
}

// WriteJSON saves the clean records of a run to a JSON file
func WriteJSON(filename string, result *types.RunResult) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}

	if err := writeToFile(filename, jsonData); err != nil {
		return fmt.Errorf("failed to write results to file: %w", err)
	}
	return nil
}

func writeToFile(filename string, data []byte) error {
	return os.WriteFile(filename, data, 0644)
}
