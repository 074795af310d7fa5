package extractor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"showroom-etl/adapters"
	"showroom-etl/internal/metrics"
	"showroom-etl/internal/types"
	"showroom-etl/normalizer"
)

// ShowroomExtractor lists a showroom and scrapes the details of every
// color variant of every listed product
type ShowroomExtractor struct {
	adapter types.ShowroomAdapter
	config  *types.Config
	logger  types.Logger
	closer  func()
}

// NewShowroomExtractor creates a new extractor for the H&M showroom
func NewShowroomExtractor(config *types.Config, logger types.Logger) *ShowroomExtractor {
	adapter := adapters.NewHMAdapter(config, logger)
	s := NewShowroomExtractorWithAdapter(config, logger, adapter)
	s.closer = adapter.Close
	return s
}

// NewShowroomExtractorWithAdapter creates an extractor around an existing adapter
func NewShowroomExtractorWithAdapter(config *types.Config, logger types.Logger, adapter types.ShowroomAdapter) *ShowroomExtractor {
	return &ShowroomExtractor{
		adapter: adapter,
		config:  config,
		logger:  logger,
	}
}

// List reads the listing page. A *types.ListingError comes back together
// with the records of the complete cards; any other error means the listing
// could not be read at all.
func (s *ShowroomExtractor) List(ctx context.Context) ([]types.ListingRecord, error) {
	records, err := s.adapter.ListProducts(ctx, s.config.ListingURL)
	if err != nil {
		var listingErr *types.ListingError
		if errors.As(err, &listingErr) {
			return records, err
		}
		return nil, fmt.Errorf("failed to list showroom: %w", err)
	}
	return records, nil
}

// ExtractDetails scrapes every listed product. Products and variants that
// fail are logged and skipped. Rows keep the listing order whatever the
// number of concurrent requests.
func (s *ShowroomExtractor) ExtractDetails(ctx context.Context, listing []types.ListingRecord, scrapeTime string) []types.DetailRecord {
	startTime := time.Now()

	workers := s.config.MaxConcurrentRequests
	if workers < 1 {
		workers = 1
	}
	if workers > len(listing) {
		workers = len(listing)
	}

	results := make([][]types.DetailRecord, len(listing))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				s.logger.Infof("Processing product %d/%d: %s", i+1, len(listing), listing[i].ProductID)
				results[i] = s.extractProduct(ctx, listing[i], scrapeTime)
			}
		}()
	}

	for i := range listing {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var rows []types.DetailRecord
	for _, r := range results {
		rows = append(rows, r...)
	}

	s.logger.Infof("Extracted %d detail rows from %d products in %v", len(rows), len(listing), time.Since(startTime))
	return rows
}

func (s *ShowroomExtractor) extractProduct(ctx context.Context, product types.ListingRecord, scrapeTime string) []types.DetailRecord {
	variants, err := s.adapter.ColorVariants(ctx, product.ProductID)
	if err != nil {
		s.logger.Warnf("Skipping product %s: %v", product.ProductID, err)
		metrics.VariantsSkipped.WithLabelValues(skipReason(err)).Inc()
		return nil
	}

	colors := make(map[string]string, len(variants))
	for _, v := range variants {
		colors[v.ProductID] = v.ColorName
	}

	var rows []types.DetailRecord
	for _, v := range variants {
		if ctx.Err() != nil {
			return rows
		}

		records, err := s.adapter.ExtractVariant(ctx, v.ProductID)
		if err != nil {
			s.logger.Warnf("Skipping color %s of product %s: %v", v.ProductID, product.ProductID, err)
			metrics.VariantsSkipped.WithLabelValues(skipReason(err)).Inc()
			continue
		}

		for _, r := range records {
			// left join on the variant list; unmatched ids keep no color
			r.ColorName = colors[r.ProductID]
			r.Category = product.Category
			r.ScrapeTime = scrapeTime
			if styleID, colorID, err := normalizer.SplitProductID(r.ProductID); err == nil {
				r.StyleID, r.ColorID = styleID, colorID
			}
			rows = append(rows, r)
		}
	}

	return rows
}

// StoreName returns the name of the scraped store
func (s *ShowroomExtractor) StoreName() string {
	return s.adapter.GetStoreName()
}

// Close cleans up resources
func (s *ShowroomExtractor) Close() {
	if s.closer != nil {
		s.closer()
	}
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, types.ErrNetworkFailure):
		return "network"
	case errors.Is(err, types.ErrMarkupShapeChange):
		return "markup"
	case errors.Is(err, types.ErrParseFailure):
		return "parse"
	default:
		return "other"
	}
}
