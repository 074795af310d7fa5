package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"showroom-etl/internal/metrics"
	"showroom-etl/internal/types"
)

// colorIDLen is the length of the color suffix of a product id
const colorIDLen = 3

// Normalizer turns scraped detail rows into clean store rows
type Normalizer struct {
	logger types.Logger
}

// NewNormalizer creates a new normalizer
func NewNormalizer(logger types.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// SplitProductID splits a product id into its style and color ids
func SplitProductID(productID string) (styleID, colorID string, err error) {
	if len(productID) <= colorIDLen {
		return "", "", fmt.Errorf("%w: product id %q shorter than style and color", types.ErrDataIntegrity, productID)
	}
	return productID[:len(productID)-colorIDLen], productID[len(productID)-colorIDLen:], nil
}

// Normalize cleans every detail row, merges the fiber columns of rows that
// share a product id and keeps the last-seen row per product id. Rows that
// cannot be cleaned are logged and dropped.
func (n *Normalizer) Normalize(records []types.DetailRecord) []types.CleanRecord {
	cleaned := make([]types.CleanRecord, 0, len(records))
	fibers := make(map[string]Fibers)

	for _, r := range records {
		c, f, err := n.clean(r)
		if err != nil {
			n.logger.Warnf("Dropping row of product %q: %v", r.ProductID, err)
			metrics.RowsDropped.WithLabelValues(dropReason(err)).Inc()
			continue
		}
		fibers[c.ProductID] = fibers[c.ProductID].Max(f)
		cleaned = append(cleaned, c)
	}

	for i := range cleaned {
		f := fibers[cleaned[i].ProductID]
		cleaned[i].Cotton = f.Cotton
		cleaned[i].Polyester = f.Polyester
		cleaned[i].Elastane = f.Elastane
		cleaned[i].Elasterell = f.Elasterell
	}

	out := Dedup(cleaned)
	n.logger.Infof("Normalized %d detail rows into %d products", len(records), len(out))
	return out
}

func (n *Normalizer) clean(r types.DetailRecord) (types.CleanRecord, Fibers, error) {
	productID := strings.TrimSpace(r.ProductID)
	if productID == "" {
		return types.CleanRecord{}, Fibers{}, fmt.Errorf("%w: missing product id", types.ErrDataIntegrity)
	}
	styleID, colorID, err := SplitProductID(productID)
	if err != nil {
		return types.CleanRecord{}, Fibers{}, err
	}

	price, err := ParsePrice(r.Price)
	if err != nil {
		return types.CleanRecord{}, Fibers{}, err
	}

	f, matched := ParseComposition(r.Composition)
	if !matched && strings.TrimSpace(r.Composition) != "" {
		n.logger.Warnf("Composition of %s matched no tracked fiber, needs review: %q", productID, r.Composition)
		metrics.CompositionReview.Inc()
	}

	return types.CleanRecord{
		ProductID:                productID,
		Name:                     SnakeCase(r.Name),
		Price:                    price,
		ScrapeTime:               r.ScrapeTime,
		StyleID:                  styleID,
		ColorID:                  colorID,
		ColorName:                SnakeCase(r.ColorName),
		Fit:                      SnakeCase(r.Fit),
		MoreSustainableMaterials: r.MoreSustainableMaterials,
		SizeNumber:               ParseSizeNumber(r.Size),
		SizeModel:                ParseSizeModel(r.Size),
	}, f, nil
}

// Dedup keeps the last-seen row of every product id, in the order of
// those last occurrences
func Dedup(records []types.CleanRecord) []types.CleanRecord {
	last := make(map[string]int, len(records))
	for i, r := range records {
		last[r.ProductID] = i
	}

	out := make([]types.CleanRecord, 0, len(last))
	for i, r := range records {
		if last[r.ProductID] == i {
			out = append(out, r)
		}
	}
	return out
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, types.ErrDataIntegrity):
		return "integrity"
	case errors.Is(err, types.ErrParseFailure):
		return "parse"
	default:
		return "other"
	}
}
