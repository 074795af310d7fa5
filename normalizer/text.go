package normalizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"showroom-etl/internal/types"
)

var (
	sizeNumberRe = regexp.MustCompile(`(\d{3})cm`)
	sizeModelRe  = regexp.MustCompile(`\d+/\d+`)
)

// SnakeCase lower-cases s and joins its words with underscores.
// Tabs, line breaks and runs of spaces collapse to one separator, so
// applying it twice gives the same result as applying it once.
func SnakeCase(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "_"))
}

// ParsePrice parses a price such as "19.99" or "$ 1,019.99"
func ParsePrice(s string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q", types.ErrParseFailure, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative price %q", types.ErrParseFailure, s)
	}
	return d.InexactFloat64(), nil
}

// ParseSizeNumber returns the height of a "###cm" token, if any
func ParseSizeNumber(size string) *int {
	m := sizeNumberRe.FindStringSubmatch(size)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// ParseSizeModel returns the first "NN/NN" token verbatim, or ""
func ParseSizeModel(size string) string {
	return sizeModelRe.FindString(size)
}
