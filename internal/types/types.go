package types

import (
	"context"
	"time"
)

// ListingRecord represents one product card on a showroom listing page
type ListingRecord struct {
	ProductID string `json:"product_id"`
	Category  string `json:"product_category"`
	Name      string `json:"product_name"`
	Price     string `json:"product_price"`
}

// ColorVariant is one entry of the color picker on a product detail page
type ColorVariant struct {
	ProductID string `json:"product_id"`
	ColorName string `json:"color_name"`
}

// DetailRecord is one attribute row of one color variant.
// ProductID is always StyleID followed by the 3-character ColorID.
type DetailRecord struct {
	ProductID                string `json:"product_id"`
	StyleID                  string `json:"style_id"`
	ColorID                  string `json:"color_id"`
	ColorName                string `json:"color_name"`
	Category                 string `json:"product_category,omitempty"`
	Name                     string `json:"product_name"`
	Price                    string `json:"product_price"`
	Fit                      string `json:"fit"`
	Composition              string `json:"composition"`
	Size                     string `json:"size"`
	ProductSafety            string `json:"product_safety"`
	MoreSustainableMaterials string `json:"more_sustainable_materials"`
	ScrapeTime               string `json:"scrapy_datetime"`
}

// CleanRecord is the normalized row persisted by the store
type CleanRecord struct {
	ProductID                string  `json:"product_id"`
	Name                     string  `json:"product_name"`
	Price                    float64 `json:"product_price"`
	ScrapeTime               string  `json:"scrapy_datetime"`
	StyleID                  string  `json:"style_id"`
	ColorID                  string  `json:"color_id"`
	ColorName                string  `json:"color_name"`
	Fit                      string  `json:"fit"`
	MoreSustainableMaterials string  `json:"more_sustainable_materials"`
	SizeNumber               *int    `json:"size_number"`
	SizeModel                string  `json:"size_model"`
	Cotton                   float64 `json:"cotton"`
	Polyester                float64 `json:"polyester"`
	Elastane                 float64 `json:"elastane"`
	Elasterell               float64 `json:"elasterell"`
}

// RunResult summarizes one pipeline run
type RunResult struct {
	RunID          string        `json:"run_id"`
	Store          string        `json:"store"`
	Showroom       string        `json:"showroom"`
	Listed         int           `json:"listed"`
	DetailRows     int           `json:"detail_rows"`
	Stored         int           `json:"stored"`
	SkippedCards   int           `json:"skipped_cards"`
	Duration       time.Duration `json:"duration"`
	Records        []CleanRecord `json:"records,omitempty"`
	ListingWarning string        `json:"listing_warning,omitempty"`
}

// Config holds the configuration for one showroom run
type Config struct {
	ListingURL            string
	BaseURL               string
	UserAgent             string
	Headers               map[string]string
	Timeout               time.Duration
	MaxConcurrentRequests int
	UseHeadlessBrowser    bool
	DatabaseURL           string
	Showroom              string
	MetricsPort           string
	// ScrapeTime is stamped on every row of the run.
	ScrapeTime time.Time
}

// ScrapeTimeFormat is the layout of the scrapy_datetime column
const ScrapeTimeFormat = "2006-01-02 15:04:05"

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ListingURL:            "https://www2.hm.com/en_us/men/products/jeans.html",
		BaseURL:               "https://www2.hm.com/en_us",
		UserAgent:             "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_11_5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/50.0.2661.102 Safari/537.36",
		Timeout:               30 * time.Second,
		MaxConcurrentRequests: 1,
		UseHeadlessBrowser:    false,
		DatabaseURL:           "sqlite://./database/hm_db.sqlite",
		Showroom:              "showroom",
		MetricsPort:           "",
	}
}

// Fetcher retrieves the HTML of a page
type Fetcher interface {
	GetPageContent(ctx context.Context, url string) (string, error)
}

// ShowroomAdapter defines the site-specific extraction logic
type ShowroomAdapter interface {
	// GetStoreName returns the name of the store the adapter scrapes
	GetStoreName() string

	// ListProducts parses the listing page into one record per product card
	ListProducts(ctx context.Context, listingURL string) ([]ListingRecord, error)

	// ColorVariants returns the color variants offered on a product page
	ColorVariants(ctx context.Context, productID string) ([]ColorVariant, error)

	// ExtractVariant returns the attribute rows of one color variant page
	ExtractVariant(ctx context.Context, productID string) ([]DetailRecord, error)
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
