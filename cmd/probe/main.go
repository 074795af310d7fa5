package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"showroom-etl/adapters"
	"showroom-etl/internal/config"
	"showroom-etl/internal/types"

	"github.com/PuerkitoBio/goquery"
)

func main() {
	cfg := config.Load()

	var (
		pageURL    = flag.String("url", cfg.ListingURL, "Page to probe")
		productID  = flag.String("product", "", "Probe the product page of this article code instead")
		useBrowser = flag.Bool("browser", cfg.UseHeadlessBrowser, "Use headless browser to fetch pages")
		samples    = flag.Int("samples", 5, "Number of sample product cards to print")
	)
	flag.Parse()

	cfg.UseHeadlessBrowser = *useBrowser
	logger := &debugLogger{}

	adapter := adapters.NewHMAdapter(cfg, logger)
	defer adapter.Close()

	target := *pageURL
	if *productID != "" {
		target = adapter.ProductURL(*productID)
	}

	fmt.Printf("=== Probing %s ===\n", target)

	doc, err := adapter.FetchDocument(context.Background(), target)
	if err != nil {
		log.Fatalf("Failed to get page: %v", err)
	}

	for _, p := range adapter.ProbeSelectors(doc) {
		fmt.Printf("%-18s %4d  %s\n", p.Name, p.Count, p.Selector)
	}

	if *productID == "" {
		printCards(os.Stdout, adapter, doc, *samples)
	}
}

// printCards writes the first n listing records as the adapter reads them,
// followed by every card it had to skip
func printCards(w io.Writer, adapter *adapters.HMAdapter, doc *goquery.Document, n int) {
	records, err := adapter.ParseListing(doc)
	var listingErr *types.ListingError
	if err != nil && !errors.As(err, &listingErr) {
		fmt.Fprintf(w, "Listing not readable: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Sample of product cards (%d complete):\n", len(records))
	for i, r := range records {
		if i >= n {
			break
		}
		fmt.Fprintf(w, "  %d: id='%s', name='%s', price='%s'\n", i+1, r.ProductID, r.Name, r.Price)
	}

	if listingErr != nil {
		fmt.Fprintf(w, "Skipped cards (%d of %d):\n", len(listingErr.Issues), listingErr.Cards)
		for _, issue := range listingErr.Issues {
			fmt.Fprintf(w, "  card %d: id='%s', missing %s\n", issue.Index+1, issue.ProductID, strings.Join(issue.Missing, ", "))
		}
	}
}

type debugLogger struct{}

var _ types.Logger = (*debugLogger)(nil)

func (d *debugLogger) Debug(args ...interface{})                 { fmt.Println(args...) }
func (d *debugLogger) Info(args ...interface{})                  { fmt.Println(args...) }
func (d *debugLogger) Warn(args ...interface{})                  { fmt.Println(args...) }
func (d *debugLogger) Error(args ...interface{})                 { fmt.Println(args...) }
func (d *debugLogger) Debugf(format string, args ...interface{}) { fmt.Printf(format+"\n", args...) }
func (d *debugLogger) Infof(format string, args ...interface{})  { fmt.Printf(format+"\n", args...) }
func (d *debugLogger) Warnf(format string, args ...interface{})  { fmt.Printf(format+"\n", args...) }
func (d *debugLogger) Errorf(format string, args ...interface{}) { fmt.Printf(format+"\n", args...) }
