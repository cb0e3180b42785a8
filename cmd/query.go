package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/popvault/popdash/internal/model"
	"github.com/popvault/popdash/internal/query"
	"github.com/popvault/popdash/internal/snapshot"
)

var (
	queryProfilePath    string
	queryMinYear        int
	queryMaxYear        int
	queryMinPrice       float64
	queryMaxPrice       float64
	queryMinVolume      int64
	queryMaxVolume      int64
	queryIncludeUnknown bool
	queryMetrics        []string
	queryTop            int
	queryShowRecords    bool
	queryJSON           bool
)

var queryCmd = &cobra.Command{
	Use:   "query [source]",
	Short: "Filter, tally, and rank a dataset in one shot",
	Long: `Loads a dataset, applies range filters, and prints the matched
count, category tallies, and top-N rankings. Every range defaults to
the dataset's own bounds, so a bare query matches everything with
non-null values.

Examples:
  # Everything, default views
  popdash query sales.csv

  # Narrow by price and year, show the matching rows
  popdash query sales.csv --min-price 10 --max-price 50 --min-year 2015 --show-records

  # Top 5 by market cap only
  popdash query sales.csv --metric market_cap --top 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("query"); err != nil {
			return err
		}

		location, err := resolveLocation(args)
		if err != nil {
			return err
		}
		profile, err := resolveProfile(queryProfilePath)
		if err != nil {
			return err
		}

		ds, err := newRunner(location, profile).Load(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "query: load dataset")
		}

		if ds.Diagnostics.AllPricesMissing() {
			return eris.New("query: every record is missing a price; nothing to query")
		}
		if ds.Diagnostics.AllVolumesMissing() {
			return eris.New("query: every record is missing a volume; nothing to query")
		}

		params := query.ParamsFromBounds(ds.Bounds)
		if ds.Bounds.Year == nil {
			zap.L().Warn("query: no release years derivable; unknown years included by default")
		}
		if cfg.Query.IncludeUnknownYears {
			params.IncludeUnknownYears = true
		}

		flags := cmd.Flags()
		if flags.Changed("min-year") {
			params.Year.Min = float64(queryMinYear)
		}
		if flags.Changed("max-year") {
			params.Year.Max = float64(queryMaxYear)
		}
		if flags.Changed("min-price") {
			params.Price.Min = queryMinPrice
		}
		if flags.Changed("max-price") {
			params.Price.Max = queryMaxPrice
		}
		if flags.Changed("min-volume") {
			params.Volume.Min = float64(queryMinVolume)
		}
		if flags.Changed("max-volume") {
			params.Volume.Max = float64(queryMaxVolume)
		}
		if flags.Changed("include-unknown-years") {
			params.IncludeUnknownYears = queryIncludeUnknown
		}

		metrics := model.Metrics()
		if len(queryMetrics) > 0 {
			metrics = make([]model.Metric, 0, len(queryMetrics))
			for _, raw := range queryMetrics {
				m, err := model.ParseMetric(raw)
				if err != nil {
					return err
				}
				metrics = append(metrics, m)
			}
		}

		top := queryTop
		if top == 0 {
			top = cfg.Query.Top
		}
		if top < 1 {
			return eris.New("query: --top must be >= 1")
		}

		matched := query.Filter(ds.Records, params)

		if queryJSON {
			return printQueryJSON(ds, params, matched, metrics, top)
		}
		printQueryReport(ds, matched, metrics, top)
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryProfilePath, "profile", "", "schema profile YAML (default from config)")
	queryCmd.Flags().IntVar(&queryMinYear, "min-year", 0, "minimum release year (default: dataset bound)")
	queryCmd.Flags().IntVar(&queryMaxYear, "max-year", 0, "maximum release year (default: dataset bound)")
	queryCmd.Flags().Float64Var(&queryMinPrice, "min-price", 0, "minimum price (default: dataset bound)")
	queryCmd.Flags().Float64Var(&queryMaxPrice, "max-price", 0, "maximum price (default: dataset bound)")
	queryCmd.Flags().Int64Var(&queryMinVolume, "min-volume", 0, "minimum sales volume (default: dataset bound)")
	queryCmd.Flags().Int64Var(&queryMaxVolume, "max-volume", 0, "maximum sales volume (default: dataset bound)")
	queryCmd.Flags().BoolVar(&queryIncludeUnknown, "include-unknown-years", false, "match records with no release year")
	queryCmd.Flags().StringSliceVar(&queryMetrics, "metric", nil, "metric to rank by, repeatable: price, volume, market_cap (default: all)")
	queryCmd.Flags().IntVar(&queryTop, "top", 0, "ranking size (default from config)")
	queryCmd.Flags().BoolVar(&queryShowRecords, "show-records", false, "print the matching records")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(queryCmd)
}

func printQueryReport(ds *snapshot.Dataset, matched []model.Record, metrics []model.Metric, top int) {
	fmt.Printf("Matched %d of %d records\n", len(matched), ds.Diagnostics.RecordCount)

	counts := query.CategoryCounts(matched)
	if len(counts) > 0 {
		fmt.Println()
		fmt.Println("Categories:")
		w := 0
		for _, c := range counts {
			if len(c.Category) > w {
				w = len(c.Category)
			}
		}
		for _, c := range counts {
			fmt.Printf("  %-*s  %d\n", w, c.Category, c.Count)
		}
	}

	for _, m := range metrics {
		ranked := query.TopBy(matched, m, top)
		fmt.Println()
		fmt.Printf("Top %d by %s:\n", len(ranked), m.Label())
		if len(ranked) == 0 {
			fmt.Println("  (no records with a value)")
			continue
		}
		nameW, catW := 0, 0
		for _, rec := range ranked {
			nameW = max(nameW, len(rec.Name))
			catW = max(catW, len(rec.Category))
		}
		for i, rec := range ranked {
			fmt.Printf("  %2d. %-*s  %-*s  %s\n",
				i+1, nameW, rec.Name, catW, rec.Category, metricText(m, *rec.Value(m)))
		}
	}

	if queryShowRecords {
		printRecords(matched)
	}
}

func printRecords(records []model.Record) {
	fmt.Println()
	fmt.Println("Records:")
	nameW, catW := len("Name"), len("Category")
	for _, rec := range records {
		nameW = max(nameW, len(rec.Name))
		catW = max(catW, len(rec.Category))
	}
	fmt.Printf("  %-*s  %-*s  %10s  %8s  %5s  %12s\n", catW, "Category", nameW, "Name", "Price", "Volume", "Year", "Market Cap")
	for _, rec := range records {
		fmt.Printf("  %-*s  %-*s  %10s  %8s  %5s  %12s\n",
			catW, rec.Category,
			nameW, rec.Name,
			floatText(rec.Price, 2),
			int64Text(rec.Volume),
			intText(rec.ReleaseYear),
			floatText(rec.MarketCap, 2),
		)
	}
}

func printQueryJSON(ds *snapshot.Dataset, params model.Params, matched []model.Record, metrics []model.Metric, top int) error {
	type topEntry struct {
		Name     string  `json:"name"`
		Category string  `json:"category"`
		Value    float64 `json:"value"`
	}
	out := struct {
		Source     string                      `json:"source"`
		Matched    int                         `json:"matched"`
		Total      int                         `json:"total"`
		Params     model.Params                `json:"params"`
		Categories []query.CategoryCount       `json:"categories"`
		Top        map[model.Metric][]topEntry `json:"top"`
		Records    []model.Record              `json:"records,omitempty"`
	}{
		Source:     ds.Source,
		Matched:    len(matched),
		Total:      ds.Diagnostics.RecordCount,
		Params:     params,
		Categories: query.CategoryCounts(matched),
		Top:        make(map[model.Metric][]topEntry, len(metrics)),
	}
	for _, m := range metrics {
		ranked := query.TopBy(matched, m, top)
		entries := make([]topEntry, 0, len(ranked))
		for _, rec := range ranked {
			entries = append(entries, topEntry{rec.Name, rec.Category, *rec.Value(m)})
		}
		out.Top[m] = entries
	}
	if queryShowRecords {
		out.Records = matched
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func metricText(m model.Metric, v float64) string {
	if m == model.MetricVolume {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func floatText(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func int64Text(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func intText(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
