package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/popvault/popdash/internal/model"
	"github.com/popvault/popdash/internal/query"
	"github.com/popvault/popdash/internal/snapshot"
)

var (
	inspectProfilePath string
	inspectJSON        bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [source]",
	Short: "Load a dataset and report diagnostics and bounds",
	Long: `Fetches and ingests a dataset without querying it, then reports row
accounting, null and coercion tallies, dataset bounds, and whether the
dataset is queryable at all.

Examples:
  # Local CSV
  popdash inspect sales.csv

  # Remote workbook with a vendor profile
  popdash inspect https://example.com/export.xlsx --profile vendor.yaml

  # Machine-readable output
  popdash inspect sales.csv --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("inspect"); err != nil {
			return err
		}

		location, err := resolveLocation(args)
		if err != nil {
			return err
		}
		profile, err := resolveProfile(inspectProfilePath)
		if err != nil {
			return err
		}

		ds, err := newRunner(location, profile).Load(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "inspect: load dataset")
		}

		if inspectJSON {
			return printInspectJSON(ds)
		}
		printInspectReport(ds)
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectProfilePath, "profile", "", "schema profile YAML (default from config)")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(inspectCmd)
}

// printInspectJSON prints the dataset summary as indented JSON.
func printInspectJSON(ds *snapshot.Dataset) error {
	summary := struct {
		Source      string              `json:"source"`
		LoadedAt    time.Time           `json:"loaded_at"`
		Diagnostics model.Diagnostics   `json:"diagnostics"`
		Bounds      query.DatasetBounds `json:"bounds"`
	}{ds.Source, ds.LoadedAt, ds.Diagnostics, ds.Bounds}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func printInspectReport(ds *snapshot.Dataset) {
	d := ds.Diagnostics

	fmt.Printf("Source:            %s\n", ds.Source)
	fmt.Printf("Loaded:            %s\n", ds.LoadedAt.Format(time.RFC3339))
	fmt.Printf("Rows:              %d\n", d.RowCount)
	fmt.Printf("Records:           %d\n", d.RecordCount)
	fmt.Printf("Excluded:          %d (low volume)\n", d.LowVolumeExcluded)
	fmt.Printf("Null price:        %d\n", d.NullPrice)
	fmt.Printf("Null volume:       %d\n", d.NullVolume)
	fmt.Printf("Null date:         %d\n", d.NullReleaseDate)
	fmt.Printf("Bad price cells:   %d\n", d.BadPrice)
	fmt.Printf("Bad volume cells:  %d\n", d.BadVolume)
	fmt.Printf("Bad date cells:    %d\n", d.BadDate)
	fmt.Printf("Negative volumes:  %d\n", d.NegativeVolume)
	if len(d.DroppedColumns) > 0 {
		fmt.Printf("Dropped columns:   %s\n", strings.Join(d.DroppedColumns, ", "))
	}
	if len(d.DuplicateHeaders) > 0 {
		fmt.Printf("Duplicate headers: %s\n", strings.Join(d.DuplicateHeaders, ", "))
	}

	fmt.Println()
	fmt.Println("Bounds:")
	fmt.Printf("  Year:            %s\n", rangeText(ds.Bounds.Year, 0))
	fmt.Printf("  Price:           %s\n", rangeText(ds.Bounds.Price, 2))
	fmt.Printf("  Volume:          %s\n", rangeText(ds.Bounds.Volume, 0))

	fmt.Println()
	fmt.Printf("Price values:      %s\n", presenceVerdict(d.RecordCount-d.NullPrice, d.RecordCount, d.AllPricesMissing()))
	fmt.Printf("Volume values:     %s\n", presenceVerdict(d.RecordCount-d.NullVolume, d.RecordCount, d.AllVolumesMissing()))
}

func rangeText(r *model.Range, prec int) string {
	if r == nil {
		return "underivable"
	}
	return fmt.Sprintf("%.*f to %.*f", prec, r.Min, prec, r.Max)
}

func presenceVerdict(present, total int, allMissing bool) string {
	if allMissing {
		return "all missing (queries refused)"
	}
	return fmt.Sprintf("%d of %d present", present, total)
}
