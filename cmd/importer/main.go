/* main.go - Roster Importer CLI

PURPOSE:
  Imports the licensing board's roster export into the compliance
  store. The board publishes a periodic roster of every license on
  file; this tool upserts the CPA rows so the server always reflects
  the board's view of who is licensed and until when.

COMMANDS:
  import <roster.csv>   Upsert licenses from a roster CSV
    --dry-run           Count what would change without writing
  stats                 Print store totals and the last sync time

CSV FORMAT:
  Header row required. Columns are matched by name, extra columns are
  ignored, order does not matter:
    License Number            (required)
    Full Name/Business Name   (required)
    Issue Date                (required)
    Expiration Date           (required)
    License Status            (required)
    License Type              (optional; non-CPA rows are filtered out)

  Dates accept YYYY-MM-DD or M/D/YYYY, with or without a time part.

IMPORT RULES:
  - Only "Certified Public Accountant" rows are considered when the
    License Type column is present.
  - Rows whose status is not Active are skipped, not imported.
  - Existing licenses are updated in place (matched on number).
  - A bad row is counted as an error and the import continues.

EXAMPLES:
  compliance-importer import monthly_roster.csv
  compliance-importer import --dry-run monthly_roster.csv
  compliance-importer --db ./compliance.db stats

SEE ALSO:
  - store/sqlite/sqlite.go: the store being written
  - api/handlers.go: GET /api/stats serves the same totals
*/

package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/compliance-engine/accountancy"
	"github.com/warp/compliance-engine/engine"
	"github.com/warp/compliance-engine/store"
	"github.com/warp/compliance-engine/store/sqlite"
)

const cpaLicenseType = "Certified Public Accountant"

var requiredColumns = []string{
	"License Number",
	"Full Name/Business Name",
	"Issue Date",
	"Expiration Date",
	"License Status",
}

type importResult struct {
	Created int
	Updated int
	Skipped int
	Errors  int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbPath string

	root := &cobra.Command{
		Use:           "compliance-importer",
		Short:         "Import licensing board roster exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "./compliance.db", "SQLite database path")

	var dryRun bool
	importCmd := &cobra.Command{
		Use:   "import <roster.csv>",
		Short: "Upsert licenses from a roster CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), dbPath, args[0], dryRun)
		},
	}
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "count changes without writing")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print store totals and the last sync time",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), dbPath)
		},
	}

	root.AddCommand(importCmd, statsCmd)
	return root
}

// ====================================================================
// IMPORT
// ====================================================================

func runImport(ctx context.Context, dbPath, rosterPath string, dryRun bool) error {
	file, err := os.Open(rosterPath)
	if err != nil {
		return err
	}
	defer file.Close()

	st, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open store at %s: %w", dbPath, err)
	}
	defer st.Close()

	mode := "Importing"
	if dryRun {
		mode = "Dry run:"
	}
	fmt.Printf("%s roster %s into %s\n", mode, rosterPath, dbPath)

	result, err := importRoster(ctx, st, file, dryRun)
	if err != nil {
		return err
	}

	fmt.Println("\nImport results:")
	fmt.Printf("  Created: %d\n", result.Created)
	fmt.Printf("  Updated: %d\n", result.Updated)
	fmt.Printf("  Skipped: %d (inactive licenses)\n", result.Skipped)
	fmt.Printf("  Errors:  %d\n", result.Errors)
	if dryRun {
		fmt.Println("\nDry run: no changes were written.")
	}
	return nil
}

func importRoster(ctx context.Context, st store.Store, r io.Reader, dryRun bool) (importResult, error) {
	var result importResult

	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return result, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return result, fmt.Errorf("roster is missing required column %q", name)
		}
	}
	typeCol, hasTypeCol := columns["License Type"]

	syncedAt := time.Now().UTC()
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "  line %d: %v\n", line, err)
			result.Errors++
			continue
		}

		// Roster files mix professions; only CPA rows matter.
		if hasTypeCol && strings.TrimSpace(row[typeCol]) != cpaLicenseType {
			continue
		}

		rec, err := rosterRecord(row, columns, syncedAt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  line %d: %v\n", line, err)
			result.Errors++
			continue
		}

		if rec.Status != accountancy.StatusActive {
			result.Skipped++
			continue
		}

		if dryRun {
			_, err := st.GetLicense(ctx, rec.Number)
			switch {
			case err == nil:
				result.Updated++
			case errors.Is(err, store.ErrLicenseNotFound):
				result.Created++
			default:
				fmt.Fprintf(os.Stderr, "  line %d: %v\n", line, err)
				result.Errors++
			}
			continue
		}

		created, err := st.SaveLicense(ctx, rec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  line %d: %v\n", line, err)
			result.Errors++
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	return result, nil
}

func rosterRecord(row []string, columns map[string]int, syncedAt time.Time) (store.LicenseRecord, error) {
	field := func(name string) string {
		return strings.TrimSpace(row[columns[name]])
	}

	number := field("License Number")
	if number == "" {
		return store.LicenseRecord{}, fmt.Errorf("empty license number")
	}

	issued, err := parseRosterDate(field("Issue Date"))
	if err != nil {
		return store.LicenseRecord{}, fmt.Errorf("license %s: %w", number, err)
	}
	expires, err := parseRosterDate(field("Expiration Date"))
	if err != nil {
		return store.LicenseRecord{}, fmt.Errorf("license %s: %w", number, err)
	}

	rec := store.LicenseRecord{
		Number:         number,
		FullName:       field("Full Name/Business Name"),
		Status:         field("License Status"),
		Jurisdiction:   accountancy.Jurisdiction,
		IssueDate:      issued,
		ExpirationDate: expires,
		LastRosterSync: syncedAt,
	}
	if err := rec.License().Validate(); err != nil {
		return store.LicenseRecord{}, fmt.Errorf("license %s: %w", number, err)
	}
	return rec, nil
}

// parseRosterDate accepts the date shapes seen in board exports.
func parseRosterDate(s string) (engine.Date, error) {
	layouts := []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"1/2/2006",
		"01/02/2006",
		"1/2/2006 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return engine.DateOf(t), nil
		}
	}
	return engine.Date{}, fmt.Errorf("unrecognized date %q", s)
}

// ====================================================================
// STATS
// ====================================================================

func runStats(ctx context.Context, dbPath string) error {
	st, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open store at %s: %w", dbPath, err)
	}
	defer st.Close()

	stats, err := st.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Store statistics:")
	fmt.Printf("  Total licenses:  %d\n", stats.TotalLicenses)
	fmt.Printf("  Active licenses: %d\n", stats.ActiveLicenses)
	fmt.Printf("  Course records:  %d\n", stats.TotalCourses)
	fmt.Printf("  Total CPE hours: %.1f\n", stats.TotalHours)
	fmt.Printf("  Renewal alerts:  %d\n", stats.TotalAlerts)
	if !stats.LastRosterSync.IsZero() {
		fmt.Printf("  Last roster sync: %s\n", stats.LastRosterSync.Format(time.RFC3339))
	}
	return nil
}
