package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Ashfaaq98/console-cases/internal/cases"
	"github.com/spf13/cobra"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write a sample dataset to the data directory",
	Long: `Write a sample cases.json into the data directory. This is useful for local
testing, since the default dataset URL points at data/cases.json and
"serve" publishes that directory under /data/.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Overwrite an existing dataset file")
}

func runSeed(cmd *cobra.Command, args []string) error {
	config := GetConfig()
	logger := log.New(cmd.OutOrStdout(), "[seed] ", log.LstdFlags)

	dir := resolvePathRelativeToBase(getWorkingDir(), config.Web.DataDir)
	path := filepath.Join(dir, "cases.json")
	if _, err := os.Stat(path); err == nil && !seedForce {
		logger.Printf("Dataset already exists at %s (use --force to overwrite)", path)
		return nil
	}
	if err := writeDataset(path, sampleCases()); err != nil {
		return err
	}
	logger.Printf("Wrote %d sample cases to %s", len(sampleCases()), path)
	return nil
}

// writeDataset stores items as a JSON array, replacing path atomically
func writeDataset(path string, items []cases.Case) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	body, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(append(body, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close dataset: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to commit dataset: %w", err)
	}
	return nil
}

func sampleCases() []cases.Case {
	return []cases.Case{
		{
			Company:          "Northwind Analytics",
			Description:      "Quarterly user growth figures were inflated by counting dormant accounts as active.",
			SourceURL:        "https://example.com/reports/northwind-growth",
			ManipulationType: []string{"metric inflation", "misleading reporting"},
			ReportedDate:     "2024-02-14",
		},
		{
			Company:          "First Harbor Bank",
			Description:      "Bank restated loan-loss data after regulators found selectively omitted defaults.",
			SourceURL:        "https://example.com/reports/first-harbor",
			ManipulationType: []string{"omission", "accounting"},
			ReportedDate:     "2023-11-03",
		},
		{
			Company:          "Greenline Motors",
			Description:      "Emissions test results were adjusted to fall under regulatory thresholds.",
			SourceURL:        "https://example.com/reports/greenline-emissions",
			ManipulationType: []string{"falsified testing", "greenwashing"},
			ReportedDate:     "2023-06-21",
		},
		{
			Company:          "Brightside Reviews",
			Description:      "Platform suppressed negative product ratings for paying merchants.",
			SourceURL:        "https://example.com/reports/brightside",
			ManipulationType: []string{"review suppression"},
			ReportedDate:     "2024-05-09",
		},
		{
			Company:          "Summit Clinical",
			Description:      "Trial outcomes were reported on a cherry-picked subset of patients.",
			SourceURL:        "https://example.com/reports/summit-trials",
			ManipulationType: []string{"cherry-picking", "selective reporting"},
			ReportedDate:     "2022-09-30",
		},
	}
}
