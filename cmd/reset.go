package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ashfaaq98/console-cases/internal/cache"
	"github.com/spf13/cobra"
)

var (
	confirmReset bool
	resetRedis   bool
	resetSQLite  bool
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear cached datasets",
	Long: `Reset clears dataset bodies cached in Redis and/or the SQLite cache file so the
next session fetches the dataset again. Session-local cases are never stored
and are not affected.

By default, both caches are cleared. Use --redis-only or --sqlite-only to
clear just one.

Examples:
  # Clear both caches (requires confirmation)
  console-cases reset

  # Clear with automatic confirmation
  console-cases reset --yes

  # Clear only Redis
  console-cases reset --redis-only`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().BoolVarP(&confirmReset, "yes", "y", false, "Automatically confirm reset operation")
	resetCmd.Flags().BoolVar(&resetRedis, "redis-only", false, "Clear only the Redis cache")
	resetCmd.Flags().BoolVar(&resetSQLite, "sqlite-only", false, "Clear only the SQLite cache")
}

func runReset(cmd *cobra.Command, args []string) error {
	config := GetConfig()

	if !resetRedis && !resetSQLite {
		resetRedis = true
		resetSQLite = true
	}

	var targets []string
	if resetRedis {
		targets = append(targets, "Redis dataset cache")
	}
	if resetSQLite {
		targets = append(targets, "SQLite dataset cache")
	}
	fmt.Printf("This will clear: %s\n", strings.Join(targets, " and "))

	// Confirm operation unless --yes flag is used
	if !confirmReset {
		fmt.Print("Are you sure you want to continue? (y/N): ")
		var response string
		fmt.Scanln(&response)
		if strings.ToLower(response) != "y" && strings.ToLower(response) != "yes" {
			fmt.Println("Reset operation cancelled.")
			return nil
		}
	}

	if resetRedis {
		if err := resetRedisCache(config.Redis.URL); err != nil {
			if !resetSQLite {
				return fmt.Errorf("failed to reset Redis cache: %w", err)
			}
			fmt.Printf("Warning: Failed to reset Redis cache: %v\n", err)
		} else {
			fmt.Println("✓ Redis dataset cache cleared")
		}
	}

	if resetSQLite {
		path := resolvePathRelativeToBase(getWorkingDir(), config.Cache.Path)
		if err := resetSQLiteCache(path); err != nil {
			return fmt.Errorf("failed to reset SQLite cache: %w", err)
		}
		fmt.Println("✓ SQLite dataset cache cleared")
	}

	fmt.Println("Reset operation completed successfully!")
	return nil
}

// resetRedisCache deletes only this program's dataset keys
func resetRedisCache(redisURL string) error {
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	rc, err := cache.NewRedisCache(redisURL, 0)
	if err != nil {
		return err
	}
	defer rc.Close()
	return rc.Clear()
}

// resetSQLiteCache removes the cache file with its WAL companions
func resetSQLiteCache(dbPath string) error {
	files := []string{
		dbPath,
		dbPath + "-shm", // Shared memory file
		dbPath + "-wal", // Write-ahead log file
	}

	var removed []string
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			if err := os.Remove(file); err != nil {
				return fmt.Errorf("failed to remove cache file %s: %w", file, err)
			}
			removed = append(removed, filepath.Base(file))
		}
	}

	if len(removed) == 0 {
		fmt.Println("No SQLite cache files found to remove")
		return nil
	}
	fmt.Printf("Removed cache files: %s\n", strings.Join(removed, ", "))
	return nil
}
