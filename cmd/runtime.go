package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ashfaaq98/console-cases/internal/cache"
	"github.com/Ashfaaq98/console-cases/internal/loader"
	"github.com/gdamore/tcell/v2"
)

// newLogger honors log.level: warn and error keep only failure lines.
func newLogger(w io.Writer, prefix, level string) *log.Logger {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "warn", "warning", "error":
		w = &errorFilterWriter{w}
	}
	return log.New(w, prefix, log.LstdFlags)
}

// openDatasetCache builds the configured dataset cache. Relative sqlite
// paths resolve against the working directory.
func openDatasetCache(config Config, logger *log.Logger) (cache.Cache, error) {
	c, err := cache.New(cache.Options{
		Backend:  config.Cache.Backend,
		TTL:      config.Cache.TTL,
		RedisURL: config.Redis.URL,
		Path:     resolvePathRelativeToBase(getWorkingDir(), config.Cache.Path),
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dataset cache: %w", err)
	}
	return c, nil
}

func newDatasetLoader(config Config, c cache.Cache, logger *log.Logger) *loader.Loader {
	return loader.New(loader.Options{
		Timeout:  config.Loader.Timeout,
		Cache:    c,
		CacheTTL: config.Cache.TTL,
		BaseDir:  getWorkingDir(),
		Logger:   logger,
	})
}

// canInitializeTUI reports whether a tcell screen can be opened here
func canInitializeTUI() bool {
	screen, err := tcell.NewScreen()
	if err != nil {
		return false
	}
	if err := screen.Init(); err != nil {
		return false
	}
	// Clean up immediately
	screen.Fini()
	return true
}

func getTerminalInfo() string {
	var info []string

	term := os.Getenv("TERM")
	if term == "" {
		info = append(info, "TERM=<not set>")
	} else {
		info = append(info, fmt.Sprintf("TERM=%s", term))
	}
	if width, height := getTerminalSize(); width > 0 && height > 0 {
		info = append(info, fmt.Sprintf("Size=%dx%d", width, height))
	}
	if isTerminal() {
		info = append(info, "TTY=yes")
	} else {
		info = append(info, "TTY=no")
	}
	return strings.Join(info, ", ")
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// getExecutableDir returns the directory of the running executable.
// Falls back to current directory on error.
func getExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// getWorkingDir returns the current working directory.
// Falls back to executable directory if os.Getwd fails.
func getWorkingDir() string {
	if wd, err := os.Getwd(); err == nil && wd != "" {
		return wd
	}
	return getExecutableDir()
}

// resolvePathRelativeToBase resolves a possibly relative path against a base directory.
// Absolute paths are returned unchanged.
func resolvePathRelativeToBase(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	p = strings.TrimPrefix(p, "./")
	return filepath.Join(base, p)
}

// setupFileLogger opens logs/<name> under the working directory, or returns
// nil when that is not possible.
func setupFileLogger(name string) *os.File {
	logDir := filepath.Join(getWorkingDir(), "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil
	}
	logFile, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil
	}
	return logFile
}

// errorFilterWriter passes through only lines that look like failures
type errorFilterWriter struct {
	writer io.Writer
}

func (w *errorFilterWriter) Write(p []byte) (n int, err error) {
	lc := strings.ToLower(string(p))
	if strings.Contains(lc, "error") ||
		strings.Contains(lc, "failed") ||
		strings.Contains(lc, "unavailable") ||
		strings.Contains(lc, "panic") {
		return w.writer.Write(p)
	}
	return len(p), nil
}
