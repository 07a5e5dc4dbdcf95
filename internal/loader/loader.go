package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Ashfaaq98/console-cases/internal/cache"
	"github.com/Ashfaaq98/console-cases/internal/cases"
)

var (
	// ErrStatus is wrapped when the data source answers with a non-2xx status
	ErrStatus = errors.New("unexpected status")
	// ErrMalformedDataset is wrapped when the body is not a JSON array of case objects
	ErrMalformedDataset = errors.New("malformed dataset")
	// ErrTooLarge is wrapped when the body exceeds Options.MaxBytes
	ErrTooLarge = errors.New("dataset too large")
)

// Options controls how datasets are fetched
type Options struct {
	// Timeout bounds one fetch. Zero means no timeout.
	Timeout time.Duration
	// MaxBytes caps the response body; defaults to 10 MiB.
	MaxBytes int64
	// Cache holds fetched bodies by URL. Nil disables caching.
	Cache    cache.Cache
	CacheTTL time.Duration
	// BaseDir resolves relative file sources; defaults to the working directory.
	BaseDir string
	Logger  *log.Logger
	Client  *http.Client
}

// Loader retrieves the case dataset from a URL or a local file
type Loader struct {
	client   *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
	maxBytes int64
	baseDir  string
	logger   *log.Logger
}

// New creates a new Loader
func New(opts Options) *Loader {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 10 * 1024 * 1024 // 10 MiB
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Cache == nil {
		opts.Cache = cache.NullCache{}
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		}
	}
	return &Loader{
		client:   client,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		maxBytes: opts.MaxBytes,
		baseDir:  opts.BaseDir,
		logger:   opts.Logger,
	}
}

// Load fetches and decodes the dataset at source. Transport failures,
// non-2xx responses and malformed bodies are all returned as errors.
func (l *Loader) Load(ctx context.Context, source string) ([]cases.Case, error) {
	key := cache.Key(source)
	if body, ok := l.cache.Get(key); ok {
		items, err := Decode(body)
		if err == nil {
			l.logger.Printf("dataset cache hit for %s (%d cases)", source, len(items))
			return items, nil
		}
		l.logger.Printf("discarding unreadable cached dataset for %s: %v", source, err)
		_ = l.cache.Delete(key)
	}

	body, err := l.fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	items, err := Decode(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", source, err)
	}

	if err := l.cache.Set(key, body, l.cacheTTL); err != nil {
		l.logger.Printf("failed to cache dataset for %s: %v", source, err)
	}
	return items, nil
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("invalid dataset source %q: %w", source, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return l.fetchHTTP(ctx, source)
	case "file":
		return l.readFile(u.Path)
	case "":
		return l.readFile(source)
	default:
		if len(u.Scheme) == 1 { // windows drive letter
			return l.readFile(source)
		}
		return nil, fmt.Errorf("unsupported dataset scheme %q", u.Scheme)
	}
}

func (l *Loader) fetchHTTP(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	body, err := l.readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (l *Loader) readFile(path string) ([]byte, error) {
	if !filepath.IsAbs(path) && l.baseDir != "" {
		path = filepath.Join(l.baseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	body, err := l.readLimited(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return body, nil
}

// readLimited reads at most maxBytes; one byte more means the body was cut.
func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > l.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, l.maxBytes)
	}
	return body, nil
}

// Decode parses a dataset body. The body must be a JSON array whose elements
// are objects; a field of the wrong type rejects the whole dataset, while a
// missing field decodes to its zero value. Blank tags are dropped.
func Decode(body []byte) ([]cases.Case, error) {
	trim := bytes.TrimSpace(body)
	if len(trim) == 0 || trim[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedDataset)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trim, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}

	out := make([]cases.Case, 0, len(raw))
	for i, entry := range raw {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 || entry[0] != '{' {
			return nil, fmt.Errorf("%w: entry %d is not an object", ErrMalformedDataset, i)
		}
		var c cases.Case
		if err := json.Unmarshal(entry, &c); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformedDataset, i, err)
		}
		c.ManipulationType = dropBlankTags(c.ManipulationType)
		out = append(out, c)
	}
	return out, nil
}

func dropBlankTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}
