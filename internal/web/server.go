// Package web serves the case browser as a server-rendered HTML page. Every
// browser cookie owns one ephemeral browsing session.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ashfaaq98/console-cases/internal/browser"
	"github.com/Ashfaaq98/console-cases/internal/cases"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// SessionCookie names the cookie carrying the session id
const SessionCookie = "case_session"

// Options controls the web surface.
type Options struct {
	// Bind address, e.g. "127.0.0.1:8080"
	Bind string
	// Source is the dataset URL or path every new session loads
	Source string
	// DataDir is served under /data/ so the default dataset can be self-hosted
	DataDir string
	// Fetcher loads the dataset; usually a shared *loader.Loader
	Fetcher browser.Fetcher
	// RPS limits case submissions and new sessions per client. 0 disables
	// rate limiting.
	RPS float64
	// Burst is the token bucket size. If 0 and RPS>0, defaults to RPS.
	Burst int
	// SessionTTL expires idle sessions; defaults to 30 minutes.
	SessionTTL time.Duration
	// MaxFormBytes caps the add-case form body; defaults to 64 KiB.
	MaxFormBytes int64
	Logger       *log.Logger
	// Now stamps new cases (optional)
	Now func() time.Time
}

// Server is the HTTP front end for browsing sessions.
type Server struct {
	srv         *http.Server
	opts        Options
	sessions    *gocache.Cache
	limiter     *clientLimiter
	newSessions *clientLimiter
	logger      *log.Logger
	started     int32
	done        chan struct{}
}

// sessionEntry is one cookie's session. mu serializes its requests so each
// response shows the state its own request produced.
type sessionEntry struct {
	mu      sync.Mutex
	session *browser.Session
	surface *pageSurface
}

// NewServer constructs the web surface.
func NewServer(opts Options) (*Server, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("web server requires a dataset fetcher")
	}
	if opts.Bind == "" {
		opts.Bind = "127.0.0.1:8080"
	}
	if opts.DataDir == "" {
		opts.DataDir = "data"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.MaxFormBytes <= 0 {
		opts.MaxFormBytes = 64 * 1024
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[web] ", log.LstdFlags)
	}
	if opts.RPS > 0 && opts.Burst <= 0 {
		opts.Burst = int(opts.RPS)
	}

	s := &Server{
		opts:        opts,
		sessions:    gocache.New(opts.SessionTTL, opts.SessionTTL/2),
		limiter:     newClientLimiter(opts.RPS, opts.Burst),
		newSessions: newClientLimiter(opts.RPS, opts.Burst),
		logger:      logger,
		done:        make(chan struct{}),
	}
	s.srv = &http.Server{
		Addr:         opts.Bind,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/cases", s.handleCases)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/data/", http.StripPrefix("/data/", http.FileServer(filesOnly{http.Dir(s.opts.DataDir)})))
	return mux
}

// filesOnly serves regular files and refuses directory listings
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

// Start starts the HTTP server concurrently and attaches to ctx for shutdown.
func (s *Server) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.started, 0, 1) {
		return errors.New("web server already started")
	}
	ln, err := net.Listen("tcp", s.opts.Bind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Bind, err)
	}
	s.logger.Printf("Web surface listening on http://%s, source=%s data_dir=%s rps=%v burst=%d",
		s.opts.Bind, s.opts.Source, s.opts.DataDir, s.opts.RPS, s.opts.Burst)

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("server error: %v", err)
		}
	}()

	go func() {
		defer close(s.done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Printf("graceful shutdown failed: %v", err)
		}
	}()
	return nil
}

// Done is closed once the server has shut down after a started Start.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// SessionCount reports the number of live sessions
func (s *Server) SessionCount() int {
	return s.sessions.ItemCount()
}

// session returns the caller's session, creating and loading one when the
// cookie is missing or expired. Access refreshes the idle timer. ok is false
// when the client may not open another session yet.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (id string, entry *sessionEntry, ok bool) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if v, found := s.sessions.Get(c.Value); found {
			id, entry = c.Value, v.(*sessionEntry)
		}
	}
	if entry == nil {
		if !s.newSessions.Allow(r.RemoteAddr) {
			return "", nil, false
		}
		id = uuid.New().String()
		surface := &pageSurface{}
		entry = &sessionEntry{
			surface: surface,
			session: browser.NewSession(browser.Options{
				Fetcher: s.opts.Fetcher,
				Source:  s.opts.Source,
				Surface: surface,
				Logger:  s.logger,
				Now:     s.opts.Now,
			}),
		}
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	s.sessions.Set(id, entry, gocache.DefaultExpiration)

	// a dropped connection must not leave the session in the error state
	_ = entry.session.Load(context.WithoutCancel(r.Context()))
	return id, entry, true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_, entry, ok := s.session(w, r)
	if !ok {
		http.Error(w, "too many new sessions", http.StatusTooManyRequests)
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.session.Search(r.URL.Query().Get("q"))
	s.writePage(w, http.StatusOK, entry)
}

func (s *Server) handleCases(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.limiter.Allow(r.RemoteAddr) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	id, entry, ok := s.session(w, r)
	if !ok {
		http.Error(w, "too many new sessions", http.StatusTooManyRequests)
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	form := formValues{
		Company:          r.PostForm.Get("new-company"),
		Description:      r.PostForm.Get("new-description"),
		SourceURL:        r.PostForm.Get("new-source-url"),
		ManipulationType: r.PostForm.Get("new-manipulation-type"),
	}
	entry.surface.setForm(form)
	entry.session.Search(r.PostForm.Get("q"))

	status := http.StatusOK
	c, err := entry.session.Submit(cases.FormInput(form))
	if err != nil {
		if errors.Is(err, browser.ErrNotLoaded) {
			status = http.StatusConflict
		} else {
			status = http.StatusInternalServerError
		}
		s.logger.Printf("rejected case session=%s remote=%s: %v (load error: %v)",
			id, remoteIP(r.RemoteAddr), err, entry.session.Err())
	} else {
		s.logger.Printf("added case session=%s company=%q query=%q remote=%s dur=%s",
			id, c.Company, entry.session.Query(), remoteIP(r.RemoteAddr), time.Since(start).String())
	}
	s.writePage(w, status, entry)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":       "ok",
		"sessions":     s.SessionCount(),
		"rate_clients": s.limiter.Clients(),
	})
}

// writePage renders entry for the current request; callers hold entry.mu.
func (s *Server) writePage(w http.ResponseWriter, status int, entry *sessionEntry) {
	st := entry.surface.snapshot(entry.session.View(), entry.session.Query())
	var buf bytes.Buffer
	if err := writePage(&buf, st); err != nil {
		s.logger.Printf("render page: %v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
