package web

import (
	"net"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// clientLimiter rate limits requests per remote address. Buckets idle for
// longer than a full refill are evicted, since a fresh bucket is equivalent.
type clientLimiter struct {
	limiters *gocache.Cache
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	idle := time.Duration(float64(burst) / rps * float64(time.Second))
	if idle < time.Minute {
		idle = time.Minute
	}
	return &clientLimiter{
		limiters: gocache.New(idle, idle),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether the client may proceed now. A nil limiter allows everything.
func (l *clientLimiter) Allow(remoteAddr string) bool {
	if l == nil {
		return true
	}
	return l.get(remoteIP(remoteAddr)).Allow()
}

// Clients reports how many buckets are held
func (l *clientLimiter) Clients() int {
	if l == nil {
		return 0
	}
	return l.limiters.ItemCount()
}

func (l *clientLimiter) get(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	var limiter *rate.Limiter
	if v, ok := l.limiters.Get(client); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(l.rate, l.burst)
	}
	// every use restarts the idle timer
	l.limiters.Set(client, limiter, gocache.DefaultExpiration)
	return limiter
}

// remoteIP extracts ip from host:port
func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
