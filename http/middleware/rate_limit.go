package middlewares

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tnqbao/gau-object-gallery/infra"
	"github.com/tnqbao/gau-object-gallery/utils"
)

const (
	maxTrackedClients = 10_000
	clientIdleTimeout = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	clients map[string]*clientLimiter
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
}

func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	client, ok := l.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[ip] = client
	}
	client.lastSeen = now

	if len(l.clients) > maxTrackedClients {
		threshold := now.Add(-clientIdleTimeout)
		for key, entry := range l.clients {
			if entry.lastSeen.Before(threshold) {
				delete(l.clients, key)
			}
		}
	}

	return client.limiter.Allow()
}

func (l *IPRateLimiter) Middleware(logger *infra.LoggerClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.Allow(ip) {
			logger.WarningWithContextf(c.Request.Context(), "[RateLimit] Rejected %s %s from %s", c.Request.Method, c.FullPath(), ip)
			utils.JSON429(c, "Too many uploads, slow down")
			return
		}
		c.Next()
	}
}
