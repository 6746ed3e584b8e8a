package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/AnhAnhii/veterans-verify-system/internal/config"
	"github.com/AnhAnhii/veterans-verify-system/internal/logger"
)

// clientLimiter stores the token bucket for one caller.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterMiddleware keeps one token bucket per caller.
type RateLimiterMiddleware struct {
	clients map[string]*clientLimiter
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	log     *zap.Logger
}

// NewRateLimiterMiddleware creates a limiter and starts sweeping idle callers until stop is closed.
func NewRateLimiterMiddleware(cfg *config.Config, log *zap.Logger, stop <-chan struct{}) *RateLimiterMiddleware {
	rm := &RateLimiterMiddleware{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(cfg.RateLimitRefillRate),
		burst:   cfg.RateLimitBucketSize,
		idleTTL: 30 * time.Minute,
		log:     logger.Named(log, "ratelimit"),
	}
	go rm.cleanupClients(10*time.Minute, stop)
	return rm
}

// clientIdentifier is the profile when authenticated, else the client IP.
func clientIdentifier(c *gin.Context) string {
	if id := ProfileID(c); id != "" {
		return "profile:" + id
	}
	return "ip:" + c.ClientIP()
}

func (rm *RateLimiterMiddleware) getClientLimiter(identifier string) *rate.Limiter {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	cl, exists := rm.clients[identifier]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(rm.limit, rm.burst)}
		rm.clients[identifier] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

// sweep removes callers idle for longer than idleTTL and reports how many were removed.
func (rm *RateLimiterMiddleware) sweep(now time.Time) int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	count := 0
	for id, cl := range rm.clients {
		if now.Sub(cl.lastSeen) > rm.idleTTL {
			delete(rm.clients, id)
			count++
		}
	}
	return count
}

func (rm *RateLimiterMiddleware) cleanupClients(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if n := rm.sweep(now); n > 0 {
				rm.log.Debug("rate limiter cleanup", zap.Int("removed", n))
			}
		}
	}
}

// Limit throttles per profile when authenticated, else per client IP.
func (rm *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return rm.limitBy(clientIdentifier)
}

// LimitByIP throttles per client IP only. It runs ahead of authentication
// so rejected credentials still spend tokens.
func (rm *RateLimiterMiddleware) LimitByIP() gin.HandlerFunc {
	return rm.limitBy(func(c *gin.Context) string { return "ip:" + c.ClientIP() })
}

func (rm *RateLimiterMiddleware) limitBy(identify func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := identify(c)
		if !rm.getClientLimiter(key).Allow() {
			rm.log.Info("rate limit exceeded", zap.String("client", key), zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
