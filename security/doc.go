// Package security provides the rate limiting and client identification
// support used by the linkedin-token strategy.
//
// # Rate limiting
//
// RateLimiter implements per-identifier token-bucket limiting with LRU
// eviction. The strategy uses it to shield the LinkedIn API from
// token-stuffing floods: each caller (keyed by client IP) gets its own bucket,
// and memory stays bounded under distributed abuse because the least recently
// seen identifiers are evicted once the entry limit is reached.
//
//	limiter := security.NewRateLimiter(10, 20, logger)
//	defer limiter.Stop()
//
//	if !limiter.Allow(clientIP) {
//		// reject the attempt
//	}
//
// # Client identification
//
// GetClientIP extracts the caller's IP from a request, honoring
// X-Forwarded-For and X-Real-IP only when the caller has opted into trusting
// its reverse proxy. Never enable proxy trust on a directly exposed listener;
// the headers are trivially spoofable.
package security
