package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/tashuroute/tashuroute/internal/api/models"
)

// RateLimitConfig is a fixed request budget per sliding window.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

var (
	// AuthRateLimit guards token issuance.
	AuthRateLimit = RateLimitConfig{RequestLimit: 10, WindowLength: time.Minute}

	// ExpensiveRateLimit guards route planning and place search, which fan
	// out to upstream providers.
	ExpensiveRateLimit = RateLimitConfig{RequestLimit: 30, WindowLength: time.Minute}

	// StandardRateLimit guards station reads and favorites.
	StandardRateLimit = RateLimitConfig{RequestLimit: 100, WindowLength: time.Minute}
)

// RateLimitByIP limits by client IP. Run chi's RealIP first so forwarded
// addresses are honoured.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return cfg.limiter(httprate.KeyByRealIP)
}

// RateLimitByDevice limits by CallerKey, so an authenticated device shares
// one budget across networks.
func RateLimitByDevice(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return cfg.limiter(func(r *http.Request) (string, error) {
		return CallerKey(r), nil
	})
}

func (cfg RateLimitConfig) limiter(key httprate.KeyFunc) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(math.Ceil(cfg.WindowLength.Seconds())))
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(key),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			// httprate does not expose the reset time; the window is an upper bound.
			w.Header().Set("Retry-After", retryAfter)
			models.NewTooManyRequests(GetRequestID(r.Context()), "Rate limit exceeded. Please try again later.").
				WithInstance(r.URL.Path).
				Write(w)
		}),
	)
}

// SessionHeader lets anonymous clients tell themselves apart when they share
// an address.
const SessionHeader = "X-Client-Session"

// CallerKey identifies who is calling: the device ID when authenticated, then
// a well-formed client session, otherwise the client IP.
func CallerKey(r *http.Request) string {
	if deviceID := GetDeviceID(r.Context()); deviceID != "" {
		return "device:" + deviceID
	}
	if session := r.Header.Get(SessionHeader); validRequestID(session) {
		return "session:" + session
	}
	ip, err := httprate.KeyByRealIP(r)
	if err != nil || ip == "" {
		return "ip:unknown"
	}
	return "ip:" + ip
}
