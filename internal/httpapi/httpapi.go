package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"silosremeco/backend/internal/contact"
	"silosremeco/backend/internal/logger"
	"silosremeco/backend/internal/pricing"
	"silosremeco/backend/internal/service"
	"silosremeco/backend/internal/xid"
)

const maxBodyBytes = 1 << 20

var errTooManyRequests = errors.New("demasiados intentos, probá de nuevo en un minuto")

type Config struct {
	AllowedOrigin string
	PublicSiteURL string
	Formatter     *pricing.Formatter
	Logger        logrus.FieldLogger
}

type API struct {
	catalog        *service.Service
	contact        *contact.Service
	formatter      *pricing.Formatter
	allowedOrigin  string
	siteURL        string
	contactLimiter *attemptLimiter
	log            logrus.FieldLogger
}

func New(catalog *service.Service, contactSvc *contact.Service, cfg Config) *API {
	formatter := cfg.Formatter
	if formatter == nil {
		formatter = pricing.NewFormatter(pricing.DefaultLocale, pricing.DefaultSymbol)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &API{
		catalog:        catalog,
		contact:        contactSvc,
		formatter:      formatter,
		allowedOrigin:  cfg.AllowedOrigin,
		siteURL:        strings.TrimRight(cfg.PublicSiteURL, "/"),
		contactLimiter: newAttemptLimiter(5, time.Minute),
		log:            log.WithField("component", "http"),
	}
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	now     func() time.Time
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, now: time.Now, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(cutoff)

	kept := l.entries[key][:0]
	for _, ts := range l.entries[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)
	return true
}

// sweep drops clients whose newest attempt is outside the window. Timestamps
// are appended in order so the last one is the newest.
func (l *attemptLimiter) sweep(cutoff time.Time) {
	for key, stamps := range l.entries {
		if len(stamps) == 0 || !stamps[len(stamps)-1].After(cutoff) {
			delete(l.entries, key)
		}
	}
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/sitemap.xml", a.handleSitemap)

	mux.HandleFunc("/api/v1/silos/{category}", a.handleCategory)
	mux.HandleFunc("/api/v1/silos/{category}/{name}", a.handleItem)

	mux.HandleFunc("/api/v1/contact/token", a.handleContactToken)
	mux.HandleFunc("/api/v1/contact", a.handleContact)

	return a.withMiddleware(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" || len(requestID) > 64 {
			requestID = xid.New("req")
		}

		w.Header().Set("X-Request-ID", requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(startedAt).Milliseconds(),
			"remote":      clientKey(r),
		}).Info("request")
	})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
}

func (a *API) writeError(w http.ResponseWriter, status int, err error) {
	// 5xx bodies stay generic; the cause only goes to the log.
	msg := err.Error()
	if status >= 500 {
		a.log.WithField("status", status).WithError(err).Error("internal error")
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
