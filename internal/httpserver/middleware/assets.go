package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// CacheAssets applies long-lived Cache-Control and Vary headers to static assets.
func CacheAssets(maxAge time.Duration) func(http.Handler) http.Handler {
	value := "public, max-age=" + strconv.Itoa(int(maxAge.Seconds())) + ", stale-while-revalidate=86400"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Accept-Encoding")
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}
