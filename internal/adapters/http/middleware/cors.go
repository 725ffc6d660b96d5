package middleware

import "net/http"

// PreflightMaxAge is how long browsers may cache a preflight response, in seconds.
const PreflightMaxAge = "86400"

// AllowOrigin sets Access-Control-Allow-Origin on every response, including
// errors produced by outer middleware and unmatched routes.
func AllowOrigin(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			next.ServeHTTP(w, r)
		})
	}
}

// Preflight answers OPTIONS requests for one route with 200, an empty body
// and the route's allowed methods. Other methods pass through.
func Preflight(methods string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			h := w.Header()
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Set("Access-Control-Max-Age", PreflightMaxAge)
			w.WriteHeader(http.StatusOK)
		})
	}
}
