package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures CORS.
type CORSConfig struct {
	// AllowOrigins lists allowed origins. Empty or "*" allows any origin.
	AllowOrigins []string
	// AllowMethods defaults to the methods of the cart API.
	AllowMethods []string
	// AllowHeaders, when empty, echoes Access-Control-Request-Headers.
	AllowHeaders  []string
	ExposeHeaders []string
	// AllowCredentials disables the "*" origin: the request origin is echoed
	// instead.
	AllowCredentials bool
	// MaxAge in seconds. Zero omits the header.
	MaxAge int
}

var defaultCORSMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// CORS answers preflight requests with 204 and decorates actual requests
// from allowed origins.
func CORS(cfg CORSConfig) Middleware {
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = defaultCORSMethods
	}
	p := newOriginPolicy(cfg.AllowOrigins, cfg.AllowCredentials)

	var (
		methods = strings.Join(cfg.AllowMethods, ", ")
		headers = strings.Join(cfg.AllowHeaders, ", ")
		expose  = strings.Join(cfg.ExposeHeaders, ", ")
		maxAge  string
	)
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(cfg.MaxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if !p.any {
				h.Add("Vary", "Origin")
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			allow := p.match(origin)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Add("Vary", "Access-Control-Request-Method")
				h.Add("Vary", "Access-Control-Request-Headers")
				if allow != "" {
					h.Set("Access-Control-Allow-Origin", allow)
					h.Set("Access-Control-Allow-Methods", methods)
					switch {
					case headers != "":
						h.Set("Access-Control-Allow-Headers", headers)
					case r.Header.Get("Access-Control-Request-Headers") != "":
						h.Set("Access-Control-Allow-Headers", r.Header.Get("Access-Control-Request-Headers"))
					}
					if cfg.AllowCredentials {
						h.Set("Access-Control-Allow-Credentials", "true")
					}
					if maxAge != "" {
						h.Set("Access-Control-Max-Age", maxAge)
					}
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if allow != "" {
				h.Set("Access-Control-Allow-Origin", allow)
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				if expose != "" {
					h.Set("Access-Control-Expose-Headers", expose)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type originPolicy struct {
	any  bool
	echo bool
	// lower-cased origin to configured spelling
	allowed map[string]string
}

func newOriginPolicy(origins []string, credentials bool) originPolicy {
	p := originPolicy{allowed: make(map[string]string, len(origins))}
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
			continue
		}
		p.allowed[strings.ToLower(o)] = o
	}
	switch {
	case wildcard && credentials:
		p.echo = true
	case wildcard:
		p.any = true
	}
	return p
}

// match returns the Access-Control-Allow-Origin value for origin, or "" when
// the origin is not allowed.
func (p originPolicy) match(origin string) string {
	switch {
	case p.any:
		return "*"
	case p.echo:
		return origin
	}
	return p.allowed[strings.ToLower(origin)]
}
