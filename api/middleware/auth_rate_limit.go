package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/farmfreshconnect/farmfresh-backend/api/responses"
	pkgerrors "github.com/farmfreshconnect/farmfresh-backend/pkg/errors"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
)

type counterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// AuthRateLimitPolicy throttles an auth surface with fixed windows counted
// per client IP and per submitted email. A zero policy disables the middleware.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	p := AuthRateLimitPolicy{
		name:       strings.ToLower(strings.TrimSpace(name)),
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
	if p.name == "" {
		p.name = "auth"
	}
	return p
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// AuthRateLimit guards sign-in and sign-up against credential stuffing. The
// email counter reads the request body, so the body is restored before the
// request continues down the chain.
func AuthRateLimit(policy AuthRateLimitPolicy, store counterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		lim := &limiter{policy: policy, store: store, logg: logg}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.ipLimit > 0 {
				if !lim.checkIP(ctx, w, clientIP(r)) {
					return
				}
			}
			if policy.emailLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if !lim.checkEmail(ctx, w, emailFromBody(body)) {
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

type limiter struct {
	policy AuthRateLimitPolicy
	store  counterStore
	logg   *logger.Logger
}

// checkIP reports whether the request may proceed; on a block or store
// failure it has already written the response.
func (l *limiter) checkIP(ctx context.Context, w http.ResponseWriter, ip string) bool {
	if ip == "" {
		return true
	}
	key := fmt.Sprintf("rl:ip:%s:%s", l.policy.name, ip)
	return l.check(ctx, w, key, int64(l.policy.ipLimit), map[string]any{"scope": "ip", "ip": ip})
}

func (l *limiter) checkEmail(ctx context.Context, w http.ResponseWriter, email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return true
	}
	sum := sha256.Sum256([]byte(email))
	hash := hex.EncodeToString(sum[:])
	key := fmt.Sprintf("rl:email:%s:%s", l.policy.name, hash)
	return l.check(ctx, w, key, int64(l.policy.emailLimit), map[string]any{"scope": "email", "email_hash": hash})
}

func (l *limiter) check(ctx context.Context, w http.ResponseWriter, key string, limit int64, fields map[string]any) bool {
	count, err := l.store.IncrWithTTL(ctx, key, l.policy.window)
	if err != nil {
		responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return false
	}
	if count <= limit {
		return true
	}

	if l.logg != nil {
		fields["policy"] = l.policy.name
		fields["attempts"] = count
		fields["limit"] = limit
		fields["window_seconds"] = int(l.policy.window.Seconds())
		l.logg.Warn(l.logg.WithFields(ctx, fields), "auth.rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
	return false
}

// clientIP trusts proxy headers first; the service always runs behind one.
func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := strings.TrimSpace(part); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func emailFromBody(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}
