package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinicmgr/clinic-api/pkg/logger"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
)

// LoginLimiter tracks consecutive failed logins per username in Redis and
// locks the account out once the threshold is hit. Redis being down never
// blocks logins; the limiter degrades to allowing the attempt.
type LoginLimiter struct {
	client *redis.Client
	log    *logger.Logger
}

func NewLoginLimiter(client *redis.Client, log *logger.Logger) *LoginLimiter {
	return &LoginLimiter{client: client, log: log}
}

func attemptsKey(username string) string {
	return fmt.Sprintf("login_attempts:%s", username)
}

// Locked reports whether username has exhausted its attempts within the
// lockout window.
func (l *LoginLimiter) Locked(ctx context.Context, username string) bool {
	if l == nil || l.client == nil {
		return false
	}

	attempts, err := l.client.Get(ctx, attemptsKey(username)).Int()
	if err != nil {
		if err != redis.Nil {
			l.log.Warn("login limiter unavailable", "error", err.Error())
		}
		return false
	}

	return attempts >= maxLoginAttempts
}

// RecordFailure bumps the failure counter. The lockout window restarts on
// every failure.
func (l *LoginLimiter) RecordFailure(ctx context.Context, username string) {
	if l == nil || l.client == nil {
		return
	}

	key := attemptsKey(username)
	if err := l.client.Incr(ctx, key).Err(); err != nil {
		l.log.Warn("failed to record login failure", "error", err.Error())
		return
	}
	if err := l.client.Expire(ctx, key, lockoutDuration).Err(); err != nil {
		l.log.Warn("failed to set lockout window", "error", err.Error())
	}
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, username string) {
	if l == nil || l.client == nil {
		return
	}

	if err := l.client.Del(ctx, attemptsKey(username)).Err(); err != nil {
		l.log.Warn("failed to reset login attempts", "error", err.Error())
	}
}
