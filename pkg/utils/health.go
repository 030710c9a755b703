package utils

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// DependencyCheck is one backing service /healthz reports on.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

func PostgresCheck(db *sql.DB, timeout time.Duration) DependencyCheck {
	return DependencyCheck{Name: "postgres", Check: func(ctx context.Context) error {
		return PingPostgres(ctx, db, timeout)
	}}
}

func RedisCheck(rdb *redis.Client, timeout time.Duration) DependencyCheck {
	return DependencyCheck{Name: "redis", Check: func(ctx context.Context) error {
		if rdb == nil {
			return fmt.Errorf("redis: not configured")
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		return nil
	}}
}

// ReadinessHandler answers 200 when every check passes and 503 otherwise.
// Error text is logged, not returned, since it may carry hostnames.
func ReadinessHandler(log func(name string, err error), checks ...DependencyCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, chk := range checks {
			if err := chk.Check(c.Request.Context()); err != nil {
				status = http.StatusServiceUnavailable
				results[chk.Name] = "down"
				if log != nil {
					log(chk.Name, err)
				}
				continue
			}
			results[chk.Name] = "ok"
		}
		overall := "ok"
		if status != http.StatusOK {
			overall = "unavailable"
		}
		c.JSON(status, gin.H{"status": overall, "checks": results})
	}
}
