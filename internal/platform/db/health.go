package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
	Healthy         bool   `json:"healthy"`
	Error           string `json:"error,omitempty"`
}

// GetPoolStats returns connection pool statistics.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
		Healthy:         stat.TotalConns() > 0,
	}
}

// Pinger is the subset of a pool the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// checkStores pings every named store and reports whether all are reachable.
func checkStores(ctx context.Context, pingers map[string]Pinger, stats func(name string) *PoolStats) (map[string]*PoolStats, bool) {
	result := make(map[string]*PoolStats, len(pingers))
	healthy := true
	for name, p := range pingers {
		s := stats(name)
		if s == nil {
			s = &PoolStats{}
		}
		if err := p.Ping(ctx); err != nil {
			s.Healthy = false
			s.Error = err.Error()
			healthy = false
		} else {
			s.Healthy = true
		}
		result[name] = s
	}
	return result, healthy
}

// HealthHandler returns a handler that pings each store and reports pool stats.
func HealthHandler(stores *Stores) echo.HandlerFunc {
	pingers := make(map[string]Pinger)
	pools := make(map[string]*pgxpool.Pool)
	for _, st := range stores.All() {
		pingers[st.Name] = st.Pool
		pools[st.Name] = st.Pool
	}
	return healthHandler(pingers, func(name string) *PoolStats {
		return GetPoolStats(pools[name])
	})
}

func healthHandler(pingers map[string]Pinger, stats func(name string) *PoolStats) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		result, healthy := checkStores(ctx, pingers, stats)
		if !healthy {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unhealthy",
				"stores": result,
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"stores": result,
		})
	}
}
