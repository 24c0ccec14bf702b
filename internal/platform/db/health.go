package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolHealth is what /health reports for the Postgres backend.
type PoolHealth struct {
	Healthy       bool   `json:"healthy"`
	Error         string `json:"error,omitempty"`
	PingLatency   string `json:"ping_latency"`
	TotalConns    int32  `json:"total_conns"`
	IdleConns     int32  `json:"idle_conns"`
	AcquiredConns int32  `json:"acquired_conns"`
	MaxConns      int32  `json:"max_conns"`
}

// CheckPool pings the database once and snapshots the pool counters.
func CheckPool(ctx context.Context, pool *pgxpool.Pool) PoolHealth {
	start := time.Now()
	err := pool.Ping(ctx)

	stat := pool.Stat()
	h := PoolHealth{
		Healthy:       err == nil,
		PingLatency:   time.Since(start).String(),
		TotalConns:    stat.TotalConns(),
		IdleConns:     stat.IdleConns(),
		AcquiredConns: stat.AcquiredConns(),
		MaxConns:      stat.MaxConns(),
	}
	if err != nil {
		h.Error = err.Error()
	}
	return h
}
