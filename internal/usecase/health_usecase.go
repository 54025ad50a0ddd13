package usecase

import (
	"context"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// RedisCheck reports whether Redis is in use and whether it answered
type RedisCheck func(ctx context.Context) (bool, error)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	relayConfigured bool
	db              Pinger
	redis           RedisCheck
}

// NewHealthUsecase reports dependency status. db and redis may be nil.
func NewHealthUsecase(relayConfigured bool, db Pinger, redis RedisCheck) HealthUsecase {
	return &healthUsecase{
		relayConfigured: relayConfigured,
		db:              db,
		redis:           redis,
	}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{
		"status":   "ok",
		"relay":    "configured",
		"database": "disabled",
		"redis":    "disabled",
	}
	if !u.relayConfigured {
		status["relay"] = "not_configured"
	}

	if u.db != nil {
		status["database"] = "ok"
		if err := u.db.Ping(ctx); err != nil {
			status["database"] = "unreachable"
			status["status"] = "degraded"
		}
	}

	if u.redis != nil {
		inUse, err := u.redis(ctx)
		switch {
		case !inUse:
		case err != nil:
			status["redis"] = "unreachable"
			status["status"] = "degraded"
		default:
			status["redis"] = "ok"
		}
	}

	return status
}
