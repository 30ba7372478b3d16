package api

import (
	"context"
	"time"

	"github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type HealthChecker interface {
	HealthCheck() echo.HandlerFunc
}

type healthChecker struct {
	health *health.Health
}

func NewHealthChecker(version string, checks ...health.Config) (HealthChecker, error) {
	h, err := health.New(health.WithComponent(health.Component{Name: "groupmatch", Version: version}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create health checker")
	}

	for _, check := range checks {
		if err = h.Register(check); err != nil {
			return nil, errors.Wrapf(err, "failed to register health check %q", check.Name)
		}
	}

	return &healthChecker{
		health: h,
	}, nil
}

// PingCheck reports the component unavailable whenever ping fails.
func PingCheck(name string, ping func(context.Context) error) health.Config {
	return health.Config{
		Name:    name,
		Timeout: 2 * time.Second,
		Check: func(ctx context.Context) error {
			return ping(ctx)
		},
	}
}

func (h *healthChecker) HealthCheck() echo.HandlerFunc {
	return echo.WrapHandler(h.health.Handler())
}
