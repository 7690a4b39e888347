package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// Login attempts per client IP: sustained rate and burst budget.
	loginRatePerSecond = 0.5
	loginBurst         = 5
)
