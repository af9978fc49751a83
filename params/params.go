package params

import "time"

const (
	ServerBodyLimit         = 1048576 // 1 MiB
	ServerIdleTimeout       = 30 * time.Second
	ServerReadTimeout       = 10 * time.Second
	ServerWriteTimeout      = 10 * time.Second
	APIVersion              = "1.0"
	RegistrationKeyPrefix   = "reg:"
	PendingRegistrationTTL  = 15 * time.Minute // lifetime of a pending registration, refreshed on resend
	VerificationCodeLength  = 6                // digits in the emailed verification code
	VerificationMaxAttempts = 5                // wrong codes tolerated before the pending registration is discarded
	ResendCodeCooldown      = 60 * time.Second // minimum delay between two verification emails
	SessionTokenExpiration  = 7 * 24 * time.Hour
	MinPasswordLength       = 6
	UnverifiedSweepInterval = 1 * time.Hour
	StoreMaxRetries         = 3 // compare-and-swap retries before giving up with a conflict
	MemoryStoreGCInterval   = 10 * time.Second
	RateLimitRPS            = 5
	RateLimitBurst          = 10
	RateLimitIdleTimeout    = 10 * time.Minute // per-IP limiters unused for this long are dropped
	HealthCheckServerAddr   = ":3001"          // health check server address
	CaptchaVerifyTimeout    = 5 * time.Second
)
