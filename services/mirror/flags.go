package mirror

import (
	"time"

	"github.com/urfave/cli"
)

const (
	MirrorFlag               = "mirror"
	MirrorStrategyFlag       = "mirror-strategy"
	MirrorRetryBudgetFlag    = "mirror-retry-budget"
	MirrorAttemptTimeoutFlag = "mirror-attempt-timeout"
	MirrorBackoffFlag        = "mirror-backoff"
	MirrorUserAgentFlag      = "mirror-user-agent"
	MirrorHealthCooldownFlag = "mirror-health-cooldown"
	MirrorHealthStoreFlag    = "mirror-health-store"
)

const (
	HealthStoreMemory = "memory"
	HealthStoreRedis  = "redis"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringSliceFlag{
			Name:   MirrorFlag,
			Usage:  "mirror base url, may be repeated (defaults to the built-in instance list)",
			EnvVar: "MIRRORS",
		},
		cli.StringFlag{
			Name:   MirrorStrategyFlag,
			Usage:  "mirror selection strategy (sequential or random)",
			Value:  string(StrategySequential),
			EnvVar: "MIRROR_STRATEGY",
		},
		cli.IntFlag{
			Name:   MirrorRetryBudgetFlag,
			Usage:  "max mirrors tried per call (0 = whole pool)",
			Value:  0,
			EnvVar: "MIRROR_RETRY_BUDGET",
		},
		cli.DurationFlag{
			Name:   MirrorAttemptTimeoutFlag,
			Usage:  "timeout of a single mirror attempt",
			Value:  5 * time.Second,
			EnvVar: "MIRROR_ATTEMPT_TIMEOUT",
		},
		cli.DurationFlag{
			Name:   MirrorBackoffFlag,
			Usage:  "linear backoff step between attempts (0 disables)",
			Value:  500 * time.Millisecond,
			EnvVar: "MIRROR_BACKOFF",
		},
		cli.StringFlag{
			Name:   MirrorUserAgentFlag,
			Usage:  "user agent for mirror http client",
			Value:  defaultUserAgent,
			EnvVar: "MIRROR_USER_AGENT",
		},
		cli.DurationFlag{
			Name:   MirrorHealthCooldownFlag,
			Usage:  "how long a failed mirror is moved to the end of the order (0 disables)",
			Value:  0,
			EnvVar: "MIRROR_HEALTH_COOLDOWN",
		},
		cli.StringFlag{
			Name:   MirrorHealthStoreFlag,
			Usage:  "where mirror cool-down marks are kept (memory or redis)",
			Value:  HealthStoreMemory,
			EnvVar: "MIRROR_HEALTH_STORE",
		},
	)
}

// ConfigFromContext reads executor settings from cli flags.
func ConfigFromContext(c *cli.Context) (Config, error) {
	s, err := ParseStrategy(c.String(MirrorStrategyFlag))
	if err != nil {
		return Config{}, err
	}
	return Config{
		Strategy:       s,
		RetryBudget:    c.Int(MirrorRetryBudgetFlag),
		AttemptTimeout: c.Duration(MirrorAttemptTimeoutFlag),
		Backoff:        c.Duration(MirrorBackoffFlag),
		UserAgent:      c.String(MirrorUserAgentFlag),
	}, nil
}

// NewRegistryFromContext builds the registry from flags, falling back to DefaultMirrors.
func NewRegistryFromContext(c *cli.Context) (*Registry, error) {
	urls := c.StringSlice(MirrorFlag)
	if len(urls) == 0 {
		urls = DefaultMirrors
	}
	return NewRegistry(urls)
}
