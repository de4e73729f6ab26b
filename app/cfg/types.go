package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath     string
	SourcesDir string

	// Application configuration
	Port              string
	WorkerCount       int
	SchedulerInterval int
	CleanupInterval   int
	RetentionDays     int
	FetchTimeout      int
	Parser            string
	APIAccessKey      string

	// Cache
	RedisAddr string
	CacheTTL  int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

func (c *Cfg) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

func (c *Cfg) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}
