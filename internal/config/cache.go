package config

// CacheConfig configures the TTL cache for upstream API reads.
// TTLs are per resource class: insights change minute-to-minute,
// campaign/adset structure changes rarely, connected pages almost never.
type CacheConfig struct {
	InsightsTTL  string `yaml:"insights_ttl"`
	CampaignsTTL string `yaml:"campaigns_ttl"`
	AdSetsTTL    string `yaml:"adsets_ttl"`
	DetailsTTL   string `yaml:"details_ttl"`
	PagesTTL     string `yaml:"pages_ttl"`

	// SweepInterval is how often the background sweeper removes expired
	// entries regardless of access patterns.
	SweepInterval string `yaml:"sweep_interval"`

	// MaxEntries bounds the cache; oldest entries are evicted past it.
	MaxEntries int `yaml:"max_entries"`
}

func (c *CacheConfig) applyDefaults() {
	if c.InsightsTTL == "" {
		c.InsightsTTL = "2m"
	}
	if c.CampaignsTTL == "" {
		c.CampaignsTTL = "5m"
	}
	if c.AdSetsTTL == "" {
		c.AdSetsTTL = "5m"
	}
	if c.DetailsTTL == "" {
		c.DetailsTTL = "10m"
	}
	if c.PagesTTL == "" {
		c.PagesTTL = "60m"
	}
	if c.SweepInterval == "" {
		c.SweepInterval = "5m"
	}
	if c.MaxEntries <= 0 {
		c.MaxEntries = 4096
	}
}
