package config

// MetaConfig configures the read-only Meta Graph API client.
type MetaConfig struct {
	AccessToken string `yaml:"access_token"`
	BaseURL     string `yaml:"base_url"`
	APIVersion  string `yaml:"api_version"`
	Timeout     string `yaml:"timeout"`
}

func (c *MetaConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://graph.facebook.com"
	}
	if c.APIVersion == "" {
		c.APIVersion = "v19.0"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
}
