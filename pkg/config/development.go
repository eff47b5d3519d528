package config

func loadDevelopmentConfig(cfg *Config) {
	cfg.DatabaseDebug = true
	if cfg.JWTSecret == "" {
		// Stable secret so dev sessions survive restarts. Never used outside
		// of local development.
		cfg.JWTSecret = "shelftrack-development-secret"
	}
}

func loadTestConfig(cfg *Config) {
	cfg.DatabaseFilePath = ":memory:"
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "shelftrack-test-secret"
	}
}
