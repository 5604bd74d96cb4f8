package config

// DatabaseConfig holds storage configuration
type DatabaseConfig struct {
	URL    string
	Driver string
}

// GetConnectionString returns the PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return c.URL
}

// InMemory reports whether repositories should live in process memory
func (c *DatabaseConfig) InMemory() bool {
	return c.Driver == DriverMemory
}
