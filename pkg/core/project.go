package core

// TargetConfig holds warehouse target configuration.
type TargetConfig struct {
	Type string `koanf:"type" yaml:"type"` // duckdb, postgres, snowflake

	// File-based databases (DuckDB)
	Database string `koanf:"database" yaml:"database,omitempty"` // file path or database name

	// Network databases
	Host     string `koanf:"host" yaml:"host,omitempty"`
	Port     int    `koanf:"port" yaml:"port,omitempty"`
	User     string `koanf:"user" yaml:"user,omitempty"`
	Password string `koanf:"password" yaml:"password,omitempty"`

	// Common
	Schema string `koanf:"schema" yaml:"schema,omitempty"`

	// Snowflake-specific
	Account   string `koanf:"account" yaml:"account,omitempty"`
	Warehouse string `koanf:"warehouse" yaml:"warehouse,omitempty"`
	Role      string `koanf:"role" yaml:"role,omitempty"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options" yaml:"options,omitempty"`

	// Params holds adapter-specific configuration (e.g., DuckDB extensions, settings)
	Params map[string]any `koanf:"params" yaml:"params,omitempty"`
}

// AdapterConfig converts the target into the adapter connection config.
func (t *TargetConfig) AdapterConfig() AdapterConfig {
	return AdapterConfig{
		Type:      t.Type,
		Path:      t.Database,
		Database:  t.Database,
		Host:      t.Host,
		Port:      t.Port,
		Username:  t.User,
		Password:  t.Password,
		Schema:    t.Schema,
		Account:   t.Account,
		Warehouse: t.Warehouse,
		Role:      t.Role,
		Options:   t.Options,
		Params:    t.Params,
	}
}
