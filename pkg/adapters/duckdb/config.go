package duckdb

import (
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
)

// Params holds DuckDB-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Extensions to install and load (e.g., "httpfs", "icu")
	Extensions []string `mapstructure:"extensions"`

	// Settings to apply at session level (e.g., memory_limit, threads, TimeZone)
	Settings map[string]string `mapstructure:"settings"`
}

// parseParams decodes the raw params map. Scalar settings such as
// threads: 4 are accepted and converted to strings.
func parseParams(raw map[string]any) (*Params, error) {
	p := &Params{}
	if len(raw) == 0 {
		return p, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}

	for name := range p.Settings {
		if !core.ValidIdentifier(name) {
			return nil, fmt.Errorf("invalid setting name %q", name)
		}
	}
	return p, nil
}

// settingStatements renders SET statements in a stable order.
func (p *Params) settingStatements() []string {
	names := make([]string, 0, len(p.Settings))
	for name := range p.Settings {
		names = append(names, name)
	}
	sort.Strings(names)

	stmts := make([]string, 0, len(names))
	for _, name := range names {
		stmts = append(stmts, fmt.Sprintf("SET %s = %s", name, quoteLiteral(p.Settings[name])))
	}
	return stmts
}
