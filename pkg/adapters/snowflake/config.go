package snowflake

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/snowflakedb/gosnowflake"
)

// Params holds Snowflake-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Authenticator is one of snowflake, externalbrowser, oauth or username_password_mfa.
	Authenticator string `mapstructure:"authenticator"`

	// LoginTimeout bounds the login request (e.g. "30s").
	LoginTimeout time.Duration `mapstructure:"login_timeout"`

	// Application is reported to Snowflake as the client application name.
	Application string `mapstructure:"application"`

	// Session holds session parameters such as query_tag or timezone.
	Session map[string]string `mapstructure:"session"`
}

func parseParams(raw map[string]any) (*Params, error) {
	p := &Params{Application: "datespine"}
	if len(raw) == 0 {
		return p, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	return p, nil
}

func authType(name string) (gosnowflake.AuthType, error) {
	switch strings.ToLower(name) {
	case "snowflake":
		return gosnowflake.AuthTypeSnowflake, nil
	case "externalbrowser":
		return gosnowflake.AuthTypeExternalBrowser, nil
	case "oauth":
		return gosnowflake.AuthTypeOAuth, nil
	case "username_password_mfa":
		return gosnowflake.AuthTypeUsernamePasswordMFA, nil
	default:
		return 0, fmt.Errorf("unsupported snowflake authenticator %q", name)
	}
}
