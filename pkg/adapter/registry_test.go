package adapter

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownAdapterError_Error(t *testing.T) {
	err := &UnknownAdapterError{
		Type:      "fake_db",
		Available: []string{"duckdb", "postgres", "snowflake"},
	}

	msg := err.Error()
	assert.Contains(t, msg, "fake_db", "error should mention the unknown type")
	assert.Contains(t, msg, "snowflake", "error should list available adapters")
	assert.Contains(t, msg, "datespine.yaml", "error should mention config file")
}

func TestRegister(t *testing.T) {
	Register("Test_Adapter_Internal", func(_ *slog.Logger) Adapter { return nil })

	assert.True(t, IsRegistered("test_adapter_internal"), "registration is case-insensitive")

	factory, ok := Get("TEST_ADAPTER_INTERNAL")
	assert.True(t, ok)
	assert.NotNil(t, factory)
	assert.Contains(t, ListAdapters(), "test_adapter_internal")
}

func TestNewAdapter_EmptyType(t *testing.T) {
	_, err := NewAdapter(Config{Type: ""}, nil)
	require.Error(t, err)
	assert.Equal(t, "adapter type not specified", err.Error())
}

func TestNewAdapter_Unknown(t *testing.T) {
	_, err := NewAdapter(Config{Type: "oracle"}, nil)
	require.Error(t, err)

	var unknown *UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "oracle", unknown.Type)
}
