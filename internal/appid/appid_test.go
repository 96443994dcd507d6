package appid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	identity, err := Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "movelens", identity.BinaryName)
	assert.Equal(t, "MOVELENS_", identity.EnvPrefix)
	assert.Equal(t, "movelens", identity.ConfigName)
	assert.NotEmpty(t, identity.Description)
}

func TestGetReturnsCopy(t *testing.T) {
	first, err := Get(context.Background())
	require.NoError(t, err)
	first.BinaryName = "mutated"

	second, err := Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "movelens", second.BinaryName)
}

func TestGetCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTelemetryNamespace(t *testing.T) {
	identity := &Identity{BinaryName: "Move-Lens.dev"}
	assert.Equal(t, "move_lens_dev", identity.TelemetryNamespace())

	var missing *Identity
	assert.Equal(t, "", missing.TelemetryNamespace())
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&Identity{}).Validate())
	assert.Error(t, (&Identity{BinaryName: "movelens"}).Validate())
	assert.Error(t, (&Identity{BinaryName: "movelens", EnvPrefix: "MOVELENS_"}).Validate())
	assert.NoError(t, (&Identity{BinaryName: "movelens", EnvPrefix: "MOVELENS_", ConfigName: "movelens"}).Validate())
}
