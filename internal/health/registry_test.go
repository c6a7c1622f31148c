package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryReady(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	require.NoError(t, r.Ready(ctx), "empty registry is ready")

	r.Register("catalog", NewFuncProvider("catalog", func(context.Context) error { return nil }))
	r.Register("redis", NewFuncProvider("redis", func(context.Context) error { return errors.New("connection refused") }))

	assert.Equal(t, []string{"catalog", "redis"}, r.List())
	assert.Equal(t, "redis", r.Get("redis").Type())

	err := r.Ready(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: connection refused")

	results := r.HealthCheckAll(ctx)
	assert.NoError(t, results["catalog"])
	assert.Error(t, results["redis"])

	r.Unregister("redis")
	assert.NoError(t, r.Ready(ctx))
	assert.Nil(t, r.Get("redis"))
}
