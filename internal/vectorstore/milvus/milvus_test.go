package milvus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFloat32(t *testing.T) {
	got := toFloat32([]float64{0.5, -1, 2.25})
	require.Len(t, got, 3)
	assert.Equal(t, []float32{0.5, -1, 2.25}, got)
	assert.Empty(t, toFloat32(nil))
}

func TestOpenUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Open(ctx, Config{Address: "127.0.0.1:1", Collection: "papers", Timeout: time.Second})
	assert.Error(t, err)
}
