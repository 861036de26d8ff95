package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/dexcompanion/internal/storage/memory"
	"github.com/cory-johannsen/dexcompanion/internal/storage/storagetest"
)

func TestConformance(t *testing.T) {
	storagetest.Run(t, memory.New())
}

func TestFailSaves(t *testing.T) {
	s := memory.New()
	quota := errors.New("quota")
	s.FailSaves = quota
	assert.ErrorIs(t, s.Save(context.Background(), "x", []byte(`{}`)), quota)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := memory.New().Load(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
