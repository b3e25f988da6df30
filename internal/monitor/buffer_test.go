package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/veryresto/pingmo/internal/models"
)

func TestBufferClampsTimestamps(t *testing.T) {
	b := NewBuffer(4)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, b.Append(models.NewSuccess(now, "a", 1)))
	assert.NoError(t, b.Append(models.NewSuccess(now.Add(-time.Second), "a", 2)))
	assert.NoError(t, b.Append(models.NewFailure(now.Add(time.Second), "a")))

	obs := b.Seal()
	assert.Len(t, obs, 3)
	assert.Equal(t, now, obs[1].Timestamp)
	assert.Equal(t, now.Add(time.Second), obs[2].Timestamp)
}

func TestBufferSealed(t *testing.T) {
	b := NewBuffer(0)
	b.Seal()

	assert.ErrorIs(t, b.Append(models.NewFailure(time.Now(), "a")), ErrSealed)
	assert.Equal(t, 0, b.Len())
}
