package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCursorLimiterBlocksOverLimit(t *testing.T) {
	rl := NewCursorLimiter(2, time.Minute)

	assert.True(t, rl.Allow("s1"))
	assert.True(t, rl.Allow("s1"))
	assert.False(t, rl.Allow("s1"))

	// per-session windows are independent
	assert.True(t, rl.Allow("s2"))
}

func TestCursorLimiterWindowSlides(t *testing.T) {
	rl := NewCursorLimiter(1, 30*time.Millisecond)

	assert.True(t, rl.Allow("s1"))
	assert.False(t, rl.Allow("s1"))

	time.Sleep(50 * time.Millisecond)
	assert.True(t, rl.Allow("s1"))
}

func TestCursorLimiterForget(t *testing.T) {
	rl := NewCursorLimiter(1, time.Minute)

	assert.True(t, rl.Allow("s1"))
	assert.False(t, rl.Allow("s1"))

	rl.Forget("s1")
	assert.True(t, rl.Allow("s1"))
}
