package audio

import (
	"math/rand"
	"sync"
)

// cueCache stores rendered cue buffers, generated on first use
type cueCache struct {
	mu    sync.RWMutex
	rng   *rand.Rand
	store [cueCount]floatBuffer
}

func newCueCache(seed int64) *cueCache {
	return &cueCache{rng: rand.New(rand.NewSource(seed))}
}

// get returns the cached buffer or renders it
func (c *cueCache) get(cue Cue) floatBuffer {
	if !cue.Valid() {
		return nil
	}

	c.mu.RLock()
	buf := c.store[cue]
	c.mu.RUnlock()
	if buf != nil {
		return buf
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store[cue] != nil {
		return c.store[cue]
	}
	buf = generateCue(cue, c.rng)
	c.store[cue] = buf
	return buf
}

// preload renders every cue so the first explosion does not stall a frame
func (c *cueCache) preload() {
	for _, cue := range Cues() {
		c.get(cue)
	}
}
