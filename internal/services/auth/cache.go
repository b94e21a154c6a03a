package auth

import (
	"sync"
	"time"

	"github.com/ternarybob/clipper/internal/models"
)

// credentialCache holds the working credential in memory so repeated
// API calls do not hit storage. Invalidate drops it without touching
// the stored copy.
type credentialCache struct {
	mu         sync.RWMutex
	credential *models.Credential
}

// Set replaces the cached credential
func (c *credentialCache) Set(credential *models.Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credential = credential
}

// Get returns the cached credential if it is still usable at the given
// instant, or nil.
func (c *credentialCache) Get(now time.Time) *models.Credential {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.credential != nil && c.credential.Usable(now) {
		return c.credential
	}
	return nil
}

// Invalidate drops the cached credential
func (c *credentialCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credential = nil
}
