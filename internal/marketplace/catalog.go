package marketplace

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/talent-marketplace/internal/logger"
	"github.com/iliyamo/talent-marketplace/internal/model"
)

// ProfileLister is the part of Store the catalog reads from.
type ProfileLister interface {
	ListProfiles(ctx context.Context) ([]model.Profile, error)
}

// CatalogReader fetches talent profiles.  Every ListTalents call goes to
// the store; the result is kept only so that GetTalent can resolve a
// selection made from the listing the user is looking at.
type CatalogReader struct {
	store ProfileLister
	log   *logrus.Entry

	mu      sync.RWMutex
	talents []model.Profile
}

func NewCatalogReader(store ProfileLister) *CatalogReader {
	if store == nil {
		panic("nil store passed to NewCatalogReader")
	}
	return &CatalogReader{store: store, log: logger.WithComponent("catalog")}
}

// ListTalents returns every profile.  A read failure is logged and
// yields an empty listing.
func (c *CatalogReader) ListTalents(ctx context.Context) []model.Profile {
	talents, err := c.store.ListProfiles(ctx)
	if err != nil {
		c.log.WithError(err).Warn("list profiles failed")
		talents = nil
	}
	if talents == nil {
		talents = []model.Profile{}
	}

	c.mu.Lock()
	c.talents = talents
	c.mu.Unlock()
	return cloneProfiles(talents)
}

// GetTalent looks id up in the last fetched listing.
func (c *CatalogReader) GetTalent(id uint64) (model.Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.talents {
		if p.ID == id {
			return p, true
		}
	}
	return model.Profile{}, false
}

func cloneProfiles(in []model.Profile) []model.Profile {
	out := make([]model.Profile, len(in))
	copy(out, in)
	return out
}
