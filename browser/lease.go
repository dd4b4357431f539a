package browser

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrLeaseHeld is wrapped by lease errors so callers can branch on it.
var ErrLeaseHeld = errors.New("page lease held")

// PageLease records which test currently owns a page.
type PageLease struct {
	Owner     string
	LeasedAt  time.Time
	ExpiresAt time.Time
}

// leaseManager coordinates page ownership when parallel tests share one
// browser session. Expiry keeps a crashed test from holding a page forever.
type leaseManager struct {
	leases map[string]*PageLease // pageID → lease
	mu     sync.Mutex
}

const (
	defaultLeaseTTL = 30 * time.Second
	maxLeaseTTL     = 5 * time.Minute
)

func newLeaseManager() *leaseManager {
	return &leaseManager{leases: make(map[string]*PageLease)}
}

// Acquire takes a lease on a page for the given owner. Fails if a
// different owner holds an unexpired lease. Re-acquiring extends.
func (lm *leaseManager) Acquire(pageID, owner string, ttl time.Duration) error {
	if owner == "" {
		return fmt.Errorf("owner required")
	}
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	if ttl > maxLeaseTTL {
		ttl = maxLeaseTTL
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	if existing, ok := lm.leases[pageID]; ok {
		if time.Now().Before(existing.ExpiresAt) && existing.Owner != owner {
			return fmt.Errorf("%w by %q until %s", ErrLeaseHeld, existing.Owner, existing.ExpiresAt.Format(time.RFC3339))
		}
	}

	lm.leases[pageID] = &PageLease{
		Owner:     owner,
		LeasedAt:  time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Release drops a lease. Only the owner (or anyone after expiry) may
// release; releasing an unleased page is idempotent.
func (lm *leaseManager) Release(pageID, owner string) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	existing, ok := lm.leases[pageID]
	if !ok {
		return nil
	}

	if existing.Owner != owner && time.Now().Before(existing.ExpiresAt) {
		return fmt.Errorf("%w by %q, cannot release", ErrLeaseHeld, existing.Owner)
	}

	delete(lm.leases, pageID)
	return nil
}

// Get returns the lease for a page, or nil if unleased/expired.
func (lm *leaseManager) Get(pageID string) *PageLease {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lease, ok := lm.leases[pageID]
	if !ok {
		return nil
	}
	if time.Now().After(lease.ExpiresAt) {
		delete(lm.leases, pageID)
		return nil
	}
	return lease
}

// Check returns an error if the page is leased to someone other than owner.
func (lm *leaseManager) Check(pageID, owner string) error {
	lease := lm.Get(pageID)
	if lease == nil {
		return nil
	}
	if owner == "" || lease.Owner != owner {
		return fmt.Errorf("%w by %q until %s", ErrLeaseHeld, lease.Owner, lease.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}
