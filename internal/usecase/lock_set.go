package usecase

import (
	"context"
	"errors"
	"sort"
)

// LockSet is a group of leases acquired in canonical order.
type LockSet struct {
	leases []Lease
}

// AcquireAccounts locks every distinct account id in lexicographic order,
// whatever role the account plays in the transaction. On failure all
// leases taken so far are released.
func AcquireAccounts(ctx context.Context, locker Locker, ids []string, opts LockOptions) (*LockSet, error) {
	keys := make([]string, 0, len(ids))
	for _, id := range canonicalIDs(ids) {
		keys = append(keys, AccountLockKey(id))
	}

	set := &LockSet{leases: make([]Lease, 0, len(keys))}
	for _, key := range keys {
		lease, err := locker.Acquire(ctx, key, opts)
		if err != nil {
			_ = set.Release(ctx)
			return nil, err
		}
		set.leases = append(set.leases, lease)
	}

	return set, nil
}

// Release frees the leases in reverse acquisition order.
func (s *LockSet) Release(ctx context.Context) error {
	if s == nil {
		return nil
	}

	var errs []error
	for i := len(s.leases) - 1; i >= 0; i-- {
		if err := s.leases[i].Release(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.leases = nil

	return errors.Join(errs...)
}

// canonicalIDs drops empties and duplicates and sorts the rest.
func canonicalIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
