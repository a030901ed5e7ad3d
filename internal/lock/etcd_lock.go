package lock

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/auto-dns/docker-hosts-sync/internal/config"
	"github.com/rs/zerolog"
	clientv3 "go.etcd.io/etcd/client/v3"
)

type etcdClient interface {
	Delete(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error)
	Grant(ctx context.Context, ttl int64) (*clientv3.LeaseGrantResponse, error)
	Txn(ctx context.Context) clientv3.Txn
	Revoke(ctx context.Context, id clientv3.LeaseID) (*clientv3.LeaseRevokeResponse, error)
	Close() error
}

// EtcdLocker is a lease based lock shared by every instance pointed at the same etcd
// cluster, so instances on different machines writing one shared file take turns.
type EtcdLocker struct {
	client   etcdClient
	cfg      *config.EtcdConfig
	hostname string
	logger   zerolog.Logger
}

func NewEtcdLocker(client etcdClient, cfg *config.EtcdConfig, hostname string, logger zerolog.Logger) *EtcdLocker {
	return &EtcdLocker{
		client:   client,
		cfg:      cfg,
		hostname: hostname,
		logger:   logger.With().Str("component", "etcd_lock").Logger(),
	}
}

// LockTransaction tries to acquire locks on all keys, runs fn, and finally releases all
// locks. Keys are locked in sorted order so two instances cannot deadlock.
func (el *EtcdLocker) LockTransaction(ctx context.Context, keys []string, fn func() error) error {
	uniqueKeys := uniqueSorted(keys)
	leases := make([]heldLease, 0, len(uniqueKeys))

	for _, key := range uniqueKeys {
		held, err := el.acquire(ctx, key)
		if err != nil {
			el.release(leases)
			return err
		}
		leases = append(leases, held)
	}

	// Execute the provided function with locks held.
	err := fn()

	el.release(leases)
	return err
}

func (el *EtcdLocker) acquire(ctx context.Context, key string) (heldLease, error) {
	lockKey := lockKeyFor(el.cfg.PathPrefix, key)
	leaseResp, err := el.client.Grant(ctx, int64(el.cfg.LockTTL))
	if err != nil {
		return heldLease{}, fmt.Errorf("failed to create lease: %w", err)
	}

	timeout := time.Duration(el.cfg.LockTimeout * float64(time.Second))
	retry := time.Duration(el.cfg.LockRetryInterval * float64(time.Second))
	start := time.Now()
	for {
		txnResp, err := el.client.Txn(ctx).
			If(clientv3.Compare(clientv3.CreateRevision(lockKey), "=", 0)).
			Then(clientv3.OpPut(lockKey, el.hostname, clientv3.WithLease(leaseResp.ID))).
			Commit()
		if err != nil {
			el.revoke(leaseResp.ID, lockKey)
			return heldLease{}, err
		}
		if txnResp.Succeeded {
			el.logger.Debug().Str("lock_key", lockKey).Msg("Acquired lock")
			return heldLease{lockKey: lockKey, lease: leaseResp.ID}, nil
		}
		if time.Since(start) >= timeout {
			el.revoke(leaseResp.ID, lockKey)
			return heldLease{}, fmt.Errorf("failed to acquire lock on %s", key)
		}

		select {
		case <-ctx.Done():
			el.revoke(leaseResp.ID, lockKey)
			return heldLease{}, ctx.Err()
		case <-time.After(retry):
		}
	}
}

// release drops the locks in reverse order. It uses a fresh context so locks are freed
// even when the caller's context was cancelled mid-transaction.
func (el *EtcdLocker) release(leases []heldLease) {
	for i := len(leases) - 1; i >= 0; i-- {
		l := leases[i]
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if _, errDel := el.client.Delete(ctx, l.lockKey); errDel != nil {
			el.logger.Warn().Err(errDel).Msgf("failed to delete lock key %s", l.lockKey)
		}
		cancel()
		el.revoke(l.lease, l.lockKey)
	}
}

func (el *EtcdLocker) revoke(id clientv3.LeaseID, lockKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, errRevoke := el.client.Revoke(ctx, id); errRevoke != nil {
		el.logger.Warn().Err(errRevoke).Msgf("failed to revoke lease for %s", lockKey)
	}
}

func (el *EtcdLocker) Close() error {
	return el.client.Close()
}

func uniqueSorted(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
