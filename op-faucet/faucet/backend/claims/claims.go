package claims

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ethereum/go-ethereum/log"
)

const (
	BackendLevelDB = "leveldb"
	BackendPebble  = "pebble"

	// MemoryPath selects a volatile in-memory store, regardless of backend.
	MemoryPath = "memory"
)

type Config struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	// CacheSize bounds the number of claimed keys kept in memory. 0 disables the cache.
	CacheSize int `yaml:"cache_size"`
}

func (c Config) Check() error {
	if c.Path == "" {
		return errors.New("empty state path")
	}
	switch c.Backend {
	case BackendLevelDB, BackendPebble:
	default:
		return fmt.Errorf("unknown state backend %q", c.Backend)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("negative claim cache size %d", c.CacheSize)
	}
	return nil
}

// Store is the durable set of served addresses and chat identities.
// A record is only ever created, never changed or removed, so its presence
// is the sole authority on whether a key was served.
type Store struct {
	log log.Logger
	kv  KV

	// keys known to be claimed
	cache *lru.Cache[Key, struct{}]

	now func() time.Time
}

// Open opens the store described by the config.
func Open(logger log.Logger, cfg Config) (*Store, error) {
	var (
		kv  KV
		err error
	)
	switch {
	case cfg.Path == MemoryPath:
		logger.Warn("Using in-memory claim store, claims will not survive a restart")
		kv = NewMemoryKV()
	case cfg.Backend == BackendPebble:
		kv, err = NewPebbleKV(cfg.Path)
	case cfg.Backend == BackendLevelDB || cfg.Backend == "":
		kv, err = NewLevelDBKV(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, &StoreError{Op: "open", Err: fmt.Errorf("%s at %s: %w", cfg.Backend, cfg.Path, err)}
	}
	return NewStore(logger, kv, cfg.CacheSize)
}

// NewStore wraps an already opened KV.
func NewStore(logger log.Logger, kv KV, cacheSize int) (*Store, error) {
	s := &Store{log: logger, kv: kv, now: time.Now}
	if cacheSize > 0 {
		cache, err := lru.New[Key, struct{}](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create claim cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Has reports whether a claim record exists for the key.
func (s *Store) Has(ctx context.Context, key Key) (bool, error) {
	if s.cache != nil && s.cache.Contains(key) {
		return true, nil
	}
	ok, err := s.kv.Has(ctx, string(key))
	if err != nil {
		return false, &StoreError{Op: "has", Key: key, Err: err}
	}
	if ok && s.cache != nil {
		s.cache.Add(key, struct{}{})
	}
	return ok, nil
}

// Mark durably records a claim for the key, stamped with the current time.
// An existing record is left untouched.
func (s *Store) Mark(ctx context.Context, key Key) error {
	ok, err := s.Has(ctx, key)
	if err != nil {
		return err
	}
	if ok {
		s.log.Debug("Claim already recorded", "key", key)
		return nil
	}
	value := strconv.FormatInt(s.now().Unix(), 10)
	if err := s.kv.PutSync(ctx, string(key), []byte(value)); err != nil {
		return &StoreError{Op: "mark", Key: key, Err: err}
	}
	if s.cache != nil {
		s.cache.Add(key, struct{}{})
	}
	return nil
}

// ClaimedAt returns when the key was claimed. A record whose timestamp
// cannot be parsed still counts as claimed, with a zero time.
func (s *Store) ClaimedAt(ctx context.Context, key Key) (time.Time, bool, error) {
	v, err := s.kv.Get(ctx, string(key))
	if errors.Is(err, ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, &StoreError{Op: "get", Key: key, Err: err}
	}
	return parseClaimTime(v), true, nil
}

// Range calls fn for every claim whose key starts with prefix.
func (s *Store) Range(ctx context.Context, prefix string, fn func(key Key, claimedAt time.Time) error) error {
	err := s.kv.Iterate(ctx, prefix, func(key string, value []byte) error {
		return fn(Key(key), parseClaimTime(value))
	})
	var storeErr *StoreError
	if err != nil && !errors.As(err, &storeErr) {
		return &StoreError{Op: "range", Key: Key(prefix), Err: err}
	}
	return err
}

func (s *Store) Close() error {
	if err := s.kv.Close(); err != nil {
		return &StoreError{Op: "close", Err: err}
	}
	return nil
}

func parseClaimTime(v []byte) time.Time {
	secs, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}
