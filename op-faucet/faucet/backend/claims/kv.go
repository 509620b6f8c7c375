package claims

import (
	"context"
	"errors"
	"strings"

	ds "github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/query"
	dssync "github.com/ipfs/go-datastore/sync"
	leveldb "github.com/ipfs/go-ds-leveldb"
)

// ErrNotFound is returned by KV.Get for missing keys.
var ErrNotFound = errors.New("not found")

// KV is the embedded key-value storage behind a Store.
// PutSync must only return once the write is durable.
type KV interface {
	Has(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	PutSync(ctx context.Context, key string, value []byte) error
	// Iterate calls fn for every key with the given prefix, stopping at the first error.
	Iterate(ctx context.Context, prefix string, fn func(key string, value []byte) error) error
	Close() error
}

type datastoreKV struct {
	store ds.Datastore
}

var _ KV = (*datastoreKV)(nil)

// NewLevelDBKV opens (or creates) a LevelDB database at path.
func NewLevelDBKV(path string) (KV, error) {
	store, err := leveldb.NewDatastore(path, nil)
	if err != nil {
		return nil, err
	}
	return &datastoreKV{store: store}, nil
}

// NewMemoryKV returns a volatile KV, for tests and throwaway devnets.
func NewMemoryKV() KV {
	return &datastoreKV{store: dssync.MutexWrap(ds.NewMapDatastore())}
}

func (d *datastoreKV) Has(ctx context.Context, key string) (bool, error) {
	return d.store.Has(ctx, ds.NewKey(key))
}

func (d *datastoreKV) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := d.store.Get(ctx, ds.NewKey(key))
	if errors.Is(err, ds.ErrNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}

func (d *datastoreKV) PutSync(ctx context.Context, key string, value []byte) error {
	k := ds.NewKey(key)
	if err := d.store.Put(ctx, k, value); err != nil {
		return err
	}
	return d.store.Sync(ctx, k)
}

func (d *datastoreKV) Iterate(ctx context.Context, prefix string, fn func(key string, value []byte) error) error {
	// datastore prefixes match whole path segments, so filter here instead
	res, err := d.store.Query(ctx, query.Query{})
	if err != nil {
		return err
	}
	defer res.Close()
	for r := range res.Next() {
		if r.Error != nil {
			return r.Error
		}
		key := strings.TrimPrefix(r.Key, "/")
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if err := fn(key, r.Value); err != nil {
			return err
		}
	}
	return nil
}

func (d *datastoreKV) Close() error {
	return d.store.Close()
}
