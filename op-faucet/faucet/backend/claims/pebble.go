package claims

import (
	"context"
	"errors"

	"github.com/cockroachdb/pebble"
)

type pebbleKV struct {
	db *pebble.DB
}

var _ KV = (*pebbleKV)(nil)

// NewPebbleKV opens (or creates) a Pebble database at path.
func NewPebbleKV(path string) (KV, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &pebbleKV{db: db}, nil
}

func (p *pebbleKV) Has(ctx context.Context, key string) (bool, error) {
	_, err := p.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (p *pebbleKV) Get(_ context.Context, key string) ([]byte, error) {
	v, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), v...), nil
}

func (p *pebbleKV) PutSync(_ context.Context, key string, value []byte) error {
	return p.db.Set([]byte(key), value, pebble.Sync)
}

func (p *pebbleKV) Iterate(ctx context.Context, prefix string, fn func(key string, value []byte) error) error {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: prefixUpperBound([]byte(prefix)),
	})
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(string(iter.Key()), append([]byte(nil), iter.Value()...)); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (p *pebbleKV) Close() error {
	return p.db.Close()
}

// prefixUpperBound returns the smallest key greater than every key with the prefix,
// or nil if there is none.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
