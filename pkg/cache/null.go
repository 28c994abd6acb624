package cache

import "context"

// NullCache stores nothing. It backs --cache none.
type NullCache struct{}

func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte) error         { return nil }
func (NullCache) Delete(context.Context, string) error              { return nil }
func (NullCache) Clear(context.Context) (int, error)                { return 0, nil }
func (NullCache) Close() error                                      { return nil }

var _ Cache = NullCache{}
