package globals

import (
	"context"
	"log/slog"

	"dbxbridge/lib/cachestore"
	"dbxbridge/lib/restyutil"
	"dbxbridge/lib/scrapers/dropbox/cached"
	"dbxbridge/lib/scrapers/dropbox/core"
)

type key struct{}

type Value struct {
	Config  Config
	Verbose bool

	store  cachestore.Store
	client *core.Client
	remote core.Service
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key{}).(*Value)
}

// Remote logs in on first use and returns the client, behind the cache
// unless the cache backend is "none".
func (v *Value) Remote(ctx context.Context) (core.Service, error) {
	if v.remote != nil {
		return v.remote, nil
	}

	opts := v.Config.ClientOptions()
	if v.Verbose && v.Config.Http.DumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(v.Config.Http.DumpDir)
		if err != nil {
			slog.WarnContext(ctx, "failed to create request dump directory", "err", err)
		} else {
			opts.Session.DumpOutput = output
		}
	}

	client, err := core.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	v.client = client

	store, err := cachestore.Open(ctx, v.Config.Cache)
	if err != nil {
		return nil, err
	}
	v.store = store

	if _, disabled := store.(cachestore.None); disabled {
		v.remote = client
		return v.remote, nil
	}
	v.remote = cached.New(client, store)
	return v.remote, nil
}

// Close closes the cache store if Remote opened one, it is safe to call more
// than once.
func (v *Value) Close() error {
	if v.store == nil {
		return nil
	}
	err := v.store.Close()
	v.store = nil
	v.remote = nil
	return err
}
