// Package dynconfig manages runtime configuration items persisted as strings and served
// decoded from a cache.
//
// A Manager sits between a Repository (the source of truth) and a cache.Strategy. Reads are
// cache-aside and never fail: a miss falls through to the repository, and a repository error
// resolves to the caller supplied default. Writes go to the repository first and are then
// mirrored into the cache as decoded values.
//
//	mgr, err := dynconfig.NewManager(ctx, repo, strategy, dynconfig.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//
//	name := mgr.GetString(ctx, "app.name", "unnamed")
//	if err := mgr.Set(ctx, "app.debug", true); err != nil {
//		return err
//	}
//
// BatchUpdate applies several values in one repository call. When that call fails the cache
// is put back to the state it had before the batch started.
package dynconfig
