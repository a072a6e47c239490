// Package dictionary serves named enumerations and trees of selectable values, such as
// country lists or order statuses.
//
// Items of one dictionary share a code. Reads go through an optional cache; writes invalidate
// only the entries of the code they touch. Deleting an item disables it, so it disappears
// from listings while FindByID still returns it.
//
//	mgr, _ := dictionary.NewManager(repo, dictionary.WithCache(strategy))
//	statuses, err := mgr.FindByCode(ctx, "order-status")
//	regions, err := mgr.GetTree(ctx, "region")
package dictionary
