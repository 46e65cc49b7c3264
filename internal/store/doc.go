// Package store provides key/value persistence for JSON documents.
//
// Adapter is the backend interface; MemoryAdapter is the in-memory
// implementation. Load and Save move typed values in and out:
//
//	a := store.NewMemoryAdapter()
//	if err := store.Save(ctx, a, "session-1", transcript); err != nil {
//	    return err
//	}
//	got, err := store.Load[[]ai.Message](ctx, a, "session-1")
package store
