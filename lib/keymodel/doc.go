// Package keymodel provides row-oriented models of single keys for value
// editors.
//
// A model is created with New, which detects the key type with TYPE and
// returns one of ListModel, SetModel, ZSetModel, HashModel or StringModel.
// All of them implement KeyModel.
//
// Rows are read from a local cache that is filled with LoadRows. Lists and
// sorted sets are loaded page by page, sets, hashes and strings are fetched
// as a whole. Writes are optimistic: before a row is changed the live value
// is fetched again and compared with the cached one, and the write fails with
// common.ErrConcurrentModification if another client changed it.
//
// Usage Example:
//
//	model, err := keymodel.New(ctx, conn, "mylist", 0)
//	if err != nil {
//	  return err
//	}
//	defer model.Close()
//
//	model.LoadRows(ctx, 0, 100, func(err error) {
//	  // rows 0..99 are cached now
//	})
//
//	err = model.UpdateRow(ctx, 3, keymodel.ValueRow("new value"))
//	if errors.Is(err, common.ErrConcurrentModification) {
//	  _ = model.Refresh(ctx)
//	}
//
// Thread Safety:
//
//	Models can be used from multiple goroutines. onDone callbacks and events
//	are delivered on goroutines of the model, never on the transporter
//	goroutine, so they may issue further commands.
package keymodel
