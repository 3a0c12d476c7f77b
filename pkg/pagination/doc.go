// Package pagination splits id lists into fixed-size batches and drives
// them strictly in order.
//
// The BGG thing endpoint accepts at most 15 ids per request, so a
// collection listing is partitioned into consecutive batches of 15 (the
// last may be smaller) and each batch is fetched only after the previous
// one has finished. Overlap is never attempted: every request already
// passes through the process-wide pacer.
//
// Example usage:
//
//	err := pagination.ForEachBatch(ctx, ids, pagination.DefaultBatchSize,
//		func(ctx context.Context, b pagination.Batch[string]) error {
//			details, err := bgg.FetchThings(ctx, b.Items)
//			if err != nil {
//				return err
//			}
//			fold(details)
//			return nil
//		})
//
// A failing batch stops the walk and its error is returned unchanged, so
// callers never see a partially processed list as success.
package pagination
