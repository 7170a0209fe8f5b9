// Package batch quantizes many images from a blob store, each with its own
// clustering engine.
//
// Jobs are independent: a failing image is recorded in its JobResult and the
// run goes on. Cancelling the context stops jobs that have not started yet.
//
//	r := &batch.Runner{
//	    Source:       blobstore.NewLocalStore("in"),
//	    Dest:         blobstore.NewLocalStore("out"),
//	    Clusters:     8,
//	    Artifact:     true,
//	    Report:       true,
//	}
//	results, err := r.RunPrefix(ctx, "")
package batch
