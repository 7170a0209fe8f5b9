// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("images/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
// Reads use ranged GetObject calls. Puts go through the s3/manager uploader,
// which switches to multipart uploads for large outputs, and carry a CRC32C
// checksum that S3 verifies on receipt.
package s3
