// Package blobstore abstracts where source images are read from and where
// quantized results are written to.
//
// Implementations must be safe for concurrent use:
//
//   - LocalStore: a directory on the local filesystem, read through mmap
//   - MemoryStore: an in-process map, mostly for tests
//   - s3.Store: Amazon S3 (package blobstore/s3)
//   - minio.Store: MinIO or any S3-compatible server (package blobstore/minio)
//
// Blob names use forward slashes regardless of the backend.
package blobstore
