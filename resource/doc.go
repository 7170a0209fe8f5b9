// Package resource bounds what a batch run may consume at once:
//
//   - Workers: concurrent quantization jobs (weighted semaphore)
//   - Memory: bytes reserved for decoded pixels and clustering state
//   - IO: bytes per second read from and written to blob stores (token bucket)
//
//	rc := resource.NewController(resource.Config{
//	    MaxWorkers:         4,
//	    MemoryLimitBytes:   1 << 30,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//	store := rc.Throttle(blobstore.NewLocalStore("images"))
//
// All methods are safe for concurrent use and a nil *Controller imposes no
// limits.
package resource
