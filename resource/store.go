package resource

import (
	"context"

	"github.com/hupe1980/palette/blobstore"
)

// Throttle wraps s so reads and puts draw from the controller's IO budget.
func (c *Controller) Throttle(s blobstore.BlobStore) blobstore.BlobStore {
	if c == nil {
		return s
	}
	return &throttledStore{BlobStore: s, rc: c}
}

type throttledStore struct {
	blobstore.BlobStore
	rc *Controller
}

func (s *throttledStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	b, err := s.BlobStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttledBlob{Blob: b, rc: s.rc}, nil
}

func (s *throttledStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.rc.AcquireIO(ctx, len(data)); err != nil {
		return err
	}
	return s.BlobStore.Put(ctx, name, data)
}

type throttledBlob struct {
	blobstore.Blob
	rc *Controller
}

func (b *throttledBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	want := len(p)
	if rest := b.Size() - off; rest >= 0 && int64(want) > rest {
		want = int(rest)
	}
	if err := b.rc.AcquireIO(ctx, want); err != nil {
		return 0, err
	}
	return b.Blob.ReadAt(ctx, p, off)
}
