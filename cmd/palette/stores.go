package main

import (
	"context"
	"fmt"

	"github.com/hupe1980/palette/blobstore"
	miniostore "github.com/hupe1980/palette/blobstore/minio"
	s3store "github.com/hupe1980/palette/blobstore/s3"
	"github.com/hupe1980/palette/internal/config"
)

func openStore(ctx context.Context, sc config.StoreConfig) (blobstore.BlobStore, error) {
	switch sc.Type {
	case config.StoreLocal:
		return blobstore.NewLocalStore(sc.Path), nil
	case config.StoreS3:
		return s3store.New(ctx, sc.Bucket,
			s3store.WithPrefix(sc.RootPath),
			s3store.WithRegion(sc.Region),
			s3store.WithEndpoint(sc.Endpoint),
		)
	case config.StoreMinio:
		return miniostore.Dial(sc.Endpoint, sc.AccessKey, sc.SecretKey, sc.UseSSL, sc.Bucket, sc.RootPath)
	default:
		return nil, fmt.Errorf("unknown store type %q", sc.Type)
	}
}
