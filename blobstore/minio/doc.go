// Package minio stores images and quantization outputs in MinIO or any other
// S3-compatible server (Ceph, Garage, SeaweedFS) using the MinIO client.
//
//	store, err := minio.Dial("localhost:9000", "minioadmin", "minioadmin", false, "images", "in/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	runner := &batch.Runner{Source: store, Dest: store, Clusters: 8}
package minio
