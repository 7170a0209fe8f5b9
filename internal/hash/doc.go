// Package hash holds the CRC32-Castagnoli checksum shared by the PLTQ artifact
// trailer and S3 upload integrity headers.
package hash
