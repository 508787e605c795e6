// Package s3store implements conversation.Store on S3-compatible object
// storage via the minio client. Works against AWS S3, MinIO, and any other
// endpoint speaking the S3 API.
package s3store
