// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("collections/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	mgr := persistence.NewManager(store)
//	users, err := mgr.Load(ctx, "users")
//
// Uploads go through the multipart upload manager, so large snapshots are
// split into parts transparently. Listing follows continuation tokens.
package s3
