// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works against MinIO and any other S3-compatible storage such as Ceph,
// SeaweedFS or Garage, without pulling in the AWS SDK.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "collections/")
//	mgr := persistence.NewManager(store)
//	err = mgr.Save(ctx, users)
package minio
