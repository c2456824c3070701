package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hupe1980/docstore"
	"github.com/hupe1980/docstore/blobstore"
	minioblob "github.com/hupe1980/docstore/blobstore/minio"
	s3blob "github.com/hupe1980/docstore/blobstore/s3"
	"github.com/hupe1980/docstore/codec"
	"github.com/hupe1980/docstore/persistence"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"
)

// globalFlags select the blob store backend and the snapshot format.
type globalFlags struct {
	backend     string
	dir         string
	bucket      string
	prefix      string
	endpoint    string
	region      string
	accessKey   string
	secretKey   string
	secure      bool
	codec       string
	compression string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "docstore",
		Short:         "Inspect, check and import persisted docstore collections",
		SilenceUsage:  true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.backend, "backend", "local", "blob store backend: local, minio or s3")
	pf.StringVar(&flags.dir, "dir", "data", "root directory of the local backend")
	pf.StringVar(&flags.bucket, "bucket", "", "bucket of the minio or s3 backend")
	pf.StringVar(&flags.prefix, "prefix", "", "key prefix inside the bucket")
	pf.StringVar(&flags.endpoint, "endpoint", "", "object store endpoint (required for minio, optional for s3)")
	pf.StringVar(&flags.region, "region", "", "s3 region override")
	pf.StringVar(&flags.accessKey, "access-key", os.Getenv("MINIO_ACCESS_KEY"), "minio access key")
	pf.StringVar(&flags.secretKey, "secret-key", os.Getenv("MINIO_SECRET_KEY"), "minio secret key")
	pf.BoolVar(&flags.secure, "secure", true, "use TLS for the minio backend")
	pf.StringVar(&flags.codec, "codec", codec.Default.Name(), "codec for written snapshots: json or go-json")
	pf.StringVar(&flags.compression, "compression", "none", "compression for written snapshots: none, snappy, zstd or lz4")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newImportCmd(flags),
		newInspectCmd(flags),
		newCheckCmd(flags),
	)
	return rootCmd
}

func (f *globalFlags) logger(cmd *cobra.Command) (*docstore.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", f.logLevel, err)
	}
	return docstore.NewLogger(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), nil
}

func (f *globalFlags) blobStore(ctx context.Context) (blobstore.BlobStore, error) {
	switch f.backend {
	case "local":
		return blobstore.NewLocalStore(f.dir), nil
	case "minio":
		if f.endpoint == "" || f.bucket == "" {
			return nil, fmt.Errorf("minio backend requires --endpoint and --bucket")
		}
		client, err := minio.New(f.endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(f.accessKey, f.secretKey, ""),
			Secure: f.secure,
			Region: f.region,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		return minioblob.NewStore(client, f.bucket, f.prefix), nil
	case "s3":
		if f.bucket == "" {
			return nil, fmt.Errorf("s3 backend requires --bucket")
		}
		opts := []s3blob.Option{s3blob.WithPrefix(f.prefix)}
		if f.region != "" {
			opts = append(opts, s3blob.WithRegion(f.region))
		}
		if f.endpoint != "" {
			opts = append(opts, s3blob.WithEndpoint(f.endpoint))
		}
		return s3blob.New(ctx, f.bucket, opts...)
	default:
		return nil, fmt.Errorf("unknown backend %q", f.backend)
	}
}

// manager builds the persistence manager and the blob store beneath it.
func (f *globalFlags) manager(cmd *cobra.Command) (*persistence.Manager, blobstore.BlobStore, *docstore.Logger, error) {
	logger, err := f.logger(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	c, ok := codec.ByName(f.codec)
	if !ok {
		return nil, nil, nil, fmt.Errorf("unknown codec %q", f.codec)
	}
	comp, err := persistence.ParseCompression(f.compression)
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := f.blobStore(cmd.Context())
	if err != nil {
		return nil, nil, nil, err
	}
	mgr := persistence.NewManager(store, func(o *persistence.ManagerOptions) {
		o.Codec = c
		o.Compression = comp
		o.Logger = logger
	})
	return mgr, store, logger, nil
}

// collectionNames returns args, or every stored collection when args is empty.
func collectionNames(ctx context.Context, mgr *persistence.Manager, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	names, err := mgr.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no collections found")
	}
	return names, nil
}
