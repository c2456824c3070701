// Command docstore inspects, checks and imports persisted collections.
//
//	docstore import users users.jsonl --config users.yaml --dir ./data
//	docstore inspect users --dir ./data
//	docstore check --repair --backend s3 --bucket my-bucket
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
