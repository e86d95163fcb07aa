// Command snapshot uploads the current books table to the configured bucket
// and prints a presigned download URL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/5w1tchy/books-crud/internal/config"
	"github.com/5w1tchy/books-crud/internal/logger"
	"github.com/5w1tchy/books-crud/internal/repository/sqlconnect"
	"github.com/5w1tchy/books-crud/internal/snapshot"
	"github.com/5w1tchy/books-crud/internal/storage/s3"
	storebooks "github.com/5w1tchy/books-crud/internal/store/books"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "snapshot:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log, os.Stderr)
	if err := cfg.S3.Ready(); err != nil {
		return err
	}

	pools, err := sqlconnect.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pools.Close()

	bucket, err := s3.New(ctx, cfg.S3)
	if err != nil {
		return err
	}

	exp := &snapshot.Exporter{
		Books:  storebooks.New(pools.Read, pools.Write),
		Bucket: bucket,
		Prefix: cfg.S3.Prefix,
		Keep:   cfg.S3.Keep,
		Log:    log,
	}
	res, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Println(res.URL)
	return nil
}
