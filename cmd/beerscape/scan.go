package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gocloud.dev/blob"

	"github.com/wtfsayo/beerscape/internal/inventory"
)

// runScan counts resources already present in the output bucket.
func runScan(args []string) int {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)

	bucket := fs.String("bucket", "", "Output bucket URL (required)")
	ext := fs.String("ext", "bsmx", "Resource file extension")
	verbose := fs.Bool("v", false, "List filename stems")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: beerscape scan [options]

Count resources already present in the output bucket. This is the same
scan the harvest command runs at startup.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *bucket == "" {
		fmt.Fprintln(os.Stderr, "Error: -bucket is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	ctx := context.Background()

	bkt, err := blob.OpenBucket(ctx, *bucket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening bucket: %v\n", err)
		return ExitStorageError
	}
	defer bkt.Close()

	inv, err := inventory.Scan(ctx, bkt, *ext)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}

	fmt.Printf("%d resources with extension .%s\n", inv.Count(), *ext)
	if *verbose {
		for _, stem := range inv.Stems() {
			fmt.Println(stem)
		}
	}

	return ExitSuccess
}
