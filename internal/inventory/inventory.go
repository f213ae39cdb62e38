// Package inventory scans the output bucket for resources already acquired
// in previous runs.
//
// The scan happens once at startup. Its count seeds the run's statistics
// and decides how many resources are still needed; the stem set is
// informational. Note that acquisitions saved under a server-provided
// filename have stems unrelated to their numeric identifier, so the stem
// set cannot be used to skip identifiers.
package inventory

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"gocloud.dev/blob"
)

// Inventory is the immutable result of a startup scan.
type Inventory struct {
	ext   string
	stems map[string]struct{}
}

// Scan lists the bucket and collects keys carrying the given extension.
// The extension is matched without its leading dot.
func Scan(ctx context.Context, bucket *blob.Bucket, ext string) (*Inventory, error) {
	ext = strings.TrimPrefix(ext, ".")
	suffix := "." + ext

	inv := &Inventory{
		ext:   ext,
		stems: make(map[string]struct{}),
	}

	iter := bucket.List(nil)
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("inventory: list bucket: %w", err)
		}
		if obj.IsDir || !strings.HasSuffix(obj.Key, suffix) {
			continue
		}
		stem := strings.TrimSuffix(path.Base(obj.Key), suffix)
		inv.stems[stem] = struct{}{}
	}

	return inv, nil
}

// Count returns the number of existing resources.
func (inv *Inventory) Count() int {
	return len(inv.stems)
}

// Has reports whether a resource with the given filename stem exists.
func (inv *Inventory) Has(stem string) bool {
	_, ok := inv.stems[stem]
	return ok
}

// Stems returns the sorted filename stems of existing resources.
func (inv *Inventory) Stems() []string {
	stems := make([]string, 0, len(inv.stems))
	for s := range inv.stems {
		stems = append(stems, s)
	}
	sort.Strings(stems)
	return stems
}
