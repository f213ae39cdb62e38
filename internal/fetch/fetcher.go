package fetch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gocloud.dev/blob"

	bshttp "github.com/wtfsayo/beerscape/internal/http"
)

// Status classifies the outcome of a single probe.
type Status int

const (
	// StatusAcquired means the response was a valid resource and was persisted.
	StatusAcquired Status = iota
	// StatusRejected means the endpoint answered but did not serve a resource.
	StatusRejected
	// StatusTransportError means the request failed before a response could
	// be classified, or the resource could not be persisted.
	StatusTransportError
)

func (s Status) String() string {
	switch s {
	case StatusAcquired:
		return "acquired"
	case StatusRejected:
		return "rejected"
	case StatusTransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome of one probe. Results are plain values; they are
// folded into run statistics by the engine and never retained afterwards.
type Result struct {
	ID       uint64
	Status   Status
	Filename string // set when Status is StatusAcquired
	Size     int64  // body bytes written, when acquired
	Err      error  // set when Status is StatusTransportError
}

// Options configures a Fetcher.
type Options struct {
	// Endpoint is the URL template the identifier is formatted into.
	// Must contain a single %d verb.
	Endpoint string

	// Extension names fallback files when the server sends no
	// Content-Disposition filename.
	// Default: "bsmx"
	Extension string

	// MaxResourceSize caps how many body bytes a single probe may read.
	// Responses past the cap are rejected.
	// Default: 32MiB
	MaxResourceSize int64
}

// Fetcher probes identifiers and persists acquired resources. A Fetcher
// holds no mutable state and is safe for concurrent use.
type Fetcher struct {
	client *bshttp.Client
	bucket *blob.Bucket
	opts   Options
}

// New creates a Fetcher writing acquired resources to bucket.
func New(client *bshttp.Client, bucket *blob.Bucket, opts Options) *Fetcher {
	if opts.Extension == "" {
		opts.Extension = "bsmx"
	}
	opts.Extension = strings.TrimPrefix(opts.Extension, ".")
	if opts.MaxResourceSize <= 0 {
		opts.MaxResourceSize = 32 * 1024 * 1024
	}

	return &Fetcher{
		client: client,
		bucket: bucket,
		opts:   opts,
	}
}

// Fetch probes one identifier and returns its classified outcome.
func (f *Fetcher) Fetch(ctx context.Context, id uint64) Result {
	url := fmt.Sprintf(f.opts.Endpoint, id)

	resp, err := f.client.Get(ctx, url)
	if err != nil {
		return Result{ID: id, Status: StatusTransportError, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{ID: id, Status: StatusRejected}
	}

	// Read one byte past the cap so oversize bodies are detectable.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxResourceSize+1))
	if err != nil {
		return Result{ID: id, Status: StatusTransportError, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > f.opts.MaxResourceSize {
		return Result{ID: id, Status: StatusRejected}
	}

	// Valid resources are markup documents. Anything else is the endpoint's
	// "no such resource" page served with a 200.
	if len(body) == 0 || body[0] != '<' {
		return Result{ID: id, Status: StatusRejected}
	}

	filename, ok := bshttp.ParseDispositionFilename(resp.Header.Get("Content-Disposition"))
	if !ok {
		filename = fmt.Sprintf("%d.%s", id, f.opts.Extension)
	}

	if err := f.bucket.WriteAll(ctx, filename, body, nil); err != nil {
		return Result{ID: id, Status: StatusTransportError, Err: fmt.Errorf("write %s: %w", filename, err)}
	}

	return Result{ID: id, Status: StatusAcquired, Filename: filename, Size: int64(len(body))}
}
