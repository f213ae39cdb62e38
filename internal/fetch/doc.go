// Package fetch performs single-identifier probes against the download
// endpoint and classifies each outcome.
//
// A probe is one GET request. The response is classified in order:
//
//  1. Transport failure (DNS, connect, timeout, read) -> StatusTransportError
//  2. Non-2xx status -> StatusRejected
//  3. Body not starting with '<' -> StatusRejected (no markup payload)
//  4. Otherwise -> StatusAcquired; the body is written verbatim to the
//     output bucket, named from the Content-Disposition filename when the
//     server provides one, else "<id>.<ext>".
//
// The fetcher never retries. Every failure surfaces as a Result value and
// the engine decides whether the identifier goes back into the pool.
package fetch
