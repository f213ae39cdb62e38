// Package progress provides progress reporting for a harvesting run.
//
// This package outputs human-readable progress information to stdout,
// including acquired position against the goal, failure count, acquisition
// rate, and ETA.
//
// # Usage
//
//	reporter := progress.NewReporter(Options{
//	    Goal:     10000,
//	    Existing: existingCount,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	// From the batch fold:
//	reporter.Acquired()
//	reporter.Failed()
//
// # Output Format
//
//	[beerscape] Probing: https://example.com/download.php?id=%d
//	[beerscape] Goal: 10000 | Existing: 2301 | Batch size: 10
//	[beerscape] Progress: 4628/10000 (46.3%) | Failed: 18211 | In-flight: 10 | Rate: 3.2/s | ETA: 28m 4s
package progress
