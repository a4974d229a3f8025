// Package progress provides progress reporting for batch fetches.
//
// The Reporter keeps atomic counters for fetched, skipped, failed and
// in-flight files and renders a terminal progress bar whose total is the
// number of URLs in the batch.
//
// # Usage
//
//	reporter := progress.NewReporter(Options{
//	    Total:       len(urls),
//	    Workers:     16,
//	    Destination: "data",
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	reporter.FileStarted()
//	reporter.BytesWritten(n)
//	reporter.FileCompleted()
//
// Only FileCompleted advances the bar. A file that already exists is
// recorded with FileSkipped, so a run over a partially populated directory
// finishes below 100%; the skipped count is shown in the bar description and
// in the final status.
//
// # Output Format
//
//	[skyfetch] Fetching 12 URLs into data | Workers: 16
//	[skyfetch] 1.2 GiB | 3 skipped | 0 failed | 4 active  75% [======>  ] (9/12, 2 files/s)
//	[skyfetch] Fetched: 9 | Skipped: 3 | Failed: 0 | Total: 12
//	[skyfetch] Total time: 42s | 1.2 GiB written | Average speed: 29 MiB/s
package progress
