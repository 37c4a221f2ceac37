// Package tasks implements the playlist ingestion pipeline and the library operations built on it.
//
// # Ingestion
//
// An [Ingestor] opens a [Session] per playlist. A session moves through
//
//	Idle → Checking → (InfoReady | Failed) → Saving → (Done | PartiallyFailed)
//
//  1. [Session.Check] : extract the "list" id from the URL, resolve the playlist and its
//     channel, and page through the items once when more than 50 are declared
//  2. [Session.Save] : insert or update the playlist row, fetch every item again, and
//     write one row per item
//
// [Ingestor.Refresh] runs both steps against a stored playlist and updates it in place.
//
// The [Fetcher] follows continuation tokens until a page has none; the declared item
// count only feeds progress. Any page failure discards what was fetched and surfaces
// as [shared.ErrIngestion]. The [Writer] is the opposite: each item insert is independent,
// failures are logged and skipped, and the batch reports a [WriteResult] instead of an error.
//
// # Progress Reporting
//
// Operations take a chan<- [ProgressUpdate]. Sends block until received or the context is
// done, so every event arrives in order; pass nil to disable progress.
//
// # Library and Export
//
// [Library] uploads files into object storage or records YouTube videos (optionally with
// captions from the proxy). [Exporter.BulkExport] writes stored playlists through the
// formatter package with a worker pool.
package tasks
