// Package upload publishes eligible catalog entries to the knowledge base.
//
// Every entry goes through two phases, one entry at a time:
//
//  1. Blob publish: the raw bytes are stored under a fresh remote key, either
//     through the blob service's HTTP API or directly into an S3 bucket.
//  2. Catalog registration: the remote key and the entry's metadata are
//     submitted to the knowledge-base catalog.
//
// Progress is reported as catalog.Update events. A failure in either phase
// marks only that entry as failed; the run continues with the next one. A
// blob published in phase 1 is not removed when phase 2 fails.
package upload
