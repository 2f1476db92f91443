// Package retry provides backoff retry logic for transient failures.
//
// The [Do] function retries an operation with a configurable attempt
// budget and delay policy. Deploy actions use it with a fixed backoff;
// errors wrapped with [Fatal] are never retried.
package retry
