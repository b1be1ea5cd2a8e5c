// Package pipeline orchestrates one request from call to completion.
//
// For every call the pipeline:
//
//  1. asks the connectivity probe; when offline the completion fires after
//     the offline delay with (types.StatusOffline, KindOffline) and the
//     backend is never touched
//  2. hands the request to the debug sink
//  3. executes it on the transport backend
//  4. hands the response to the debug sink
//  5. decodes the body (decoded path only); a parse failure is KindDecode
//     carrying the status the server actually returned
//  6. invokes the completion exactly once
//
// Completions always run on a goroutine owned by the pipeline, never on the
// caller's goroutine, even when the outcome is known up front.
//
// A connected request is registered for CancelAll before RequestRaw or
// RequestDecoded returns. LogSink is the zap-backed DebugSink.
package pipeline
