// Package api is the HTTP layer shared by every weni client.
//
// It knows nothing about agents, projects or tests. It sends requests,
// turns failed responses into *Error values and decodes the two response
// shapes the platform uses: single JSON documents and newline-delimited
// JSON streams.
//
// Architecture:
//
//  1. **Dispatcher** - Joins endpoints onto a base URL, attaches the
//     authorization, project and client version headers, and encodes
//     JSON or multipart bodies
//
//  2. **Error** - The one error type every failed request surfaces as,
//     carrying the server message, optional data payload, HTTP status and
//     request id
//
//  3. **Decoder** - Reads an NDJSON body one Event at a time
//
//  4. **PageWalker** - Follows "next" cursors of paginated list endpoints
//
// Example Usage:
//
//	d := api.NewDispatcher(api.Config{BaseURL: url, Token: token})
//
//	err := d.Stream(ctx, api.Request{Method: http.MethodPost, Endpoint: "api/v1/runs"},
//		func(event api.Event) error {
//			if !event.Success {
//				return api.ErrStopStream
//			}
//			return nil
//		})
//
// Streams:
//
// The handler passed to Stream sees events in arrival order. Returning
// ErrStopStream ends the stream without an error; any other error ends it
// and is returned. A line that is not valid JSON ends the stream with an
// error. The response body is closed on every path.
//
// Thread Safety:
//
// A Dispatcher holds no per-request state and can be shared by
// goroutines. Decoder and PageWalker are not safe for concurrent use.
package api
