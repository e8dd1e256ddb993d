// Package ml provides types and response decoding for a document database's
// REST API.
//
// # Overview
//
// The package turns finished HTTP responses into typed values. It performs no
// I/O: a Response is fully buffered by the transport before it reaches the
// functions here, and every function is safe for concurrent use.
//
// Evaluation results
//
// The /v1/eval endpoint answers with one multipart/mixed part per item of the
// evaluated sequence, each tagged with an X-Primitive header. ParseResponse
// decodes them:
//
//	result, err := ml.ParseResponse(resp, ml.OutputNone)
//	if err != nil { /* *ml.ServerError, *ml.DecodeError, ... */ }
//	if v, ok := result.Single(); ok {
//	  n, _ := v.Int()
//	  _ = n
//	}
//
// A single part yields a single result; zero or several parts yield a list in
// wire order (Result.IsList).
//
// # Documents
//
// The /v1/documents endpoint answers with content and metadata parts keyed by
// a Content-Disposition dialect (see ParseContentDisposition). AssembleDocuments
// groups them per URI, merges metadata categories and returns one typed
// Document per URI:
//
//	docs, err := ml.AssembleDocuments([]string{"/a.xml", "/b.json"}, resp)
//	for _, doc := range docs {
//	  switch d := doc.(type) {
//	  case *ml.XMLDocument:
//	    _ = d.Root
//	  case *ml.JSONDocument:
//	    _ = d.Value
//	  }
//	}
//
// # Errors
//
// 4xx/5xx responses are decoded into *ServerError. Broken framing is reported
// as *MalformedMultipartResponseError, a bad document header as
// *MalformedContentDispositionError and a literal that does not match its
// primitive tag as *DecodeError. None of them is retried.
//
// # Clients
//
// The Client, EvalClient and DocumentsClient interfaces are implemented by the
// mlclient package, which wires configuration, transport and authentication.
package ml
