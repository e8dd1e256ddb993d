// Package mlclient provides the primary entry point for constructing a REST
// API client that implements the ml.Client interface.
//
// It layers configuration defaults, HTTP transport and authentication on top
// of the decoding types defined in the ml package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/monasticus/mlclient/pkg/ml"
//	  "github.com/monasticus/mlclient/pkg/mlclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := mlclient.NewWithPassword(ctx, "http://localhost:8000", "admin", "admin")
//	  if err != nil { log.Fatal(err) }
//
//	  result, err := cli.Eval().Eval(ctx, &ml.EvalRequest{XQuery: "1 + 1"})
//	  if err != nil { log.Fatal(err) }
//	  log.Println(result.Interface())
//
//	  doc, err := cli.Documents().Get(ctx, "/a.xml", &ml.DocumentsGetOptions{
//	    Categories: []ml.Category{ml.CategoryContent, ml.CategoryCollections},
//	  })
//	  if err != nil { log.Fatal(err) }
//	  log.Println(doc.URI(), doc.Metadata().Collections)
//	}
package mlclient
