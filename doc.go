// Package gradientkb retrieves scored text nodes from a DigitalOcean Gradient
// knowledge base.
//
// A Retriever forwards a query to the knowledge base retrieval API and reshapes
// the returned records into schema.NodeWithScore values for RAG pipelines.
// Configuration is fixed at construction; invalid settings fail in New.
//
// # Blocking retrieval
//
//	r, err := gradientkb.New("kb-uuid", os.Getenv("DIGITALOCEAN_ACCESS_TOKEN"),
//	    gradientkb.WithNumResults(5),
//	    gradientkb.WithAlpha(0.5),
//	)
//	nodes, err := r.Retrieve(ctx, schema.NewQueryBundle("What is machine learning?"))
//
// # Non-blocking retrieval
//
//	f := r.RetrieveAsync(ctx, schema.NewQueryBundle("What is machine learning?"))
//	// ... other work ...
//	nodes, err := f.Wait(ctx)
//
// Both paths share the same conversion: records without text are dropped,
// missing scores default to 1.0, and the chunk_id metadata key is only set
// when the record carries one.
package gradientkb
