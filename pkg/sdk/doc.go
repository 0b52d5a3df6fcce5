// Package tabdex embeds the tabdex search engine in a Go program.
//
// An Engine reads the statistical datasets from a data directory, accepts
// tabular uploads and answers federated prefix queries over the combined
// index. Uploads are kept in a source registry (in-memory by default, Redis
// with WithRedis) so a Reindex rebuilds the same document set.
//
//	eng, _ := tabdex.New(ctx, tabdex.WithDataDir("./data"))
//	defer eng.Close()
//
//	_, _ = eng.IngestFile(ctx, "projects.csv", "")
//	res, _ := eng.Search(ctx, tabdex.Query{Text: "clinic", Type: "project"})
//	for _, r := range res.Results {
//	    fmt.Println(r.Document.Title, r.Score)
//	}
package tabdex
