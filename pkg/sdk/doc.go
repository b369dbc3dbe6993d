// Package pocketnavi embeds the architectural catalog search engine in a
// Go program without running the HTTP server.
//
// The client talks to one record store: an SQLite file, a PostgREST-style
// data API, or a JSON dataset held in memory.
//
//	client, _ := pocketnavi.New(ctx, pocketnavi.WithSQLite("data/pocketnavi.db"))
//	defer client.Close()
//
//	page, _ := client.Search(ctx, "安藤 教会", 1)
//	for _, r := range page.Results {
//	    fmt.Println(r.Building.Title, r.Building.Architects)
//	}
//
//	b, err := client.Building(ctx, "church-of-the-light")
//	if errors.Is(err, pocketnavi.ErrNotFound) { ... }
package pocketnavi
