// Package recdex is an embeddable content-based recommender.
//
// Items carry free-text tags. The client fits a bag-of-words vocabulary over
// every item's tags and ranks items by the cosine similarity of their
// term-count vectors.
//
//	items, _ := recdex.ReadCSV(f, recdex.Columns{ID: "movie_id", Title: "title", Tags: []string{"tags"}})
//	client, _ := recdex.New(items, recdex.WithMaxFeatures(5000))
//	recs, _ := client.Recommend(ctx, "Batman Begins", 5)
//
// Results can be cached in Valkey or Redis:
//
//	client, _ := recdex.New(items, recdex.WithValkey("localhost:6379", ""))
//	defer client.Close()
package recdex
