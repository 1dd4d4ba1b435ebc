package health

import "context"

// CachePinger checks result cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// IndexSizer reports how many items the loaded index holds.
type IndexSizer interface {
	Len() int
}
