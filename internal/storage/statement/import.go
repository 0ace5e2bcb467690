package statement

import (
	"context"
	"fmt"

	"github.com/newthinker/finratio/internal/storage/archive"
)

// Import copies every document found under src, laid out as
// <collection>/<symbol>.json, into dst. It returns the number of
// documents copied.
func Import(ctx context.Context, src archive.Storage, dst *Store) (int, error) {
	docs := NewDocumentBackend(src)
	var n int
	for _, c := range Collections {
		symbols, err := docs.Symbols(ctx, c)
		if err != nil {
			return n, fmt.Errorf("listing %s: %w", c, err)
		}
		for _, sym := range symbols {
			doc, err := docs.Get(ctx, c, sym)
			if err != nil {
				return n, err
			}
			if err := dst.Put(ctx, c, sym, doc); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}
