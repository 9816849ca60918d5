// ABOUTME: Copies whole collections between document stores
// ABOUTME: Used to move a local SQLite database into MongoDB without changing IDs
package docstore

import (
	"context"
	"fmt"
)

// CopyResult counts the documents copied per collection.
type CopyResult map[string]int

// Copy reads every document of each collection from src and writes it to
// dst under the same ID. With dryRun set nothing is written.
func Copy(ctx context.Context, src Store, dst Putter, collections []string, dryRun bool) (CopyResult, error) {
	result := make(CopyResult, len(collections))
	for _, collection := range collections {
		docs, err := src.Get(ctx, collection, Query{})
		if err != nil {
			return result, fmt.Errorf("failed to read %s: %w", collection, err)
		}

		if !dryRun {
			for _, doc := range docs {
				if err := dst.Put(ctx, collection, doc.ID, doc.Fields); err != nil {
					return result, fmt.Errorf("failed to write %s/%s: %w", collection, doc.ID, err)
				}
			}
		}
		result[collection] = len(docs)
	}
	return result, nil
}
