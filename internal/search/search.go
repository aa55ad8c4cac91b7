package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/google/uuid"
)

// Document is a flattened record fed into the in-memory index
type Document struct {
	ID     uuid.UUID
	Fields map[string]any
}

// Query builds a throwaway in-memory index over the given documents,
// runs a free-text query against it, and returns the matching IDs in
// relevance order. The corpus is small enough that indexing per
// request beats keeping a stale index warm.
func Query(docs []Document, query string) ([]uuid.UUID, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	defer index.Close()

	for _, doc := range docs {
		if err := index.Index(doc.ID.String(), doc.Fields); err != nil {
			return nil, err
		}
	}

	req := bleve.NewSearchRequest(bleve.NewQueryStringQuery(query))
	req.Size = len(docs)

	res, err := index.Search(req)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}
