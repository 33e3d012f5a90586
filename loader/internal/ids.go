package internal

import (
	"fmt"

	"pdfrag/types"
)

// AssignIDs derives the identifier {source}:{page}:{position} for every
// chunk. The position restarts at 0 whenever the (source, page) pair changes
// from the immediately preceding chunk and increments otherwise, so two runs
// over identical input order produce identical identifiers. Pure function of
// the input order; no external state.
func AssignIDs(chunks []types.Chunk) []types.Chunk {
	lastPageKey := ""
	position := 0

	for i := range chunks {
		pageKey := fmt.Sprintf("%s:%d", chunks[i].Source, chunks[i].Page)
		if pageKey == lastPageKey {
			position++
		} else {
			position = 0
		}

		chunks[i].Position = position
		chunks[i].ID = fmt.Sprintf("%s:%d", pageKey, position)
		lastPageKey = pageKey
	}

	return chunks
}
