package internal

import (
	"testing"

	"pdfrag/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkSeq() []types.Chunk {
	return []types.Chunk{
		{Source: "content/a.pdf", Page: 0},
		{Source: "content/a.pdf", Page: 0},
		{Source: "content/a.pdf", Page: 1},
		{Source: "content/a.pdf", Page: 1},
		{Source: "content/a.pdf", Page: 1},
		{Source: "content/b.pdf", Page: 0},
	}
}

func TestAssignIDsPositionRestartsPerPage(t *testing.T) {
	chunks := AssignIDs(chunkSeq())

	want := []string{
		"content/a.pdf:0:0",
		"content/a.pdf:0:1",
		"content/a.pdf:1:0",
		"content/a.pdf:1:1",
		"content/a.pdf:1:2",
		"content/b.pdf:0:0",
	}

	require.Len(t, chunks, len(want))
	for i, id := range want {
		assert.Equal(t, id, chunks[i].ID)
	}
	assert.Equal(t, 2, chunks[4].Position)
	assert.Equal(t, 0, chunks[5].Position)
}

func TestAssignIDsDeterministic(t *testing.T) {
	first := AssignIDs(chunkSeq())
	second := AssignIDs(chunkSeq())

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestAssignIDsEmpty(t *testing.T) {
	assert.Empty(t, AssignIDs(nil))
}
