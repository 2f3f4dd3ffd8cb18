package scene

import (
	"encoding/json"
	"testing"

	"whiteboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func el(id string, version int64) models.Element {
	return models.Element{ID: id, Version: version}
}

func tombstone(id string, version int64) models.Element {
	return models.Element{ID: id, Version: version, IsDeleted: true}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name          string
		authoritative map[string]models.Element
		incoming      []models.Element
		wantVersions  map[string]int64
		wantDelta     []string
	}{
		{
			name:          "new element is accepted",
			authoritative: map[string]models.Element{},
			incoming:      []models.Element{el("e1", 1)},
			wantVersions:  map[string]int64{"e1": 1},
			wantDelta:     []string{"e1"},
		},
		{
			name:          "higher version replaces",
			authoritative: map[string]models.Element{"e1": el("e1", 1)},
			incoming:      []models.Element{el("e1", 2)},
			wantVersions:  map[string]int64{"e1": 2},
			wantDelta:     []string{"e1"},
		},
		{
			name:          "lower version is ignored",
			authoritative: map[string]models.Element{"e1": el("e1", 5)},
			incoming:      []models.Element{el("e1", 3)},
			wantVersions:  map[string]int64{"e1": 5},
			wantDelta:     nil,
		},
		{
			name:          "equal version keeps existing entry",
			authoritative: map[string]models.Element{"e1": el("e1", 2)},
			incoming:      []models.Element{el("e1", 2)},
			wantVersions:  map[string]int64{"e1": 2},
			wantDelta:     nil,
		},
		{
			name:          "repeated id in one batch keeps the highest",
			authoritative: map[string]models.Element{},
			incoming:      []models.Element{el("e1", 1), el("e2", 1), el("e1", 3), el("e1", 2)},
			wantVersions:  map[string]int64{"e1": 3, "e2": 1},
			wantDelta:     []string{"e1", "e2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, delta := Merge(tt.authoritative, tt.incoming)

			got := make(map[string]int64, len(merged))
			for id, e := range merged {
				got[id] = e.Version
			}
			assert.Equal(t, tt.wantVersions, got)

			var ids []string
			for _, e := range delta {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantDelta, ids)
		})
	}
}

func TestMerge_TieKeepsExistingPayload(t *testing.T) {
	var first, second models.Element
	require.NoError(t, json.Unmarshal([]byte(`{"id":"e1","version":4,"x":10}`), &first))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"e1","version":4,"x":99}`), &second))

	merged, delta := Merge(map[string]models.Element{"e1": first}, []models.Element{second})

	assert.Empty(t, delta)
	assert.JSONEq(t, `{"id":"e1","version":4,"x":10}`, string(merged["e1"].Raw))
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	authoritative := map[string]models.Element{"e1": el("e1", 1)}

	Merge(authoritative, []models.Element{el("e1", 2), el("e2", 1)})

	assert.Len(t, authoritative, 1)
	assert.Equal(t, int64(1), authoritative["e1"].Version)
}

func TestMerge_Idempotent(t *testing.T) {
	start := map[string]models.Element{"a": el("a", 3), "b": tombstone("b", 2)}
	batch := []models.Element{el("a", 4), el("b", 1), el("c", 1), tombstone("c", 2)}

	once, _ := Merge(start, batch)
	twice, delta := Merge(once, batch)

	assert.Equal(t, once, twice)
	assert.Empty(t, delta)
}

func TestMerge_Monotonic(t *testing.T) {
	batches := [][]models.Element{
		{el("k", 3)},
		{el("k", 1)},
		{el("k", 7), el("k", 2)},
		{el("k", 5)},
	}

	state := map[string]models.Element{}
	var highest int64
	for _, batch := range batches {
		state, _ = Merge(state, batch)
		for _, e := range batch {
			highest = max(highest, e.Version)
		}
		assert.Equal(t, highest, state["k"].Version)
	}
}

func TestMerge_TombstoneBlocksStaleResurrection(t *testing.T) {
	state, _ := Merge(map[string]models.Element{}, []models.Element{el("e1", 1)})
	state, _ = Merge(state, []models.Element{tombstone("e1", 3)})

	for _, stale := range []models.Element{el("e1", 2), el("e1", 3)} {
		next, delta := Merge(state, []models.Element{stale})
		assert.Empty(t, delta)
		assert.True(t, next["e1"].IsDeleted)
		assert.Empty(t, Visible(next))
	}

	next, _ := Merge(state, []models.Element{el("e1", 4)})
	require.Len(t, Visible(next), 1)
	assert.Equal(t, int64(4), Visible(next)[0].Version)
}

func TestMerge_ConvergesUnderAnyArrivalOrder(t *testing.T) {
	batches := [][]models.Element{
		{el("a", 1), el("b", 1)},
		{el("a", 2)},
		{tombstone("b", 2), el("c", 1)},
		{el("c", 3), el("a", 1)},
	}

	var reference []models.Element
	for i, order := range permutations(len(batches)) {
		state := map[string]models.Element{}
		for _, idx := range order {
			state, _ = Merge(state, batches[idx])
		}
		visible := Visible(state)
		if i == 0 {
			reference = visible
			continue
		}
		assert.Equal(t, reference, visible, "order %v", order)
	}

	require.Len(t, reference, 2)
	assert.Equal(t, el("a", 2), reference[0])
	assert.Equal(t, el("c", 3), reference[1])
}

func TestVisible(t *testing.T) {
	state := map[string]models.Element{
		"z": el("z", 1),
		"a": el("a", 2),
		"m": tombstone("m", 5),
	}

	visible := Visible(state)

	require.Len(t, visible, 2)
	assert.Equal(t, "a", visible[0].ID)
	assert.Equal(t, "z", visible[1].ID)
}

func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for i := 0; i <= len(p); i++ {
			perm := make([]int, 0, n)
			perm = append(perm, p[:i]...)
			perm = append(perm, n-1)
			perm = append(perm, p[i:]...)
			out = append(out, perm)
		}
	}
	return out
}
