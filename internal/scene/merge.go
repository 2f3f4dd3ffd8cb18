// Package scene holds the per-room authoritative element sets and the
// last-writer-wins merge that maintains them.
//
// An incoming element replaces the stored one for its id only when its version
// is strictly greater. On equal versions the stored element is kept, so a
// retried or duplicated batch never changes state. Deleted elements stay in the
// authoritative map as tombstones and are filtered out of every snapshot.
package scene

import (
	"slices"
	"strings"

	"whiteboard/internal/models"

	"github.com/samber/lo"
)

// Merge returns a new authoritative map with incoming folded in, together with
// the elements that were accepted. authoritative is not modified.
func Merge(authoritative map[string]models.Element, incoming []models.Element) (map[string]models.Element, []models.Element) {
	merged := make(map[string]models.Element, len(authoritative)+len(incoming))
	for id, el := range authoritative {
		merged[id] = el
	}
	return merged, apply(merged, incoming)
}

// apply merges in place. When a batch carries the same id more than once the
// delta holds only the final accepted element, at the position of its first
// acceptance.
func apply(authoritative map[string]models.Element, incoming []models.Element) []models.Element {
	var delta []models.Element
	pos := make(map[string]int)
	for _, el := range incoming {
		current, exists := authoritative[el.ID]
		if exists && el.Version <= current.Version {
			continue
		}
		authoritative[el.ID] = el
		if i, seen := pos[el.ID]; seen {
			delta[i] = el
			continue
		}
		pos[el.ID] = len(delta)
		delta = append(delta, el)
	}
	return delta
}

// Visible returns the live elements of an authoritative map ordered by id.
func Visible(authoritative map[string]models.Element) []models.Element {
	live := lo.Filter(lo.Values(authoritative), func(el models.Element, _ int) bool {
		return !el.IsDeleted
	})
	slices.SortFunc(live, func(a, b models.Element) int {
		return strings.Compare(a.ID, b.ID)
	})
	return live
}
