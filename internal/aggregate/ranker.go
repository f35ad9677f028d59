package aggregate

import (
	"sort"

	"boxoffice/internal/core"
)

// TopSize is the published size of every dimension table.
const TopSize = 10

// TopN returns a new table holding the n highest-grossing entries in
// descending order. Ties keep the source table's insertion order. The
// reduction is lossy: it must only run as the last step before persistence,
// never on a table that will be summed further.
func TopN(t *core.DimTable, n int) *core.DimTable {
	keys := append([]string(nil), t.Keys()...)
	sort.SliceStable(keys, func(i, j int) bool {
		return t.Get(keys[i]).Gross > t.Get(keys[j]).Gross
	})
	if len(keys) > n {
		keys = keys[:n]
	}

	out := core.NewDimTable()
	for _, key := range keys {
		src := t.Get(key)
		dst := out.Upsert(key)
		*dst = *src
		dst.Gross = core.Round2(dst.Gross)
	}
	return out
}

// Top10 applies the standard cap.
func Top10(t *core.DimTable) *core.DimTable {
	return TopN(t, TopSize)
}
