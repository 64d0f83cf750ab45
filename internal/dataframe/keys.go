package dataframe

import (
	"github.com/cespare/xxhash/v2"

	"github.com/paveg/tabeline/internal/array"
)

// Constants for the row key table.
const (
	keyTableLoadFactor     = 0.75 // load factor before the bucket array grows
	keyTableGrowthFactor   = 2    // growth factor for bucket resize
	keyTableCapacityFactor = 1.3  // capacity factor for initial bucket count
)

// keyTable maps encoded row keys to the rows that carry them. Keys are
// numbered in order of first insertion.
type keyTable struct {
	buckets  [][]int // indexes into entries
	entries  []keyEntry
	capacity int
}

type keyEntry struct {
	hash uint64
	key  string
	rows []int
}

func newKeyTable(estimatedSize int) *keyTable {
	capacity := nextPowerOfTwo(int(float64(estimatedSize) * keyTableCapacityFactor))
	return &keyTable{
		buckets:  make([][]int, capacity),
		capacity: capacity,
	}
}

func (kt *keyTable) bucket(hash uint64) int {
	//nolint:gosec // capacity is a positive power of two
	return int(hash & uint64(kt.capacity-1))
}

// find returns the entry index of key, or -1.
func (kt *keyTable) find(key []byte, hash uint64) int {
	for _, e := range kt.buckets[kt.bucket(hash)] {
		if kt.entries[e].hash == hash && kt.entries[e].key == string(key) {
			return e
		}
	}
	return -1
}

// put records row under key and returns the key's entry index.
func (kt *keyTable) put(key []byte, row int) int {
	hash := xxhash.Sum64(key)
	if e := kt.find(key, hash); e >= 0 {
		kt.entries[e].rows = append(kt.entries[e].rows, row)
		return e
	}

	e := len(kt.entries)
	kt.entries = append(kt.entries, keyEntry{hash: hash, key: string(key), rows: []int{row}})
	b := kt.bucket(hash)
	kt.buckets[b] = append(kt.buckets[b], e)

	if float64(len(kt.entries)) > float64(kt.capacity)*keyTableLoadFactor {
		kt.resize()
	}
	return e
}

// get returns the rows recorded under key.
func (kt *keyTable) get(key []byte) ([]int, bool) {
	if e := kt.find(key, xxhash.Sum64(key)); e >= 0 {
		return kt.entries[e].rows, true
	}
	return nil, false
}

// resize grows the bucket array and rehashes all entries.
func (kt *keyTable) resize() {
	kt.capacity *= keyTableGrowthFactor
	kt.buckets = make([][]int, kt.capacity)
	for e, entry := range kt.entries {
		b := kt.bucket(entry.hash)
		kt.buckets[b] = append(kt.buckets[b], e)
	}
}

// groups returns the rows of every key in order of first occurrence.
func (kt *keyTable) groups() [][]int {
	out := make([][]int, len(kt.entries))
	for i, entry := range kt.entries {
		out[i] = entry.rows
	}
	return out
}

// nextPowerOfTwo returns the next power of two >= n.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	power := 1
	for power < n {
		power <<= 1
	}
	return power
}

// rowKey appends the encoded key of row over keys to buf.
func rowKey(buf []byte, keys []*array.Array, row int) []byte {
	for _, a := range keys {
		buf = a.AppendKey(buf, row)
	}
	return buf
}

// indexRows builds a key table over rows [0, height).
func indexRows(keys []*array.Array, height int) *keyTable {
	kt := newKeyTable(height)
	var buf []byte
	for row := range height {
		buf = rowKey(buf[:0], keys, row)
		kt.put(buf, row)
	}
	return kt
}

// partition splits rows [0, height) by their values in keys. Partitions are
// ordered by first occurrence and rows keep their order inside each one.
// Without key columns every row falls in a single partition. A frame without
// rows has no partitions.
func partition(keys []*array.Array, height int) [][]int {
	if height == 0 {
		return nil
	}
	if len(keys) == 0 {
		all := make([]int, height)
		for i := range all {
			all[i] = i
		}
		return [][]int{all}
	}
	return indexRows(keys, height).groups()
}

// groupRows partitions the rows by the flattened group columns.
func (df *DataFrame) groupRows() [][]int {
	return partition(df.arrays(df.GroupNames()), df.height)
}
