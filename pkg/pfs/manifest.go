package pfs

import "github.com/tidwall/btree"

type Artifact struct {
	Name string
	Size int
}

// Manifest records every artifact the extractor successfully emitted, kept
// ordered by name so summaries are deterministic across runs.
type Manifest struct {
	index *btree.BTreeG[Artifact]
}

func NewManifest() *Manifest {
	compare := func(a, b Artifact) bool {
		return a.Name < b.Name
	}
	return &Manifest{index: btree.NewBTreeGOptions(compare, btree.Options{NoLocks: true})}
}

func (m *Manifest) Add(name string, size int) {
	m.index.Set(Artifact{Name: name, Size: size})
}

func (m *Manifest) Get(name string) (Artifact, bool) {
	return m.index.Get(Artifact{Name: name})
}

func (m *Manifest) Len() int {
	return m.index.Len()
}

// Walk visits artifacts in name order until fn returns false.
func (m *Manifest) Walk(fn func(Artifact) bool) {
	m.index.Scan(fn)
}
