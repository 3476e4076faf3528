package node

import (
	"graphstore/pkg/catalog"
	"graphstore/pkg/types"
)

// Storage is the interface both node storage flavors satisfy, letting
// callers that don't care which layout a class uses (the database facade,
// pattern matching) hold one handle per class.
type Storage interface {
	AddNode(data types.Object) (uint64, error)
	RemoveNodesIf(predicate func(id uint64, data types.Object) bool) error
	VisitNodes(fn func(id uint64, data types.Object) (bool, error)) error
	Get(id uint64) (types.Object, bool, error)
}

// Open picks the matching storage flavor for class's shape: const-size
// when the class has a fixed encoded size, var-size otherwise.
func Open(cat *catalog.Catalog, class types.Class) (Storage, error) {
	if _, ok := class.Size(); ok {
		return OpenConstSizeStorage(cat, class)
	}
	return OpenVarSizeStorage(cat, class)
}
