package audiograph

import "fmt"

// NodeID identifies a node in a graph. DebugName is carried purely for
// diagnostics: Equal and the internal key used by the compiler's maps
// depend only on Slot and Generation, so two NodeIDs with the same
// Slot/Generation and different DebugName are Equal. Go's == operator and
// maps keyed by NodeID itself compare every field, DebugName included.
type NodeID struct {
	Slot       uint32
	Generation uint32
	DebugName  string
}

// Equal reports whether two NodeIDs refer to the same graph slot and
// generation, ignoring DebugName.
func (id NodeID) Equal(other NodeID) bool {
	return id.Slot == other.Slot && id.Generation == other.Generation
}

// key returns the part of NodeID used for map lookups and equality.
func (id NodeID) key() nodeKey {
	return nodeKey{slot: id.Slot, generation: id.Generation}
}

func (id NodeID) String() string {
	if id.DebugName != "" {
		return fmt.Sprintf("Node(%d:%d %q)", id.Slot, id.Generation, id.DebugName)
	}
	return fmt.Sprintf("Node(%d:%d)", id.Slot, id.Generation)
}

type nodeKey struct {
	slot       uint32
	generation uint32
}

// EdgeID identifies an edge in a graph. Equality depends only on Slot and
// Generation.
type EdgeID struct {
	Slot       uint32
	Generation uint32
}

func (id EdgeID) Equal(other EdgeID) bool {
	return id.Slot == other.Slot && id.Generation == other.Generation
}

func (id EdgeID) String() string {
	return fmt.Sprintf("Edge(%d:%d)", id.Slot, id.Generation)
}
