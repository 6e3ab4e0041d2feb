package entitydataspace

import (
	"github.com/antiraum/EntityDataSpace/internal/codec"
)

// EntityTree is the materialized value structure get_entity reconstructs
// from an entity id: the id itself plus its outgoing attribute tree.
type EntityTree struct {
	ID       string
	Children []AttrNode
}

// AttrNode is one (name, value) child of an EntityTree. Literal values are
// always a leaf; reference values are a leaf only when Target is nil,
// which happens when the referenced entity had already been expanded
// earlier in this get_entity call (cycle break) and so is emitted id-only.
// A referenced entity with no attributes of its own still gets a non-nil
// Target with no Children.
type AttrNode struct {
	Name  string
	Value AttrValue
	// Target is the full expansion of Value when it is a reference that
	// has not been visited yet in this call; nil for literals and for
	// already-visited references.
	Target *EntityTree
}

// GetEntity reconstructs the full attribute tree rooted at id. A
// reference value is expanded by recursing into the referenced entity the
// first time it is encountered in this call; later occurrences of the same
// id (cycles, or diamonds in the reference graph) are emitted as an
// id-only leaf via the visited set, which this call owns exclusively and
// drops on return. Ordering of children follows the underlying store's
// iteration order; it is not sorted.
func (ds *DataSpace) GetEntity(id string) (*EntityTree, error) {
	encID, err := encOrInvalid(id)
	if err != nil {
		return nil, err
	}
	exists, err := ds.entityExists(encID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, newErr(NoEntity, "entity %q does not exist", id)
	}

	visited := map[string]bool{id: true}
	return ds.expandEntity(id, encID, visited)
}

func (ds *DataSpace) expandEntity(id, encID string, visited map[string]bool) (*EntityTree, error) {
	tree := &EntityTree{ID: id}

	err := ds.forEachOutgoingAttr(encID, func(encName, encValue string) (bool, error) {
		name := codec.Decode(encName)
		value := parseAttrValue(codec.Decode(encValue))

		node := AttrNode{Name: name, Value: value}
		if value.IsRef() && !visited[value.Text] {
			visited[value.Text] = true
			encTarget, err := encOrInvalid(value.Text)
			if err != nil {
				return false, err
			}
			target, err := ds.expandEntity(value.Text, encTarget, visited)
			if err != nil {
				return false, err
			}
			node.Target = target
		}

		tree.Children = append(tree.Children, node)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	return tree, nil
}
