package translation

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the message catalog Graft node.
const NodeID graft.ID = "adapter.translation"

func init() {
	graft.Register(graft.Node[*Catalog]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Catalog, error) {
			return NewCatalog(), nil
		},
	})
}
