package atlas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/bb/internal/adapters/fs" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/bb/internal/core/ports"
)

// NodeID is the unique identifier for the sprite atlas packer Graft node.
const NodeID graft.ID = "adapter.atlas"

func init() {
	graft.Register(graft.Node[ports.AtlasPacker]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.NodeID},
		Run: func(ctx context.Context) (ports.AtlasPacker, error) {
			fsys, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}
			return New(fsys), nil
		},
	})
}
