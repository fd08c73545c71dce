package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/bb/internal/adapters/fs"          //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/bb/internal/adapters/logger"      //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/bb/internal/adapters/translation" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/bb/internal/core/ports"
)

// NodeID is the unique identifier for the configuration loader Graft node.
const NodeID graft.ID = "adapter.config"

func init() {
	graft.Register(graft.Node[ports.ConfigLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.NodeID, translation.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.ConfigLoader, error) {
			out, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}
			catalog, err := graft.Dep[*translation.Catalog](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(NewOSFS(), out, catalog, log), nil
		},
	})
}
