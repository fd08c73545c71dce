package builder

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/bb/internal/adapters/atlas"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bb/internal/adapters/bundler"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bb/internal/adapters/fs"         //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bb/internal/adapters/logger"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bb/internal/adapters/telemetry"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bb/internal/adapters/treesitter" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bb/internal/core/ports"
	"go.trai.ch/bb/internal/engine/cache"
	"go.trai.ch/bb/internal/engine/resolver"
	"go.trai.ch/bb/internal/engine/sprites"
)

// NodeID is the unique identifier for the builder Graft node.
const NodeID graft.ID = "engine.builder"

func init() {
	graft.Register(graft.Node[*Builder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.NodeID,
			treesitter.NodeID,
			atlas.NodeID,
			bundler.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Builder, error) {
			fsys, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}

			compiler, err := graft.Dep[ports.Compiler](ctx)
			if err != nil {
				return nil, err
			}

			packer, err := graft.Dep[ports.AtlasPacker](ctx)
			if err != nil {
				return nil, err
			}

			bundle, err := graft.Dep[ports.Bundler](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			c := cache.New(fsys)
			r, err := resolver.New(c, resolver.DefaultManifestCacheSize)
			if err != nil {
				return nil, err
			}

			return New(c, r, compiler, sprites.NewBundle(packer), bundle, log, tracer), nil
		},
	})
}
