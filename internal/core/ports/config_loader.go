package ports

import "go.trai.ch/bb/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration found from the given working directory
	// and applies the command line overrides.
	Load(cwd string, overrides domain.Overrides) (*domain.Project, error)

	// DiscoverRoot walks up from cwd to the directory containing bb.yaml.
	DiscoverRoot(cwd string) (string, error)
}
