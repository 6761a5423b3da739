// Package registry loads the static Cortex service configuration: the
// mapping from service names to the warehouse objects backing them.
//
// The file is read once at startup and treated as read-only for the
// process lifetime. A missing or malformed file is not fatal; it logs
// and yields an empty registry, so the server still starts and the
// non-Cortex tools keep working.
package registry

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/datapeak/snowmcp/internal/log"
	"github.com/datapeak/snowmcp/internal/snowflake"
)

// ErrServiceNotFound indicates a lookup for a service name with no
// registry entry.
var ErrServiceNotFound = errors.New("cortex service not found")

// ErrConfiguration indicates a matched entry missing a required field.
var ErrConfiguration = errors.New("service configuration error")

// SearchService describes a configured Cortex Search service.
type SearchService struct {
	ServiceName  string `yaml:"service_name" json:"service_name"`
	DatabaseName string `yaml:"database_name" json:"database_name"`
	SchemaName   string `yaml:"schema_name" json:"schema_name"`
	Description  string `yaml:"description" json:"description"`
}

// AnalystService describes a configured Cortex Analyst service.
type AnalystService struct {
	ServiceName   string `yaml:"service_name" json:"service_name"`
	SemanticModel string `yaml:"semantic_model" json:"semantic_model"`
	Description   string `yaml:"description" json:"description"`
}

// CompleteConfig holds the Cortex Complete defaults.
type CompleteConfig struct {
	DefaultModel string `yaml:"default_model" json:"default_model"`
}

// Registry is the loaded service configuration. Immutable after Load.
type Registry struct {
	searchServices  []SearchService
	analystServices []AnalystService
	complete        CompleteConfig
}

// file is the on-disk YAML shape.
type file struct {
	SearchServices  []SearchService  `yaml:"search_services"`
	AnalystServices []AnalystService `yaml:"analyst_services"`
	CortexComplete  CompleteConfig   `yaml:"cortex_complete"`
}

// Empty returns a registry with no configured services.
func Empty() *Registry {
	return &Registry{}
}

// Load reads the registry from path. Absence of the file and parse
// failures both degrade to an empty registry.
func Load(path string, logger log.Logger) *Registry {
	if logger == nil {
		logger = log.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("cortex service configuration not found", "path", path)
		} else {
			logger.Error("reading cortex service configuration", "path", path, "error", err)
		}
		return Empty()
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		logger.Error("parsing cortex service configuration", "path", path, "error", err)
		return Empty()
	}

	logger.Info("loaded cortex service configuration",
		"path", path,
		"search_services", len(f.SearchServices),
		"analyst_services", len(f.AnalystServices))

	return &Registry{
		searchServices:  f.SearchServices,
		analystServices: f.AnalystServices,
		complete:        f.CortexComplete,
	}
}

// SearchServices returns the configured search services.
func (r *Registry) SearchServices() []SearchService {
	out := make([]SearchService, len(r.searchServices))
	copy(out, r.searchServices)
	return out
}

// AnalystServices returns the configured analyst services.
func (r *Registry) AnalystServices() []AnalystService {
	out := make([]AnalystService, len(r.analystServices))
	copy(out, r.analystServices)
	return out
}

// CompleteConfig returns the Cortex Complete defaults.
func (r *Registry) CompleteConfig() CompleteConfig {
	return r.complete
}

// DefaultModel returns the configured default completion model, falling
// back to the package-wide default.
func (r *Registry) DefaultModel() string {
	if r.complete.DefaultModel != "" {
		return r.complete.DefaultModel
	}
	return snowflake.DefaultModel
}

// FindSearch returns the search service with the given name. First
// match wins. A matched entry must name both its database and schema.
func (r *Registry) FindSearch(name string) (SearchService, error) {
	for _, svc := range r.searchServices {
		if svc.ServiceName == name {
			if svc.DatabaseName == "" || svc.SchemaName == "" {
				return SearchService{}, fmt.Errorf(
					"%w: search service %q missing database or schema configuration", ErrConfiguration, name)
			}
			return svc, nil
		}
	}
	return SearchService{}, fmt.Errorf("%w: search service %q not found in configuration", ErrServiceNotFound, name)
}

// FindAnalyst returns the analyst service with the given name. First
// match wins. A matched entry must name its semantic model.
func (r *Registry) FindAnalyst(name string) (AnalystService, error) {
	for _, svc := range r.analystServices {
		if svc.ServiceName == name {
			if svc.SemanticModel == "" {
				return AnalystService{}, fmt.Errorf(
					"%w: analyst service %q missing semantic model configuration", ErrConfiguration, name)
			}
			return svc, nil
		}
	}
	return AnalystService{}, fmt.Errorf("%w: analyst service %q not found in configuration", ErrServiceNotFound, name)
}
