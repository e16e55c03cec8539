package registry

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	MappingFile string `env:"TENANT_MAPPING_FILE,required"` // MappingFile is the path to the YAML tenant mapping table.
}

// mappingFile is the on-disk shape of the tenant mapping table.
type mappingFile struct {
	Tenants []Tenant `yaml:"tenants"`
}

// LoadFile reads the tenant mapping table from a YAML file and builds a
// registry from it. The file is read exactly once; hot reload is not
// supported, a changed mapping requires a process restart.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadRegistry, err)
	}

	var file mappingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Join(ErrFailedToLoadRegistry, err)
	}

	reg, err := New(file.Tenants)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadRegistry, err)
	}
	return reg, nil
}
