// Package schema defines configuration structure types
package schema

// Root is the top-level configuration structure
type Root struct {
	Log       LogConfig      `yaml:"log" json:"log"`
	Storage   StorageConfig  `yaml:"storage" json:"storage"`
	Resources []ResourceSpec `yaml:"resources" json:"resources"`
}

// Resource returns the resource definition with the given name
func (r *Root) Resource(name string) (*ResourceSpec, bool) {
	for i := range r.Resources {
		if r.Resources[i].Name == name {
			return &r.Resources[i], true
		}
	}
	return nil, false
}

// ResourceNames returns the declared resource names in file order
func (r *Root) ResourceNames() []string {
	names := make([]string, 0, len(r.Resources))
	for _, res := range r.Resources {
		names = append(names, res.Name)
	}
	return names
}
