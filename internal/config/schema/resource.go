package schema

import "resource-base/internal/resource"

// ResourceSpec declares one resource type
//
// Only name and fields are required; keys default to the conventional layout
// (<name>:id, <name>:set, <name>:%s:<field>). Explicit field_keys entries
// override the template of individual fields.
type ResourceSpec struct {
	Name        string            `yaml:"name" json:"name"`
	Fields      []string          `yaml:"fields" json:"fields"`
	SearchField string            `yaml:"search_field" json:"search_field"`
	MemberSets  []string          `yaml:"member_sets" json:"member_sets"`
	NextIDKey   string            `yaml:"next_id_key" json:"next_id_key"`
	SetKey      string            `yaml:"set_key" json:"set_key"`
	FieldKeys   map[string]string `yaml:"field_keys" json:"field_keys"`
}

// ToResourceConfig builds the resource configuration
func (s ResourceSpec) ToResourceConfig() resource.Config {
	cfg := resource.NewConfig(s.Name, s.Fields...)
	if s.NextIDKey != "" {
		cfg.NextIDKey = s.NextIDKey
	}
	if s.SetKey != "" {
		cfg.SetKey = s.SetKey
	}
	for field, tmpl := range s.FieldKeys {
		cfg.FieldKeys[field] = tmpl
	}
	cfg.SearchField = s.SearchField
	for _, set := range s.MemberSets {
		cfg = cfg.WithMemberSet(set)
	}
	return cfg
}
