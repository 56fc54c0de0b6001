package resource

import (
	"sort"
	"strings"

	coreerrors "resource-base/internal/core/errors"
)

// Config 资源定义
type Config struct {
	// Name 资源名，用于生成二级键
	Name string

	// NextIDKey ID 计数器键
	NextIDKey string

	// SetKey ID 集合键
	SetKey string

	// FieldKeys 字段名 → 键模板（包含一个 %s 占位符）
	FieldKeys map[string]string

	// SearchField 二级查找字段，为空表示不支持
	SearchField string

	// MemberSets 附属集合名 → 键模板（包含一个 %s 占位符）
	MemberSets map[string]string
}

// NewConfig 按约定布局创建配置
func NewConfig(name string, fields ...string) Config {
	cfg := Config{
		Name:      name,
		NextIDKey: name + ":id",
		SetKey:    name + ":set",
		FieldKeys: make(map[string]string, len(fields)),
	}
	for _, f := range fields {
		cfg.FieldKeys[f] = name + ":%s:" + f
	}
	return cfg
}

// WithSearchField 返回设置了二级查找字段的副本
func (c Config) WithSearchField(field string) Config {
	out := c.clone()
	out.SearchField = field
	return out
}

// WithMemberSet 返回增加了附属集合的副本，模板为 <name>:%s:<set>
func (c Config) WithMemberSet(set string) Config {
	out := c.clone()
	if out.MemberSets == nil {
		out.MemberSets = make(map[string]string)
	}
	out.MemberSets[set] = c.Name + ":%s:" + set
	return out
}

// Validate 校验配置
func (c Config) Validate() error {
	switch {
	case c.Name == "":
		return configError("name", "resource name is required")
	case c.NextIDKey == "":
		return configError("next_id_key", "next id key is required")
	case c.SetKey == "":
		return configError("set_key", "set key is required")
	case len(c.FieldKeys) == 0:
		return configError("field_keys", "at least one field is required")
	}

	for _, name := range sortedKeys(c.FieldKeys) {
		if name == "" {
			return configError("field_keys", "field name must not be empty")
		}
		if !validTemplate(c.FieldKeys[name]) {
			return configError("field_keys."+name, "key template must contain exactly one %s placeholder")
		}
	}

	if c.SearchField != "" {
		if _, ok := c.FieldKeys[c.SearchField]; !ok {
			return configError("search_field", "search field is not a declared field")
		}
	}

	for _, set := range sortedKeys(c.MemberSets) {
		if set == "" {
			return configError("member_sets", "member set name must not be empty")
		}
		if !validTemplate(c.MemberSets[set]) {
			return configError("member_sets."+set, "key template must contain exactly one %s placeholder")
		}
	}
	return nil
}

// Fields 返回排序后的字段名
func (c Config) Fields() []string {
	return sortedKeys(c.FieldKeys)
}

func (c Config) clone() Config {
	out := c
	out.FieldKeys = make(map[string]string, len(c.FieldKeys))
	for k, v := range c.FieldKeys {
		out.FieldKeys[k] = v
	}
	if c.MemberSets != nil {
		out.MemberSets = make(map[string]string, len(c.MemberSets))
		for k, v := range c.MemberSets {
			out.MemberSets[k] = v
		}
	}
	return out
}

func configError(field, message string) error {
	return coreerrors.New(coreerrors.CodeConfigError, message).WithDetail("field", field)
}

// validTemplate 模板中除 %% 外只能有一个格式化动词，且为 %s
func validTemplate(tmpl string) bool {
	stripped := strings.ReplaceAll(tmpl, "%%", "")
	return strings.Count(stripped, "%") == 1 && strings.Count(stripped, "%s") == 1
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
