package resource

import (
	"context"

	coreerrors "resource-base/internal/core/errors"
)

// FieldValue 字段值，Valid 为 false 表示存储中没有该字段
type FieldValue struct {
	Value string
	Valid bool
}

// IsSet 非空才会被持久化
func (v FieldValue) IsSet() bool {
	return v.Valid && v.Value != ""
}

// String 未设置时返回空串
func (v FieldValue) String() string {
	if !v.Valid {
		return ""
	}
	return v.Value
}

// Instance 一条资源记录
// 不是并发安全的，同一实例不应在多个 goroutine 间共享
type Instance struct {
	base   *Base
	id     string
	fields map[string]FieldValue

	// searchValue 最近一次加载/保存时持久化的二级查找值
	searchValue string

	// registering 已分配 ID 但尚未加入集合
	registering bool
}

// ID 返回 ID，未持久化时为空
func (i *Instance) ID() string {
	return i.id
}

// SetID 设置 ID，之后 Save 视为更新
func (i *Instance) SetID(id string) {
	if id != i.id {
		i.searchValue = ""
		i.registering = false
	}
	i.id = id
}

// Field 读取字段
func (i *Instance) Field(name string) (FieldValue, error) {
	if err := i.base.checkField(name); err != nil {
		return FieldValue{}, err
	}
	return i.fields[name], nil
}

// Value 读取字段值，未声明或未设置时返回空串
func (i *Instance) Value(name string) string {
	return i.fields[name].String()
}

// SetField 设置字段
func (i *Instance) SetField(name, value string) error {
	if err := i.base.checkField(name); err != nil {
		return err
	}
	i.fields[name] = FieldValue{Value: value, Valid: true}
	return nil
}

// ClearField 清除内存中的字段值，不影响已持久化的值
func (i *Instance) ClearField(name string) error {
	if err := i.base.checkField(name); err != nil {
		return err
	}
	delete(i.fields, name)
	return nil
}

// Fields 返回所有已设置（非空）的字段
func (i *Instance) Fields() map[string]string {
	out := make(map[string]string, len(i.fields))
	for name, v := range i.fields {
		if v.IsSet() {
			out[name] = v.Value
		}
	}
	return out
}

// Load 加载记录，id 为空时使用实例自身的 ID
func (i *Instance) Load(ctx context.Context, id string) error {
	return i.base.load(ctx, i, id)
}

// Save 保存记录
func (i *Instance) Save(ctx context.Context) error {
	return i.base.Save(ctx, i)
}

// Destroy 销毁实例自身对应的记录
func (i *Instance) Destroy(ctx context.Context) (bool, error) {
	return i.base.Destroy(ctx, i, "")
}

func (b *Base) checkField(name string) error {
	if _, ok := b.cfg.FieldKeys[name]; !ok {
		return coreerrors.Newf(coreerrors.CodeInvalidField, "%s is not a valid field for %s", name, b.cfg.Name).
			WithDetail("field", name)
	}
	return nil
}
