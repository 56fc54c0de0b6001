package resource

import (
	"context"
	"fmt"

	coreerrors "resource-base/internal/core/errors"
)

// 附属集合：每条记录可挂若干字符串集合（如标签），键为 MemberSets 模板渲染结果
// 集合随 Destroy 一并删除

func (b *Base) memberSetKey(set, id string) string {
	return fmt.Sprintf(b.cfg.MemberSets[set], id)
}

func (b *Base) resolveMemberSet(inst *Instance, set string) (string, error) {
	if _, ok := b.cfg.MemberSets[set]; !ok {
		return "", coreerrors.Newf(coreerrors.CodeInvalidField, "%s is not a member set of %s", set, b.cfg.Name).
			WithDetail("set", set)
	}
	if inst == nil || inst.id == "" {
		return "", coreerrors.New(coreerrors.CodeMissingID, "member sets require a saved resource")
	}
	return b.memberSetKey(set, inst.id), nil
}

// AddMembers 向附属集合添加成员
func (b *Base) AddMembers(ctx context.Context, inst *Instance, set string, members ...string) error {
	key, err := b.resolveMemberSet(inst, set)
	if err != nil {
		return err
	}
	for _, m := range members {
		if err := b.kv.SAdd(ctx, key, m); err != nil {
			return storageError(err, "add member", key)
		}
	}
	return nil
}

// RemoveMembers 从附属集合移除成员
func (b *Base) RemoveMembers(ctx context.Context, inst *Instance, set string, members ...string) error {
	key, err := b.resolveMemberSet(inst, set)
	if err != nil {
		return err
	}
	for _, m := range members {
		if err := b.kv.SRem(ctx, key, m); err != nil {
			return storageError(err, "remove member", key)
		}
	}
	return nil
}

// IsMember 检查成员是否在附属集合中
func (b *Base) IsMember(ctx context.Context, inst *Instance, set, member string) (bool, error) {
	key, err := b.resolveMemberSet(inst, set)
	if err != nil {
		return false, err
	}
	ok, err := b.kv.SIsMember(ctx, key, member)
	if err != nil {
		return false, storageError(err, "check member", key)
	}
	return ok, nil
}

// Members 返回附属集合全部成员（无序）
func (b *Base) Members(ctx context.Context, inst *Instance, set string) ([]string, error) {
	key, err := b.resolveMemberSet(inst, set)
	if err != nil {
		return nil, err
	}
	members, err := b.kv.SMembers(ctx, key)
	if err != nil {
		return nil, storageError(err, "list members", key)
	}
	return members, nil
}
