package resource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	coreerrors "resource-base/internal/core/errors"
	"resource-base/internal/core/store"
)

// InconsistencyType 不一致类型
type InconsistencyType string

const (
	// InconsistencyMissingFields ID 在集合中但所有字段为空
	InconsistencyMissingFields InconsistencyType = "missing_fields"

	// InconsistencyOrphanSearchKey 二级键指向不在集合中的 ID
	InconsistencyOrphanSearchKey InconsistencyType = "orphan_search_key"

	// InconsistencyStaleSearchKey 二级键指向的记录当前值已不同
	InconsistencyStaleSearchKey InconsistencyType = "stale_search_key"
)

// Inconsistency 不一致记录
type Inconsistency struct {
	Type        InconsistencyType `json:"type" yaml:"type"`
	ID          string            `json:"id" yaml:"id"`
	Key         string            `json:"key" yaml:"key"`
	Description string            `json:"description" yaml:"description"`
}

// VerifyResult 校验结果
type VerifyResult struct {
	CheckedIDs        int             `json:"checked_ids" yaml:"checked_ids"`
	CheckedSearchKeys int             `json:"checked_search_keys" yaml:"checked_search_keys"`
	SearchKeysScanned bool            `json:"search_keys_scanned" yaml:"search_keys_scanned"`
	MissingFields     int             `json:"missing_fields" yaml:"missing_fields"`
	OrphanSearchKeys  int             `json:"orphan_search_keys" yaml:"orphan_search_keys"`
	StaleSearchKeys   int             `json:"stale_search_keys" yaml:"stale_search_keys"`
	Inconsistencies   []Inconsistency `json:"inconsistencies" yaml:"inconsistencies"`
}

// Consistent 没有发现不一致
func (r *VerifyResult) Consistent() bool {
	return len(r.Inconsistencies) == 0
}

func (r *VerifyResult) add(inc Inconsistency) {
	r.Inconsistencies = append(r.Inconsistencies, inc)
	switch inc.Type {
	case InconsistencyMissingFields:
		r.MissingFields++
	case InconsistencyOrphanSearchKey:
		r.OrphanSearchKeys++
	case InconsistencyStaleSearchKey:
		r.StaleSearchKeys++
	}
}

// RepairResult 修复结果
type RepairResult struct {
	RepairsAttempted int      `json:"repairs_attempted" yaml:"repairs_attempted"`
	RepairsSucceeded int      `json:"repairs_succeeded" yaml:"repairs_succeeded"`
	Errors           []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Verify 校验集合、字段键与二级键之间的一致性
// 二级键检查需要存储实现 store.KeyScanner，否则只做集合检查
func (b *Base) Verify(ctx context.Context) (*VerifyResult, error) {
	ids, err := b.ListAllIDs(ctx)
	if err != nil {
		return nil, err
	}
	SortIDs(ids)

	result := &VerifyResult{CheckedIDs: len(ids)}
	members := make(map[string]bool, len(ids))
	for _, id := range ids {
		members[id] = true
	}

	// 每个 ID 的二级查找字段当前值
	searchValues := make(map[string]string, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			inst := b.New()
			err := b.load(gctx, inst, id)
			if coreerrors.IsNotFound(err) {
				mu.Lock()
				result.add(Inconsistency{
					Type:        InconsistencyMissingFields,
					ID:          id,
					Key:         b.cfg.SetKey,
					Description: fmt.Sprintf("id %s is registered but has no field values", id),
				})
				mu.Unlock()
				return nil
			}
			if err != nil {
				return err
			}
			if b.cfg.SearchField != "" {
				mu.Lock()
				searchValues[id] = inst.fields[b.cfg.SearchField].String()
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scanner, ok := b.kv.(store.KeyScanner)
	if b.cfg.SearchField != "" && ok {
		if err := b.verifySearchKeys(ctx, scanner, members, searchValues, result); err != nil {
			return nil, err
		}
		result.SearchKeysScanned = true
	}

	sort.SliceStable(result.Inconsistencies, func(i, j int) bool {
		return result.Inconsistencies[i].Key < result.Inconsistencies[j].Key
	})
	return result, nil
}

func (b *Base) verifySearchKeys(ctx context.Context, scanner store.KeyScanner, members map[string]bool,
	searchValues map[string]string, result *VerifyResult) error {
	prefix := b.SearchKey("")
	keys, err := scanner.Scan(ctx, escapeGlob(prefix)+"*")
	if err != nil {
		return storageError(err, "scan search keys", prefix)
	}
	sort.Strings(keys)

	for _, key := range keys {
		owner, ok, err := b.kv.Get(ctx, key)
		if err != nil {
			return storageError(err, "read search key", key)
		}
		if !ok {
			continue
		}
		result.CheckedSearchKeys++

		value := strings.TrimPrefix(key, prefix)
		switch {
		case !members[owner]:
			result.add(Inconsistency{
				Type:        InconsistencyOrphanSearchKey,
				ID:          owner,
				Key:         key,
				Description: fmt.Sprintf("search key points to unregistered id %q", owner),
			})
		case searchValues[owner] != value:
			result.add(Inconsistency{
				Type:        InconsistencyStaleSearchKey,
				ID:          owner,
				Key:         key,
				Description: fmt.Sprintf("id %s now has %s %q", owner, b.cfg.SearchField, searchValues[owner]),
			})
		}
	}
	return nil
}

// Repair 修复 Verify 发现的不一致：删除孤立/过期的二级键，从集合移除无字段的 ID
// 修复前重新确认状态，已被其他写入修正的项会跳过
func (b *Base) Repair(ctx context.Context, inconsistencies []Inconsistency) (*RepairResult, error) {
	result := &RepairResult{}
	for _, inc := range inconsistencies {
		result.RepairsAttempted++
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := b.repairOne(ctx, inc); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s %s: %v", inc.Type, inc.Key, err))
			continue
		}
		result.RepairsSucceeded++
	}

	b.logger.WithFields(map[string]interface{}{
		"attempted": result.RepairsAttempted,
		"succeeded": result.RepairsSucceeded,
	}).Info("repair finished")
	return result, nil
}

func (b *Base) repairOne(ctx context.Context, inc Inconsistency) error {
	switch inc.Type {
	case InconsistencyOrphanSearchKey:
		if inc.ID != "" {
			member, err := b.Exists(ctx, inc.ID)
			if err != nil || member {
				return err
			}
		}
		return b.deleteSearchKeyIfOwned(ctx, strings.TrimPrefix(inc.Key, b.SearchKey("")), inc.ID)

	case InconsistencyStaleSearchKey:
		value := strings.TrimPrefix(inc.Key, b.SearchKey(""))
		key := b.fieldKey(b.cfg.SearchField, inc.ID)
		current, _, err := b.kv.Get(ctx, key)
		if err != nil {
			return storageError(err, "read search field", key)
		}
		if current == value {
			return nil
		}
		return b.deleteSearchKeyIfOwned(ctx, value, inc.ID)

	case InconsistencyMissingFields:
		inst := b.New()
		err := b.load(ctx, inst, inc.ID)
		if err == nil {
			return nil
		}
		if !coreerrors.IsNotFound(err) {
			return err
		}
		if err := b.kv.SRem(ctx, b.cfg.SetKey, inc.ID); err != nil {
			return storageError(err, "unregister id", b.cfg.SetKey)
		}
		return nil

	default:
		return coreerrors.Newf(coreerrors.CodeInvalidParam, "unknown inconsistency type %q", inc.Type)
	}
}

// escapeGlob 转义 SCAN 模式中的特殊字符
func escapeGlob(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
