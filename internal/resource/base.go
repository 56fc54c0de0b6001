package resource

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	coreerrors "resource-base/internal/core/errors"
	"resource-base/internal/core/log"
	"resource-base/internal/core/store"
)

// loadConcurrency LoadAll / Verify 的并发上限
const loadConcurrency = 8

// Base 单一资源类型的存储适配器
// 不持有记录状态，可被多个 goroutine 共享
type Base struct {
	cfg     Config
	fields  []string
	kv      store.KVStore
	logger  log.Logger
	metrics *store.RepositoryMetrics
}

// Option Base 选项
type Option func(*Base)

// WithLogger 设置日志
func WithLogger(logger log.Logger) Option {
	return func(b *Base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics 设置指标，多个 Base 可共用
func WithMetrics(m *store.RepositoryMetrics) Option {
	return func(b *Base) {
		if m != nil {
			b.metrics = m
		}
	}
}

// NewBase 创建资源适配器
func NewBase(cfg Config, kv store.KVStore, opts ...Option) (*Base, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if kv == nil {
		return nil, coreerrors.New(coreerrors.CodeConfigError, "key-value store is required")
	}

	cfg = cfg.clone()
	b := &Base{
		cfg:     cfg,
		fields:  cfg.Fields(),
		kv:      kv,
		logger:  log.Default(),
		metrics: store.NewRepositoryMetrics(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithField("resource", cfg.Name)
	return b, nil
}

// Config 返回配置副本
func (b *Base) Config() Config {
	return b.cfg.clone()
}

// Metrics 返回资源层指标
func (b *Base) Metrics() *store.RepositoryMetrics {
	return b.metrics
}

// New 创建没有 ID 的空实例
func (b *Base) New() *Instance {
	return &Instance{
		base:   b,
		fields: make(map[string]FieldValue),
	}
}

// =============================================================================
// 键
// =============================================================================

func (b *Base) fieldKey(field, id string) string {
	return fmt.Sprintf(b.cfg.FieldKeys[field], id)
}

// SearchKey 返回二级键 <name>:<searchField>:<value>
func (b *Base) SearchKey(value string) string {
	return b.cfg.Name + ":" + b.cfg.SearchField + ":" + value
}

func storageError(err error, op, key string) error {
	return coreerrors.Wrapf(err, coreerrors.CodeStorageError, "%s failed", op).WithDetail("key", key)
}

// =============================================================================
// ID
// =============================================================================

// GenerateID 原子递增计数器分配新 ID，计数器从 0 开始
func (b *Base) GenerateID(ctx context.Context) (string, error) {
	n, err := b.kv.Incr(ctx, b.cfg.NextIDKey)
	if err != nil {
		return "", storageError(err, "generate id", b.cfg.NextIDKey)
	}
	return strconv.FormatInt(n, 10), nil
}

// ListAllIDs 返回集合中所有 ID（无序）
func (b *Base) ListAllIDs(ctx context.Context) ([]string, error) {
	ids, err := b.kv.SMembers(ctx, b.cfg.SetKey)
	b.metrics.RecordList(err)
	if err != nil {
		return nil, storageError(err, "list ids", b.cfg.SetKey)
	}
	return ids, nil
}

// Exists 检查 ID 是否在集合中
func (b *Base) Exists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, coreerrors.ErrMissingID
	}
	ok, err := b.kv.SIsMember(ctx, b.cfg.SetKey, id)
	if err != nil {
		return false, storageError(err, "check membership", b.cfg.SetKey)
	}
	return ok, nil
}

// =============================================================================
// 加载
// =============================================================================

// Load 按 ID 加载记录
func (b *Base) Load(ctx context.Context, id string) (*Instance, error) {
	inst := b.New()
	if err := b.load(ctx, inst, id); err != nil {
		return nil, err
	}
	return inst, nil
}

// load 将每个字段的存储值写入实例（包括空值），全部为空时返回 RESOURCE_NOT_FOUND
func (b *Base) load(ctx context.Context, inst *Instance, id string) error {
	if id == "" {
		id = inst.id
	}
	if id == "" {
		return coreerrors.New(coreerrors.CodeMissingID, "cannot load a resource without an id")
	}

	found := false
	for _, field := range b.fields {
		key := b.fieldKey(field, id)
		value, ok, err := b.kv.Get(ctx, key)
		if err != nil {
			b.metrics.RecordLoad(false, err)
			return storageError(err, "load field", key)
		}
		inst.fields[field] = FieldValue{Value: value, Valid: ok}
		if ok && value != "" {
			found = true
		}
	}

	if !found {
		b.metrics.RecordLoad(true, nil)
		return coreerrors.Newf(coreerrors.CodeNotFound, "resource %s was not found", id).WithDetail("id", id)
	}

	if inst.id != id {
		inst.registering = false
	}
	inst.id = id
	if b.cfg.SearchField != "" {
		inst.searchValue = inst.fields[b.cfg.SearchField].String()
	}
	b.metrics.RecordLoad(false, nil)
	return nil
}

// LoadAll 并发加载集合中的所有记录，字段全空的 ID 被跳过
func (b *Base) LoadAll(ctx context.Context) ([]*Instance, error) {
	ids, err := b.ListAllIDs(ctx)
	if err != nil {
		return nil, err
	}
	SortIDs(ids)

	results := make([]*Instance, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			inst, err := b.Load(gctx, id)
			if coreerrors.IsNotFound(err) {
				b.logger.WithField("id", id).Warn("listed id has no fields")
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = inst
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*Instance, 0, len(results))
	for _, inst := range results {
		if inst != nil {
			out = append(out, inst)
		}
	}
	return out, nil
}

// =============================================================================
// 保存
// =============================================================================

// Save 保存记录
// 没有 ID 时分配新 ID 并在最后加入集合；已有 ID 时只更新非空字段
func (b *Base) Save(ctx context.Context, inst *Instance) (err error) {
	creating := inst.id == "" || inst.registering
	defer func() {
		if creating {
			b.metrics.RecordCreate(err)
		} else {
			b.metrics.RecordUpdate(err)
		}
		if err != nil {
			b.logger.WithError(err).WithField("id", inst.id).Warn("save failed")
		}
	}()

	if inst.id == "" {
		id, err := b.GenerateID(ctx)
		if err != nil {
			return err
		}
		inst.id = id
		inst.registering = true
	}

	for _, field := range b.fields {
		v := inst.fields[field]
		if !v.IsSet() {
			continue
		}
		key := b.fieldKey(field, inst.id)
		if err := b.kv.Set(ctx, key, v.Value); err != nil {
			return storageError(err, "save field", key)
		}
	}

	if err := b.saveSearchKey(ctx, inst); err != nil {
		return err
	}

	if inst.registering {
		if err := b.kv.SAdd(ctx, b.cfg.SetKey, inst.id); err != nil {
			return storageError(err, "register id", b.cfg.SetKey)
		}
		inst.registering = false
		b.logger.WithField("id", inst.id).Debug("resource created")
	}
	return nil
}

// saveSearchKey 写入二级键；值变化时删除仍指向本记录的旧二级键
func (b *Base) saveSearchKey(ctx context.Context, inst *Instance) error {
	if b.cfg.SearchField == "" {
		return nil
	}
	current := inst.fields[b.cfg.SearchField]
	if !current.IsSet() {
		return nil
	}

	if old := inst.searchValue; old != "" && old != current.Value {
		if err := b.deleteSearchKeyIfOwned(ctx, old, inst.id); err != nil {
			return err
		}
	}

	key := b.SearchKey(current.Value)
	if err := b.kv.Set(ctx, key, inst.id); err != nil {
		return storageError(err, "save search key", key)
	}
	inst.searchValue = current.Value
	return nil
}

// deleteSearchKeyIfOwned 只删除仍指向 id 的二级键
func (b *Base) deleteSearchKeyIfOwned(ctx context.Context, value, id string) error {
	key := b.SearchKey(value)
	owner, ok, err := b.kv.Get(ctx, key)
	if err != nil {
		return storageError(err, "read search key", key)
	}
	if !ok || owner != id {
		return nil
	}
	if err := b.kv.Delete(ctx, key); err != nil {
		return storageError(err, "delete search key", key)
	}
	return nil
}

// =============================================================================
// 销毁
// =============================================================================

// Destroy 删除记录的字段键、二级键、附属集合，并从集合中移除
// id 为空时使用 inst 的 ID；ID 不在集合中时返回 false 且不做任何修改
func (b *Base) Destroy(ctx context.Context, inst *Instance, id string) (removed bool, err error) {
	if id == "" && inst != nil {
		id = inst.id
	}
	if id == "" {
		return false, coreerrors.New(coreerrors.CodeMissingID, "cannot destroy a resource without an id")
	}
	defer func() {
		b.metrics.RecordDelete(err)
		if err != nil {
			b.logger.WithError(err).WithField("id", id).Warn("destroy failed")
		}
	}()

	member, err := b.kv.SIsMember(ctx, b.cfg.SetKey, id)
	if err != nil {
		return false, storageError(err, "check membership", b.cfg.SetKey)
	}
	if !member {
		return false, nil
	}

	searchValue, err := b.searchValueForDestroy(ctx, inst, id)
	if err != nil {
		return false, err
	}

	for _, field := range b.fields {
		key := b.fieldKey(field, id)
		if err := b.kv.Delete(ctx, key); err != nil {
			return false, storageError(err, "delete field", key)
		}
	}

	if searchValue != "" {
		if err := b.deleteSearchKeyIfOwned(ctx, searchValue, id); err != nil {
			return false, err
		}
	}

	for _, set := range sortedKeys(b.cfg.MemberSets) {
		key := b.memberSetKey(set, id)
		if err := b.kv.Delete(ctx, key); err != nil {
			return false, storageError(err, "delete member set", key)
		}
	}

	if err := b.kv.SRem(ctx, b.cfg.SetKey, id); err != nil {
		return false, storageError(err, "unregister id", b.cfg.SetKey)
	}

	if inst != nil && inst.id == id {
		inst.id = ""
		inst.searchValue = ""
		inst.registering = false
	}
	b.logger.WithField("id", id).Debug("resource destroyed")
	return true, nil
}

// searchValueForDestroy 返回二级键对应的已持久化值
// 实例最近一次加载/保存的值优先，未保存的修改不参与；未知时从存储读取
func (b *Base) searchValueForDestroy(ctx context.Context, inst *Instance, id string) (string, error) {
	if b.cfg.SearchField == "" {
		return "", nil
	}
	if inst != nil && inst.id == id && inst.searchValue != "" {
		return inst.searchValue, nil
	}

	key := b.fieldKey(b.cfg.SearchField, id)
	value, _, err := b.kv.Get(ctx, key)
	if err != nil {
		return "", storageError(err, "read search field", key)
	}
	return value, nil
}

// =============================================================================
// 二级键查找
// =============================================================================

func (b *Base) requireSearchField() error {
	if b.cfg.SearchField == "" {
		return coreerrors.Newf(coreerrors.CodeConfigError, "%s has no search field configured", b.cfg.Name).
			WithDetail("field", "search_field")
	}
	return nil
}

// IDBySearchKey 通过二级键查找 ID，不存在时返回空串
func (b *Base) IDBySearchKey(ctx context.Context, value string) (id string, err error) {
	if err := b.requireSearchField(); err != nil {
		return "", err
	}
	defer func() { b.metrics.RecordSearch(err) }()

	key := b.SearchKey(value)
	id, _, err = b.kv.Get(ctx, key)
	if err != nil {
		return "", storageError(err, "read search key", key)
	}
	return id, nil
}

// LoadBySearchKeyValue 通过二级键加载记录
func (b *Base) LoadBySearchKeyValue(ctx context.Context, value string) (*Instance, error) {
	id, err := b.IDBySearchKey(ctx, value)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, coreerrors.Newf(coreerrors.CodeNotFound, "no %s with %s %q", b.cfg.Name, b.cfg.SearchField, value).
			WithDetail("key", b.SearchKey(value))
	}
	return b.Load(ctx, id)
}

// =============================================================================
// 原始读写
// =============================================================================

// Get 读取任意键，不存在时返回空串
func (b *Base) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", coreerrors.New(coreerrors.CodeInvalidParam, "key is required")
	}
	value, _, err := b.kv.Get(ctx, key)
	if err != nil {
		return "", storageError(err, "get", key)
	}
	return value, nil
}

// Set 写入任意键
func (b *Base) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return coreerrors.New(coreerrors.CodeInvalidParam, "key is required")
	}
	if err := b.kv.Set(ctx, key, value); err != nil {
		return storageError(err, "set", key)
	}
	return nil
}

// SortIDs 数字 ID 按数值排序，其余按字典序排在后面
func SortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.ParseInt(ids[i], 10, 64)
		c, errC := strconv.ParseInt(ids[j], 10, 64)
		switch {
		case errA == nil && errC == nil:
			return a < c
		case errA == nil:
			return true
		case errC == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}
