package cmd

import (
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"resource-base/internal/cli"
	"resource-base/internal/config/loader"
	"resource-base/internal/config/schema"
	"resource-base/internal/config/source"
	coreerrors "resource-base/internal/core/errors"
	corelog "resource-base/internal/core/log"
	"resource-base/internal/core/store"
	"resource-base/internal/resource"
)

// session 一次命令执行所需的配置、日志、存储与资源
type session struct {
	cfg    *schema.Root
	spec   *schema.ResourceSpec
	kv     store.KVStore
	base   *resource.Base
	out    *cli.Output
	logger corelog.Logger

	logCloser io.Closer
}

// output 创建绑定到命令输出的 Output
func (a *app) output(cmd *cobra.Command) *cli.Output {
	return cli.NewOutput(cmd.OutOrStdout(), cmd.ErrOrStderr(), a.noColor)
}

// loadConfig 按 默认值 < 配置文件 < 环境变量 < 命令行 的顺序加载配置
func (a *app) loadConfig() (*schema.Root, error) {
	flags := &source.FlagSource{
		StorageType: a.storageType,
		RedisAddr:   a.redisAddr,
		LogLevel:    a.logLevel,
	}
	return loader.NewLoaderBuilder().
		WithConfigFile(a.configFile).
		WithFlags(flags).
		Build().
		Load()
}

// resourceSpec 选择要操作的资源类型，只声明了一个时可省略 --resource
func (a *app) resourceSpec(cfg *schema.Root) (*schema.ResourceSpec, error) {
	if a.resourceName != "" {
		spec, ok := cfg.Resource(a.resourceName)
		if !ok {
			return nil, coreerrors.Newf(coreerrors.CodeInvalidParam, "unknown resource %q", a.resourceName).
				WithDetail("declared", strings.Join(cfg.ResourceNames(), ","))
		}
		return spec, nil
	}

	switch len(cfg.Resources) {
	case 0:
		return nil, coreerrors.New(coreerrors.CodeConfigError, "no resources declared in configuration")
	case 1:
		return &cfg.Resources[0], nil
	default:
		return nil, coreerrors.Newf(coreerrors.CodeInvalidParam,
			"--resource is required (declared: %s)", strings.Join(cfg.ResourceNames(), ", "))
	}
}

// open 加载配置、配置日志并打开存储
func (a *app) open(cmd *cobra.Command) (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := corelog.Configure(cfg.Log.ToLogConfig())
	if err != nil {
		return nil, coreerrors.Wrap(err, coreerrors.CodeConfigError, "failed to configure logging")
	}
	logger = logger.WithField("invocation", uuid.NewString())

	spec, err := a.resourceSpec(cfg)
	if err != nil {
		logCloser.Close()
		return nil, err
	}

	kv, err := a.openStore(cmd.Context(), cfg)
	if err != nil {
		logCloser.Close()
		return nil, coreerrors.Wrap(err, coreerrors.CodeUnavailable, "failed to open store").
			WithDetail("storage", cfg.Storage.Type)
	}
	if cfg.Storage.Type != schema.StorageTypeRedis {
		logger.WithField("storage", cfg.Storage.Type).Debug("store is process-local; data is lost on exit")
	}

	base, err := resource.NewBase(spec.ToResourceConfig(), kv, resource.WithLogger(logger))
	if err != nil {
		kv.Close()
		logCloser.Close()
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"command":  cmd.Name(),
		"resource": spec.Name,
		"storage":  cfg.Storage.Type,
	}).Debug("session opened")

	return &session{
		cfg:       cfg,
		spec:      spec,
		kv:        kv,
		base:      base,
		out:       a.output(cmd),
		logger:    logger,
		logCloser: logCloser,
	}, nil
}

// Close 关闭存储与日志文件
func (s *session) Close() error {
	err := s.kv.Close()
	if cerr := s.logCloser.Close(); err == nil {
		err = cerr
	}
	return err
}

// withSession 包装需要存储的子命令
func (a *app) withSession(run func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := a.open(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.Close(); cerr != nil {
				s.logger.WithError(cerr).Warn("failed to close session")
			}
		}()
		return run(cmd, s, args)
	}
}

// withMutatingSession 包装会写入存储的子命令，进程内存储会给出可见警告
func (a *app) withMutatingSession(run func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return a.withSession(func(cmd *cobra.Command, s *session, args []string) error {
		s.warnEphemeral()
		return run(cmd, s, args)
	})
}

// warnEphemeral 存储不是 redis 时提示写入不会保留
func (s *session) warnEphemeral() {
	if s.cfg.Storage.Type == schema.StorageTypeRedis {
		return
	}
	s.out.Warning("%s storage is process-local, changes are lost when resctl exits (use --redis or storage.type: redis)",
		s.cfg.Storage.Type)
}

// parseAssignments 解析 --set field=value
func parseAssignments(assignments []string) (map[string]string, error) {
	values := make(map[string]string, len(assignments))
	for _, a := range assignments {
		field, value, ok := strings.Cut(a, "=")
		if !ok || field == "" {
			return nil, coreerrors.Newf(coreerrors.CodeInvalidParam, "invalid assignment %q, expected field=value", a)
		}
		values[field] = value
	}
	return values, nil
}

// applyAssignments 把赋值写入实例，未声明的字段返回 INVALID_FIELD
func applyAssignments(inst *resource.Instance, assignments []string) error {
	values, err := parseAssignments(assignments)
	if err != nil {
		return err
	}
	for field, value := range values {
		if err := inst.SetField(field, value); err != nil {
			return err
		}
	}
	return nil
}
