// Package cmd 提供 resctl 的命令框架
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"resource-base/internal/cli"
	"resource-base/internal/config/schema"
	coreerrors "resource-base/internal/core/errors"
	corelog "resource-base/internal/core/log"
	"resource-base/internal/core/store"
	"resource-base/internal/core/store/factory"
	"resource-base/internal/version"
)

// 退出码
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitNotFound    = 3
	ExitUnavailable = 4
	ExitPanic       = 70
)

// StoreOpener 按配置打开存储，调用方负责 Close
type StoreOpener func(ctx context.Context, cfg *schema.Root) (store.KVStore, error)

// DefaultStoreOpener 通过存储工厂创建存储
func DefaultStoreOpener(ctx context.Context, cfg *schema.Root) (store.KVStore, error) {
	return factory.New(ctx, cfg.Storage.ToStoreConfig())
}

// Option 命令选项
type Option func(*app)

// WithStoreOpener 替换存储打开方式（测试时共享同一个存储）
func WithStoreOpener(opener StoreOpener) Option {
	return func(a *app) {
		a.openStore = opener
	}
}

// app 单次命令执行的全局标志与依赖
type app struct {
	configFile   string
	resourceName string
	redisAddr    string
	storageType  string
	logLevel     string
	noColor      bool

	openStore StoreOpener
}

// NewRootCommand 创建根命令
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{openStore: DefaultStoreOpener}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "resctl",
		Short: "resctl - manage records stored as per-field keys",
		Long: `resctl manages resource records kept in a key-value store.

Every record field lives under its own key, ids come from a counter key,
and a membership set lists all ids of a resource type. Resource types are
declared in the configuration file.

Storage defaults to an embedded in-process Redis, so data does not survive
between invocations. Point resctl at a Redis server with --redis or
storage.type: redis in the configuration file to keep records.

Quick Start:
  resctl --redis localhost:6379 create --set title=Hello --set slug=hello
  resctl get 1
  resctl find hello
  resctl list --load`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Config file path")
	root.PersistentFlags().StringVarP(&a.resourceName, "resource", "r", "", "Resource type (optional when only one is declared)")
	root.PersistentFlags().StringVar(&a.redisAddr, "redis", "", "Redis address; implies --storage redis")
	root.PersistentFlags().StringVar(&a.storageType, "storage", "", "Storage type: redis/embedded/memory")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug/info/warn/error")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return coreerrors.Wrap(err, coreerrors.CodeInvalidParam, "invalid flags")
	})

	root.AddCommand(
		a.newCreateCommand(),
		a.newUpdateCommand(),
		a.newGetCommand(),
		a.newFindCommand(),
		a.newDeleteCommand(),
		a.newListCommand(),
		a.newNextIDCommand(),
		a.newMembersCommand(),
		a.newVerifyCommand(),
		a.newConfigCommand(),
		a.newVersionCommand(),
	)
	return root
}

// ExitCode 把错误映射为进程退出码
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch {
	case coreerrors.IsUsageError(err):
		return ExitUsage
	case coreerrors.IsNotFound(err):
		return ExitNotFound
	case coreerrors.IsStorageError(err):
		return ExitUnavailable
	default:
		return ExitFailure
	}
}

// Execute 执行根命令并返回退出码
func Execute() (code int) {
	defer func() {
		if r := recover(); r != nil {
			corelog.Errorf("FATAL: main goroutine panic recovered: %v", r)
			fmt.Fprintf(os.Stderr, "\nPANIC: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", string(debug.Stack()))
			code = ExitPanic
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		noColor := !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd())
		cli.NewOutput(os.Stdout, os.Stderr, noColor).Error("%v", err)
		return ExitCode(err)
	}
	return ExitOK
}
