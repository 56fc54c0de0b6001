// Package version 构建版本信息
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version 版本号，构建时通过 -ldflags 注入
	Version = "dev"

	// BuildTime 构建时间，通过 -ldflags 注入
	BuildTime = ""

	// GitCommit Git 提交哈希，通过 -ldflags 注入
	GitCommit = ""
)

// GetVersion 获取完整版本信息
func GetVersion() string {
	version := Version
	if version != "dev" {
		version = "v" + version
	}
	if BuildTime != "" {
		version += " (built " + BuildTime + ")"
	}
	if GitCommit != "" {
		commit := GitCommit
		if len(commit) > 8 {
			commit = commit[:8]
		}
		version += " commit " + commit
	}
	return version
}

// String 返回带 Go 运行时信息的版本描述
func String(program string) string {
	return fmt.Sprintf("%s %s %s/%s %s", program, GetVersion(), runtime.GOOS, runtime.GOARCH, runtime.Version())
}
