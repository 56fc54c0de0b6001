package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resource-base/internal/config/schema"
	coreerrors "resource-base/internal/core/errors"
	"resource-base/internal/core/store"
	redisstore "resource-base/internal/core/store/redis"
)

const testConfig = `
log:
  level: error
storage:
  type: redis
resources:
  - name: article
    fields: [title, body, slug]
    search_field: slug
    member_sets: [tags]
`

// harness 多次命令执行共享同一个 miniredis
type harness struct {
	t          *testing.T
	mr         *miniredis.Miniredis
	client     *redis.Client
	configFile string
}

func newHarness(t *testing.T, config string) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	configFile := filepath.Join(t.TempDir(), "resctl.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(config), 0644))

	return &harness{t: t, mr: mr, client: client, configFile: configFile}
}

// opener 每次返回借用客户端的存储，命令结束时 Close 不会关闭共享连接
func (h *harness) opener(ctx context.Context, cfg *schema.Root) (store.KVStore, error) {
	return redisstore.NewRedisStore(h.client), nil
}

func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	root := NewRootCommand(WithStoreOpener(h.opener))
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", h.configFile, "--no-color", "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, errOut, err := h.run(args...)
	require.NoError(h.t, err, "stderr: %s", errOut)
	return out
}

func TestCreateGetFindDelete(t *testing.T) {
	h := newHarness(t, testConfig)

	out := h.mustRun("create", "--set", "title=Hello", "--set", "slug=hello-1")
	assert.Equal(t, "1\n", out)
	h.mr.CheckGet(t, "article:1:title", "Hello")
	h.mr.CheckGet(t, "article:slug:hello-1", "1")
	assert.False(t, h.mr.Exists("article:1:body"), "empty fields are never written")

	out = h.mustRun("get", "1")
	assert.Contains(t, out, "article 1")
	assert.Contains(t, out, "Hello")

	out = h.mustRun("find", "hello-1", "-o", "yaml")
	assert.Contains(t, out, "id: \"1\"")
	assert.Contains(t, out, "title: Hello")

	_, errOut, err := h.run("delete", "1")
	require.NoError(t, err)
	assert.Contains(t, errOut, "deleted article 1")
	assert.False(t, h.mr.Exists("article:slug:hello-1"))

	_, _, err = h.run("get", "1")
	assert.True(t, coreerrors.IsNotFound(err))
	assert.Equal(t, ExitNotFound, ExitCode(err))

	_, _, err = h.run("delete", "1")
	assert.True(t, coreerrors.IsNotFound(err))
}

func TestUpdate(t *testing.T) {
	h := newHarness(t, testConfig)
	h.mustRun("create", "--set", "title=Hello", "--set", "slug=old")

	h.mustRun("update", "1", "--set", "slug=new", "--set", "body=Text")
	h.mr.CheckGet(t, "article:1:title", "Hello")
	h.mr.CheckGet(t, "article:1:body", "Text")
	h.mr.CheckGet(t, "article:slug:new", "1")
	assert.False(t, h.mr.Exists("article:slug:old"))

	_, _, err := h.run("update", "1")
	assert.True(t, coreerrors.IsCode(err, coreerrors.CodeInvalidParam))

	_, _, err = h.run("update", "9", "--set", "title=x")
	assert.True(t, coreerrors.IsNotFound(err))
}

func TestCreate_InvalidInput(t *testing.T) {
	h := newHarness(t, testConfig)

	_, _, err := h.run("create", "--set", "color=red")
	assert.True(t, coreerrors.IsCode(err, coreerrors.CodeInvalidField))
	assert.Equal(t, ExitUsage, ExitCode(err))

	_, _, err = h.run("create", "--set", "title")
	assert.True(t, coreerrors.IsCode(err, coreerrors.CodeInvalidParam))

	_, _, err = h.run("create", "--bogus")
	assert.Equal(t, ExitUsage, ExitCode(err))

	assert.False(t, h.mr.Exists("article:id"), "no id is allocated for rejected input")
}

func TestListAndNextID(t *testing.T) {
	h := newHarness(t, testConfig)
	for i := 0; i < 11; i++ {
		h.mustRun("create", "--set", "title=t")
	}

	out := h.mustRun("list")
	ids := strings.Fields(out)
	require.Len(t, ids, 11)
	assert.Equal(t, "1", ids[0])
	assert.Equal(t, "2", ids[1])
	assert.Equal(t, "11", ids[10])

	out = h.mustRun("list", "--load")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 13)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))

	assert.Equal(t, "12\n", h.mustRun("next-id"))
	assert.Equal(t, "13\n", h.mustRun("create", "--set", "title=t"))
}

func TestMembers(t *testing.T) {
	h := newHarness(t, testConfig)
	h.mustRun("create", "--set", "title=Hello")

	h.mustRun("members", "add", "1", "tags", "go", "redis")
	assert.Equal(t, "go\nredis\n", h.mustRun("members", "list", "1", "tags"))
	assert.Equal(t, "true\n", h.mustRun("members", "check", "1", "tags", "go"))

	h.mustRun("members", "remove", "1", "tags", "go")
	assert.Equal(t, "false\n", h.mustRun("members", "check", "1", "tags", "go"))

	_, _, err := h.run("members", "add", "1", "colors", "red")
	assert.True(t, coreerrors.IsCode(err, coreerrors.CodeInvalidField))

	_, _, err = h.run("members", "add", "7", "tags", "x")
	assert.True(t, coreerrors.IsNotFound(err))

	h.mustRun("delete", "1")
	assert.False(t, h.mr.Exists("article:1:tags"))
}

func TestVerify(t *testing.T) {
	h := newHarness(t, testConfig)
	h.mustRun("create", "--set", "title=Hello", "--set", "slug=hello")

	out := h.mustRun("verify")
	assert.Contains(t, out, "ids:")

	require.NoError(t, h.mr.Set("article:slug:ghost", "99"))
	_, errOut, err := h.run("verify")
	require.NoError(t, err)
	assert.Contains(t, errOut, "run with --repair")

	_, errOut, err = h.run("verify", "--repair")
	require.NoError(t, err)
	assert.Contains(t, errOut, "repaired 1 of 1")
	assert.False(t, h.mr.Exists("article:slug:ghost"))
}

func TestResourceSelection(t *testing.T) {
	h := newHarness(t, testConfig+`
  - name: user
    fields: [name]
`)

	_, _, err := h.run("list")
	assert.True(t, coreerrors.IsCode(err, coreerrors.CodeInvalidParam))

	assert.Equal(t, "1\n", h.mustRun("--resource", "user", "create", "--set", "name=ann"))
	h.mr.CheckGet(t, "user:1:name", "ann")

	_, _, err = h.run("--resource", "nope", "list")
	assert.True(t, coreerrors.IsCode(err, coreerrors.CodeInvalidParam))
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t, testConfig+`
    next_id_key: articles_next
`)

	out := h.mustRun("--redis", "cache:6380", "config", "show")
	assert.Contains(t, out, "type: redis")
	assert.Contains(t, out, "addr: cache:6380")
	assert.Contains(t, out, "dial_timeout: 5s")

	out = h.mustRun("config", "resources")
	assert.Contains(t, out, "articles_next")
	assert.Contains(t, out, "body,slug,title")
}

func TestInvalidConfig(t *testing.T) {
	h := newHarness(t, `
resources:
  - name: article
    fields: [title]
    search_field: slug
`)

	_, _, err := h.run("list")
	assert.True(t, coreerrors.IsCode(err, coreerrors.CodeConfigError))
	assert.Equal(t, ExitUsage, ExitCode(err))
}

func TestStoreUnavailable(t *testing.T) {
	h := newHarness(t, testConfig)
	root := NewRootCommand(WithStoreOpener(func(ctx context.Context, cfg *schema.Root) (store.KVStore, error) {
		return nil, store.ErrConnectionFailed
	}))
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", h.configFile, "list"})

	err := root.Execute()
	assert.True(t, coreerrors.IsCode(err, coreerrors.CodeUnavailable))
	assert.Equal(t, ExitUnavailable, ExitCode(err))
}

func TestProcessLocalStorageWarning(t *testing.T) {
	h := newHarness(t, testConfig)

	_, errOut, err := h.run("--storage", "embedded", "create", "--set", "title=Hello")
	require.NoError(t, err)
	assert.Contains(t, errOut, "WARN embedded storage is process-local")

	_, errOut, err = h.run("--storage", "embedded", "get", "1")
	require.NoError(t, err)
	assert.NotContains(t, errOut, "process-local", "read-only commands stay quiet")

	_, errOut, err = h.run("create", "--set", "title=World")
	require.NoError(t, err)
	assert.NotContains(t, errOut, "process-local")
}

func TestVersion(t *testing.T) {
	h := newHarness(t, testConfig)
	out := h.mustRun("version")
	assert.True(t, strings.HasPrefix(out, "resctl "))
}
