package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/basketrec/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "disabled"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRecommendCmd(t *testing.T) {
	out, err := run(t, "recommend", "Bacon Cheese", "Pizza", "--top-n", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "If someone orders 'Bacon Cheese', recommend:\nfries\ncoke")
	assert.Contains(t, out, "No recommendation found for 'Pizza'.")
}

func TestRecommendCmd_Defaults(t *testing.T) {
	out, err := run(t, "recommend")
	require.NoError(t, err)
	for _, q := range defaultQueries {
		assert.Contains(t, out, "If someone orders '"+q+"'")
	}
}

func TestRecommendCmd_JSON(t *testing.T) {
	out, err := run(t, "recommend", "Chef Burger", "--json", "--sort-by", "lift")
	require.NoError(t, err)
	assert.Contains(t, out, `"path": "rules"`)
	assert.Contains(t, out, `"sort_by": "lift"`)
}

func TestRecommendCmd_InvalidFlags(t *testing.T) {
	_, err := run(t, "recommend", "Fries", "--sort-by", "support")
	assert.Error(t, err)
}

func TestRecommendCmd_PipelineFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
pipeline:
  name: no-coke
  nodes:
    - type: recall.association
    - type: filter
      config:
        blacklist: [Coke]
    - type: rerank.topn
`), 0o644))

	out, err := run(t, "recommend", "Bacon Cheese", "--top-n", "2", "--pipeline", yamlPath)
	require.NoError(t, err)
	assert.Contains(t, out, "recommend:\nfries\nchocolate shake")

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{"pipeline":{"nodes":[{"type":"rank.lr"}]}}`), 0o644))
	_, err = run(t, "recommend", "Bacon Cheese", "--pipeline", badPath)
	assert.Error(t, err)

	_, err = run(t, "recommend", "Bacon Cheese", "--pipeline", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestRulesCmd_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baskets.json")
	require.NoError(t, os.WriteFile(path, []byte(`[["A","B"],["A","B"],["A","C"]]`), 0o644))

	out, err := run(t, "rules", "--data", path)
	require.NoError(t, err)
	assert.Contains(t, out, "b -> a")

	out, err = run(t, "rules", "--data", path, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"conviction": "+Inf"`)
}

func TestItemsetsCmd_FromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	src, err := store.DialRedisSource(context.Background(), mr.Addr(), 0, "orders")
	require.NoError(t, err)
	require.NoError(t, src.Push(context.Background(), store.SampleBaskets()...))
	require.NoError(t, src.Close())

	out, err := run(t, "itemsets", "--redis-addr", mr.Addr(), "--redis-key", "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "min_support = 0.1000")
	assert.Contains(t, out, "{bacon cheese, coke, fries}")
}
