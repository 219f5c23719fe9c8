package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/require"

	"github.com/brian14708/binrange"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func defaultConfig(t *testing.T) *binrange.Config {
	t.Helper()
	var cfg binrange.Config
	cfg.RegisterFlagsAndApplyDefaults("", flag.NewFlagSet("test", flag.ContinueOnError))
	return &cfg
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	configFile := writeFile(t, dir, "config.yaml", `
field: ip
keyed: true
ranges:
  - key: low
    to: 10.0.0.100
  - key: high
    from: 10.0.0.100
`)
	input := writeFile(t, dir, "docs.tsv", "a\t10.0.0.1,10.0.0.2\nb\t10.0.0.150\na\t10.0.0.200\n\n10.0.0.3\nb\t\n")

	var out bytes.Buffer
	require.NoError(t, run(defaultConfig(t), configFile, input, 3, &out, log.NewNopLogger()))
	require.JSONEq(t, `{
		"a":{"buckets":{"low":{"to":"10.0.0.100","doc_count":1},"high":{"from":"10.0.0.100","doc_count":1}}},
		"b":{"buckets":{"low":{"to":"10.0.0.100","doc_count":0},"high":{"from":"10.0.0.100","doc_count":1}}},
		"_all":{"buckets":{"low":{"to":"10.0.0.100","doc_count":1},"high":{"from":"10.0.0.100","doc_count":0}}}
	}`, out.String())
}

func TestRunKeyword(t *testing.T) {
	dir := t.TempDir()
	configFile := writeFile(t, dir, "config.yaml", `
field: host
type: keyword
ranges:
  - to: m
  - from: m
`)
	input := writeFile(t, dir, "docs.tsv", "alpha\nzulu,bravo\n")

	var out bytes.Buffer
	require.NoError(t, run(defaultConfig(t), configFile, input, 1, &out, log.NewNopLogger()))
	require.JSONEq(t, `{"_all":{"buckets":[
		{"key":"*-m","to":"m","doc_count":2},
		{"key":"m-*","from":"m","doc_count":1}
	]}}`, out.String())
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	valid := writeFile(t, dir, "config.yaml", "field: ip\nranges: [{to: 10.0.0.1}]\n")
	input := writeFile(t, dir, "docs.tsv", "10.0.0.1\n")
	var out bytes.Buffer

	require.Error(t, run(defaultConfig(t), filepath.Join(dir, "missing.yaml"), input, 1, &out, log.NewNopLogger()))
	require.ErrorIs(t, run(defaultConfig(t), "", input, 1, &out, log.NewNopLogger()), binrange.ErrInvalidConfig)
	require.Error(t, run(defaultConfig(t), valid, input, 0, &out, log.NewNopLogger()))

	bad := writeFile(t, dir, "bad.tsv", "10.0.0.1\nnot-an-ip\n")
	err := run(defaultConfig(t), valid, bad, 1, &out, log.NewNopLogger())
	require.ErrorContains(t, err, "line 2")
	require.Empty(t, out.String())
}
