package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/docstore"
	"github.com/hupe1980/docstore/blobstore"
	"github.com/hupe1980/docstore/document"
	"github.com/hupe1980/docstore/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weaponsJSONL = `{"name": "mjolnir", "owner": "thor", "serial": 100}
{"name": "gungnir", "owner": "odin", "serial": 101}

{"name": "tyrfing", "owner": "svafrlami", "serial": 102, "forged": {"by": "dwarves"}}
{"name": "draupnir", "owner": "odin", "weight": 0.5}
`

// run executes the CLI with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestImportInspectCheck(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	input := writeFile(t, dir, "weapons.jsonl", weaponsJSONL)
	config := writeFile(t, dir, "weapons.yaml", "indices: [name]\nunique: [serial]\n")

	out, err := run(t, "", "import", "weapons", input, "--config", config, "--dir", data, "--compression", "zstd")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 4 documents into weapons (4 total)")

	out, err = run(t, "", "inspect", "--dir", data)
	require.NoError(t, err)
	assert.Contains(t, out, "collection:")
	assert.Contains(t, out, "weapons")
	assert.Contains(t, out, "zstd")
	assert.Contains(t, out, "go-json")
	assert.Regexp(t, `documents:\s+4`, out)
	assert.Regexp(t, `next id:\s+5`, out)
	assert.Regexp(t, `serial\s+true\s+true`, out)

	out, err = run(t, "", "check", "weapons", "--dir", data)
	require.NoError(t, err)
	assert.Equal(t, "weapons: ok (2 indexes)\n", out)

	out, err = run(t, "", "check", "--sample", "--sample-factor", "0.5", "--dir", data)
	require.NoError(t, err)
	assert.Contains(t, out, "weapons: ok")

	mgr := persistence.NewManager(blobstore.NewLocalStore(data))
	c, err := mgr.Load(context.Background(), "weapons")
	require.NoError(t, err)
	rec, err := c.Get(3)
	require.NoError(t, err)
	assert.Equal(t, document.String("dwarves"), rec.Get("forged.by"))
	assert.Equal(t, document.Int(102), rec.Get("serial"))
	rec, err = c.Get(4)
	require.NoError(t, err)
	assert.Equal(t, document.Float(0.5), rec.Get("weight"))
}

func TestImport_Append(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")

	_, err := run(t, `{"n": 1}`+"\n", "import", "nums", "-", "--dir", data, "--append")
	require.NoError(t, err)
	out, err := run(t, `{"n": 2}`+"\n"+`{"n": 3}`+"\n", "import", "nums", "-", "--dir", data, "--append")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 documents into nums (3 total)")

	out, err = run(t, `{"n": 4}`+"\n", "import", "nums", "-", "--dir", data)
	require.NoError(t, err)
	assert.Contains(t, out, "(1 total)")
}

func TestImport_Errors(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")

	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr string
	}{
		{name: "bad json", stdin: "{\"a\": 1}\n{oops\n", args: []string{"import", "x", "-"}, wantErr: "line 2"},
		{name: "reserved field", stdin: `{"$loki": 1}`, args: []string{"import", "x", "-"}},
		{name: "missing file", args: []string{"import", "x", filepath.Join(dir, "missing.jsonl")}},
		{name: "missing args", args: []string{"import", "x"}},
		{name: "bad config", args: []string{"import", "x", "-", "--config", writeFile(t, dir, "bad.yaml", "cloneMethod: xerox")}, wantErr: "invalid config"},
		{name: "unknown backend", args: []string{"import", "x", "-", "--backend", "ftp"}, wantErr: "unknown backend"},
		{name: "unknown codec", args: []string{"import", "x", "-", "--codec", "msgpack"}, wantErr: "unknown codec"},
		{name: "unknown compression", args: []string{"import", "x", "-", "--compression", "brotli"}, wantErr: "unknown compression"},
		{name: "bad log level", args: []string{"import", "x", "-", "--log-level", "loud"}, wantErr: "invalid log level"},
		{name: "minio without endpoint", args: []string{"import", "x", "-", "--backend", "minio"}, wantErr: "--endpoint"},
		{name: "s3 without bucket", args: []string{"import", "x", "-", "--backend", "s3"}, wantErr: "--bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.stdin, append(tt.args, "--dir", data)...)
			require.Error(t, err)
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestImport_UniqueViolationSavesNothing(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	config := writeFile(t, dir, "c.yaml", "unique: [email]\n")

	_, err := run(t, "{\"email\": \"a\"}\n{\"email\": \"a\"}\n", "import", "users", "-", "--config", config, "--dir", data)
	assert.ErrorIs(t, err, docstore.ErrConstraintViolation)

	_, err = blobstore.NewLocalStore(data).Get(context.Background(), persistence.BlobName("users"))
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestCheck_NoCollections(t *testing.T) {
	_, err := run(t, "", "check", "--dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no collections found")
}

func TestCheck_MissingCollection(t *testing.T) {
	_, err := run(t, "", "check", "ghost", "--dir", t.TempDir())
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestReadJSONLines(t *testing.T) {
	docs, err := readJSONLines(strings.NewReader(weaponsJSONL))
	require.NoError(t, err)
	require.Len(t, docs, 4)
	assert.Equal(t, document.Int(100), docs[0]["serial"])
	assert.Equal(t, document.Float(0.5), docs[3]["weight"])
}
