package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/nftmeta/internal/gltfio"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

const assetDoc = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0, 1]}],
  "nodes": [
    {"name": "Hat", "mesh": 0},
    {"name": "Cap", "mesh": 0}
  ],
  "meshes": [{"name": "HatMesh", "primitives": [{"attributes": {}}]}],
  "materials": [{"name": "Gold"}]
}`

const hatsManifest = `
contract:
  minter_name: Studio
collections:
  - name: Hats
    objects: [Hat, Cap, Ghost]
    traits:
      - property: {name: health, max: 100}
      - mesh_set: {name: Headwear, objects: [Hat, Cap]}
      - material: {name: Gold}
`

// testEnv is an isolated config and data directory plus an asset and a
// manifest to work on.
type testEnv struct {
	t         *testing.T
	dir       string
	configDir string
	dataDir   string
	asset     string
	manifest  string
}

type result struct {
	stdout string
	stderr string
	code   int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	e := &testEnv{
		t:         t,
		dir:       dir,
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
		asset:     filepath.Join(dir, "asset.gltf"),
		manifest:  filepath.Join(dir, "hats.yaml"),
	}
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("backend: sqlite\nlog_level: error\n"), 0o644))
	require.NoError(t, os.WriteFile(e.asset, []byte(assetDoc), 0o644))
	require.NoError(t, os.WriteFile(e.manifest, []byte(hatsManifest), 0o644))
	return e
}

func (e *testEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

func (e *testEnv) run(args ...string) result {
	e.t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	all := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	code := run(root, all, &errOut)
	return result{stdout: out.String(), stderr: errOut.String(), code: code}
}

func (e *testEnv) mustRun(args ...string) result {
	e.t.Helper()
	r := e.run(args...)
	require.Equal(e.t, exitSuccess, r.code, "nftmeta %v\nstdout: %s\nstderr: %s", args, r.stdout, r.stderr)
	return r
}

func (e *testEnv) runJSON(args ...string) map[string]any {
	e.t.Helper()
	r := e.mustRun(append(args, "--json")...)
	var out map[string]any
	require.NoError(e.t, json.Unmarshal([]byte(r.stdout), &out), r.stdout)
	return out
}

func loadExtension(t *testing.T, path string) types.Blob {
	t.Helper()
	a, err := gltfio.Load(path)
	require.NoError(t, err)
	ext, err := a.Extension()
	require.NoError(t, err)
	return ext
}

// containerIDs returns the non-contract keys of an extension blob.
func containerIDs(ext map[string]any) []string {
	var ids []string
	for k := range ext {
		if k != types.ContractKey {
			ids = append(ids, k)
		}
	}
	return ids
}

func TestVersion(t *testing.T) {
	e := newTestEnv(t)
	r := e.mustRun("version")
	assert.Contains(t, r.stdout, "nftmeta "+version)
	assert.Contains(t, r.stdout, modulePath)
}

func TestInit(t *testing.T) {
	e := newTestEnv(t)
	configDir := e.path("fresh-config")
	r := e.run("--config-dir", configDir, "init")
	require.Equal(t, exitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "initialized")
	assert.FileExists(t, filepath.Join(configDir, "config.yaml"))
	assert.DirExists(t, e.dataDir)

	out := e.runJSON("init")
	assert.Equal(t, types.BackendSQLite, out["backend"])
	assert.Equal(t, e.dataDir, out["data"])
}

func TestApplyImportExport(t *testing.T) {
	e := newTestEnv(t)
	out := e.path("hats.gltf")

	r := e.mustRun("apply", e.asset, e.manifest, "-o", out)
	assert.Contains(t, r.stdout, "1 collections, 1 warnings")
	assert.Contains(t, r.stderr, "Ghost")

	ext := loadExtension(t, out)
	ids := containerIDs(ext)
	require.Len(t, ids, 1)
	contract := ext[types.ContractKey].(map[string]any)
	assert.Equal(t, "Studio", contract["minterName"])

	shown := e.runJSON("show")
	assert.Contains(t, shown, ids[0])
	assert.Contains(t, shown, types.ContractKey)
	text := e.mustRun("show", "Hats").stdout
	assert.Contains(t, text, "Hats ("+ids[0])
	assert.Contains(t, text, "health")
	assert.Contains(t, text, "[Hat Cap]")

	imported := e.runJSON("import", out)
	assert.Equal(t, float64(1), imported["containers"])
	linked := imported["linked"].(map[string]any)
	assert.ElementsMatch(t, []any{"Hat", "Cap"}, linked["Hats"])
	assert.Empty(t, imported["unresolved"])

	glb := e.path("again.glb")
	r = e.mustRun("export", e.asset, "-o", glb)
	assert.Contains(t, r.stdout, "wrote "+glb)
	again := loadExtension(t, glb)
	assert.Equal(t, ids, containerIDs(again))
}

func TestApplyDefaultOutput(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("apply", e.asset, e.manifest)
	assert.FileExists(t, e.path("asset.nft.gltf"))
}

func TestApplyStrict(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("contract", "minterName=Before")
	before := e.mustRun("show", "--json").stdout

	out := e.path("strict.gltf")
	r := e.run("apply", "--strict", e.asset, e.manifest, "-o", out)
	assert.Equal(t, exitUserError, r.code)
	assert.Contains(t, r.stderr, "could not be applied")
	assert.NoFileExists(t, out)

	after := e.mustRun("show", "--json").stdout
	assert.Equal(t, before, after)
	assert.Contains(t, after, "Before")
	assert.NotContains(t, after, "Hats")
}

func TestImportWithoutMetadata(t *testing.T) {
	e := newTestEnv(t)
	r := e.mustRun("import", e.asset)
	assert.Contains(t, r.stdout, "carries no metadata")
	assert.Contains(t, e.mustRun("show").stdout, "registry is empty")
}

func TestContract(t *testing.T) {
	e := newTestEnv(t)
	out := e.runJSON("contract")
	assert.Equal(t, "ICP", out["nftChain"])

	e.mustRun("contract", "nftChain=AR", "nftPrice=0.25", "minterName=1.0", "mintable=false")
	out = e.runJSON("contract")
	assert.Equal(t, "AR", out["nftChain"])
	assert.Equal(t, 0.25, out["nftPrice"])
	assert.Equal(t, "1.0", out["minterName"])
	assert.Equal(t, false, out["mintable"])

	tests := []struct {
		name string
		arg  string
	}{
		{"invalid chain", "nftChain=ETH"},
		{"unknown key", "color=red"},
		{"missing value separator", "nftChain"},
		{"non-numeric supply", "maxSupply=lots"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := e.run("contract", tt.arg)
			assert.Equal(t, exitUserError, r.code, r.stderr)
		})
	}
	assert.Equal(t, "AR", e.runJSON("contract")["nftChain"])
}

func TestUserErrors(t *testing.T) {
	e := newTestEnv(t)
	tests := []struct {
		name string
		args []string
	}{
		{"export with empty registry", []string{"export", e.asset}},
		{"show unknown collection", []string{"show", "Nope"}},
		{"missing manifest", []string{"apply", e.asset, e.path("nope.yaml")}},
		{"missing asset", []string{"import", e.path("nope.gltf")}},
		{"bad arguments", []string{"apply", e.asset}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := e.run(tt.args...)
			assert.Equal(t, exitUserError, r.code, r.stderr)
			assert.Contains(t, r.stderr, "nftmeta:")
		})
	}
}

func TestUnknownBackend(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("backend: postgres\n"), 0o644))
	r := e.run("show")
	assert.Equal(t, exitUserError, r.code)
	assert.Contains(t, r.stderr, "unknown backend")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(errors.New("usage")))
	assert.Equal(t, exitSysError, exitCode(sysError("disk: %w", os.ErrPermission)))
	err := userError("bad %s", "input")
	assert.Equal(t, exitUserError, exitCode(err))
	assert.Equal(t, "bad input", err.Error())
}
