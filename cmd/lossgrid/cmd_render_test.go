package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spboyer/lossgrid/internal/models"
	"github.com/spboyer/lossgrid/internal/projectconfig"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Three 1x2x2 samples with precomputed two-class scores.
const tinyCSV = `id,label,p0,p1,p2,p3,s0,s1
easy,0,0,1,0,1,4,0
hard,1,0,0.5,1,0,4,0
coin,0,1,0,0,1,0,0
`

func writeDataset(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runRoot(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRenderCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	data := writeDataset(t, dir, tinyCSV)
	out := filepath.Join(dir, "out", "grid.png")

	stdout, stderr, err := runRoot(t, "render",
		"--project", dir,
		"--data", data,
		"--shape", "1,2,2",
		"--n", "3",
		"--columns", "2",
		"--cell-size", "8",
		"--out", out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())

	assert.Contains(t, stdout, "Ranked 3 of 3 requested samples")
	easy := strings.Index(stdout, "easy")
	coin := strings.Index(stdout, "coin")
	hard := strings.Index(stdout, "hard")
	require.True(t, easy >= 0 && coin >= 0 && hard >= 0, stdout)
	assert.Less(t, easy, coin, "lowest loss first")
	assert.Less(t, coin, hard, "highest loss last")

	assert.Contains(t, stderr, "collected samples")
	assert.Contains(t, stderr, "wrote grid")
}

func TestRenderCommand_GridSizedForRequestedCount(t *testing.T) {
	dir := t.TempDir()
	data := writeDataset(t, dir, tinyCSV)
	out := filepath.Join(dir, "grid.png")

	stdout, _, err := runRoot(t, "render", "--project", dir, "--data", data,
		"--shape", "1,2,2", "--n", "20", "--columns", "8", "--cell-size", "8", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Ranked 3 of 20 requested samples")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)

	// ceil(20/8) = 3 rows of 8x8 cells with 8px padding
	assert.Equal(t, 8*8+9*8, cfg.Width)
	assert.Equal(t, 3*8+4*8, cfg.Height)
}

func TestRenderCommand_Quiet(t *testing.T) {
	dir := t.TempDir()
	data := writeDataset(t, dir, tinyCSV)
	out := filepath.Join(dir, "grid.png")

	stdout, stderr, err := runRoot(t, "render", "--quiet",
		"--project", dir, "--data", data, "--shape", "1,2,2", "--n", "2", "--out", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
	assert.FileExists(t, out)
}

func TestRenderCommand_UsesProjectConfig(t *testing.T) {
	dir := t.TempDir()
	data := writeDataset(t, dir, tinyCSV)
	out := filepath.Join(dir, "from-config.png")

	cfg := "dataset:\n  path: " + data + "\n  shape: \"1,2,2\"\n" +
		"collect:\n  samples: 3\n" +
		"render:\n  columns: 3\n  output: " + out + "\n" +
		"logging:\n  screen: false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, projectconfig.FileName), []byte(cfg), 0o644))

	stdout, stderr, err := runRoot(t, "render", "--project", dir, "--n", "1")
	require.NoError(t, err)
	assert.FileExists(t, out)
	assert.Contains(t, stdout, "Ranked 1 of 1 requested samples")
	assert.Empty(t, stderr)
}

func TestRenderCommand_ConfigPathsRelativeToConfigFile(t *testing.T) {
	root := t.TempDir()
	writeDataset(t, root, tinyCSV)
	cfg := "dataset:\n  path: data.csv\n  shape: \"1,2,2\"\n" +
		"logging:\n  screen: false\n  dir: logs\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, projectconfig.FileName), []byte(cfg), 0o644))

	project := filepath.Join(root, "nested", "project")
	require.NoError(t, os.MkdirAll(project, 0o755))
	out := filepath.Join(root, "g.png")

	_, _, err := runRoot(t, "render", "--log-file", "--project", project, "--out", out)
	require.NoError(t, err)
	assert.FileExists(t, out)

	entries, err := os.ReadDir(filepath.Join(root, "logs"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRenderCommand_LogFile(t *testing.T) {
	dir := t.TempDir()
	data := writeDataset(t, dir, tinyCSV)
	logDir := filepath.Join(dir, "logs")
	require.NoError(t, os.MkdirAll(logDir, 0o755))
	cfg := "logging:\n  dir: " + logDir + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, projectconfig.FileName), []byte(cfg), 0o644))

	_, _, err := runRoot(t, "render", "--log-file", "--quiet",
		"--project", dir, "--data", data, "--shape", "1,2,2", "--out", filepath.Join(dir, "g.png"))
	require.NoError(t, err)

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), "_lossgrid.log"))

	content, err := os.ReadFile(filepath.Join(logDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "collected samples")
}

func TestRenderCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	data := writeDataset(t, dir, tinyCSV)
	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("id,label,p0,p1,p2,p3\n"), 0o644))
	flat := filepath.Join(dir, "flat.csv")
	require.NoError(t, os.WriteFile(flat, []byte("id,label,p0,p1,p2,p3,s0,s1\nf,0,3,3,3,3,1,0\n"), 0o644))
	nanScore := filepath.Join(dir, "nan.csv")
	require.NoError(t, os.WriteFile(nanScore, []byte("id,label,p0,p1,p2,p3,s0,s1\nn,0,0,1,0,1,NaN,0\n"), 0o644))
	out := filepath.Join(dir, "x.png")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		target   any
	}{
		{
			name:     "missing data",
			args:     []string{},
			wantCode: ExitInvalidInput,
			target:   new(*models.InvalidInputError),
		},
		{
			name:     "non-positive n",
			args:     []string{"--data", data, "--shape", "1,2,2", "--n", "0"},
			wantCode: ExitInvalidInput,
			target:   new(*models.InvalidInputError),
		},
		{
			name:     "zero columns",
			args:     []string{"--data", data, "--shape", "1,2,2", "--columns", "0"},
			wantCode: ExitInvalidInput,
			target:   new(*models.InvalidInputError),
		},
		{
			name:     "unknown predictor",
			args:     []string{"--data", data, "--shape", "1,2,2", "--predictor", "remote"},
			wantCode: ExitInvalidInput,
			target:   new(*models.InvalidInputError),
		},
		{
			name:     "empty dataset",
			args:     []string{"--data", empty, "--shape", "1,2,2", "--command", "cat"},
			wantCode: ExitInvalidInput,
			target:   new(*models.EmptySourceError),
		},
		{
			name:     "constant image",
			args:     []string{"--data", flat, "--shape", "1,2,2"},
			wantCode: ExitInvalidInput,
			target:   new(*models.DegenerateImageError),
		},
		{
			name:     "non-finite score",
			args:     []string{"--data", nanScore, "--shape", "1,2,2"},
			wantCode: ExitInvalidInput,
			target:   new(*models.InvalidInputError),
		},
		{
			name:     "missing file",
			args:     []string{"--data", filepath.Join(dir, "nope.csv"), "--shape", "1,2,2"},
			wantCode: ExitError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"render", "--quiet", "--project", dir, "--out", out}, tt.args...)
			_, _, err := runRoot(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, exitCode(err))
			if tt.target != nil {
				assert.ErrorAs(t, err, tt.target)
			}
		})
	}
}

func TestRenderCommand_DegenerateGray(t *testing.T) {
	dir := t.TempDir()
	flat := writeDataset(t, dir, "id,label,p0,p1,p2,p3,s0,s1\nf,0,3,3,3,3,1,0\n")
	out := filepath.Join(dir, "gray.png")

	_, _, err := runRoot(t, "render", "--quiet", "--project", dir,
		"--data", flat, "--shape", "1,2,2", "--degenerate", "gray", "--out", out)
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestApplyRenderFlags_CommandSwitchesToProgram(t *testing.T) {
	cmd := &cobra.Command{}
	f := bindRenderFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--command", "python", "--arg", "model.py", "--arg", "-v"}))

	cfg := projectconfig.New()
	cfg.Predictor.Params = map[string]any{"timeout": 5}
	applyRenderFlags(cmd, cfg, f)

	assert.Equal(t, "program", cfg.Predictor.Kind)
	assert.Equal(t, "python", cfg.Predictor.Params["command"])
	assert.Equal(t, []string{"model.py", "-v"}, cfg.Predictor.Params["args"])
	assert.Equal(t, 5, cfg.Predictor.Params["timeout"])
}

func TestApplyRenderFlags_UnchangedFlagsKeepConfig(t *testing.T) {
	cmd := &cobra.Command{}
	f := bindRenderFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--columns", "3"}))

	cfg := projectconfig.New()
	cfg.Collect.Samples = 42
	applyRenderFlags(cmd, cfg, f)

	assert.Equal(t, 3, cfg.Render.Columns)
	assert.Equal(t, 42, cfg.Collect.Samples)
	assert.Equal(t, "table", cfg.Predictor.Kind)
}

func TestRenderOptions_ColorStops(t *testing.T) {
	cfg := projectconfig.New()
	cfg.Render.ColorStops = []projectconfig.ColorStopConfig{{At: 0, Color: "#0000ff"}, {At: 1, Color: "#ff0000"}}

	opts, err := renderOptions(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "#0000ff", opts.Scale.At(0).Hex())
	assert.Equal(t, "#ff0000", opts.Scale.At(1).Hex())

	cfg.Render.ColorStops[0].Color = "blue"
	_, err = renderOptions(cfg, nil)
	require.Error(t, err)
}
