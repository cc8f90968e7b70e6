package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/tracehash/internal/config"
	"github.com/steveyegge/tracehash/internal/fingerprint"
	"github.com/steveyegge/tracehash/internal/tracehash"
	"github.com/steveyegge/tracehash/internal/traceio"
)

const (
	overflowDoc = `type: java.lang.StackOverflowError
stack_overflow: true
frames:
  - {class: A, method: f, file: A.java, line: 7}
  - {class: A, method: f, file: A.java, line: 7}
  - {class: A, method: f, file: A.java, line: 7}
  - {class: A, method: f, file: A.java, line: 7}
  - {class: A, method: f, file: A.java, line: 7}
`
	nullDoc = `type: java.lang.RuntimeException
frames:
  - {class: null, method: null, line: -1}
`
	overflowFingerprint = "SOE-6d2adaa0e7e7ca2c188c3b8582cbb26c5a38c8bc"
	nullFingerprint     = "RE-19b2cfa8584d65fa18b0365556dd3fd5060c3594"
)

func writeOccurrences(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func defaultBuilder(t *testing.T) *fingerprint.Builder {
	t.Helper()
	b, err := fingerprint.New(fingerprint.Config{Parameters: tracehash.DefaultParameters()})
	require.NoError(t, err)
	return b
}

func TestProcessFiles_KeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	first := writeOccurrences(t, dir, "first.yaml", overflowDoc+"---\n"+nullDoc)
	second := writeOccurrences(t, dir, "second.yaml", nullDoc)

	reports, err := processFiles(context.Background(), defaultBuilder(t), []string{first, second}, 2)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, first+"#1", reports[0].Source)
	assert.Equal(t, overflowFingerprint, reports[0].Fingerprint)
	assert.True(t, reports[0].Selection.Resolved)

	assert.Equal(t, first+"#2", reports[1].Source)
	assert.Equal(t, nullFingerprint, reports[1].Fingerprint)

	assert.Equal(t, second+"#1", reports[2].Source)
	assert.Equal(t, nullFingerprint, reports[2].Fingerprint)

	ids := map[string]bool{}
	for _, r := range reports {
		assert.NotEmpty(t, r.ID)
		ids[r.ID] = true
	}
	assert.Len(t, ids, 3, "report ids should be unique")
}

func TestProcessFiles_Errors(t *testing.T) {
	dir := t.TempDir()
	good := writeOccurrences(t, dir, "good.yaml", nullDoc)
	bad := writeOccurrences(t, dir, "bad.yaml", "frames: []\n")

	_, err := processFiles(context.Background(), defaultBuilder(t), []string{good, bad}, 1)
	assert.Error(t, err)

	_, err = processFiles(context.Background(), defaultBuilder(t), []string{filepath.Join(dir, "missing.yaml")}, 1)
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	path := writeOccurrences(t, dir, "occ.yaml", overflowDoc)
	reports, err := processFiles(context.Background(), defaultBuilder(t), []string{path}, 1)
	require.NoError(t, err)

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, config.OutputText, reports, detailFingerprint))
		assert.Contains(t, buf.String(), overflowFingerprint)
		assert.Contains(t, buf.String(), path+"#1")
		assert.NotContains(t, buf.String(), "encoding:")
	})

	t.Run("text principal", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, config.OutputText, reports, detailPrincipal))
		assert.Contains(t, buf.String(), "at A.f(A.java:7)")
	})

	t.Run("text cover", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, config.OutputText, reports, detailCover))
		out := buf.String()
		assert.Contains(t, out, "resolved=true")
		assert.Contains(t, out, "encoding: java.lang.StackOverflowError:A/f|")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, config.OutputJSON, reports, detailFingerprint))

		var got Report
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, overflowFingerprint, got.Fingerprint)
		assert.Empty(t, got.Encoding)
		assert.Nil(t, got.Frames)
	})

	t.Run("yaml cover", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, config.OutputYAML, reports, detailCover))

		var got Report
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "java.lang.StackOverflowError:A/f|", got.Encoding)
		assert.Equal(t, tracehash.Cover{SuffixLength: 1, FragmentLength: 1, CoverLength: 5}, got.Selection.Cover)
	})
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, c config.Config)
	}{
		{
			name: "no flags keeps config",
			check: func(t *testing.T, c config.Config) {
				assert.Equal(t, config.DefaultConfig(), c)
			},
		},
		{
			name: "explicit values override",
			args: []string{"--max-fragment-length=9", "--min-fragment-count=3", "--no-synthetic", "--synthetic=go", "-o", "yaml", "-j", "2"},
			check: func(t *testing.T, c config.Config) {
				assert.Equal(t, 9, c.MaxFragmentLength)
				assert.Equal(t, 3, c.MinFragmentCount)
				assert.True(t, c.FilterSyntheticFrames)
				assert.Equal(t, config.SyntheticGo, c.Synthetic)
				assert.Equal(t, config.OutputYAML, c.Output)
				assert.Equal(t, 2, c.Jobs)
			},
		},
		{
			name: "unbounded window",
			args: []string{"--window", "unbounded"},
			check: func(t *testing.T, c config.Config) {
				assert.Equal(t, tracehash.Unbounded, int(c.NonOverflowWindowSize))
			},
		},
		{
			name:    "negative window",
			args:    []string{"--window=-3"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "test"}
			addConfigFlags(cmd)
			require.NoError(t, cmd.ParseFlags(tt.args))

			c := config.DefaultConfig()
			err := applyFlags(cmd, &c)
			if tt.wantErr {
				assert.ErrorIs(t, err, tracehash.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)

	require.NoError(t, initConfig(path, config.DefaultConfig(), false))
	err := initConfig(path, config.DefaultConfig(), false)
	assert.ErrorContains(t, err, "already exists")

	c := config.DefaultConfig()
	c.Jobs = 16
	require.NoError(t, initConfig(path, c, true))
	loaded, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 16, loaded.Jobs)
}

func TestHashCommand(t *testing.T) {
	for _, key := range []string{
		"TRACEHASH_MAX_FRAGMENT_LENGTH", "TRACEHASH_MIN_FRAGMENT_COUNT",
		"TRACEHASH_WINDOW_SIZE", "TRACEHASH_NO_SYNTHETIC",
		"TRACEHASH_SYNTHETIC", "TRACEHASH_OUTPUT", "TRACEHASH_JOBS",
	} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeOccurrences(t, dir, "occ.yaml", overflowDoc+"---\n"+nullDoc)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"hash", "-o", "json", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var first, second Report
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, overflowFingerprint, first.Fingerprint)
	assert.Equal(t, nullFingerprint, second.Fingerprint)
}

func TestCheckInputs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"stdin once", []string{"-"}, false},
		{"files only", []string{"a.yaml", "b.yaml"}, false},
		{"stdin among files", []string{"a.yaml", "-", "b.yaml"}, false},
		{"same file twice", []string{"a.yaml", "a.yaml"}, false},
		{"stdin twice", []string{"-", "a.yaml", "-"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkInputs(tt.args)
			if tt.wantErr {
				assert.ErrorContains(t, err, "read only once")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPrincipalOccurrences_HashAgain(t *testing.T) {
	longTrace := `type: java.lang.IllegalStateException
display_name: java.lang.IllegalStateException
frames:
  - {class: a.A, method: one, line: 1}
  - {class: a.A, method: two, line: 2}
  - {class: a.A, method: three, line: 3}
  - {class: a.A, method: four, line: 4}
  - {class: a.A, method: five, line: 5}
  - {class: a.A, method: six, line: 6}
  - {class: a.A, method: seven, line: 7}
`
	dir := t.TempDir()
	path := writeOccurrences(t, dir, "occ.yaml", overflowDoc+"---\n"+longTrace)

	b := defaultBuilder(t)
	reports, err := processFiles(context.Background(), b, []string{path}, 1)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	var buf bytes.Buffer
	require.NoError(t, traceio.Write(&buf, principalOccurrences(reports)))

	occs, err := traceio.Decode(&buf)
	require.NoError(t, err)
	require.Len(t, occs, 2)

	assert.True(t, occs[0].StackOverflow)
	assert.Len(t, occs[0].Frames, 1)
	assert.Len(t, occs[1].Frames, 5)
	assert.Equal(t, "java.lang.IllegalStateException", occs[1].DisplayName)

	for i, occ := range occs {
		fp, err := b.Hash(occ)
		require.NoError(t, err)
		assert.Equal(t, reports[i].Fingerprint, fp, "document %d", i+1)
	}
}
