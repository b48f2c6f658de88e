package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/filingmap/internal/core"
)

const (
	formFixture     = "../../internal/forms/testdata/fields.json"
	instanceFixture = "../../internal/xbrl/testdata/instance.xml"
)

// runCLI executes the root command against a fresh working root.
func runCLI(t *testing.T, root string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("FILINGMAP_ROOT", root)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")
	t.Setenv("TEMPLATES_DIR", "")
	t.Setenv("LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(root, "missing.env")}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func copyFixture(t *testing.T, src, dst string) {
	t.Helper()
	b, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, os.WriteFile(dst, b, 0o644))
}

func TestTablesCommand(t *testing.T) {
	out, _, err := runCLI(t, t.TempDir(), "tables")
	require.NoError(t, err)
	assert.Contains(t, out, "Available AOC-4 tables:")
	assert.Contains(t, out, "Balance Sheet")
	assert.Contains(t, out, "(flat-recursive)")
	assert.Contains(t, out, "Available XBRL tables:")

	out, _, err = runCLI(t, t.TempDir(), "tables", "--json")
	require.NoError(t, err)
	var got map[string][]core.TableInfo
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got["forms"], 12)
	assert.Len(t, got["xbrl"], 2)
}

func TestSingleTable(t *testing.T) {
	out, _, err := runCLI(t, t.TempDir(), "1", formFixture)
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Balance Sheet", res["table_name"])
	assert.EqualValues(t, 1, res["table_number"])
	assert.Contains(t, res["data"], "Current balance sheet")
}

func TestSingleTable_UnknownID(t *testing.T) {
	_, stderr, err := runCLI(t, t.TempDir(), "99", formFixture)

	var unknown *core.UnknownTableError
	require.True(t, errors.As(err, &unknown), "error = %v", err)
	assert.Contains(t, stderr, "Available AOC-4 tables:")
	assert.Contains(t, describe(err), "TBL002")
}

func TestSingleTable_DefaultDocumentMissing(t *testing.T) {
	_, _, err := runCLI(t, t.TempDir(), "1")
	require.Error(t, err)
	assert.Equal(t, "FILE003", core.MapError(err).Code)
}

func TestBatch(t *testing.T) {
	root := t.TempDir()
	copyFixture(t, formFixture, filepath.Join(root, "No_XBRL", "dump.json"))

	out, _, err := runCLI(t, root)
	require.NoError(t, err)
	assert.Contains(t, out, "1 document(s) processed, 0 failed")

	b, err := os.ReadFile(filepath.Join(root, "No_XBRL_JSON", "dump.json"))
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Len(t, got, 12)
	assert.Contains(t, got, "Table_1_Balance_Sheet")
}

func TestBatch_NoDocuments(t *testing.T) {
	_, _, err := runCLI(t, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No_XBRL")
}

func TestFactsCommand(t *testing.T) {
	out, _, err := runCLI(t, t.TempDir(), "facts", instanceFixture)
	require.NoError(t, err)
	var facts []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &facts))
	assert.NotEmpty(t, facts)

	out, _, err = runCLI(t, t.TempDir(), "facts", "--csv", instanceFixture)
	require.NoError(t, err)
	assert.Contains(t, out, "ElementName,Value,unitref")

	_, _, err = runCLI(t, t.TempDir(), "facts")
	assert.Error(t, err, "instance argument is required")
}

func TestXBRLTablesCommand(t *testing.T) {
	out, _, err := runCLI(t, t.TempDir(), "xbrl-tables", instanceFixture)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 2)
}

func TestIdentifyCommand(t *testing.T) {
	out, _, err := runCLI(t, t.TempDir(), "identify", formFixture)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cin": "L12345MH2001PLC123456", "financial_year": "01/04/2022 to 31/03/2023"}`, out)
}

func TestPipelineCommand(t *testing.T) {
	root := t.TempDir()
	copyFixture(t, instanceFixture, filepath.Join(root, "XBRL_XML", "instance.xml"))

	out, _, err := runCLI(t, root, "pipeline", "--stages", "facts,xbrl-tables")
	require.NoError(t, err)

	var sum struct {
		RunID  string `json:"run_id"`
		Stages []struct {
			Stage     string `json:"stage"`
			Processed int    `json:"processed"`
			Failed    int    `json:"failed"`
		} `json:"stages"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	require.Len(t, sum.Stages, 2)
	assert.Equal(t, "facts", sum.Stages[0].Stage)
	assert.Equal(t, 1, sum.Stages[1].Processed)
	assert.FileExists(t, filepath.Join(root, "XBRL_JSON_TABLES", "instance.json"))

	_, _, err = runCLI(t, root, "pipeline", "--stages", "bogus")
	assert.ErrorContains(t, err, "unknown stage")
}
