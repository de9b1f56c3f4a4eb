package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const livingRoomJSON = `{
  "rooms": [{
    "name": "Living room",
    "setpoint_temp_c": 20,
    "delta_t_supply_return_k": 10,
    "surfaces": [{"name": "exterior wall", "area_m2": 10, "u_w_m2k": 0.3, "temp_other_side_c": -5}],
    "ventilation": {"mode": "volume", "volume_m3": 40, "air_change_per_hour": 1, "supply_temp_c": -5}
  }]
}`

// run executes the CLI with an isolated config and env file.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(dir, "heatload.yaml"),
		"--env-file", filepath.Join(dir, ".env"),
	}, args...))
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func writeBuilding(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rooms.json")
	require.NoError(t, os.WriteFile(path, []byte(livingRoomJSON), 0o644))
	return path
}

func TestReportCommand_Text(t *testing.T) {
	out, err := run(t, "", "report", "--file", writeBuilding(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Living room")
	assert.Contains(t, out, "Total building load           :         415.0 W      (       0.415 kW)\n")
}

func TestReportCommand_JSONAndExports(t *testing.T) {
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "report.xlsx")
	pdf := filepath.Join(dir, "report.pdf")

	out, err := run(t, "", "report", "--file", writeBuilding(t), "--format", "json", "--xlsx", xlsx, "--pdf", pdf)
	require.NoError(t, err)

	var got struct {
		Total float64 `json:"total_heat_load_w"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 415.0, got.Total, 1e-9)

	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	info, err := os.Stat(xlsx)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestReportCommand_Errors(t *testing.T) {
	_, err := run(t, "", "report", "--file", writeBuilding(t), "--format", "html")
	assert.ErrorContains(t, err, `invalid report format: "html"`)

	_, err = run(t, "", "report", "--file", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRootCommand_FromFile(t *testing.T) {
	path := writeBuilding(t)
	out, err := run(t, "y\n"+path+"\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Heating load calculation (based on DIN EN 12831)")
	assert.Contains(t, out, "Loading building configuration from")
	assert.Contains(t, out, "Total building load           :         415.0 W      (       0.415 kW)\n")
}

func TestRootCommand_Interactive(t *testing.T) {
	// one room, one surface, no ventilation
	answers := strings.Join([]string{
		"n",      // load from file?
		"1",      // rooms
		"Office", // name
		"20",     // setpoint
		"",       // supply/return delta
		"1",      // surfaces
		"wall",   // surface name
		"2",      // side 1
		"2,5",    // side 2
		"0.25",   // U
		"-11",    // other side
		"n",      // ventilation?
	}, "\n") + "\n"

	out, err := run(t, answers)
	require.NoError(t, err)
	assert.Contains(t, out, "Office")
	assert.Contains(t, out, "38.8 W")
}

func TestRootCommand_InputClosed(t *testing.T) {
	_, err := run(t, "n\n")
	assert.Error(t, err)
}

func TestServeCommand_StopsOnCancel(t *testing.T) {
	t.Setenv("HEATLOAD_BUILDING_PATH", writeBuilding(t))
	t.Setenv("HEATLOAD_CONTROLLERS_HTTP_ENABLED", "true")
	t.Setenv("HEATLOAD_CONTROLLERS_HTTP_ADDR", "127.0.0.1:0")

	ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
	defer cancel()

	dir := t.TempDir()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(""), &out)
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "heatload.yaml"), "--env-file", filepath.Join(dir, ".env"), "serve"})

	err := cmd.ExecuteContext(ctx)
	require.NoError(t, err)
}

func TestHistoryCommand_NeedsDSN(t *testing.T) {
	t.Setenv("HEATLOAD_STORAGE_POSTGRES_DSN", "")
	_, err := run(t, "", "history")
	assert.ErrorContains(t, err, "postgres_dsn")
}
