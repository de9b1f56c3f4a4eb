package builder

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agrid-Dev/heatload/internal/heatload"
)

func TestLoadFile_JSON(t *testing.T) {
	b, err := LoadFile(filepath.Join("testdata", "rooms.json"))
	require.NoError(t, err)
	require.Equal(t, 2, b.Len())

	rooms := b.Rooms()
	living := rooms[0]
	assert.Equal(t, "Living room", living.Name)
	require.Len(t, living.Surfaces, 2)
	assert.InDelta(t, 10.0, living.Surfaces[1].AreaM2, 1e-9, "area from side lengths")
	assert.Zero(t, living.Surfaces[1].HeatLoss(), "warmer hallway must not add loss")
	require.NotNil(t, living.Ventilation)
	assert.InDelta(t, 40.0, living.Ventilation.VolumeM3, 1e-9)
	assert.InDelta(t, 415.0, living.TotalHeatLoad(), 1e-9)
	require.NotNil(t, living.SupplyReturnDeltaK)
	assert.Equal(t, 10.0, *living.SupplyReturnDeltaK)

	storage := rooms[1]
	assert.Nil(t, storage.Ventilation)
	assert.Nil(t, storage.SupplyReturnDeltaK)
	assert.Zero(t, storage.TotalHeatLoad())
}

func TestLoadFile_YAML(t *testing.T) {
	b, err := LoadFile(filepath.Join("testdata", "rooms.yaml"))
	require.NoError(t, err)
	require.Equal(t, 1, b.Len())

	r := b.Rooms()[0]
	require.NotNil(t, r.Ventilation)
	assert.InDelta(t, 30.0, r.Ventilation.VolumeM3, 1e-9)
	assert.InDelta(t, 38.75, r.TransmissionLoss(), 1e-9)
	assert.InDelta(t, 30*0.5*0.34*31, r.VentilationLoss(), 1e-9)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.toml")
	require.NoError(t, writeFile(path, "rooms = []"))
	_, err := LoadFile(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParse_ConfigErrors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantField string
		wantErr   error
	}{
		{
			name:      "missing setpoint",
			doc:       `{"rooms":[{"name":"a","surfaces":[]}]}`,
			wantField: "rooms[0].setpoint_temp_c",
			wantErr:   ErrMissingField,
		},
		{
			name:      "missing u-value",
			doc:       `{"rooms":[{"setpoint_temp_c":20,"surfaces":[{"area_m2":1,"temp_other_side_c":0}]}]}`,
			wantField: "rooms[0].surfaces[0].u_w_m2k",
			wantErr:   ErrMissingField,
		},
		{
			name:      "missing area",
			doc:       `{"rooms":[{"setpoint_temp_c":20,"surfaces":[{"u_w_m2k":1,"temp_other_side_c":0}]}]}`,
			wantField: "rooms[0].surfaces[0].area_m2",
			wantErr:   ErrMissingField,
		},
		{
			name:      "half of the side lengths",
			doc:       `{"rooms":[{"setpoint_temp_c":20,"surfaces":[{"length_side_1_m":2,"u_w_m2k":1,"temp_other_side_c":0}]}]}`,
			wantField: "rooms[0].surfaces[0].length_side_2_m",
			wantErr:   ErrMissingField,
		},
		{
			name:      "unknown ventilation mode",
			doc:       `{"rooms":[{"setpoint_temp_c":20,"ventilation":{"mode":"cubic"}}]}`,
			wantField: "rooms[0].ventilation.mode",
			wantErr:   heatload.ErrUnknownVolumeMode,
		},
		{
			name:      "none with a volume",
			doc:       `{"rooms":[{"setpoint_temp_c":20,"ventilation":{"mode":"none","volume_m3":30}}]}`,
			wantField: "rooms[0].ventilation.mode",
			wantErr:   heatload.ErrVolumeModeNone,
		},
		{
			name:      "dimensions without width",
			doc:       `{"rooms":[{"setpoint_temp_c":20,"ventilation":{"mode":"dimensions","length_m":2,"height_m":2,"air_change_per_hour":1,"supply_temp_c":0}}]}`,
			wantField: "rooms[0].ventilation.width_m",
			wantErr:   ErrMissingField,
		},
		{
			name:      "default mode needs a volume",
			doc:       `{"rooms":[{"setpoint_temp_c":20,"ventilation":{"air_change_per_hour":1,"supply_temp_c":0}}]}`,
			wantField: "rooms[0].ventilation.volume_m3",
			wantErr:   ErrMissingField,
		},
		{
			name:      "ventilation without supply temperature",
			doc:       `{"rooms":[{"setpoint_temp_c":20,"ventilation":{"volume_m3":30,"air_change_per_hour":1}}]}`,
			wantField: "rooms[0].ventilation.supply_temp_c",
			wantErr:   ErrMissingField,
		},
		{
			name:      "negative area",
			doc:       `{"rooms":[{"setpoint_temp_c":20,"surfaces":[{"area_m2":-1,"u_w_m2k":1,"temp_other_side_c":0}]}]}`,
			wantField: "rooms[0].surfaces[0]",
			wantErr:   heatload.ErrNegativeArea,
		},
		{
			name:      "negative supply/return delta",
			doc:       `{"rooms":[{"setpoint_temp_c":20,"delta_t_supply_return_k":-3}]}`,
			wantField: "rooms[0].delta_t_supply_return_k",
			wantErr:   heatload.ErrNegativeSupplyReturnDelta,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "json")
			require.Error(t, err)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_UnknownModeIsNamed(t *testing.T) {
	_, err := Parse([]byte(`{"rooms":[{"setpoint_temp_c":20,"ventilation":{"mode":"cubic"}}]}`), "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"cubic"`)
}

func TestParse_Defaults(t *testing.T) {
	b, err := Parse([]byte(`{"rooms":[{"setpoint_temp_c":20,"surfaces":[{"area_m2":1,"u_w_m2k":1,"temp_other_side_c":10}]}]}`), "json")
	require.NoError(t, err)
	r := b.Rooms()[0]
	assert.Equal(t, "Room 1", r.Name)
	assert.Equal(t, "Surface 1", r.Surfaces[0].Name)
	assert.Nil(t, r.Ventilation)
}

func TestParse_EmptyDocument(t *testing.T) {
	b, err := Parse([]byte(`{}`), "json")
	require.NoError(t, err)
	assert.Zero(t, b.Len())
	assert.Zero(t, b.TotalHeatLoad())
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"rooms":`), "json")
	assert.Error(t, err)
}

func TestSources(t *testing.T) {
	ctx := context.Background()

	b, err := FileSource{Path: filepath.Join("testdata", "rooms.yaml")}.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())

	b, err = BytesSource{Data: []byte("rooms: []"), Format: "yaml"}.Build(ctx)
	require.NoError(t, err)
	assert.Zero(t, b.Len())

	same, err := StaticSource{Building: b}.Build(ctx)
	require.NoError(t, err)
	assert.Same(t, b, same)

	_, err = StaticSource{}.Build(ctx)
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = FileSource{Path: filepath.Join("testdata", "rooms.yaml")}.Build(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}
