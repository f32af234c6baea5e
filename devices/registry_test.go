package devices_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftworks/timeclock/devices"
)

const registryYAML = `devices:
  - id: FP001
    name: Front Door Fingerprint
    type: fingerprint
    location: Main Entrance
    status: active
  - id: RFID-01
    name: Warehouse Badge Reader
    type: rfid
    location: Warehouse
    status: active
`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devices.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRegistryLoad(t *testing.T) {
	path := writeRegistry(t, registryYAML)

	registry, err := devices.NewRegistry(path, nil, nil)
	require.NoError(t, err)

	list := registry.List()
	require.Len(t, list, 2)
	assert.Equal(t, "FP001", list[0].ID)
	assert.Equal(t, "fingerprint", list[0].Type)
	assert.Equal(t, "Main Entrance", list[0].Location)
	assert.Equal(t, "RFID-01", list[1].ID)
	assert.Nil(t, list[0].LastActivity)
}

func TestRegistryMissingFile(t *testing.T) {
	registry, err := devices.NewRegistry(filepath.Join(t.TempDir(), "nope.yaml"), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, registry.List())
}

func TestRegistryAllowlist(t *testing.T) {
	registry, err := devices.NewRegistry("", []string{"FP*", "RFID-??"}, nil)
	require.NoError(t, err)

	assert.True(t, registry.Allowed("FP001"))
	assert.True(t, registry.Allowed("RFID-01"))
	assert.False(t, registry.Allowed("CAM001"))
	assert.False(t, registry.Allowed("RFID-001"))
}

func TestRegistryAllowAllByDefault(t *testing.T) {
	registry, err := devices.NewRegistry("", nil, nil)
	require.NoError(t, err)
	assert.True(t, registry.Allowed("anything"))
}

func TestRegistryInvalidPattern(t *testing.T) {
	_, err := devices.NewRegistry("", []string{"[bad"}, nil)
	assert.Error(t, err)
}

func TestRegistryTouch(t *testing.T) {
	path := writeRegistry(t, registryYAML)
	registry, err := devices.NewRegistry(path, nil, nil)
	require.NoError(t, err)

	at := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	registry.Touch("FP001", at)
	registry.Touch("GHOST-1", at)
	registry.Touch("", at)

	list := registry.List()
	require.Len(t, list, 3)

	byID := make(map[string]devices.Device)
	for _, d := range list {
		byID[d.ID] = d
	}

	require.NotNil(t, byID["FP001"].LastActivity)
	assert.Equal(t, at, *byID["FP001"].LastActivity)
	assert.Equal(t, "unregistered", byID["GHOST-1"].Status)
	assert.Nil(t, byID["RFID-01"].LastActivity)
}

func TestRegistryReloadPreservesActivity(t *testing.T) {
	path := writeRegistry(t, registryYAML)
	registry, err := devices.NewRegistry(path, nil, nil)
	require.NoError(t, err)

	at := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	registry.Touch("FP001", at)

	// Drop the RFID reader, keep the fingerprint scanner.
	require.NoError(t, os.WriteFile(path, []byte(`devices:
  - id: FP001
    name: Front Door Fingerprint
    type: fingerprint
    location: Main Entrance
    status: active
`), 0o600))
	require.NoError(t, registry.Reload())

	list := registry.List()
	require.Len(t, list, 1)
	assert.Equal(t, "FP001", list[0].ID)
	require.NotNil(t, list[0].LastActivity)
	assert.Equal(t, at, *list[0].LastActivity)
}

func TestRegistryWatchReloads(t *testing.T) {
	path := writeRegistry(t, registryYAML)
	registry, err := devices.NewRegistry(path, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, registry.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte(`devices:
  - id: CAM001
    name: Lobby Face Scanner
    type: facial
    location: Lobby
    status: active
`), 0o600))

	require.Eventually(t, func() bool {
		list := registry.List()
		return len(list) == 1 && list[0].ID == "CAM001"
	}, 5*time.Second, 50*time.Millisecond)
}
