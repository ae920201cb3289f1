package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qnkhuat/battlechess/pkg/camera"
	"github.com/qnkhuat/battlechess/pkg/gui"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"server": { "port": ":4000", "ssh": { "enabled": true } }
	}`)
	require.NoError(t, Load(dir))

	assert.Equal(t, "debug", GetString("logLevel"))
	assert.Equal(t, ":4000", GetString("server.port"))
	assert.Equal(t, true, GetBool("server.ssh.enabled"))
	assert.Equal(t, ":2222", GetString("server.ssh.port"))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(t.TempDir()))

	sc := GetServerConfig()
	assert.Equal(t, ":1998", sc.Port)
	assert.Equal(t, 5*time.Minute, sc.IdleTimeout)
	assert.False(t, sc.SSHEnabled)
	assert.Equal(t, ":2222", sc.SSHPort)
	assert.Equal(t, "battlechess", sc.ClientBinary)

	assert.Equal(t, camera.DefaultConfig(), GetCameraConfig())
	assert.Equal(t, time.Duration(0), GetBattleConfig().AutoComplete)

	st := GetStoreConfig()
	assert.Equal(t, "memory", st.Type)
	assert.Equal(t, "./battlechess.db", st.SQLitePath)
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{ "logLevel": `)
	err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetCameraConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"camera": {
			"squareSize": 2,
			"boardSize": 16,
			"transitionDuration": "250ms",
			"frameInterval": "8ms",
			"default": { "position": { "x": 1, "y": 30, "z": 40 } }
		}
	}`)
	require.NoError(t, Load(dir))

	cfg := GetCameraConfig()
	assert.Equal(t, 2.0, cfg.SquareSize)
	assert.Equal(t, 16.0, cfg.BoardSize)
	assert.Equal(t, 250*time.Millisecond, cfg.TransitionDuration)
	assert.Equal(t, 8*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, camera.Vec3{X: 1, Y: 30, Z: 40}, cfg.DefaultPose.Position)
	assert.Equal(t, camera.Vec3{}, cfg.DefaultPose.LookAt)
	assert.Equal(t, 1500*time.Millisecond, cfg.ZoomDuration)
}

func TestGetBattleAndStoreConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"battle": { "autoComplete": "3s" },
		"store": { "type": "sqlite", "sqlite": { "path": "/tmp/games.db" } }
	}`)
	require.NoError(t, Load(dir))

	assert.Equal(t, 3*time.Second, GetBattleConfig().AutoComplete)
	st := GetStoreConfig()
	assert.Equal(t, "sqlite", st.Type)
	assert.Equal(t, "/tmp/games.db", st.SQLitePath)
}

func TestGetters(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	viper.Set("testInt", 42)
	viper.Set("testBool", true)

	assert.Equal(t, "testValue", GetString("testKey"))
	assert.Equal(t, 42, GetInt("testInt"))
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetTheme(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(t.TempDir()))
	th, err := GetTheme()
	require.NoError(t, err)
	assert.Equal(t, gui.ThemeBasic.Name, th.Name)
	assert.Equal(t, gui.ThemeBasic.SquareDark.Hex(), th.SquareDark.Hex())

	dir := writeConfig(t, `{
		"client": {
			"theme": "night",
			"themes": [{ "name": "night", "squareDark": "#000080", "squareLight": "#8080c0" }]
		}
	}`)
	require.NoError(t, Load(dir))
	th, err = GetTheme()
	require.NoError(t, err)
	assert.Equal(t, "night", th.Name)
	assert.Equal(t, int32(0x000080), th.SquareDark.Hex())
	assert.Equal(t, int32(0x8080c0), th.SquareLight.Hex())

	viper.Set("client.theme", "missing")
	_, err = GetTheme()
	assert.Error(t, err)
}
