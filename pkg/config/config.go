package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/qnkhuat/battlechess/pkg/camera"
	"github.com/qnkhuat/battlechess/pkg/gui"
)

// FileName is the config file looked up in the config directory.
const FileName = "battlechess.cfg.json"

// ServerConfig holds the match server's listeners.
type ServerConfig struct {
	Port         string
	IdleTimeout  time.Duration
	SSHEnabled   bool
	SSHPort      string
	HostKeyFile  string
	ClientBinary string
}

// BattleConfig holds presentation settings for captures.
type BattleConfig struct {
	// AutoComplete ends a battle after this long if no client has. Zero
	// leaves completion entirely to clients.
	AutoComplete time.Duration
}

// StoreConfig selects the journal backend.
type StoreConfig struct {
	Type       string
	SQLitePath string
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFile", "")

	viper.SetDefault("server.port", ":1998")
	viper.SetDefault("server.idleTimeout", "5m")
	viper.SetDefault("server.ssh.enabled", false)
	viper.SetDefault("server.ssh.port", ":2222")
	viper.SetDefault("server.ssh.hostKeyFile", "")
	viper.SetDefault("server.ssh.clientBinary", "battlechess")

	d := camera.DefaultConfig()
	viper.SetDefault("camera.squareSize", d.SquareSize)
	viper.SetDefault("camera.boardSize", d.BoardSize)
	viper.SetDefault("camera.battleDistance", d.BattleDistance)
	viper.SetDefault("camera.battleHeight", d.BattleHeight)
	viper.SetDefault("camera.lookAtHeight", d.LookAtHeight)
	viper.SetDefault("camera.default.position.x", d.DefaultPose.Position.X)
	viper.SetDefault("camera.default.position.y", d.DefaultPose.Position.Y)
	viper.SetDefault("camera.default.position.z", d.DefaultPose.Position.Z)
	viper.SetDefault("camera.default.lookAt.x", d.DefaultPose.LookAt.X)
	viper.SetDefault("camera.default.lookAt.y", d.DefaultPose.LookAt.Y)
	viper.SetDefault("camera.default.lookAt.z", d.DefaultPose.LookAt.Z)
	viper.SetDefault("camera.arena.center.x", d.ArenaCenter.X)
	viper.SetDefault("camera.arena.center.y", d.ArenaCenter.Y)
	viper.SetDefault("camera.arena.center.z", d.ArenaCenter.Z)
	viper.SetDefault("camera.arena.offset.x", d.ArenaOffset.X)
	viper.SetDefault("camera.arena.offset.y", d.ArenaOffset.Y)
	viper.SetDefault("camera.arena.offset.z", d.ArenaOffset.Z)
	viper.SetDefault("camera.transitionDuration", d.TransitionDuration.String())
	viper.SetDefault("camera.zoomDuration", d.ZoomDuration.String())
	viper.SetDefault("camera.frameInterval", d.FrameInterval.String())

	viper.SetDefault("battle.autoComplete", "0s")

	viper.SetDefault("client.theme", gui.ThemeBasic.Name)

	viper.SetDefault("store.type", "memory")
	viper.SetDefault("store.sqlite.path", "./battlechess.db")
}

// Load sets defaults and reads FileName from configDir. A missing file is
// not an error; a malformed one is.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Defaults applies default values without reading any file.
func Defaults() {
	setDefaults()
}

func GetString(key string) string {
	return viper.GetString(key)
}

func GetInt(key string) int {
	return viper.GetInt(key)
}

func GetBool(key string) bool {
	return viper.GetBool(key)
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port:         viper.GetString("server.port"),
		IdleTimeout:  viper.GetDuration("server.idleTimeout"),
		SSHEnabled:   viper.GetBool("server.ssh.enabled"),
		SSHPort:      viper.GetString("server.ssh.port"),
		HostKeyFile:  viper.GetString("server.ssh.hostKeyFile"),
		ClientBinary: viper.GetString("server.ssh.clientBinary"),
	}
}

func vec(prefix string) camera.Vec3 {
	return camera.Vec3{
		X: viper.GetFloat64(prefix + ".x"),
		Y: viper.GetFloat64(prefix + ".y"),
		Z: viper.GetFloat64(prefix + ".z"),
	}
}

func GetCameraConfig() camera.Config {
	return camera.Config{
		SquareSize:     viper.GetFloat64("camera.squareSize"),
		BoardSize:      viper.GetFloat64("camera.boardSize"),
		BattleDistance: viper.GetFloat64("camera.battleDistance"),
		BattleHeight:   viper.GetFloat64("camera.battleHeight"),
		LookAtHeight:   viper.GetFloat64("camera.lookAtHeight"),
		DefaultPose: camera.Pose{
			Position: vec("camera.default.position"),
			LookAt:   vec("camera.default.lookAt"),
		},
		ArenaCenter:        vec("camera.arena.center"),
		ArenaOffset:        vec("camera.arena.offset"),
		TransitionDuration: viper.GetDuration("camera.transitionDuration"),
		ZoomDuration:       viper.GetDuration("camera.zoomDuration"),
		FrameInterval:      viper.GetDuration("camera.frameInterval"),
	}
}

func GetBattleConfig() BattleConfig {
	return BattleConfig{
		AutoComplete: viper.GetDuration("battle.autoComplete"),
	}
}

func GetStoreConfig() StoreConfig {
	return StoreConfig{
		Type:       viper.GetString("store.type"),
		SQLitePath: viper.GetString("store.sqlite.path"),
	}
}

// GetTheme looks up client.theme among the themes listed under
// client.themes and the built-in ones. Listed themes win over built-ins of
// the same name.
func GetTheme() (gui.Theme, error) {
	var themes []gui.ThemeHex
	if err := viper.UnmarshalKey("client.themes", &themes); err != nil {
		return gui.Theme{}, fmt.Errorf("error reading client.themes: %w", err)
	}
	themes = append(themes, gui.ThemeBasic.Hex())
	return gui.ImportThemes(viper.GetString("client.theme"), themes)
}
