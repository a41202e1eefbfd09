// Package paths resolves the configuration and data directories and the
// default output locations of the CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// CWD-relative directory names.
const (
	DefaultConfigDirName = ".nftmeta"
	DefaultDataDirName   = ".nftmeta-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "NFTMETA_CONFIG_DIR"
	EnvDataDir   = "NFTMETA_DATA_DIR"
)

// platformDir is swapped out in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/nftmeta (fallback ~/.config/nftmeta)
// macOS:   ~/Library/Application Support/nftmeta
// Windows: %APPDATA%/nftmeta
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "nftmeta"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "nftmeta"), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "nftmeta"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > NFTMETA_CONFIG_DIR env > DefaultConfigDir().
//
// If flag is non-empty it wins. Otherwise the NFTMETA_CONFIG_DIR environment
// variable is checked. If neither is set, the platform default is returned.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the registry directory following the precedence
// chain: flag > data_dir from config.yaml > NFTMETA_DATA_DIR env >
// $(CWD)/.nftmeta-db. There is no per-user fallback; the registry lives in
// the working directory of the assets it mirrors.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// Sibling returns the path next to in with suffix inserted before the
// extension, and ext replacing it when non-empty:
//
//	Sibling("hat.glb", ".nft", "")      // hat.nft.glb
//	Sibling("hat.glb", "", ".gltf")     // hat.gltf
//	Sibling("scene", ".nft", ".gltf")   // scene.nft.gltf
func Sibling(in, suffix, ext string) string {
	old := filepath.Ext(in)
	if ext == "" {
		ext = old
	}
	return strings.TrimSuffix(in, old) + suffix + ext
}
