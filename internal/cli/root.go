// Package cli implements the nftmeta command-line interface: applying
// authoring manifests to glTF assets, moving metadata between assets and
// the registry, and inspecting what the registry holds.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/nftmeta/internal/logging"
	"github.com/mesh-intelligence/nftmeta/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// version is set by main from the linker-stamped build version.
var version = "dev"

// SetVersion records the build version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// rootFlags holds global flag values.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags rootFlags
	v     *viper.Viper
	log   zerolog.Logger
}

// exitError carries the process exit code with the failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(format string, args ...any) error {
	return &exitError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

func sysError(format string, args ...any) error {
	return &exitError{code: exitSysError, err: fmt.Errorf(format, args...)}
}

// exitCode maps an error returned by a command to the process exit code.
// Errors without a code are usage errors raised by cobra.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// NewRootCmd creates the top-level "nftmeta" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: logging.For("cli")}
	root := &cobra.Command{
		Use:   "nftmeta",
		Short: "Author and transport NFT metadata in glTF assets",
		Long: "nftmeta attaches collectible metadata (properties, mesh toggles, morphs,\n" +
			"animations and materials) to the collections of a glTF asset and\n" +
			"stores it in the HVYM_nft_data extension.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir, or $"+paths.EnvConfigDir+")")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: ./"+paths.DefaultDataDirName+")")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newApplyCmd(a))
	root.AddCommand(newImportCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newContractCmd(a))
	return root
}

// setup loads the configuration and applies the log level.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	logging.ConfigureRuntime()
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return sysError("load config: %w", err)
	}
	a.v = v
	if lvl := v.GetString(cfgKeyLogLevel); lvl != "" && !logging.SetLevel(lvl) {
		a.log.Warn().Str("level", lvl).Msg("unknown log level, keeping the default")
	}
	a.log = logging.For("cli")
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(stderr, "nftmeta:", err)
	}
	return exitCode(err)
}
