// Command temptrace - managed temporary directories with caller-attributed files.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ospiem/temptrace"
	"github.com/ospiem/temptrace/internal/config"
	"github.com/ospiem/temptrace/internal/output"
)

// Build information. Populated at build time via -ldflags.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var (
	configFile string
	verbose    bool
	quiet      bool
	jsonOutput bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "temptrace",
		Short: "Managed temporary directories with caller-attributed files",
		Long: `Temptrace - create tracked temporary directories.

Commands:
  run      Run a command inside a fresh temp session
  dir      Create a temp session directory and print its path
  config   Manage configuration

Examples:
  temptrace run -- make test        # Run with $TEMPTRACE_DIR exported
  temptrace run --keep -- ./job.sh  # Keep the directory afterwards
  temptrace dir --log               # mktemp -d with a creation log
  temptrace config init             # Create config`,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only show errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(dirCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// sessionFlags are the per-command overrides of the config defaults.
type sessionFlags struct {
	keep     bool
	log      bool
	template string
	parent   string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.keep, "keep", false, "Keep the directory after the session ends")
	cmd.Flags().BoolVar(&f.log, "log", false, "Write a creation log inside the directory")
	cmd.Flags().StringVarP(&f.template, "template", "t", "", "Directory name template")
	cmd.Flags().StringVarP(&f.parent, "parent", "p", "", "Parent directory")
}

// options merges config defaults with any flags the user set.
func (f *sessionFlags) options(cmd *cobra.Command, cfg *config.Config, logger *zerolog.Logger) (temptrace.Options, error) {
	opts := temptrace.Options{
		Keep:     cfg.Session.Keep,
		Log:      cfg.Session.Log,
		Template: cfg.Session.Template,
		Parent:   cfg.Session.Parent,
		Logger:   logger,
	}
	if cmd.Flags().Changed("keep") {
		opts.Keep = f.keep
	}
	if cmd.Flags().Changed("log") {
		opts.Log = f.log
	}
	if f.template != "" {
		opts.Template = f.template
	}
	if f.parent != "" {
		opts.Parent = f.parent
	}
	if opts.Parent != "" {
		if err := os.MkdirAll(opts.Parent, 0755); err != nil {
			return opts, fmt.Errorf("creating parent directory: %w", err)
		}
	}
	return opts, nil
}

func runCmd() *cobra.Command {
	var (
		flags  sessionFlags
		envVar string
	)

	cmd := &cobra.Command{
		Use:   "run [flags] -- command [args...]",
		Short: "Run a command inside a fresh temp session",
		Long: `Run a command with a fresh temp session directory exported in the
environment. The directory is removed when the command exits unless
--keep is given.

Examples:
  temptrace run -- make test
  temptrace run --log -- ./flaky.sh      # Keep a creation log
  temptrace run --env SCRATCH -- ./job`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := getOutput()

			cfg, err := loadConfig()
			if err != nil {
				return outputError(out, err)
			}
			logger := newLogger()

			opts, err := flags.options(cmd, cfg, &logger)
			if err != nil {
				return outputError(out, err)
			}
			sess, err := temptrace.New(opts)
			if err != nil {
				return outputError(out, err)
			}

			name := envVar
			if name == "" {
				name = cfg.Run.EnvVar
			}
			out.Verbose("session directory: %s\n", sess.Dir())

			child := exec.Command(args[0], args[1:]...)
			child.Stdin = os.Stdin
			child.Stdout = os.Stdout
			child.Stderr = os.Stderr
			child.Env = append(os.Environ(), name+"="+sess.Dir())

			runErr := child.Run()
			closeSession(out, sess)

			var exitErr *exec.ExitError
			if errors.As(runErr, &exitErr) {
				os.Exit(exitErr.ExitCode())
			}
			if runErr != nil {
				return outputError(out, fmt.Errorf("running %s: %w", args[0], runErr))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&envVar, "env", "", "Environment variable to export the directory in")

	return cmd
}

func dirCmd() *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "dir",
		Short: "Create a temp session directory and print its path",
		Long: `Create a temp session directory and print its path, mktemp -d
style. The directory is always kept; remove it yourself when done.

Examples:
  temptrace dir
  temptrace dir --log -t build`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := getOutput()

			cfg, err := loadConfig()
			if err != nil {
				return outputError(out, err)
			}
			logger := newLogger()

			opts, err := flags.options(cmd, cfg, &logger)
			if err != nil {
				return outputError(out, err)
			}
			opts.Keep = true

			sess, err := temptrace.New(opts)
			if err != nil {
				return outputError(out, err)
			}
			defer closeSession(out, sess)

			if jsonOutput {
				return out.JSON(map[string]any{"success": true, "dir": sess.Dir()})
			}
			fmt.Println(sess.Dir())
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a config file with defaults",
		RunE: func(_ *cobra.Command, _ []string) error {
			out := getOutput()

			path := configFile
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if path == "" {
				return outputError(out, fmt.Errorf("cannot determine config path"))
			}
			if _, err := os.Stat(path); err == nil {
				return outputError(out, fmt.Errorf("config already exists: %s", path))
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return outputError(out, err)
			}
			out.Success("Created %s\n", path)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			out := getOutput()

			cfg, err := loadConfig()
			if err != nil {
				return outputError(out, err)
			}
			if jsonOutput {
				return out.JSON(cfg)
			}
			out.Print("parent:   %s\n", cfg.Session.Parent)
			out.Print("template: %s\n", orDefault(cfg.Session.Template, "(program name)"))
			out.Print("keep:     %v\n", cfg.Session.Keep)
			out.Print("log:      %v\n", cfg.Session.Log)
			out.Print("env_var:  %s\n", cfg.Run.EnvVar)
			return nil
		},
	}

	cmd.AddCommand(initCmd)
	cmd.AddCommand(showCmd)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("temptrace %s\n", version)
			fmt.Printf("  commit:  %s\n", commit)
			fmt.Printf("  built:   %s\n", buildDate)
			fmt.Printf("  go:      %s\n", runtime.Version())
			fmt.Printf("  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func getOutput() *output.Output {
	mode := output.ModeNormal
	if quiet {
		mode = output.ModeQuiet
	} else if jsonOutput {
		mode = output.ModeJSON
	}
	return output.New(mode, verbose)
}

func loadConfig() (*config.Config, error) {
	cfgPath := configFile
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}
	return config.Load(cfgPath)
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func outputError(out *output.Output, err error) error {
	if jsonOutput {
		_ = out.JSON(map[string]any{
			"success": false,
			"error":   err.Error(),
		})
	} else {
		out.Error("%v\n", err)
	}
	return err
}

func closeSession(out *output.Output, sess *temptrace.Session) {
	_ = sess.Close()
	for _, w := range sess.Warnings() {
		out.Warning("%s\n", w)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
