package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/syou6162/cmrunner/internal/cmdargs"
	"github.com/syou6162/cmrunner/internal/config"
	"github.com/syou6162/cmrunner/internal/console"
	"github.com/syou6162/cmrunner/internal/content"
	"github.com/syou6162/cmrunner/internal/executor"
	"github.com/syou6162/cmrunner/internal/logger"
	"github.com/syou6162/cmrunner/internal/runner"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

type globalFlags struct {
	configPath       string
	cmPath           string
	invariantCulture bool
	workspace        string
}

func main() {
	if err := executeContext(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "cmrunner",
		Short:         "Run Plastic SCM cm commands with validation and retries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "cmrunner.yaml", "Path to a YAML or TOML config file")
	pf.StringVar(&flags.cmPath, "cm", "", "Path to the cm executable (overrides config)")
	pf.BoolVar(&flags.invariantCulture, "invariant-culture", false, "Run cm with invariant globalization")
	pf.StringVar(&flags.workspace, "workspace", "", "Default working directory (overrides config)")

	root.AddCommand(
		newCheckCmd(flags),
		newExecCmd(flags),
		newCatCmd(flags),
		newVersionCmd(),
	)
	return root
}

func newCheckCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that the cm executable runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := buildRunner(cmd, flags)
			if err != nil {
				return err
			}
			return r.Validate(cmd.Context())
		},
	}
}

func newExecCmd(flags *globalFlags) *cobra.Command {
	var dir string
	c := &cobra.Command{
		Use:   "exec -- <cm arguments...>",
		Short: "Run a cm command and print its output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := buildRunner(cmd, flags)
			if err != nil {
				return err
			}
			out, err := r.Execute(cmd.Context(), cmdargs.New(args...), dir, false)
			if err != nil {
				return err
			}
			_, err = io.Copy(cmd.OutOrStdout(), out)
			return err
		},
	}
	c.Flags().StringVar(&dir, "dir", "", "Working directory for this command")
	return c
}

func newCatCmd(flags *globalFlags) *cobra.Command {
	var output string
	c := &cobra.Command{
		Use:   "cat <server-path> <rev-spec>",
		Short: "Fetch one revision of a file from the server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := buildRunner(cmd, flags)
			if err != nil {
				return err
			}
			f, err := content.GetFromServer(cmd.Context(), r, args[0], args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			return writeOutput(cmd.OutOrStdout(), output, f)
		},
	}
	c.Flags().StringVarP(&output, "output", "o", "", "Write content to this file instead of stdout")
	return c
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the cmrunner version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cmrunner %s\n", version)
		},
	}
}

func buildRunner(cmd *cobra.Command, flags *globalFlags) (*runner.Runner, error) {
	cfg, err := config.LoadFromFile(flags.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("cm") {
		cfg.Tool.CmPath = flags.cmPath
	}
	if cmd.Flags().Changed("invariant-culture") {
		cfg.Tool.UseInvariantCulture = flags.invariantCulture
	}
	if cmd.Flags().Changed("workspace") {
		cfg.Workspace = flags.workspace
	}

	clientArgs, err := cfg.ClientArgs()
	if err != nil {
		return nil, err
	}

	log := logger.NewFromEnv()
	log.SetOutput(cmd.ErrOrStderr())
	if os.Getenv(logger.EnvVerbose) == "" {
		log.SetLevel(cfg.Level())
	}

	return runner.New(runner.Options{
		Tool:         cfg.ToolOf(),
		ClientConfig: clientArgs,
		Workspace:    cfg.Workspace,
		Executor:     executor.NewRealCommandExecutor().WithLogger(log).WithParentStderr(cmd.ErrOrStderr()),
		Listener:     console.NewWriterListener(cmd.ErrOrStderr()),
		Logger:       log,
		Version:      version,
	}), nil
}

func writeOutput(stdout io.Writer, path string, src io.Reader) error {
	if path == "" {
		_, err := io.Copy(stdout, src)
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func executeContext(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
