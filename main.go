// shaderbox renders a single full-screen fragment shader with live reload.
//
// Commands:
//   - serve: static dev server; open tabs reload on page changes and
//     recompile the shader on .glsl changes
//   - view: native OpenGL window rendering the shader, recompiled on save
//   - settings: desktop dialog editing shaderbox.toml
//   - init: write a starter project
//
// Rendering pipeline (browser and native alike):
//  1. Load the shader source and wrap it with the version/uniform header.
//  2. Compile against a fixed full-screen quad vertex shader and link.
//  3. Each frame upload iResolution, iMouse, iScroll, iTime and draw the quad.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shaderbox/shaderbox/internal/config"
	"github.com/shaderbox/shaderbox/internal/devserver"
	"github.com/shaderbox/shaderbox/internal/logging"
	"github.com/shaderbox/shaderbox/web"
)

func init() {
	runtime.LockOSThread() // GLFW and OpenGL calls must stay on the main thread
}

// cli carries state shared by all commands.
type cli struct {
	configPath string
	// fileCfg is the config as read from configPath; cfg adds environment
	// overrides and is what commands run with.
	fileCfg config.Config
	cfg     config.Config
	logger  *zap.Logger
}

// setup loads configuration (file, then environment) and builds the logger.
func (a *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.fileCfg = cfg
	cfg.ApplyEnv(os.Getenv)
	a.cfg = cfg

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *cli) teardown(cmd *cobra.Command, args []string) error {
	if a.logger != nil {
		a.logger.Sync()
	}
	return nil
}

func newRootCommand() *cobra.Command {
	a := &cli{}
	root := &cobra.Command{
		Use:                "shaderbox",
		Short:              "Full-screen fragment shader playground with live reload",
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultFile, "config file")
	root.AddCommand(
		a.serveCommand(),
		a.viewCommand(),
		a.settingsCommand(),
		a.initCommand(),
	)
	return root
}

func (a *cli) serveCommand() *cobra.Command {
	var (
		addr, root, deployID string
		open                 bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the project and push reload/redraw signals to open tabs",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if flags.Changed("root") {
				a.cfg.Server.Root = root
			}
			if flags.Changed("deploy-id") {
				a.cfg.Server.DeployID = deployID
			}
			if flags.Changed("open") {
				a.cfg.Server.OpenBrowser = open
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&root, "root", "", "directory to serve")
	cmd.Flags().StringVar(&deployID, "deploy-id", "", "deploy ID; disables watching and versions assets")
	cmd.Flags().BoolVar(&open, "open", false, "open the page in a browser")
	return cmd
}

func (a *cli) serve(ctx context.Context) error {
	sc := a.cfg.Server
	ln, err := net.Listen("tcp", sc.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", sc.Addr, err)
	}

	srv := devserver.New(devserver.Options{
		Root:     sc.Root,
		DeployID: sc.DeployID,
		Debounce: sc.Debounce(),
		Logger:   a.logger,
	})

	if sc.Dev() {
		color.New(color.FgYellow).Println("Starting dev server...")
	}
	fmt.Printf("Listening on %s\n", color.CyanString(sc.URL()))
	if sc.OpenBrowser {
		if err := openURL(sc.URL()); err != nil {
			a.logger.Warn("Could not open browser", zap.Error(err))
		}
	}
	return srv.Serve(ctx, ln)
}

func (a *cli) viewCommand() *cobra.Command {
	var (
		fullscreen, showFPS bool
		width, height       int
	)
	cmd := &cobra.Command{
		Use:   "view [shader.glsl]",
		Short: "Render the shader in a native window, recompiling on save",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if len(args) == 1 {
				a.cfg.Viewer.Shader = args[0]
			}
			if flags.Changed("fullscreen") {
				a.cfg.Viewer.Fullscreen = fullscreen
			}
			if flags.Changed("fps") {
				a.cfg.Viewer.ShowFPS = showFPS
			}
			if flags.Changed("width") {
				a.cfg.Viewer.Width = width
			}
			if flags.Changed("height") {
				a.cfg.Viewer.Height = height
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return runViewer(cmd.Context(), a.cfg.Viewer, a.logger.Named("viewer"))
		},
	}
	cmd.Flags().BoolVarP(&fullscreen, "fullscreen", "f", false, "fullscreen on the primary monitor")
	cmd.Flags().BoolVar(&showFPS, "fps", true, "show the frame rate")
	cmd.Flags().IntVar(&width, "width", 0, "window width")
	cmd.Flags().IntVar(&height, "height", 0, "window height")
	return cmd
}

func (a *cli) settingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Edit the config file in a desktop dialog",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Saving must not persist environment overrides.
			runSettings(a.configPath, a.fileCfg, a.logger)
			return nil
		},
	}
}

func (a *cli) initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.Server.Root
			if len(args) == 1 {
				dir = args[0]
			}
			written, skipped, err := web.Scaffold(dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range written {
				fmt.Fprintf(out, "%s %s\n", color.GreenString("create"), name)
			}
			for _, name := range skipped {
				fmt.Fprintf(out, "%s %s\n", color.YellowString("exists"), name)
			}
			return nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
