package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/tiletree/internal/config"
	"github.com/1broseidon/tiletree/internal/ipc"
	"github.com/1broseidon/tiletree/internal/layoutstore"
	"github.com/1broseidon/tiletree/internal/mcp"
	"github.com/1broseidon/tiletree/internal/runtimepath"
	"github.com/1broseidon/tiletree/internal/tiling"
	"github.com/1broseidon/tiletree/internal/tui"
	"github.com/1broseidon/tiletree/internal/wm"
	"github.com/1broseidon/tiletree/internal/x11"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "tree":
		os.Exit(runTree(os.Args[2:]))
	case "layout":
		os.Exit(runLayout(os.Args[2:]))
	case "equalize":
		os.Exit(runEqualize(os.Args[2:]))
	case "reconcile":
		os.Exit(runReconcile(os.Args[2:]))
	case "preview":
		os.Exit(runDrop(os.Args[2:], true))
	case "drop":
		os.Exit(runDrop(os.Args[2:], false))
	case "resize":
		os.Exit(runResize(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tiletree <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the tiletree daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  tree                Print the container tree")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  layout list         List stored layouts")
	fmt.Fprintln(w, "  layout save         Save the current tree under a name")
	fmt.Fprintln(w, "  layout load         Load a stored layout")
	fmt.Fprintln(w, "  layout delete       Delete a stored layout")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  equalize            Reset every split to equal shares")
	fmt.Fprintln(w, "  reconcile           Force a reconciliation pass now")
	fmt.Fprintln(w, "  preview             Show the drop rectangle for a position")
	fmt.Fprintln(w, "  drop                Drop a window at a position")
	fmt.Fprintln(w, "  resize              Resize a window by edge deltas")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print effective configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open the interactive inspector")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'tiletree <command> --help' for command-specific options.")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/tiletree/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tiletree daemon [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the tiling daemon in the foreground.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFromPath(*configPath)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	conn, err := x11.NewConnection()
	if err != nil {
		logger.Error("connect to display", "error", err)
		return 1
	}
	defer conn.Close()

	layoutDir, err := cfg.ResolveLayoutDir()
	if err != nil {
		logger.Error("resolve layout dir", "error", err)
		return 1
	}
	store, err := layoutstore.New(layoutDir)
	if err != nil {
		logger.Error("open layout store", "error", err)
		return 1
	}

	autosavePath, err := runtimepath.AutosavePath()
	if err != nil {
		logger.Warn("autosave disabled", "error", err)
		autosavePath = ""
	}

	manager := wm.NewManager(&wm.X11Platform{Conn: conn}, store, wm.Options{
		Tiling:       cfg.TilingOptions(),
		PollInterval: time.Duration(cfg.PollInterval) * time.Millisecond,
		AutosavePath: autosavePath,
		Logger:       logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	managerDone := make(chan error, 1)
	go func() {
		managerDone <- manager.Run(ctx)
	}()

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		logger.Error("resolve socket path", "error", err)
		return 1
	}
	server := ipc.NewServer(socketPath, manager, logger)
	if err := server.Start(); err != nil {
		logger.Error("start IPC server", "error", err)
		return 1
	}
	defer server.Stop()

	// Map and destroy notifications feed the manager; everything else drifts
	// in through the reconciler.
	if err := conn.Watch(func(ev x11.Event) {
		switch ev.Kind {
		case x11.WindowMapped:
			manager.WindowMapped(tiling.WindowID(ev.Window))
		case x11.WindowDestroyed:
			manager.WindowDestroyed(tiling.WindowID(ev.Window))
		}
	}); err != nil {
		logger.Error("watch root window", "error", err)
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", "signal", sig)
		conn.Quit()
	}()

	logger.Info("daemon started", "socket", socketPath, "layouts", layoutDir)
	conn.EventLoop()

	cancel()
	if err := <-managerDone; err != nil {
		logger.Error("manager", "error", err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tiletree status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("windows:        %d\n", status.Windows)
	fmt.Printf("containers:     %d\n", status.Containers)
	fmt.Printf("work_area:      %s\n", status.WorkArea)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runTree(args []string) int {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output the serialized tree as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tiletree tree [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print the daemon's container tree.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "tree takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()

	if *jsonOut {
		data, err := client.GetTree()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data.Tree); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	dump, err := client.DebugLayout()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Print(dump)
	return 0
}

func printLayoutUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tiletree layout list")
	fmt.Fprintln(w, "  tiletree layout save <name>")
	fmt.Fprintln(w, "  tiletree layout load <name>")
	fmt.Fprintln(w, "  tiletree layout delete <name>")
}

func runLayout(args []string) int {
	if len(args) == 0 {
		printLayoutUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printLayoutUsage(os.Stdout)
		return 0
	}

	client := ipc.NewClient()

	switch args[0] {
	case "list":
		if len(args) > 1 {
			fmt.Fprintln(os.Stderr, "layout list takes no arguments")
			return 2
		}
		names, err := client.ListLayouts()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return 0

	case "save":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "layout save requires <name>")
			return 2
		}
		if err := client.SaveLayout(args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "load":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "layout load requires <name>")
			return 2
		}
		if err := client.LoadLayout(args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "delete":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "layout delete requires <name>")
			return 2
		}
		if err := client.DeleteLayout(args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown layout command: %s\n\n", args[0])
		printLayoutUsage(os.Stderr)
		return 2
	}
}

func runEqualize(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "Usage: tiletree equalize")
		return 2
	}
	client := ipc.NewClient()
	if err := client.Equalize(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runReconcile(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "Usage: tiletree reconcile")
		return 2
	}
	client := ipc.NewClient()
	if err := client.Reconcile(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// resolveWindow parses a window id argument, falling back to the currently
// focused window when none is given.
func resolveWindow(arg string) (uint32, error) {
	if arg != "" {
		id, err := strconv.ParseUint(arg, 0, 32)
		if err != nil {
			return 0, fmt.Errorf("bad window id %q: %w", arg, err)
		}
		return uint32(id), nil
	}

	conn, err := x11.NewConnection()
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	win, err := conn.ActiveWindow()
	if err != nil {
		return 0, err
	}
	return uint32(win), nil
}

func runDrop(args []string, previewOnly bool) int {
	name := "drop"
	if previewOnly {
		name = "preview"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	window := fs.String("window", "", "Window id (default: the focused window)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tiletree %s [--window ID] <x> <y>\n", name)
		fmt.Fprintln(os.Stderr, "")
		if previewOnly {
			fmt.Fprintln(os.Stderr, "Show the rectangle the window would settle into when dropped at x,y.")
		} else {
			fmt.Fprintln(os.Stderr, "Drop the window at x,y and apply the implied tile action.")
		}
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "%s requires <x> <y>\n", name)
		fs.Usage()
		return 2
	}

	x, errX := strconv.Atoi(fs.Arg(0))
	y, errY := strconv.Atoi(fs.Arg(1))
	if errX != nil || errY != nil {
		fmt.Fprintln(os.Stderr, "x and y must be integers")
		return 2
	}

	win, err := resolveWindow(*window)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	client := ipc.NewClient()

	if previewOnly {
		data, err := client.Preview(win, x, y)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !data.Valid {
			fmt.Println("no drop target at this position")
			return 0
		}
		fmt.Printf("(%d,%d %dx%d)\n", data.X, data.Y, data.Width, data.Height)
		return 0
	}

	res, err := client.Insert(win, x, y)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("action: %s\n", res.Action)
	return 0
}

func runResize(args []string) int {
	fs := flag.NewFlagSet("resize", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	window := fs.String("window", "", "Window id (default: the focused window)")
	dir := fs.String("dir", "right", "Edge(s) to move: left, right, top, bottom, top-left, top-right, bottom-left, bottom-right")
	dx := fs.Int("dx", 0, "Horizontal delta in pixels")
	dy := fs.Int("dy", 0, "Vertical delta in pixels")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tiletree resize [--window ID] --dir EDGE --dx N --dy N")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Resize a window by moving the selected edge(s); neighbors absorb the change.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "resize takes no positional arguments")
		fs.Usage()
		return 2
	}
	if *dx == 0 && *dy == 0 {
		fmt.Fprintln(os.Stderr, "at least one of --dx and --dy must be non-zero")
		return 2
	}

	win, err := resolveWindow(*window)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	client := ipc.NewClient()
	if err := client.Resize(win, *dir, *dx, *dy); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  tiletree config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  tiletree config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/tiletree/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var err error
		if *path == "" {
			_, err = config.Load()
		} else {
			_, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/tiletree/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var cfg *config.Config
		if *printDefaults {
			cfg = config.Default()
		} else {
			var err error
			if *path == "" {
				cfg, err = config.Load()
			} else {
				cfg, err = config.LoadFromPath(*path)
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "Daemon socket path (default: runtime dir)")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: tiletree tui [--socket PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive inspector for the running daemon.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  tab/shift-tab  Switch tabs")
		fmt.Fprintln(os.Stderr, "  1/2/3          Jump to Overview / Tree / Layouts")
		fmt.Fprintln(os.Stderr, "  r              Refresh now")
		fmt.Fprintln(os.Stderr, "  e              Equalize ratios (Overview tab)")
		fmt.Fprintln(os.Stderr, "  c              Reconcile now (Overview tab)")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓       Scroll / navigate")
		fmt.Fprintln(os.Stderr, "  enter/l, s, d  Load / save / delete layout (Layouts tab)")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C      Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := tui.Run(*socket); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runMCP(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: tiletree mcp serve")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Expose the daemon's layout operations as MCP tools over stdio.")
		return 2
	}

	switch args[0] {
	case "serve":
		if len(args) > 1 {
			fmt.Fprintln(os.Stderr, "mcp serve takes no arguments")
			return 2
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		server := mcp.NewServer(ipc.NewClient())
		if err := server.Run(ctx); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp subcommand: %s\n", args[0])
		return 2
	}
}
