package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/dedene/tungsten-cli/internal/config"
	"github.com/dedene/tungsten-cli/internal/fetch"
	"github.com/dedene/tungsten-cli/internal/outfmt"
	"github.com/dedene/tungsten-cli/internal/ui"
)

// RootFlags are global flags available to all commands.
type RootFlags struct {
	Color   string `help:"Color output: auto|always|never" default:"auto" enum:"auto,always,never"`
	JSON    bool   `help:"JSON output" default:"false"`
	Verbose bool   `help:"Verbose logging" default:"false"`
	NoInput bool   `help:"Never prompt; fail instead" name:"no-input" default:"false"`
	Force   bool   `help:"Overwrite existing documents" default:"false"`
}

// CLI is the top-level Kong command struct.
type CLI struct {
	RootFlags `embed:""`

	Version    kong.VersionFlag `help:"Print version and exit"`
	VersionCmd VersionCmd       `cmd:"" name:"version" help:"Print version info"`
	Store      StoreCmd         `cmd:"" name:"store" help:"Tokenize raw text for storage"`
	Edit       EditCmd          `cmd:"" name:"edit" help:"Turn stored text back into editable text"`
	Display    DisplayCmd       `cmd:"" name:"display" aliases:"render" help:"Render stored text as HTML"`
	Inspect    InspectCmd       `cmd:"" name:"inspect" help:"List the tokens in stored text"`
	Stacks     StacksCmd        `cmd:"" name:"stacks" help:"Show or rearrange the stack pipeline"`
	Docs       DocsCmd          `cmd:"" name:"docs" help:"Manage saved documents"`
	Config     ConfigCmd        `cmd:"" name:"config" help:"Manage configuration"`
}

// Execute parses CLI args, sets up context, and runs the matched command.
func Execute(args []string) (err error) {
	cli := &CLI{}
	parser, err := kong.New(
		cli,
		kong.Name("tungsten"),
		kong.Description("Embed links, images, videos and spoilers in plain text, safely"),
		kong.ConfigureHelp(helpOptions()),
		kong.Help(helpPrinter),
		kong.Vars{"version": VersionString()},
		kong.Writers(os.Stdout, os.Stderr),
		kong.Exit(func(code int) { panic(exitPanic{code: code}) }),
	)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			if ep, ok := r.(exitPanic); ok {
				if ep.code == 0 {
					err = nil
					return
				}
				err = &ExitError{Code: ep.code, Err: errors.New("exited")}
				return
			}
			panic(r)
		}
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return &ExitError{Code: 2, Err: err}
	}

	// Verbose logging
	logLevel := slog.LevelWarn
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	// Output mode
	ctx := outfmt.WithMode(context.Background(), outfmt.Mode{JSON: cli.JSON})

	// UI printer -- force no color in JSON mode
	uiColor := cli.Color
	if outfmt.IsJSON(ctx) {
		uiColor = "never"
	}
	u, uiErr := ui.New(ui.Options{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Color:  uiColor,
	})
	if uiErr != nil {
		return uiErr
	}
	ctx = ui.WithUI(ctx, u)

	// Config
	cfg := &config.Config{}
	if cfgPath, pathErr := config.Path(); pathErr != nil {
		slog.Warn("locating config", "error", pathErr)
	} else if loaded, cfgErr := config.Load(cfgPath); cfgErr != nil {
		slog.Warn("loading config", "path", cfgPath, "error", cfgErr)
	} else {
		cfg = loaded
	}
	ctx = config.WithConfig(ctx, cfg)

	// Image fetcher for previews
	ctx = fetch.WithClient(ctx, fetch.New(fetch.Options{
		UserAgent: "tungsten-cli/" + readBuildInfo().Version,
		Verbose:   cli.Verbose,
	}))

	// Bind context + root flags to Kong
	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(&cli.RootFlags)

	return kctx.Run()
}
