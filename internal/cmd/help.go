package cmd

import (
	"fmt"

	"github.com/alecthomas/kong"
)

const helpExamples = `
Examples:
  echo 'see http://example.com ~~@spoiler@~~' | tungsten store --save notes
  tungsten display --doc notes --open
  tungsten edit --doc notes --unescape
  tungsten inspect --doc notes
  tungsten config set options.video.width 800
`

func helpOptions() kong.HelpOptions {
	return kong.HelpOptions{
		Compact:             true,
		NoExpandSubcommands: true,
	}
}

// helpPrinter is kong's default printer plus usage examples on the
// top-level help page.
func helpPrinter(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}

	if ctx.Selected() == nil {
		_, _ = fmt.Fprint(ctx.Stdout, helpExamples)
	}

	return nil
}
