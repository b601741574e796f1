package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/futurelink/cmd/futurelink/commands"
	"git.home.luguber.info/inful/futurelink/internal/foundation/errors"
	"git.home.luguber.info/inful/futurelink/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{}
	ctx := kong.Parse(&cli,
		kong.Name("futurelink"),
		kong.Description("Publish links that switch themselves on at their go-live date."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	adapter := errors.NewCLIErrorAdapter(cli.Verbose, global.Logger)
	os.Exit(adapter.Handle(ctx.Run(global, &cli)))
}
