package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/popsite/cmd/popsite/commands"
	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
	"git.home.luguber.info/inful/popsite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Out: os.Stdout}
	parser := kong.Must(cli,
		kong.Name("popsite"),
		kong.Description("popsite is a static site builder."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(global, cli); err != nil {
		foundationerrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
