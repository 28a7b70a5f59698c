// Command jsresolve runs the module specifier resolution algorithm from
// the command line, for scripting or debugging a resolution outside a
// plugin host.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kr/text"
	"github.com/urfave/cli/v2"

	"github.com/jsresolve/jsresolve/internal/fs"
	"github.com/jsresolve/jsresolve/internal/logger"
	"github.com/jsresolve/jsresolve/internal/rconfig"
	"github.com/jsresolve/jsresolve/pkg/resolver"
)

var Version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "jsresolve",
		Usage:   "resolve a module specifier the way a dev server would",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "root",
				Usage: "project root directory",
				Value: ".",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to resolve.config.yaml or resolve.config.toml",
			},
			&cli.StringFlag{
				Name:  "importer",
				Usage: "absolute path of the file doing the importing",
			},
			&cli.StringSliceFlag{
				Name:  "condition",
				Usage: "extra export condition, repeatable",
			},
			&cli.StringSliceFlag{
				Name:  "main-field",
				Usage: "override the mainFields search order, repeatable",
			},
			&cli.BoolFlag{
				Name:  "ssr",
				Usage: "resolve as if for a server-side render bundle",
			},
			&cli.BoolFlag{
				Name:  "require",
				Usage: "resolve as a require() call instead of an import",
			},
			&cli.BoolFlag{
				Name:  "production",
				Usage: "use production conditions and browser-external rewriting",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"v"},
				Usage:   "print the per-call resolution trace to stderr",
			},
		},
		Action: resolveCommand,
		CommandNotFound: func(c *cli.Context, command string) {
			fmt.Fprintln(os.Stderr, wrap(fmt.Sprintf("unknown command %q; jsresolve takes a bare specifier argument, not a subcommand", command)))
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, wrap(err.Error()))
		os.Exit(1)
	}
}

func wrap(s string) string {
	return text.Wrap(s, 100)
}

func resolveCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.ShowAppHelp(c)
	}
	specifier := c.Args().First()

	root := c.String("root")
	if abs, ok := fs.RealFS().Abs(root); ok {
		root = abs
	}

	level := logger.LevelInfo
	if c.Bool("debug") {
		level = logger.LevelDebug
	}
	log := logger.NewLog(level)

	opts := resolver.Options{
		Root:       root,
		Conditions: c.StringSlice("condition"),
		MainFields: c.StringSlice("main-field"),
		SSR:        c.Bool("ssr"),
		IsRequire:  c.Bool("require"),
		Production: c.Bool("production"),
		AsSrc:      true,
	}

	if configPath := c.String("config"); configPath != "" {
		file, err := rconfig.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading %s: %w", configPath, err)
		}
		applyConfigFile(&opts, file)
	}

	r := resolver.New(fs.RealFS(), log)
	result, err := r.Resolve(context.Background(), specifier, c.String("importer"), opts)

	for _, msg := range log.Msgs() {
		fmt.Fprintln(os.Stderr, msg.String())
	}

	if err != nil {
		return err
	}

	printResult(specifier, result)
	return nil
}

func applyConfigFile(opts *resolver.Options, file rconfig.File) {
	if file.Root != "" {
		opts.Root = file.Root
	}
	if len(file.MainFields) > 0 {
		opts.MainFields = file.MainFields
	}
	if len(file.Conditions) > 0 {
		opts.Conditions = file.Conditions
	}
	if len(file.Extensions) > 0 {
		opts.Extensions = file.Extensions
	}
	if len(file.Dedupe) > 0 {
		opts.Dedupe = file.Dedupe
	}
	opts.PreserveSymlinks = file.PreserveSymlinks
	opts.AsSrc = file.AsSrc
}

func printResult(specifier string, result *resolver.Result) {
	switch {
	case result.Null:
		fmt.Printf("%s -> (null)\n", specifier)
	case result.Defer:
		fmt.Printf("%s -> (unresolved, deferred to next resolver)\n", specifier)
	case result.External:
		fmt.Printf("%s -> %s (external)\n", specifier, result.ID)
	default:
		sideEffects := "unknown"
		if result.ModuleSideEffects != nil {
			sideEffects = fmt.Sprintf("%t", *result.ModuleSideEffects)
		}
		fmt.Printf("%s -> %s (sideEffects=%s)\n", specifier, result.ID, sideEffects)
	}
}
