package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/trezcool/placement/core"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	conf := core.NewConfig()
	args, err := parseGlobalFlags(conf, os.Args)
	if err != nil {
		stop()
		os.Exit(2)
	}

	code := 0
	err = newContainer(conf, os.Stdout).Invoke(func(cli *commandLine) {
		defer cli.close()
		if err := cli.run(ctx, args); err != nil {
			if err != errHelp {
				cli.report(err)
			}
			code = 1
		}
	})
	stop()
	if err != nil {
		log.Fatalf("starting cli: %v", err)
	}
	os.Exit(code)
}

// parseGlobalFlags applies the flags placed before the command name and
// returns the remaining arguments, program name first.
func parseGlobalFlags(conf *core.Config, args []string) ([]string, error) {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.StringVar(&conf.API.BaseURL, "api", conf.API.BaseURL, "Base URL of the placement API.")
	fs.StringVar(&conf.Session.Path, "session", conf.Session.Path, "File the login session is kept in.")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [-api URL] [-session PATH] COMMAND [ARGS]\n", args[0])
		fs.PrintDefaults()
	}
	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}
	return append([]string{args[0]}, fs.Args()...), nil
}
