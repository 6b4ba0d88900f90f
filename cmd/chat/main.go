// Command chat is a terminal client for the chat service.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/client"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/logger"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/views"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	app := &cli.App{
		Name:  "chat",
		Usage: "one-to-one chat from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   "localhost:50051",
				Usage:   "chat service gRPC address",
				EnvVars: []string{"CHAT_ADDR"},
			},
			&cli.BoolFlag{
				Name:    "tls",
				Usage:   "connect with TLS",
				EnvVars: []string{"CHAT_TLS"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "client log level",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log := logger.NewTo(c.String("log-level"), zapcore.Lock(os.Stderr))
	defer func() { _ = log.Sync() }()

	mgr, err := client.Configure(client.Options{Addr: c.String("addr"), TLS: c.Bool("tls")})
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()
	log.Debug("configured client", zap.String("addr", c.String("addr")), zap.Bool("tls", c.Bool("tls")))

	sh := newShell(views.FromManager(client.Shared()), os.Stdout, log)
	defer sh.close()

	fmt.Fprintln(os.Stdout, `type "help" for commands`)
	return sh.loop(c.Context, bufio.NewScanner(os.Stdin))
}
