package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kechako/mockingbird/bot"
	"github.com/kechako/mockingbird/greeting"
	"github.com/kechako/mockingbird/mocking"
	"github.com/urfave/cli/v2"
)

func loadConfig(c *cli.Context) (*bot.Config, error) {
	cfgName := c.String("config")
	if cfgName == "" {
		return nil, errors.New("config file is not specified")
	}

	cfg, err := bot.ReadConfigFile(cfgName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.New("config file is not found")
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return cfg, nil
}

func runCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx := c.Context

	b, err := bot.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize bot: %w", err)
	}
	defer b.Close()

	return b.Start(ctx)
}

func sayCommand(c *cli.Context) error {
	phrase := strings.Join(c.Args().Slice(), " ")

	cfg := bot.DefaultConfig()
	if c.IsSet("config") {
		var err error
		cfg, err = loadConfig(c)
		if err != nil {
			return err
		}
	}

	result := mocking.New(cfg.Speech.GeneratorOptions()...).Speak(phrase)

	return writeResult(c.App.Writer, result, c.Bool("speech"), c.Bool("text"))
}

func writeResult(w io.Writer, result mocking.Result, speechOnly, textOnly bool) error {
	if speechOnly && textOnly {
		return cli.Exit("--speech and --text are mutually exclusive", 2)
	}

	var err error
	switch {
	case speechOnly:
		_, err = fmt.Fprintln(w, result.Speech)
	case textOnly:
		_, err = fmt.Fprintln(w, result.Text)
	default:
		_, err = fmt.Fprintf(w, "text  : %s\nspeech: %s\n", result.Text, result.Speech)
	}
	return err
}

func greetCommand(c *cli.Context) error {
	var src rand.Source
	if c.IsSet("seed") {
		seed := c.Uint64("seed")
		src = rand.NewPCG(seed, seed)
	}

	_, err := fmt.Fprintln(c.App.Writer, greeting.NewSelector(src).Launch())
	return err
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "mockingbird",
		Usage: "repeats what you say, mockingly",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the Discord bot",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Value:   "config.toml",
					},
				},
				Action: runCommand,
			},
			{
				Name:      "say",
				Usage:     "print the mocking text and speech markup of a phrase",
				ArgsUsage: "<phrase...>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
					},
					&cli.BoolFlag{
						Name:  "speech",
						Usage: "print only the speech markup",
					},
					&cli.BoolFlag{
						Name:  "text",
						Usage: "print only the mocking text",
					},
				},
				Action: sayCommand,
			},
			{
				Name:  "greet",
				Usage: "print a launch greeting",
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name: "seed",
					},
				},
				Action: greetCommand,
			},
		},
	}
}

func main() {
	app := newApp()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error : %v\n", err)

		var exitCoder cli.ExitCoder
		if errors.As(err, &exitCoder) {
			os.Exit(exitCoder.ExitCode())
		}
		os.Exit(1)
	}
}
