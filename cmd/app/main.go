package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/flashdeck/internal"
	"github.com/starford/flashdeck/internal/parser"
	pkgconfig "github.com/starford/flashdeck/pkg/config"
)

// loadConfig reads the config file named by --config and applies the deck
// entry given as the first argument, if any.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	// Applied twice: before loading so validation sees it, after so it wins over the file.
	if entry := cmd.Args().First(); entry != "" {
		cfg.Deck.Entry = entry
	}
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if entry := cmd.Args().First(); entry != "" {
		cfg.Deck.Entry = entry
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

// offline builds the components for one-shot commands, logging to stderr.
func offline(cmd *cli.Command) (*internal.Components, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return internal.Build(cfg, internal.NewLogger(cfg, os.Stderr), false)
}

func parse(ctx context.Context, cmd *cli.Command) error {
	c, err := offline(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	if expr := cmd.String("range"); expr != "" {
		cards, err := c.Service.Cards(ctx, expr)
		if err != nil {
			return err
		}
		return printJSON(cards)
	}
	doc, err := c.Service.Document(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("skip-disabled") {
		doc = parser.FilterDisabled(doc)
	}
	return printJSON(doc)
}

func format(ctx context.Context, cmd *cli.Command) error {
	c, err := offline(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	doc, err := c.Service.Format(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("formatted %s (%d cards)\n", doc.Filepath, len(doc.Cards))
	return nil
}

func fonts(ctx context.Context, cmd *cli.Command) error {
	c, err := offline(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	url, err := c.Service.FontsURL(ctx)
	if err != nil {
		return err
	}
	if url == "" {
		return fmt.Errorf("deck does not use Google Fonts")
	}
	fmt.Println(url)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	cmd := &cli.Command{
		Name:  "flashdeck",
		Usage: "Parse, format and serve Markdown card decks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "serve",
				Usage:     "Serve the deck over the HTTP API",
				ArgsUsage: "[deck.md]",
				Action:    serve,
			},
			{
				Name:      "parse",
				Usage:     "Print the parsed deck as JSON",
				ArgsUsage: "[deck.md]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "range",
						Usage: "Only print the cards in this 1-based range, e.g. 1,3-5",
					},
					&cli.BoolFlag{
						Name:  "skip-disabled",
						Usage: "Leave out cards whose front matter sets disabled",
					},
				},
				Action: parse,
			},
			{
				Name:      "format",
				Usage:     "Rewrite the deck in canonical layout",
				ArgsUsage: "[deck.md]",
				Action:    format,
			},
			{
				Name:      "fonts",
				Usage:     "Print the Google Fonts stylesheet URL for the deck",
				ArgsUsage: "[deck.md]",
				Action:    fonts,
			},
			{
				Name:      "mcp",
				Usage:     "Serve the deck over MCP on stdin/stdout",
				ArgsUsage: "[deck.md]",
				Action:    serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
