// quotectl checks site configurations and prices quotes offline.
//
// Usage:
//
//	quotectl validate --config site.json
//	quotectl quote package --id pkg_photo_only
//	quotectl quote custom --answer q_video=yes --adjustment "Trasferta=150"
//	quotectl link --action download --custom --answer q_album=yes
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/Simplici0/weddingquote/internal/adjustments"
	"github.com/Simplici0/weddingquote/internal/pricing"
	"github.com/Simplici0/weddingquote/internal/quotedoc"
	"github.com/Simplici0/weddingquote/internal/render"
	"github.com/Simplici0/weddingquote/internal/siteconfig"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "quotectl",
		Usage:   "Validate site configurations and price wedding quotes",
		Version: version,

		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a site configuration JSON document (default: built-in)",
				EnvVars: []string{"QUOTECTL_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			validateCommand(),
			quoteCommand(),
			linkCommand(),
		},
	}
}

func loadConfig(c *cli.Context) (*siteconfig.AppConfig, error) {
	path := c.String("config")
	if path == "" {
		return siteconfig.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return siteconfig.Parse(data)
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check a site configuration and report every violation",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "ok: %d packages, %d questions\n", len(cfg.Packages), len(cfg.CustomFlow.Questions))
			return nil
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "table",
		Usage:   "Output format (table, json)",
	}
}

func answerFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "answer",
		Aliases: []string{"a"},
		Usage:   "Question answer as id=value; yes/no/true/false/1/0 are yes-no answers, anything else is text",
	}
}

func adjustmentFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "adjustment",
		Usage: "Additional adjustment as title=delta",
	}
}

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "Price a fixed package or a custom quote",
		Subcommands: []*cli.Command{
			{
				Name:  "package",
				Usage: "Price a fixed package",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Package id", Required: true},
					formatFlag(),
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					result, ok := pricing.CalculateFixedPackage(cfg, c.String("id"))
					if !ok {
						return fmt.Errorf("%w: %q", quotedoc.ErrUnknownPackage, c.String("id"))
					}
					return printResult(c.App.Writer, c.String("format"), cfg, result)
				},
			},
			{
				Name:  "custom",
				Usage: "Price a custom quote from questionnaire answers",
				Flags: []cli.Flag{
					answerFlag(),
					adjustmentFlag(),
					formatFlag(),
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					answers, err := parseAnswers(c.StringSlice("answer"))
					if err != nil {
						return err
					}
					adjs, err := parseAdjustments(c.StringSlice("adjustment"))
					if err != nil {
						return err
					}
					result, err := pricing.CalculateCustom(cfg, answers, pricing.Options{AdditionalAdjustments: adjs})
					if err != nil {
						return err
					}
					return printResult(c.App.Writer, c.String("format"), cfg, result)
				},
			},
		},
	}
}

func linkCommand() *cli.Command {
	return &cli.Command{
		Name:  "link",
		Usage: "Print the document link for a quote request",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "action", Value: quotedoc.ActionDownload, Usage: "Document action (download, print)"},
			&cli.StringFlag{Name: "package", Usage: "Package id"},
			&cli.BoolFlag{Name: "custom", Usage: "Build a custom quote link"},
			answerFlag(),
			adjustmentFlag(),
			&cli.StringFlag{Name: "requests", Usage: "Additional requests from the couple"},
			&cli.StringFlag{Name: "lang", Usage: "Document locale (it, en)"},
			&cli.StringFlag{Name: "base-url", Usage: "Prefix for the printed link"},
		},
		Action: func(c *cli.Context) error {
			answers, err := parseAnswers(c.StringSlice("answer"))
			if err != nil {
				return err
			}
			adjs, err := parseAdjustments(c.StringSlice("adjustment"))
			if err != nil {
				return err
			}

			link, err := quotedoc.ResolveAction(c.String("action"), quotedoc.Request{
				PackageID:          c.String("package"),
				IsCustom:           c.Bool("custom"),
				Answers:            answers,
				AdditionalRequests: c.String("requests"),
				Adjustments:        adjs,
				Locale:             c.String("lang"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, strings.TrimRight(c.String("base-url"), "/")+link)
			return nil
		},
	}
}

func parseAnswers(raw []string) (pricing.Answers, error) {
	answers := pricing.Answers{}
	for _, entry := range raw {
		id, value, ok := strings.Cut(entry, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid answer %q: want id=value", entry)
		}
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "yes", "y", "true", "1":
			answers[id] = pricing.Yes
		case "no", "n", "false", "0", "":
			answers[id] = pricing.No
		default:
			answers[id] = pricing.TextAnswer(value)
		}
	}
	return answers, nil
}

func parseAdjustments(raw []string) ([]adjustments.Input, error) {
	out := make([]adjustments.Input, 0, len(raw))
	for _, entry := range raw {
		i := strings.LastIndex(entry, "=")
		if i < 0 {
			return nil, fmt.Errorf("invalid adjustment %q: want title=delta", entry)
		}
		out = append(out, adjustments.Input{Title: entry[:i], PriceDeltaNet: entry[i+1:]})
	}
	return out, nil
}

func printResult(w io.Writer, format string, cfg *siteconfig.AppConfig, result *pricing.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "table":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	for _, item := range result.LineItems {
		fmt.Fprintf(w, "%-40s %14s\n", item.Label.Text("it"), render.FormatEUR(item.PriceNet))
	}
	for _, adj := range result.QuestionAdjustments {
		label := adj.QuestionID
		if q, ok := cfg.Question(adj.QuestionID); ok {
			label = q.QuestionText.Text("it")
		}
		fmt.Fprintf(w, "%-40s %14s\n", label, render.FormatEUR(adj.PriceDeltaNet))
	}
	for _, adj := range result.AdditionalAdjustments {
		fmt.Fprintf(w, "%-40s %14s\n", adj.Title, render.FormatEUR(adj.PriceDeltaNet))
	}
	if !result.IsCustom && result.PackageAdjustmentNet != 0 {
		fmt.Fprintf(w, "%-40s %14s\n", "Sconto pacchetto", render.FormatEUR(result.PackageAdjustmentNet))
	}

	fmt.Fprintln(w, strings.Repeat("-", 55))
	fmt.Fprintf(w, "%-40s %14s\n", "Totale imponibile", render.FormatEUR(result.TotalNet))
	fmt.Fprintf(w, "%-40s %14s\n", "IVA "+decimal.NewFromFloat(result.VATRate).Shift(2).String()+"%", render.FormatEUR(result.VATAmount))
	fmt.Fprintf(w, "%-40s %14s\n", "Totale", render.FormatEUR(result.TotalGross))

	if len(result.TextAnswers) > 0 {
		ids := make([]string, 0, len(result.TextAnswers))
		for id := range result.TextAnswers {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		fmt.Fprintln(w)
		for _, id := range ids {
			fmt.Fprintf(w, "%s: %s\n", id, result.TextAnswers[id])
		}
	}
	return nil
}
