package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/starford/noteshare/internal"
	"github.com/starford/noteshare/internal/apperr"
	"github.com/starford/noteshare/internal/mcpserver"
	"github.com/starford/noteshare/internal/share"
	"github.com/starford/noteshare/internal/storage"
	pkgconfig "github.com/starford/noteshare/pkg/config"
)

// loadConfig reads the config file and applies the global flag overrides
// before validating the result.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	err := pkgconfig.LoadOptional(cmd.String("config"), cfg, func(c *internal.Config) {
		if p := cmd.String("profile"); p != "" {
			c.Profile.Path = p
		}
		if d := cmd.String("output-dir"); d != "" {
			c.Share.OutputDir = d
		}
		if l := cmd.String("locale"); l != "" {
			c.Locale.Name = l
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// withComponents runs fn with the pipeline built from config, under the
// global timeout. Logs go to stderr so stdout stays usable for output.
func withComponents(ctx context.Context, cmd *cli.Command, fn func(context.Context, *internal.Components) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(os.Stderr, cfg.App.LogLevel, false)

	comps, err := internal.Build(cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	if timeout := cmd.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx, comps)
}

func noteID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.Args().First())
	if id == "" {
		return "", errors.New("note id is required")
	}
	return id, nil
}

func settingsFrom(cmd *cli.Command, cfg *internal.Config) (share.Settings, error) {
	expiration := cmd.String("expiration")
	if expiration == "" {
		expiration = fmt.Sprint(cfg.Share.DefaultExpirationDays)
	}
	return share.ParseSettings(cmd.String("type"), expiration)
}

// promptPassword reads a password from the terminal without echo, or a line
// from stdin when it is not a terminal. Empty input cancels.
func promptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	fd := int(os.Stdin.Fd())
	var pw string
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		pw = string(b)
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", apperr.ErrCancelled
		}
		pw = strings.TrimRight(line, "\r\n")
	}
	if pw == "" {
		return "", apperr.ErrCancelled
	}
	return pw, nil
}

func shareOptions(cmd *cli.Command, comps *internal.Components, settings share.Settings) (share.Options, error) {
	opts := share.Options{Path: cmd.String("output"), Password: cmd.String("password")}
	if settings.Encrypted() && opts.Password == "" && cmd.Bool("prompt-password") {
		pw, err := promptPassword(comps.Share.Strings().T("password"))
		if err != nil {
			return opts, err
		}
		opts.Password = pw
	}
	return opts, nil
}

func runShare(ctx context.Context, cmd *cli.Command) error {
	id, err := noteID(cmd)
	if err != nil {
		return err
	}
	return withComponents(ctx, cmd, func(ctx context.Context, comps *internal.Components) error {
		settings, err := settingsFrom(cmd, comps.Config)
		if err != nil {
			return err
		}
		opts, err := shareOptions(cmd, comps, settings)
		if errors.Is(err, apperr.ErrCancelled) {
			fmt.Fprintln(os.Stderr, comps.Share.Strings().T("cancelled"))
			return nil
		}
		if err != nil {
			return err
		}
		res, err := comps.Share.Share(ctx, id, settings, opts)
		if err != nil {
			return err
		}
		fmt.Println(res.Message)
		return nil
	})
}

func runRender(ctx context.Context, cmd *cli.Command) error {
	id, err := noteID(cmd)
	if err != nil {
		return err
	}
	return withComponents(ctx, cmd, func(ctx context.Context, comps *internal.Components) error {
		settings, err := settingsFrom(cmd, comps.Config)
		if err != nil {
			return err
		}
		res, err := comps.Share.Build(ctx, id, settings, cmd.String("password"))
		if err != nil {
			return err
		}
		if res.Password != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", comps.Share.Strings().T("password"), res.Password)
		}
		_, err = os.Stdout.WriteString(res.HTML)
		return err
	})
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	id, err := noteID(cmd)
	if err != nil {
		return err
	}
	return withComponents(ctx, cmd, func(ctx context.Context, comps *internal.Components) error {
		dir := cmd.String("dir")
		if dir == "" {
			dir = id
		}
		abs, err := comps.Output.Abs(dir)
		if err != nil {
			return err
		}
		sink, err := storage.EnsureFS(abs)
		if err != nil {
			return err
		}
		res, err := comps.Share.ExportJSON(ctx, id, sink)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s (%d resources, %d skipped)\n",
			comps.Share.Strings().T("saveSuccess"), abs, len(res.Resources), len(res.Skipped))
		return nil
	})
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	id, err := noteID(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	settings, err := settingsFrom(cmd, cfg)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithLogger(internal.NewLogger(os.Stderr, cfg.App.LogLevel, false)),
		internal.WithWatch(id, settings, share.Options{Path: cmd.String("output"), Password: cmd.String("password")}),
	}
	if !cmd.Bool("serve") {
		opts = append(opts, internal.WithoutHTTP())
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the protocol.
	logger := internal.NewLogger(os.Stderr, cfg.App.LogLevel, true)
	slog.SetDefault(logger)

	comps, err := internal.Build(cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	logger.Info("mcp: serving on stdio")
	return mcpserver.New(comps.Share, comps.Output, cfg.Share.DefaultExpirationDays).ServeStdio()
}

func shareFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "type",
			Aliases: []string{"t"},
			Usage:   "Share type: public or encrypted",
			Value:   share.TypePublic,
		},
		&cli.StringFlag{
			Name:    "expiration",
			Aliases: []string{"e"},
			Usage:   "Validity in days (1-365); defaults to share.default_expiration_days",
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Password for encrypted shares; generated when empty",
			Sources: cli.EnvVars("NOTESHARE_PASSWORD"),
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "noteshare",
		Usage: "Render Joplin notes into self-contained HTML pages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "profile",
				Usage:   "Joplin profile directory (overrides profile.path)",
				Sources: cli.EnvVars("NOTESHARE_PROFILE"),
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Directory for shared files (overrides share.output_dir)",
			},
			&cli.StringFlag{
				Name:  "locale",
				Usage: "Language for messages and the password page (overrides locale.name)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Abort one-shot commands after this long",
				Value: 30 * time.Second,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "share",
				Usage:     "Render a note and save it to the share directory",
				ArgsUsage: "<note-id>",
				Flags: append(shareFlags(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "File name relative to the share directory",
					},
					&cli.BoolFlag{
						Name:  "prompt-password",
						Usage: "Ask for the password of an encrypted share",
					},
				),
				Action: runShare,
			},
			{
				Name:      "render",
				Usage:     "Render a note and write the HTML to stdout",
				ArgsUsage: "<note-id>",
				Flags:     shareFlags(),
				Action:    runRender,
			},
			{
				Name:      "export",
				Usage:     "Export a note and its attachments as JSON files",
				ArgsUsage: "<note-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Directory relative to the share directory; defaults to the note id",
					},
				},
				Action: runExport,
			},
			{
				Name:   "serve",
				Usage:  "Serve the preview and share HTTP API",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the share tools over MCP on stdio",
				Action: runMCP,
			},
			{
				Name:      "watch",
				Usage:     "Re-share a note whenever the profile changes",
				ArgsUsage: "<note-id>",
				Flags: append(shareFlags(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "File name relative to the share directory",
					},
					&cli.BoolFlag{
						Name:  "serve",
						Usage: "Also serve the HTTP API",
					},
				),
				Action: runWatch,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
