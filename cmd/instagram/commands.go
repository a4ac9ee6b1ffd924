package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	instagram "github.com/jamesprial/go-instagram-api-wrapper"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/metrics"
)

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "instagram",
		Usage: "Query the Instagram API from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: defaultConfigPath,
				Usage: "Path to the TOML config file",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Dotenv file with INSTAGRAM_* variables; the environment takes precedence",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: formatJSON,
				Usage: "Output format: json or yaml",
			},
			&cli.StringFlag{
				Name:  "access-token",
				Usage: "Access token (overrides config and INSTAGRAM_ACCESS_TOKEN)",
			},
			&cli.BoolFlag{
				Name:  "signed",
				Usage: "Sign every request with the client secret",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if _, err := setupLogging(cmd.String("log-level"), errWriter(cmd)); err != nil {
				return ctx, err
			}
			return ctx, validateFormat(cmd.String("format"))
		},
		Commands: getCommands(),
	}
}

func getCommands() []*cli.Command {
	return []*cli.Command{
		getLoginURLCommand(),
		getExchangeCommand(),
		getUserCommand(),
		getUserMediaCommand(),
		getFollowsCommand(),
		getFollowersCommand(),
		getMediaCommand(),
		getShortcodeCommand(),
		getTagCommand(),
		getTagMediaCommand(),
		getSearchUsersCommand(),
		getLocationCommand(),
		getRelationshipCommand(),
		getLikeCommand(),
		getUnlikeCommand(),
		getCommentCommand(),
		getOembedCommand(),
	}
}

// session is the client built for one CLI invocation.
type session struct {
	client   *instagram.Client
	auth     *instagram.AuthClient
	registry *prometheus.Registry
}

type sessionActionFunc func(ctx context.Context, cmd *cli.Command, s *session) error

func newSession(cmd *cli.Command) (*session, error) {
	lookup, err := envLookup(cmd.String("env-file"))
	if err != nil {
		return nil, err
	}
	cfg, err := loadSettings(cmd.String("config"), lookup)
	if err != nil {
		return nil, err
	}
	if token := cmd.String("access-token"); token != "" {
		cfg.AccessToken = token
	}
	if cmd.Bool("signed") {
		cfg.Signed = true
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client_id is required (config file or INSTAGRAM_CLIENT_ID)")
	}

	s := &session{registry: prometheus.NewRegistry()}
	config := cfg.clientConfig()
	config.Logger = slog.Default()
	config.Metrics = metrics.NewCollector(s.registry, metrics.Options{})

	if cfg.canAuthenticate() {
		auth, err := instagram.NewClient(instagram.Credentials{
			APIKey:      cfg.ClientID,
			APISecret:   cfg.ClientSecret,
			APICallback: cfg.Callback,
		}, config)
		if err != nil {
			return nil, err
		}
		auth.SetSignedHeader(cfg.Signed)
		s.auth = auth
		s.client = auth.Client
	} else {
		if cfg.Signed {
			return nil, fmt.Errorf("signed requests need client_secret and callback")
		}
		client, err := instagram.NewPublicClient(cfg.ClientID, config)
		if err != nil {
			return nil, err
		}
		s.client = client
	}

	s.client.SetAccessToken(cfg.AccessToken)
	return s, nil
}

func withSession(fn sessionActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		err = fn(ctx, cmd, s)
		s.logCallSummary()
		return err
	}
}

// withAuthSession is withSession for commands that need the OAuth credentials.
func withAuthSession(fn sessionActionFunc) cli.ActionFunc {
	return withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
		if s.auth == nil {
			return fmt.Errorf("%s needs client_secret and callback in the config", cmd.Name)
		}
		return fn(ctx, cmd, s)
	})
}

// respond prints data and logs the remaining rate limit.
func (s *session) respond(cmd *cli.Command, data any) error {
	if remaining, known := s.client.RateLimit(); known {
		slog.Info("rate limit", "remaining", remaining)
	}
	return printOutput(outWriter(cmd), data, cmd.String("format"))
}

func (s *session) logCallSummary() {
	families, err := s.registry.Gather()
	if err != nil {
		slog.Debug("cannot gather metrics", "error", err)
		return
	}
	for _, family := range families {
		var total float64
		for _, m := range family.GetMetric() {
			if counter := m.GetCounter(); counter != nil {
				total += counter.GetValue()
			}
		}
		if total > 0 {
			slog.Debug("metric", "name", family.GetName(), "total", total)
		}
	}
}

func requireArgs(cmd *cli.Command, names ...string) ([]string, error) {
	if cmd.Args().Len() < len(names) {
		return nil, fmt.Errorf("usage: instagram %s %s", cmd.Name, argList(names))
	}
	values := make([]string, len(names))
	for i := range names {
		values[i] = cmd.Args().Get(i)
	}
	return values, nil
}

func argList(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = "<" + name + ">"
	}
	return strings.Join(quoted, " ")
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func countFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "count",
		Usage: "Number of items to request (0 for the API default of 100)",
	}
}

func getLoginURLCommand() *cli.Command {
	return &cli.Command{
		Name:  "login-url",
		Usage: "Print the OAuth authorize URL",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "scope",
				Usage: "Scope to request (repeatable): basic, likes, comments, relationships, public_content, follower_list",
			},
		},
		Action: withAuthSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			loginURL, err := s.auth.LoginURL(cmd.StringSlice("scope")...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(outWriter(cmd), loginURL)
			return err
		}),
	}
}

func getExchangeCommand() *cli.Command {
	return &cli.Command{
		Name:      "exchange",
		Usage:     "Exchange an authorization code for an access token",
		UsageText: "instagram exchange <code>",
		Action: withAuthSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			args, err := requireArgs(cmd, "code")
			if err != nil {
				return err
			}
			token, err := s.auth.ExchangeCode(ctx, args[0])
			if err != nil {
				return err
			}
			return printOutput(outWriter(cmd), token, cmd.String("format"))
		}),
	}
}

func getUserCommand() *cli.Command {
	return &cli.Command{
		Name:      "user",
		Usage:     "Show a user profile (default: the authenticated user)",
		UsageText: "instagram user [<id>]",
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			result, err := s.client.GetUser(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			return s.respond(cmd, result.Data)
		}),
	}
}

func getUserMediaCommand() *cli.Command {
	return &cli.Command{
		Name:      "user-media",
		Usage:     "List a user's recent media (default: the authenticated user)",
		UsageText: "instagram user-media [<id>] [--count N]",
		Flags:     []cli.Flag{countFlag()},
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			result, err := s.client.GetUserMedia(ctx, cmd.Args().First(), int(cmd.Int("count")))
			if err != nil {
				return err
			}
			return s.respond(cmd, result.Data)
		}),
	}
}

func getFollowsCommand() *cli.Command {
	return &cli.Command{
		Name:  "follows",
		Usage: "List the users the authenticated user follows",
		Flags: []cli.Flag{countFlag()},
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			result, err := s.client.GetUserFollows(ctx, int(cmd.Int("count")))
			if err != nil {
				return err
			}
			return s.respond(cmd, result.Data)
		}),
	}
}

func getFollowersCommand() *cli.Command {
	return &cli.Command{
		Name:  "followers",
		Usage: "List the users following the authenticated user",
		Flags: []cli.Flag{
			countFlag(),
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Follow pagination until every follower is listed",
			},
		},
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			count := int(cmd.Int("count"))
			if cmd.Bool("all") {
				users, err := s.client.NewFollowerIterator(ctx, count).Collect(0)
				if err != nil {
					return err
				}
				return s.respond(cmd, users)
			}

			result, err := s.client.GetUserFollower(ctx, count)
			if err != nil {
				return err
			}
			return s.respond(cmd, result.Data)
		}),
	}
}

func getMediaCommand() *cli.Command {
	return &cli.Command{
		Name:      "media",
		Usage:     "Show a media item",
		UsageText: "instagram media <id>",
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			args, err := requireArgs(cmd, "id")
			if err != nil {
				return err
			}
			result, err := s.client.GetMedia(ctx, args[0])
			if err != nil {
				return err
			}
			return s.respond(cmd, result.Data)
		}),
	}
}

func getShortcodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "shortcode",
		Usage:     "Show a media item by its permalink shortcode",
		UsageText: "instagram shortcode <code>",
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			args, err := requireArgs(cmd, "code")
			if err != nil {
				return err
			}
			result, err := s.client.GetMediaShort(ctx, args[0])
			if err != nil {
				return err
			}
			return s.respond(cmd, result.Data)
		}),
	}
}

func getTagCommand() *cli.Command {
	return &cli.Command{
		Name:      "tag",
		Usage:     "Show a tag and its media count",
		UsageText: "instagram tag <name>",
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			args, err := requireArgs(cmd, "name")
			if err != nil {
				return err
			}
			result, err := s.client.GetTag(ctx, args[0])
			if err != nil {
				return err
			}
			return s.respond(cmd, result.Data)
		}),
	}
}

func getTagMediaCommand() *cli.Command {
	return &cli.Command{
		Name:      "tag-media",
		Usage:     "List recently tagged media",
		UsageText: "instagram tag-media <name> [--count N]",
		Flags:     []cli.Flag{countFlag()},
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			args, err := requireArgs(cmd, "name")
			if err != nil {
				return err
			}
			result, err := s.client.GetTagMedia(ctx, args[0], int(cmd.Int("count")), "", "")
			if err != nil {
				return err
			}
			return s.respond(cmd, result.Data)
		}),
	}
}

func getSearchUsersCommand() *cli.Command {
	return &cli.Command{
		Name:      "search-users",
		Usage:     "Search users by name",
		UsageText: "instagram search-users <query> [--count N]",
		Flags:     []cli.Flag{countFlag()},
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			args, err := requireArgs(cmd, "query")
			if err != nil {
				return err
			}
			result, err := s.client.SearchUser(ctx, args[0], int(cmd.Int("count")))
			if err != nil {
				return err
			}
			return s.respond(cmd, result.Data)
		}),
	}
}

func getLocationCommand() *cli.Command {
	return &cli.Command{
		Name:      "location",
		Usage:     "Show a location",
		UsageText: "instagram location <id>",
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			args, err := requireArgs(cmd, "id")
			if err != nil {
				return err
			}
			result, err := s.client.GetLocation(ctx, args[0])
			if err != nil {
				return err
			}
			return s.respond(cmd, result.Data)
		}),
	}
}

func getRelationshipCommand() *cli.Command {
	return &cli.Command{
		Name:      "relationship",
		Usage:     "Follow, unfollow, approve or ignore a user",
		UsageText: "instagram relationship <action> <user-id>",
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			args, err := requireArgs(cmd, "action", "user-id")
			if err != nil {
				return err
			}
			result, err := s.client.ModifyRelationship(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return s.respond(cmd, result.Data)
		}),
	}
}

func getLikeCommand() *cli.Command {
	return &cli.Command{
		Name:      "like",
		Usage:     "Like a media item",
		UsageText: "instagram like <media-id>",
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			args, err := requireArgs(cmd, "media-id")
			if err != nil {
				return err
			}
			resp, err := s.client.LikeMedia(ctx, args[0])
			if err != nil {
				return err
			}
			return s.respond(cmd, resp.Meta)
		}),
	}
}

func getUnlikeCommand() *cli.Command {
	return &cli.Command{
		Name:      "unlike",
		Usage:     "Remove a like from a media item",
		UsageText: "instagram unlike <media-id>",
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			args, err := requireArgs(cmd, "media-id")
			if err != nil {
				return err
			}
			resp, err := s.client.DeleteLikedMedia(ctx, args[0])
			if err != nil {
				return err
			}
			return s.respond(cmd, resp.Meta)
		}),
	}
}

func getCommentCommand() *cli.Command {
	return &cli.Command{
		Name:      "comment",
		Usage:     "Comment on a media item",
		UsageText: "instagram comment <media-id> <text>",
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			args, err := requireArgs(cmd, "media-id", "text")
			if err != nil {
				return err
			}
			resp, err := s.client.AddMediaComment(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return s.respond(cmd, resp.Meta)
		}),
	}
}

func getOembedCommand() *cli.Command {
	return &cli.Command{
		Name:      "oembed",
		Usage:     "Show the oEmbed description of a permalink or shortcode",
		UsageText: "instagram oembed <url-or-shortcode>",
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			args, err := requireArgs(cmd, "url-or-shortcode")
			if err != nil {
				return err
			}
			oembed, err := s.client.GetOembed(ctx, args[0])
			if err != nil {
				return err
			}
			return printOutput(outWriter(cmd), oembed, cmd.String("format"))
		}),
	}
}
