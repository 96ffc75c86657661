package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/classeviva-tools/spaggiari/internal/config"
	"github.com/classeviva-tools/spaggiari/internal/export"
	"github.com/classeviva-tools/spaggiari/internal/mirror"
	"github.com/classeviva-tools/spaggiari/internal/portal"
	"github.com/classeviva-tools/spaggiari/internal/task"
	"github.com/classeviva-tools/spaggiari/internal/tokenstore"
)

func main() {
	// Set up zerolog to use pretty printing
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out: os.Stderr,
	})

	// Load the application configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load the configuration")
	}
	if cfg.IsEnvProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	client, err := portal.NewClient(cfg.BaseURL, cfg.RequestTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create the portal client")
	}
	store := tokenstore.NewFileStore(cfg.TokenFile)
	ctx := context.Background()

	switch os.Args[1] {
	case "login":
		runLogin(ctx, cfg, client, store, os.Args[2:])
	case "check-token":
		runCheckToken(ctx, cfg, client, store)
	case "list":
		runList(ctx, cfg, client, store, os.Args[2:])
	case "details":
		runDetails(ctx, cfg, client, store, os.Args[2:])
	case "download":
		runDownload(ctx, cfg, client, store, os.Args[2:])
	case "watch":
		runWatch(ctx, cfg, client, store, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: spaggiari <command> [options]

commands:
  login        log in to the portal and store the session token
                 [--username U] [--password P]
  check-token  probe whether the stored session token is still valid
  list         list the personal notice board
                 [--csv FILE]  additionally export the listing as CSV
  details      show the full content of a single notice
                 --code ID
  download     mirror the whole board (or one notice) to the download folder
                 [--code ID]
  watch        poll the board and report newly arrived notices
                 [--interval D]

credentials and paths come from SPAGGIARI_* environment variables or a .env file`)
}

// fail logs the error with a message distinguishing the failure kind and
// terminates with a non-zero exit status
func fail(err error) {
	event := log.Fatal().Err(err)
	kind, ok := portal.KindOf(err)
	if !ok {
		event.Msg("command failed")
		return
	}
	event = event.Str("kind", kind.String())
	switch kind {
	case portal.KindAuth:
		event.Msg("the portal refused the request, re-run 'login'")
	case portal.KindTransport:
		event.Msg("the portal is unreachable")
	case portal.KindParse:
		event.Msg("the portal answered in an unexpected shape")
	case portal.KindIO:
		event.Msg("a local file operation failed")
	default:
		event.Msg("command failed")
	}
}

// restore rebuilds a session from the stored token and verifies it
func restore(ctx context.Context, cfg *config.Config, client *portal.Client, store tokenstore.Store) *portal.Session {
	token, err := store.Load()
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			log.Fatal().Msg("no session token is stored, run 'login' first")
		}
		fail(err)
	}
	if cfg.Username == "" {
		log.Fatal().Msg("SPAGGIARI_USERNAME must be set to restore a session")
	}

	session, err := portal.RestoreSession(ctx, client, token, cfg.Username)
	if err != nil {
		fail(err)
	}
	return session
}

func runLogin(ctx context.Context, cfg *config.Config, client *portal.Client, store tokenstore.Store, args []string) {
	flags := flag.NewFlagSet("login", flag.ExitOnError)
	username := flags.String("username", cfg.Username, "portal username (codice fiscale)")
	password := flags.String("password", cfg.Password, "portal password")
	flags.Parse(args)

	session, err := portal.NewSession(ctx, client, *username, *password)
	if err != nil {
		fail(err)
	}
	if err := store.Save(session.Token()); err != nil {
		fail(&portal.Error{Kind: portal.KindIO, Op: "save token", Wrapping: err})
	}

	log.Info().Str("file", cfg.TokenFile).Msg("session token stored")
	if account := session.Account(); account != nil {
		fmt.Printf("logged in as %s %s (%s)\n", account.Name, account.Surname, account.Type)
	}
}

func runCheckToken(ctx context.Context, cfg *config.Config, client *portal.Client, store tokenstore.Store) {
	token, err := store.Load()
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			log.Fatal().Msg("no session token is stored, run 'login' first")
		}
		fail(err)
	}
	if cfg.Username == "" {
		log.Fatal().Msg("SPAGGIARI_USERNAME must be set to check the token")
	}

	session := portal.NewSessionFromToken(client, token, cfg.Username)
	valid, err := session.Valid(ctx)
	if err != nil {
		fail(err)
	}
	if !valid {
		log.Fatal().Msg("the stored session token is no longer valid, re-run 'login'")
	}
	fmt.Println("the stored session token is valid")
}

func runList(ctx context.Context, cfg *config.Config, client *portal.Client, store tokenstore.Store, args []string) {
	flags := flag.NewFlagSet("list", flag.ExitOnError)
	csvPath := flags.String("csv", "", "also export the listing to this CSV file")
	flags.Parse(args)

	session := restore(ctx, cfg, client, store)
	board, err := session.GetBoard(ctx)
	if err != nil {
		fail(err)
	}

	printNotices("read", board.Read)
	if board.New != nil {
		printNotices("new", board.New)
	}

	if *csvPath != "" {
		file, err := os.Create(*csvPath)
		if err != nil {
			fail(&portal.Error{Kind: portal.KindIO, Op: "export board", Wrapping: err})
		}
		defer file.Close()
		if err := export.WriteBoardCSV(file, board); err != nil {
			fail(&portal.Error{Kind: portal.KindIO, Op: "export board", Wrapping: err})
		}
		log.Info().Str("file", *csvPath).Msg("board exported")
	}
}

func printNotices(section string, notices []portal.Notice) {
	fmt.Printf("%s (%d):\n", section, len(notices))
	for _, notice := range notices {
		fmt.Printf("  [%d] %s (id %s, %s - %s)\n", notice.Code, notice.Title, notice.ID, notice.Start, notice.Stop)
	}
}

func runDetails(ctx context.Context, cfg *config.Config, client *portal.Client, store tokenstore.Store, args []string) {
	flags := flag.NewFlagSet("details", flag.ExitOnError)
	code := flags.String("code", "", "identifier of the notice, as printed by 'list'")
	flags.Parse(args)
	if *code == "" {
		flags.Usage()
		os.Exit(2)
	}

	session := restore(ctx, cfg, client, store)
	detail, err := session.GetNotice(ctx, *code)
	if err != nil {
		fail(err)
	}

	fmt.Println(detail.Text)
	fmt.Printf("attachments (%d):\n", len(detail.Attachments))
	for _, attachment := range detail.Attachments {
		fmt.Printf("  allegato %s (comunicazione %s)\n", attachment.FileID, attachment.NoticeID)
	}
}

func runDownload(ctx context.Context, cfg *config.Config, client *portal.Client, store tokenstore.Store, args []string) {
	flags := flag.NewFlagSet("download", flag.ExitOnError)
	code := flags.String("code", "", "only mirror the notice with this identifier")
	flags.Parse(args)

	session := restore(ctx, cfg, client, store)
	board, err := session.GetBoard(ctx)
	if err != nil {
		fail(err)
	}

	notices := append(append([]portal.Notice{}, board.Read...), board.New...)
	if *code != "" {
		notices = filterByID(notices, *code)
		if len(notices) == 0 {
			log.Fatal().Str("code", *code).Msg("no notice with this identifier is on the board")
		}
	}

	results, err := mirror.Notices(ctx, session, notices, cfg.DownloadDir)
	for _, result := range results {
		if result.Err == nil {
			fmt.Printf("mirrored notice %d into %s\n", result.Notice.Code, result.Dir)
		}
	}
	if err != nil {
		fail(err)
	}
}

func filterByID(notices []portal.Notice, id string) []portal.Notice {
	filtered := make([]portal.Notice, 0, 1)
	for _, notice := range notices {
		if notice.ID == id {
			filtered = append(filtered, notice)
		}
	}
	return filtered
}

func runWatch(ctx context.Context, cfg *config.Config, client *portal.Client, store tokenstore.Store, args []string) {
	flags := flag.NewFlagSet("watch", flag.ExitOnError)
	interval := flags.Duration("interval", 5*time.Minute, "board polling interval")
	flags.Parse(args)

	session := restore(ctx, cfg, client, store)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	seen := make(map[string]struct{})
	first := true
	poller := &task.Poller{
		Interval: *interval,
		Run: func(ctx context.Context) {
			board, err := session.GetBoard(ctx)
			if err != nil {
				log.Error().Err(err).Msg("board poll failed")
				return
			}
			for _, notice := range append(append([]portal.Notice{}, board.Read...), board.New...) {
				if _, ok := seen[notice.ID]; ok {
					continue
				}
				seen[notice.ID] = struct{}{}
				if !first {
					log.Info().Int("codice", notice.Code).Str("titolo", notice.Title).Msg("new notice on the board")
				}
			}
			first = false
		},
	}

	log.Info().Dur("interval", *interval).Msg("watching the board, press Ctrl+C to stop")
	poller.Loop(ctx)
}
