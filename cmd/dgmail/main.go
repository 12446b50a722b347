package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/daisuke6106/dgmail/internal/address"
	"github.com/daisuke6106/dgmail/internal/checkpoint"
	"github.com/daisuke6106/dgmail/internal/config"
	"github.com/daisuke6106/dgmail/internal/imap"
	dglog "github.com/daisuke6106/dgmail/internal/log"
	"github.com/daisuke6106/dgmail/internal/message"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

const bodyPreviewRunes = 100

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	count := flag.Int("count", 1, "number of newest messages to fetch")
	unseen := flag.Bool("unseen", false, "fetch unseen messages instead of the newest")
	checkpointPath := flag.String("checkpoint", "", "checkpoint file: fetch only messages that arrived since, then update it")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	os.Exit(run(*configPath, *count, *unseen, *checkpointPath))
}

func run(configPath string, count int, unseen bool, checkpointPath string) int {
	dglog.Configure(dglog.Config{Level: os.Getenv(config.EnvLogLevel), Service: "dgmail"})
	logger := dglog.WithComponent("main")

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("cannot load configuration")
		return 1
	}
	if cfg.LogLevel != "" {
		dglog.SetLevel(cfg.LogLevel)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return 1
	}
	logger.Debug().Fields(cfg.Redacted()).Msg("configuration resolved")

	session, err := imap.Dial(imap.Options{
		Host:      cfg.Host,
		Port:      cfg.Port,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Mailbox:   cfg.Mailbox,
		Timeout:   cfg.Timeout,
		PlainText: cfg.Insecure,
	})
	if err != nil {
		logger.Error().Err(err).
			Str(dglog.FieldHost, cfg.Host).
			Int(dglog.FieldPort, cfg.Port).
			Msg("cannot open mailbox")
		return 1
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn().Err(err).Msg("logout failed")
		}
	}()

	if checkpointPath == "" {
		checkpointPath = cfg.Checkpoint
	}

	msgs, err := fetchMessages(session, count, unseen, checkpointPath, logger)
	if err != nil {
		logger.Error().Err(err).Msg("fetch failed")
		return 1
	}

	if len(msgs) == 0 {
		fmt.Println("no messages")
		return 0
	}
	for _, m := range msgs {
		fmt.Println(summarize(m))
	}
	return 0
}

func fetchMessages(session *imap.Session, count int, unseen bool, checkpointPath string, logger zerolog.Logger) ([]*message.Message, error) {
	switch {
	case checkpointPath != "":
		store := checkpoint.NewStore(checkpointPath)
		cp, err := store.Load()
		if err != nil {
			return nil, err
		}
		msgs, err := session.SearchSince(cp)
		if err != nil {
			return nil, err
		}
		next, err := session.Checkpoint()
		if err != nil {
			return nil, err
		}
		next = capCheckpoint(next, msgs)
		if err := store.Save(next); err != nil {
			return nil, err
		}
		logger.Debug().
			Str(dglog.FieldPath, checkpointPath).
			Uint32(dglog.FieldUID, next.LastUID).
			Msg("checkpoint updated")
		return msgs, nil
	case unseen:
		return session.Unseen()
	default:
		return session.LatestN(count)
	}
}

// capCheckpoint limits the recorded position to the newest fetched
// message. Mail that arrives between the since-search and the status read
// would otherwise be absorbed into the checkpoint without being printed;
// capping leaves it for the next run. The slice is in ascending UID order.
func capCheckpoint(next *checkpoint.Checkpoint, msgs []*message.Message) *checkpoint.Checkpoint {
	if len(msgs) > 0 {
		next.LastUID = msgs[len(msgs)-1].UID
	}
	return next
}

// summarize renders one message the way the CLI prints it: sender,
// recipients, subject, and the first 100 characters of the body.
func summarize(m *message.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", joinAddresses(m.From))
	fmt.Fprintf(&b, "To: %s\n", joinAddresses(m.To))
	fmt.Fprintf(&b, "Subject: %s\n", m.Subject)
	if m.Body == "" {
		b.WriteString("(no text body)")
		return b.String()
	}
	preview := []rune(m.Body)
	if len(preview) > bodyPreviewRunes {
		fmt.Fprintf(&b, "Body (first %d chars):\n%s...", bodyPreviewRunes, string(preview[:bodyPreviewRunes]))
	} else {
		fmt.Fprintf(&b, "Body:\n%s", m.Body)
	}
	return b.String()
}

func joinAddresses(addrs []address.Address) string {
	if len(addrs) == 0 {
		return "(none)"
	}
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
