// Package imap maintains an authenticated IMAP4rev1 session and loads
// parsed messages from a single mailbox.
package imap

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"time"

	goimap "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/rs/zerolog"

	"github.com/daisuke6106/dgmail/internal/checkpoint"
	"github.com/daisuke6106/dgmail/internal/log"
	"github.com/daisuke6106/dgmail/internal/message"
)

// Options configure a session.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	// Mailbox to select, defaults to INBOX.
	Mailbox string
	// Timeout bounds dialing and every subsequent command.
	Timeout time.Duration
	// TLSConfig overrides the default TLS settings.
	TLSConfig *tls.Config
	// PlainText dials without TLS. Only meant for local test servers.
	PlainText bool
}

// Session is an authenticated connection with one selected mailbox. It is
// not safe for concurrent use; IMAP allows one command at a time per
// connection.
type Session struct {
	c       *client.Client
	mailbox string
	log     zerolog.Logger
}

// Dial connects, authenticates, and selects the mailbox read-only.
func Dial(opts Options) (*Session, error) {
	mailbox := opts.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
	dialer := &net.Dialer{Timeout: opts.Timeout}

	var (
		c   *client.Client
		err error
	)
	if opts.PlainText {
		c, err = client.DialWithDialer(dialer, addr)
	} else {
		c, err = client.DialWithDialerTLS(dialer, addr, opts.TLSConfig)
	}
	if err != nil {
		return nil, wrapError("dial", ErrConnect, addr, err)
	}
	c.Timeout = opts.Timeout

	if err := c.Login(opts.Username, opts.Password); err != nil {
		_ = c.Logout()
		return nil, wrapError("login", ErrAuth, "username "+opts.Username, err)
	}
	if _, err := c.Select(mailbox, true); err != nil {
		_ = c.Logout()
		return nil, wrapError("select", ErrMailbox, mailbox, err)
	}

	logger := log.Derive(func(ctx *zerolog.Context) {
		*ctx = ctx.Str(log.FieldComponent, "imap").
			Str(log.FieldHost, opts.Host).
			Str(log.FieldMailbox, mailbox)
	})
	logger.Debug().Msg("mailbox selected")

	return &Session{c: c, mailbox: mailbox, log: logger}, nil
}

// Close logs out and drops the connection.
func (s *Session) Close() error {
	return s.c.Logout()
}

// Mailbox returns the name of the selected mailbox.
func (s *Session) Mailbox() string {
	return s.mailbox
}

// Latest returns the newest message, or nil when the mailbox is empty.
func (s *Session) Latest() (*message.Message, error) {
	msgs, err := s.LatestN(1)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[0], nil
}

// LatestN returns up to n of the newest messages, oldest first. A mailbox
// holding fewer than n messages yields all of them; an empty mailbox or a
// non-positive n yields an empty slice.
func (s *Session) LatestN(n int) ([]*message.Message, error) {
	if n <= 0 {
		return nil, nil
	}
	uids, err := s.searchUIDs(goimap.NewSearchCriteria())
	if err != nil {
		return nil, err
	}
	if len(uids) > n {
		uids = uids[len(uids)-n:]
	}
	return s.fetch(uids)
}

// Unseen returns every message not flagged \Seen, oldest first.
func (s *Session) Unseen() ([]*message.Message, error) {
	criteria := goimap.NewSearchCriteria()
	criteria.WithoutFlags = []string{goimap.SeenFlag}
	uids, err := s.searchUIDs(criteria)
	if err != nil {
		return nil, err
	}
	return s.fetch(uids)
}

// SearchSince returns messages that arrived after the checkpoint was
// taken. A nil or stale checkpoint (different mailbox or UIDVALIDITY)
// yields the whole mailbox.
func (s *Session) SearchSince(cp *checkpoint.Checkpoint) ([]*message.Message, error) {
	status := s.c.Mailbox()
	if !cp.Matches(s.mailbox, status.UidValidity) {
		s.log.Debug().Msg("checkpoint stale or absent, fetching whole mailbox")
		uids, err := s.searchUIDs(goimap.NewSearchCriteria())
		if err != nil {
			return nil, err
		}
		return s.fetch(uids)
	}

	set := new(goimap.SeqSet)
	set.AddRange(cp.LastUID+1, 0) // 0 means "*"
	criteria := goimap.NewSearchCriteria()
	criteria.Uid = set
	uids, err := s.searchUIDs(criteria)
	if err != nil {
		return nil, err
	}
	// A UID range n:* always matches the highest UID in the mailbox, even
	// when it is below n. Drop anything at or before the checkpoint.
	fresh := uids[:0]
	for _, uid := range uids {
		if uid > cp.LastUID {
			fresh = append(fresh, uid)
		}
	}
	return s.fetch(fresh)
}

// Checkpoint captures the current mailbox position for persisting.
func (s *Session) Checkpoint() (*checkpoint.Checkpoint, error) {
	status := s.c.Mailbox()
	uids, err := s.searchUIDs(goimap.NewSearchCriteria())
	if err != nil {
		return nil, err
	}
	var last uint32
	for _, uid := range uids {
		if uid > last {
			last = uid
		}
	}
	return &checkpoint.Checkpoint{
		Mailbox:     s.mailbox,
		UIDValidity: status.UidValidity,
		LastUID:     last,
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

func (s *Session) searchUIDs(criteria *goimap.SearchCriteria) ([]uint32, error) {
	uids, err := s.c.UidSearch(criteria)
	if err != nil {
		return nil, wrapError("search", ErrSearch, "", err)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	return uids, nil
}

// fetch loads and parses the given UIDs, returned in ascending UID order.
func (s *Session) fetch(uids []uint32) ([]*message.Message, error) {
	if len(uids) == 0 {
		return nil, nil
	}

	set := new(goimap.SeqSet)
	set.AddNum(uids...)
	section := &goimap.BodySectionName{}
	items := []goimap.FetchItem{goimap.FetchUid, section.FetchItem()}

	ch := make(chan *goimap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- s.c.UidFetch(set, items, ch)
	}()

	out := make([]*message.Message, 0, len(uids))
	for raw := range ch {
		body := raw.GetBody(section)
		if body == nil {
			continue
		}
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, wrapError("fetch", ErrFetch, fmt.Sprintf("uid %d", raw.Uid), err)
		}
		parsed, err := message.Parse(raw.Uid, data)
		if err != nil {
			return nil, wrapError("fetch", ErrParse, fmt.Sprintf("uid %d", raw.Uid), err)
		}
		out = append(out, parsed)
	}
	if err := <-done; err != nil {
		return nil, wrapError("fetch", ErrFetch, "", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	s.log.Debug().Int(log.FieldCount, len(out)).Msg("messages fetched")
	return out, nil
}
