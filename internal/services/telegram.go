// Telegram [Channels] implementation
//
// Requests are issued through a gotd [tg.Invoker], normally the connected [telegram.Client].
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/desertthunder/floodjoin/internal/models"
	"github.com/desertthunder/floodjoin/internal/shared"
)

var telegramHosts = []string{"t.me", "telegram.me", "telegram.dog"}

// TelegramService implements [Channels] over MTProto.
type TelegramService struct {
	invoker tg.Invoker
	api     *tg.Client
}

var _ Channels = (*TelegramService)(nil)

// NewTelegramService creates a TelegramService that sends requests through invoker.
func NewTelegramService(invoker tg.Invoker) *TelegramService {
	return &TelegramService{
		invoker: invoker,
		api:     tg.NewClient(invoker),
	}
}

// Name returns the service name.
func (s *TelegramService) Name() string {
	return "Telegram"
}

// Resolve looks up a public username with contacts.resolveUsername.
//
// Accepts "name", "@name", "t.me/name" and "https://t.me/name".
func (s *TelegramService) Resolve(ctx context.Context, identifier string) (*models.Candidate, error) {
	username, err := ParseUsername(identifier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLookupFailed, err)
	}

	var resolved tg.ContactsResolvedPeer
	if err := s.invoker.Invoke(ctx, &tg.ContactsResolveUsernameRequest{Username: username}, &resolved); err != nil {
		return nil, wrapRPCError(shared.ErrLookupFailed, err)
	}

	candidate, ok := peerCandidate(resolved.Peer, resolved.Chats, resolved.Users)
	if !ok {
		return nil, fmt.Errorf("%w: resolved peer for %q missing from response", shared.ErrLookupFailed, username)
	}

	return &candidate, nil
}

// Search runs contacts.search and maps the returned chats, in order, to candidates.
func (s *TelegramService) Search(ctx context.Context, query string, limit int) ([]models.Candidate, error) {
	found, err := s.api.ContactsSearch(ctx, &tg.ContactsSearchRequest{Q: query, Limit: limit})
	if err != nil {
		return nil, wrapRPCError(shared.ErrSearchFailed, err)
	}

	candidates := make([]models.Candidate, 0, len(found.Chats))
	for _, chat := range found.Chats {
		if c, ok := chatCandidate(chat); ok {
			candidates = append(candidates, c)
		}
	}

	return candidates, nil
}

// Join calls channels.joinChannel. Only channel refs (channels and supergroups) can be joined this way.
func (s *TelegramService) Join(ctx context.Context, ref models.EntityRef) error {
	if ref.Kind != models.PeerChannel {
		return fmt.Errorf("%w: %s", shared.ErrNotAChannel, ref)
	}

	input := &tg.InputChannel{ChannelID: ref.ID, AccessHash: ref.AccessHash}
	if _, err := s.api.ChannelsJoinChannel(ctx, input); err != nil {
		return wrapRPCError(shared.ErrJoinFailed, err)
	}

	return nil
}

// ParseUsername extracts a bare username from "@name" or a t.me link.
// Invite links have no username and are rejected.
func ParseUsername(identifier string) (string, error) {
	s := strings.TrimSpace(identifier)

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return "", fmt.Errorf("%w: %q", shared.ErrInvalidInput, identifier)
		}
		s = u.Host + u.Path
	}

	for _, host := range telegramHosts {
		if rest, ok := strings.CutPrefix(s, host+"/"); ok {
			s = rest
			break
		}
	}

	s = strings.TrimSuffix(shared.TrimAt(s), "/")

	switch {
	case s == "":
		return "", fmt.Errorf("%w: empty identifier", shared.ErrInvalidInput)
	case strings.HasPrefix(s, "+"), strings.HasPrefix(s, "joinchat/"):
		return "", fmt.Errorf("%w: %q is an invite link, not a username", shared.ErrInvalidInput, identifier)
	case strings.ContainsAny(s, "/ "):
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidInput, identifier)
	}

	return s, nil
}

// FloodWait reports the wait duration carried by a FLOOD_WAIT error anywhere in err's chain.
func FloodWait(err error) (time.Duration, bool) {
	return tgerr.AsFloodWait(err)
}

func wrapRPCError(kind, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", kind, err)
	}
	if d, ok := tgerr.AsFloodWait(err); ok {
		return fmt.Errorf("%w: %w for %s: %w", kind, shared.ErrFloodWait, d, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}

func peerCandidate(peer tg.PeerClass, chats []tg.ChatClass, users []tg.UserClass) (models.Candidate, bool) {
	switch p := peer.(type) {
	case *tg.PeerChannel:
		for _, chat := range chats {
			if c, ok := chatCandidate(chat); ok && c.Ref.Kind == models.PeerChannel && c.Ref.ID == p.ChannelID {
				return c, true
			}
		}
	case *tg.PeerChat:
		for _, chat := range chats {
			if c, ok := chatCandidate(chat); ok && c.Ref.Kind == models.PeerChat && c.Ref.ID == p.ChatID {
				return c, true
			}
		}
	case *tg.PeerUser:
		for _, user := range users {
			if u, ok := user.(*tg.User); ok && u.ID == p.UserID {
				return models.Candidate{
					Username: u.Username,
					Title:    strings.TrimSpace(u.FirstName + " " + u.LastName),
					Ref:      models.EntityRef{Kind: models.PeerUser, ID: u.ID, AccessHash: u.AccessHash},
				}, true
			}
		}
	}

	return models.Candidate{}, false
}

func chatCandidate(chat tg.ChatClass) (models.Candidate, bool) {
	switch c := chat.(type) {
	case *tg.Channel:
		return models.Candidate{
			Username: c.Username,
			Title:    c.Title,
			Ref:      models.EntityRef{Kind: models.PeerChannel, ID: c.ID, AccessHash: c.AccessHash},
		}, true
	case *tg.ChannelForbidden:
		return models.Candidate{
			Title: c.Title,
			Ref:   models.EntityRef{Kind: models.PeerChannel, ID: c.ID, AccessHash: c.AccessHash},
		}, true
	case *tg.Chat:
		return models.Candidate{
			Title: c.Title,
			Ref:   models.EntityRef{Kind: models.PeerChat, ID: c.ID},
		}, true
	default:
		return models.Candidate{}, false
	}
}
