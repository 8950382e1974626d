package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gotd/td/bin"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/desertthunder/floodjoin/internal/models"
	"github.com/desertthunder/floodjoin/internal/shared"
)

// fakeInvoker answers the three requests TelegramService issues.
type fakeInvoker struct {
	resolved   *tg.ContactsResolvedPeer
	resolveErr error
	found      *tg.ContactsFound
	searchErr  error
	joinErr    error

	resolvedUsername string
	search           *tg.ContactsSearchRequest
	joined           *tg.InputChannel
}

func (f *fakeInvoker) Invoke(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
	switch req := input.(type) {
	case *tg.ContactsResolveUsernameRequest:
		f.resolvedUsername = req.Username
		if f.resolveErr != nil {
			return f.resolveErr
		}
		*output.(*tg.ContactsResolvedPeer) = *f.resolved
	case *tg.ContactsSearchRequest:
		f.search = req
		if f.searchErr != nil {
			return f.searchErr
		}
		*output.(*tg.ContactsFound) = *f.found
	case *tg.ChannelsJoinChannelRequest:
		f.joined, _ = req.Channel.(*tg.InputChannel)
		if f.joinErr != nil {
			return f.joinErr
		}
		output.(*tg.UpdatesBox).Updates = &tg.Updates{}
	default:
		return fmt.Errorf("unexpected request %T", input)
	}
	return nil
}

func TestTelegramService_Resolve(t *testing.T) {
	channel := &tg.Channel{ID: 10, AccessHash: 20, Title: "Bot Sorati", Username: "BotSorati"}

	tests := []struct {
		name       string
		identifier string
		invoker    *fakeInvoker
		wantUser   string
		wantRef    models.EntityRef
		wantErr    error
	}{
		{
			name:       "channel by bare username",
			identifier: "BotSorati",
			invoker: &fakeInvoker{resolved: &tg.ContactsResolvedPeer{
				Peer:  &tg.PeerChannel{ChannelID: 10},
				Chats: []tg.ChatClass{&tg.Chat{ID: 3, Title: "noise"}, channel},
			}},
			wantUser: "BotSorati",
			wantRef:  models.EntityRef{Kind: models.PeerChannel, ID: 10, AccessHash: 20},
		},
		{
			name:       "channel by t.me link",
			identifier: "https://t.me/BotSorati",
			invoker: &fakeInvoker{resolved: &tg.ContactsResolvedPeer{
				Peer:  &tg.PeerChannel{ChannelID: 10},
				Chats: []tg.ChatClass{channel},
			}},
			wantUser: "BotSorati",
			wantRef:  models.EntityRef{Kind: models.PeerChannel, ID: 10, AccessHash: 20},
		},
		{
			name:       "user peer",
			identifier: "@someone",
			invoker: &fakeInvoker{resolved: &tg.ContactsResolvedPeer{
				Peer:  &tg.PeerUser{UserID: 5},
				Users: []tg.UserClass{&tg.User{ID: 5, AccessHash: 6, Username: "someone", FirstName: "Some"}},
			}},
			wantUser: "someone",
			wantRef:  models.EntityRef{Kind: models.PeerUser, ID: 5, AccessHash: 6},
		},
		{
			name:       "peer missing from response",
			identifier: "BotSorati",
			invoker: &fakeInvoker{resolved: &tg.ContactsResolvedPeer{
				Peer: &tg.PeerChannel{ChannelID: 10},
			}},
			wantErr: shared.ErrLookupFailed,
		},
		{
			name:       "rpc error",
			identifier: "BotSorati",
			invoker:    &fakeInvoker{resolveErr: tgerr.New(400, "USERNAME_NOT_OCCUPIED")},
			wantErr:    shared.ErrLookupFailed,
		},
		{
			name:       "flood wait",
			identifier: "BotSorati",
			invoker:    &fakeInvoker{resolveErr: tgerr.New(420, "FLOOD_WAIT_30")},
			wantErr:    shared.ErrFloodWait,
		},
		{
			name:       "invite link is not resolvable",
			identifier: "https://t.me/+AbCdEf",
			invoker:    &fakeInvoker{},
			wantErr:    shared.ErrLookupFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewTelegramService(tt.invoker)

			got, err := svc.Resolve(context.Background(), tt.identifier)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.Username != tt.wantUser {
				t.Errorf("expected username %s, got %s", tt.wantUser, got.Username)
			}
			if got.Ref != tt.wantRef {
				t.Errorf("expected ref %+v, got %+v", tt.wantRef, got.Ref)
			}
			if tt.invoker.resolvedUsername != tt.wantUser {
				t.Errorf("expected %s sent upstream, got %s", tt.wantUser, tt.invoker.resolvedUsername)
			}
		})
	}
}

func TestTelegramService_Search(t *testing.T) {
	t.Run("maps chats in order", func(t *testing.T) {
		invoker := &fakeInvoker{found: &tg.ContactsFound{
			Chats: []tg.ChatClass{
				&tg.Channel{ID: 1, AccessHash: 11, Username: "first", Title: "First"},
				&tg.Chat{ID: 2, Title: "Basic group"},
				&tg.ChannelForbidden{ID: 3, AccessHash: 33, Title: "Banned"},
				&tg.ChatEmpty{ID: 4},
			},
		}}
		svc := NewTelegramService(invoker)

		got, err := svc.Search(context.Background(), "BotSorati", 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if invoker.search.Q != "BotSorati" || invoker.search.Limit != 10 {
			t.Errorf("unexpected request: %+v", invoker.search)
		}

		if len(got) != 3 {
			t.Fatalf("expected 3 candidates, got %d", len(got))
		}
		if got[0].Username != "first" || got[0].Ref.Kind != models.PeerChannel {
			t.Errorf("unexpected first candidate: %+v", got[0])
		}
		if got[1].Username != "" || got[1].Ref.Kind != models.PeerChat {
			t.Errorf("basic group should have no username: %+v", got[1])
		}
		if got[2].Ref.ID != 3 {
			t.Errorf("unexpected third candidate: %+v", got[2])
		}
	})

	t.Run("wraps rpc error", func(t *testing.T) {
		svc := NewTelegramService(&fakeInvoker{searchErr: errors.New("network down")})

		_, err := svc.Search(context.Background(), "x", 10)
		if !errors.Is(err, shared.ErrSearchFailed) {
			t.Errorf("expected ErrSearchFailed, got %v", err)
		}
	})
}

func TestTelegramService_Join(t *testing.T) {
	t.Run("joins channel", func(t *testing.T) {
		invoker := &fakeInvoker{}
		svc := NewTelegramService(invoker)

		ref := models.EntityRef{Kind: models.PeerChannel, ID: 10, AccessHash: 20}
		if err := svc.Join(context.Background(), ref); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if invoker.joined == nil || invoker.joined.ChannelID != 10 || invoker.joined.AccessHash != 20 {
			t.Errorf("unexpected join input: %+v", invoker.joined)
		}
	})

	t.Run("rejects non-channel", func(t *testing.T) {
		invoker := &fakeInvoker{}
		svc := NewTelegramService(invoker)

		err := svc.Join(context.Background(), models.EntityRef{Kind: models.PeerUser, ID: 5})
		if !errors.Is(err, shared.ErrNotAChannel) {
			t.Errorf("expected ErrNotAChannel, got %v", err)
		}
		if invoker.joined != nil {
			t.Error("join request should not be sent for a user")
		}
	})

	t.Run("wraps rpc error", func(t *testing.T) {
		svc := NewTelegramService(&fakeInvoker{joinErr: tgerr.New(400, "CHANNEL_PRIVATE")})

		err := svc.Join(context.Background(), models.EntityRef{Kind: models.PeerChannel, ID: 1})
		if !errors.Is(err, shared.ErrJoinFailed) {
			t.Errorf("expected ErrJoinFailed, got %v", err)
		}
	})
}

func TestParseUsername(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "BotSorati", want: "BotSorati"},
		{input: "@BotSorati", want: "BotSorati"},
		{input: "  @BotSorati ", want: "BotSorati"},
		{input: "t.me/BotSorati", want: "BotSorati"},
		{input: "https://t.me/BotSorati/", want: "BotSorati"},
		{input: "http://telegram.me/BotSorati", want: "BotSorati"},
		{input: "", wantErr: true},
		{input: "@", wantErr: true},
		{input: "https://t.me/+AbCdEf", wantErr: true},
		{input: "t.me/joinchat/AbCdEf", wantErr: true},
		{input: "t.me/BotSorati/42", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseUsername(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseUsername(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseUsername(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFloodWait(t *testing.T) {
	err := wrapRPCError(shared.ErrLookupFailed, tgerr.New(420, "FLOOD_WAIT_30"))

	d, ok := FloodWait(err)
	if !ok {
		t.Fatal("expected flood wait to be detected through wrapping")
	}
	if d != 30*time.Second {
		t.Errorf("expected 30s, got %s", d)
	}

	if _, ok := FloodWait(errors.New("other")); ok {
		t.Error("plain error is not a flood wait")
	}

	canceled := wrapRPCError(shared.ErrJoinFailed, context.Canceled)
	if !errors.Is(canceled, context.Canceled) || !errors.Is(canceled, shared.ErrJoinFailed) {
		t.Errorf("expected both kinds in chain, got %v", canceled)
	}
}
