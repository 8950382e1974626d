// Package services defines the [Channels] interface the join workflow depends on and implements it for Telegram.
//
// # Channels Interface
//
// [Channels] is the minimum the workflow needs from a connected client: direct lookup, directory search and join.
// The join engine in package tasks only ever sees this interface, so tests substitute hand-written fakes.
//
// # Telegram Implementation
//
// [TelegramService] issues MTProto requests through a gotd tg.Invoker:
//   - Resolve : contacts.resolveUsername
//   - Search : contacts.search (chats only, order preserved)
//   - Join : channels.joinChannel
//
// # Connection Lifecycle
//
// [TelegramConnector] builds a telegram.Client from [shared.TelegramConfig], runs it, checks that the session
// is authorized and passes a [TelegramService] to the callback. The connection is closed when the callback returns.
//
// # Error Handling
//
// Remote errors are wrapped with sentinels from the shared package:
//   - [shared.ErrLookupFailed] : Resolve failed
//   - [shared.ErrSearchFailed] : Search failed
//   - [shared.ErrJoinFailed] : Join failed
//   - [shared.ErrFloodWait] : the server asked to wait; see [FloodWait] for the duration
//   - [shared.ErrNotAChannel] : Join called with a user or basic group ref
package services
