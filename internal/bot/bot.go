// Package bot is the Telegram transport: it wires incoming messages
// into the form engine, dispatches menu presses, and renders turn
// results as replies with the appropriate keyboards.
package bot

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/message"

	"github.com/vkarpenko/ledgerbot/internal/catalog"
	"github.com/vkarpenko/ledgerbot/internal/engine"
	"github.com/vkarpenko/ledgerbot/internal/ledger"
)

// pollTimeout is the long-poll timeout for getUpdates.
const pollTimeout = 10 * time.Second

// Bot runs the Telegram front-end over the form engine and ledger.
type Bot struct {
	api     *gotgbot.Bot
	updater *ext.Updater
	engine  *engine.Engine
	led     *ledger.Ledger
	text    *catalog.Catalog
}

// New creates the bot and registers its handlers.
func New(token string, eng *engine.Engine, led *ledger.Ledger, text *catalog.Catalog) (*Bot, error) {
	api, err := gotgbot.NewBot(token, nil)
	if err != nil {
		return nil, fmt.Errorf("bot: creating client: %w", err)
	}

	b := &Bot{
		api:    api,
		engine: eng,
		led:    led,
		text:   text,
	}

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(_ *gotgbot.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			slog.Error("update handling failed",
				"update_id", ctx.Update.UpdateId,
				"error", err,
			)
			return ext.DispatcherActionNoop
		},
	})
	dispatcher.AddHandler(handlers.NewCommand("start", b.handleStart))
	dispatcher.AddHandler(handlers.NewMessage(message.Text, b.handleText))

	b.updater = ext.NewUpdater(dispatcher, nil)
	return b, nil
}

// Run starts long polling and blocks until the updater stops.
func (b *Bot) Run() error {
	err := b.updater.StartPolling(b.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &gotgbot.GetUpdatesOpts{
			Timeout: int64(pollTimeout.Seconds()),
			RequestOpts: &gotgbot.RequestOpts{
				Timeout: pollTimeout + 5*time.Second,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("bot: starting polling: %w", err)
	}

	slog.Info("bot started", "username", b.api.Username)
	b.updater.Idle()
	return nil
}

// Stop shuts the updater down.
func (b *Bot) Stop() error {
	if err := b.updater.Stop(); err != nil {
		return fmt.Errorf("bot: stopping updater: %w", err)
	}
	return nil
}
