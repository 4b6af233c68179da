package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"github.com/vkarpenko/ledgerbot/internal/engine"
	"github.com/vkarpenko/ledgerbot/internal/flows"
	"github.com/vkarpenko/ledgerbot/internal/ledger"
	"github.com/vkarpenko/ledgerbot/internal/report"
)

// sessionID keys conversation state by chat, matching Telegram's one
// conversation per chat model.
func sessionID(ctx *ext.Context) string {
	return strconv.FormatInt(ctx.EffectiveChat.Id, 10)
}

func (b *Bot) handleStart(api *gotgbot.Bot, ctx *ext.Context) error {
	_, err := ctx.EffectiveMessage.Reply(api, b.text.Replies.Start, &gotgbot.SendMessageOpts{
		ReplyMarkup: b.mainMenu(),
	})
	return err
}

// handleText routes every non-command message: into the active form if
// one is in progress, to the menus otherwise.
func (b *Bot) handleText(api *gotgbot.Bot, ctx *ext.Context) error {
	reqCtx := context.Background()

	result, err := b.engine.HandleInput(reqCtx, sessionID(ctx), ctx.EffectiveMessage.Text)
	if err != nil {
		if errors.Is(err, engine.ErrNoActiveForm) {
			return b.dispatchMenu(reqCtx, api, ctx)
		}
		return err
	}
	return b.sendResult(api, ctx, result)
}

// dispatchMenu matches the message against menu labels and either shows
// a menu, runs a report, or starts a form.
func (b *Bot) dispatchMenu(reqCtx context.Context, api *gotgbot.Bot, ctx *ext.Context) error {
	menu := b.text.Menu
	switch text := ctx.EffectiveMessage.Text; text {
	case menu.Main.Clients:
		return b.reply(api, ctx, b.text.Replies.ClientsSection, b.clientsMenu())
	case menu.Main.Orders:
		return b.reply(api, ctx, b.text.Replies.OrdersSection, b.ordersMenu())
	case menu.Main.Operations:
		return b.reply(api, ctx, b.text.Replies.OperationsSection, b.operationsMenu())
	case menu.Main.Stats:
		return b.sendStats(reqCtx, api, ctx)

	case menu.Clients.New:
		return b.startForm(reqCtx, api, ctx, flows.FormClient)
	case menu.Clients.List:
		return b.sendClients(reqCtx, api, ctx)

	case menu.Orders.New:
		return b.startForm(reqCtx, api, ctx, flows.FormOrder)
	case menu.Orders.List:
		return b.sendActiveOrders(reqCtx, api, ctx)
	case menu.Orders.Archive:
		return b.sendArchive(reqCtx, api, ctx)
	case menu.Orders.MarkPaid:
		return b.startForm(reqCtx, api, ctx, flows.FormMarkPaid)
	case menu.Orders.MarkCompleted:
		return b.startForm(reqCtx, api, ctx, flows.FormMarkCompleted)

	case menu.Operations.NewExpense:
		return b.startForm(reqCtx, api, ctx, flows.FormExpense)
	case menu.Operations.NewPayment:
		return b.startForm(reqCtx, api, ctx, flows.FormPayment)
	case menu.Operations.History:
		return b.sendHistory(reqCtx, api, ctx)

	case menu.Clients.Back, menu.Orders.Back, menu.Operations.Back:
		return b.reply(api, ctx, b.text.Replies.Start, b.mainMenu())

	default:
		return b.reply(api, ctx, b.text.Replies.UnknownInput, b.mainMenu())
	}
}

func (b *Bot) startForm(reqCtx context.Context, api *gotgbot.Bot, ctx *ext.Context, formName string) error {
	result, err := b.engine.StartForm(reqCtx, sessionID(ctx), formName)
	if err != nil {
		return err
	}
	return b.sendResult(api, ctx, result)
}

// sendResult renders a turn result as a reply.
func (b *Bot) sendResult(api *gotgbot.Bot, ctx *ext.Context, result engine.Result) error {
	switch result.Kind {
	case engine.ResultPrompt:
		text := result.Prompt.Text
		if result.Prompt.Err != nil {
			text = fmt.Sprintf("❌ %s\n\n%s",
				b.text.ValidationMessage(string(result.Prompt.Err.Code)), text)
		}
		return b.reply(api, ctx, text, b.promptKeyboard(result.Prompt))

	case engine.ResultCommitted:
		text := fmt.Sprintf(b.committedReply(result.Form), result.RecordID)
		return b.reply(api, ctx, text, b.parentMenu(result.Form))

	case engine.ResultCommitFailed:
		return b.reply(api, ctx, b.text.Replies.CommitFailed, b.parentMenu(result.Form))

	case engine.ResultCancelled:
		return b.reply(api, ctx, b.text.Replies.Cancelled, b.mainMenu())

	case engine.ResultBackToParent:
		return b.reply(api, ctx, b.text.Replies.Start, b.parentMenu(result.Form))

	default:
		return fmt.Errorf("bot: unhandled result kind %d", result.Kind)
	}
}

func (b *Bot) committedReply(formName string) string {
	r := b.text.Replies
	switch formName {
	case flows.FormClient:
		return r.ClientCreated
	case flows.FormOrder:
		return r.OrderCreated
	case flows.FormExpense:
		return r.ExpenseCreated
	case flows.FormPayment:
		return r.PaymentCreated
	case flows.FormMarkPaid:
		return r.OrderPaid
	case flows.FormMarkCompleted:
		return r.OrderCompleted
	default:
		return "Record #%d saved."
	}
}

func (b *Bot) sendClients(reqCtx context.Context, api *gotgbot.Bot, ctx *ext.Context) error {
	clients, err := b.led.ListClients(reqCtx)
	if err != nil {
		return err
	}
	return b.reply(api, ctx, report.Clients(clients), b.clientsMenu())
}

func (b *Bot) sendActiveOrders(reqCtx context.Context, api *gotgbot.Bot, ctx *ext.Context) error {
	unpaid, err := b.led.OrdersByStatus(reqCtx, ledger.StatusUnpaid)
	if err != nil {
		return err
	}
	paid, err := b.led.OrdersByStatus(reqCtx, ledger.StatusPaid)
	if err != nil {
		return err
	}
	return b.reply(api, ctx, report.ActiveOrders(unpaid, paid), b.ordersMenu())
}

func (b *Bot) sendArchive(reqCtx context.Context, api *gotgbot.Bot, ctx *ext.Context) error {
	completed, err := b.led.OrdersByStatus(reqCtx, ledger.StatusCompleted)
	if err != nil {
		return err
	}
	return b.reply(api, ctx, report.Archive(completed), b.ordersMenu())
}

// sendHistory reports income (orders whose payment was recorded, i.e.
// paid and completed) against expenses.
func (b *Bot) sendHistory(reqCtx context.Context, api *gotgbot.Bot, ctx *ext.Context) error {
	paid, err := b.led.OrdersByStatus(reqCtx, ledger.StatusPaid)
	if err != nil {
		return err
	}
	completed, err := b.led.OrdersByStatus(reqCtx, ledger.StatusCompleted)
	if err != nil {
		return err
	}
	expenses, err := b.led.ListExpenses(reqCtx)
	if err != nil {
		return err
	}
	income := append(paid, completed...)
	return b.reply(api, ctx, report.History(income, expenses), b.operationsMenu())
}

func (b *Bot) sendStats(reqCtx context.Context, api *gotgbot.Bot, ctx *ext.Context) error {
	stats, err := b.led.CollectStats(reqCtx, time.Now())
	if err != nil {
		return err
	}
	return b.reply(api, ctx, report.Stats(stats), b.mainMenu())
}

func (b *Bot) reply(api *gotgbot.Bot, ctx *ext.Context, text string, markup gotgbot.ReplyMarkup) error {
	_, err := ctx.EffectiveMessage.Reply(api, text, &gotgbot.SendMessageOpts{
		ReplyMarkup: markup,
	})
	return err
}
