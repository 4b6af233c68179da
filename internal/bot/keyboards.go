package bot

import (
	"github.com/PaulSonOfLars/gotgbot/v2"

	"github.com/vkarpenko/ledgerbot/internal/engine"
	"github.com/vkarpenko/ledgerbot/internal/flows"
)

func (b *Bot) mainMenu() gotgbot.ReplyKeyboardMarkup {
	m := b.text.Menu.Main
	return replyKeyboard([][]string{
		{m.Orders, m.Clients},
		{m.Operations, m.Stats},
	})
}

func (b *Bot) clientsMenu() gotgbot.ReplyKeyboardMarkup {
	m := b.text.Menu.Clients
	return replyKeyboard([][]string{
		{m.New, m.List},
		{m.Back},
	})
}

func (b *Bot) ordersMenu() gotgbot.ReplyKeyboardMarkup {
	m := b.text.Menu.Orders
	return replyKeyboard([][]string{
		{m.New, m.List},
		{m.MarkPaid, m.MarkCompleted},
		{m.Archive, m.Back},
	})
}

func (b *Bot) operationsMenu() gotgbot.ReplyKeyboardMarkup {
	m := b.text.Menu.Operations
	return replyKeyboard([][]string{
		{m.NewExpense, m.NewPayment},
		{m.History},
		{m.Back},
	})
}

// parentMenu returns the sub-menu a form was started from, so the
// conversation lands back where the user was.
func (b *Bot) parentMenu(formName string) gotgbot.ReplyKeyboardMarkup {
	switch formName {
	case flows.FormClient:
		return b.clientsMenu()
	case flows.FormOrder, flows.FormMarkPaid, flows.FormMarkCompleted:
		return b.ordersMenu()
	case flows.FormExpense, flows.FormPayment:
		return b.operationsMenu()
	default:
		return b.mainMenu()
	}
}

// promptKeyboard renders a field prompt's keyboard: one row per
// suggested choice, then a control row with the reserved tokens the
// field honors. Cancel is always available.
func (b *Bot) promptKeyboard(p *engine.Prompt) gotgbot.ReplyKeyboardMarkup {
	rows := make([][]string, 0, len(p.Choices)+1)
	for _, choice := range p.Choices {
		rows = append(rows, []string{choice})
	}

	var control []string
	if p.CanSkip {
		control = append(control, b.text.Tokens.Skip)
	}
	if p.CanBack {
		control = append(control, b.text.Tokens.Back)
	}
	control = append(control, b.text.Tokens.Cancel)
	rows = append(rows, control)

	return replyKeyboard(rows)
}

func replyKeyboard(rows [][]string) gotgbot.ReplyKeyboardMarkup {
	keyboard := make([][]gotgbot.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]gotgbot.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, gotgbot.KeyboardButton{Text: label})
		}
		keyboard = append(keyboard, buttons)
	}
	return gotgbot.ReplyKeyboardMarkup{
		Keyboard:       keyboard,
		ResizeKeyboard: true,
	}
}
