package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rebalance_bot/internal/broker"
)

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// Telegram is a passive notifier plus two pull commands: /positions and
// /cash, answered from the live broker.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
	b      broker.Broker
}

func NewTelegram(token string, chatID int64, b broker.Broker) (*Telegram, error) {
	bot, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		b:      b,
	}, nil
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	_, _ = t.bot.Send(tgbot.NewMessage(t.chatID, msg))
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

func (t *Telegram) handlePositions(ctx context.Context) {
	positions, err := t.b.ListPositions(ctx)
	if err != nil {
		t.Sendf("failed to fetch positions: %v", err)
		return
	}
	if len(positions) == 0 {
		t.Send("no open positions")
		return
	}

	var b strings.Builder
	b.WriteString("open positions:\n")
	for _, p := range positions {
		fmt.Fprintf(&b, "- %s qty=%v\n", p.Symbol, p.Qty)
	}
	t.Send(b.String())
}

func (t *Telegram) handleCash(ctx context.Context) {
	acct, err := t.b.GetAccount(ctx)
	if err != nil {
		t.Sendf("failed to fetch account: %v", err)
		return
	}
	t.Sendf("cash: %.2f", acct.Cash)
}

// Start: long-polling for commands.
func (t *Telegram) Start(ctx context.Context) error {
	if t == nil || t.bot == nil {
		return nil
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				if upd.Message != nil && upd.Message.Chat != nil &&
					upd.Message.Chat.ID == t.chatID && upd.Message.IsCommand() {

					switch upd.Message.Command() {
					case "positions":
						go t.handlePositions(ctx)
					case "cash":
						go t.handleCash(ctx)
					}
				}
			}
		}
	}()
	return nil
}

func (t *Telegram) Stop() {}

// Stdout is the fallback when Telegram is not configured.
type Stdout struct{}

func NewStdout() *Stdout                           { return &Stdout{} }
func (s *Stdout) Send(msg string)                  { log.Println(msg) }
func (s *Stdout) Sendf(format string, args ...any) { log.Printf(format, args...) }
