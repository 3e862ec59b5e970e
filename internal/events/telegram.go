package events

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramPublisher announces scored opportunities at or above MinScore to one chat.
// Every other event is ignored.
type TelegramPublisher struct {
	bot      telegramSender
	chatID   int64
	MinScore decimal.Decimal
}

func NewTelegramPublisher(botToken string, chatID int64, minScore float64) (*TelegramPublisher, error) {
	bot, err := tgbotapi.NewBotAPI(strings.TrimSpace(botToken))
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return &TelegramPublisher{bot: bot, chatID: chatID, MinScore: decimal.NewFromFloat(minScore)}, nil
}

func (p *TelegramPublisher) Publish(_ context.Context, ev Event) error {
	if p == nil || p.bot == nil {
		return nil
	}
	if ev.Type != TypeScored || ev.Opportunity.Score.LessThan(p.MinScore) {
		return nil
	}
	msg := tgbotapi.NewMessage(p.chatID, formatTelegram(ev.Opportunity))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	if _, err := p.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func formatTelegram(s Summary) string {
	title := escapeMarkdownV2(s.Title)
	if s.URL != "" {
		title = fmt.Sprintf("[%s](%s)", title, s.URL)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*High\\-value opportunity* %s\n\n", escapeMarkdownV2(s.Score.StringFixed(2)))
	b.WriteString(title + "\n")
	if s.CompanyName != "" {
		fmt.Fprintf(&b, "Company: %s\n", escapeMarkdownV2(s.CompanyName))
	}
	fmt.Fprintf(&b, "Type: %s\n", escapeMarkdownV2(string(s.Type)))
	fmt.Fprintf(&b, "Source: %s\n", escapeMarkdownV2(string(s.Source)))
	if s.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", escapeMarkdownV2(string(s.Industry)))
	}
	return b.String()
}

var markdownV2Escaper = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(", ")", "\\)",
	"~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}", ".", "\\.", "!", "\\!",
)

func escapeMarkdownV2(text string) string {
	return markdownV2Escaper.Replace(text)
}
