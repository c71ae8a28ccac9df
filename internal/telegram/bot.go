package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-jobradar-automation/internal/jobs"
)

// Bot sends job cards and status lines to one Telegram chat. One Bot per
// configured channel; the delivery router decides which Bot gets a batch.
type Bot struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

// WithChat returns a Bot sharing the same API client but pointed at a
// different chat, for per-category routing without re-authenticating.
func (b *Bot) WithChat(chatID int64) *Bot {
	return &Bot{api: b.api, chatID: chatID}
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

func buildJobMessage(r jobs.Record) string {
	msgText := fmt.Sprintf("💼 *%s*\n", escapeMarkdown(r.Title))
	msgText += fmt.Sprintf("🏢 %s\n", escapeMarkdown(r.Company))
	if r.Salary != "" {
		msgText += fmt.Sprintf("💰 %s\n", escapeMarkdown(r.Salary))
	}
	msgText += fmt.Sprintf("📍 %s\n", escapeMarkdown(r.Location))
	if r.WorkModel != "" {
		msgText += fmt.Sprintf("🏠 %s\n", escapeMarkdown(r.WorkModel))
	}
	msgText += fmt.Sprintf("📅 %s\n", escapeMarkdown(r.PostedDate))
	if r.Description != "" {
		desc := r.Description
		//telegram rejects messages over 4096 chars, keep cards short
		if len(desc) > 300 {
			desc = desc[:300] + "..."
		}
		msgText += fmt.Sprintf("📄 %s\n", escapeMarkdown(desc))
	}
	msgText += fmt.Sprintf("🔖 Source: %s\n", escapeMarkdown(r.Source))
	return msgText
}

func (b *Bot) SendJob(r jobs.Record) error {
	msgText := buildJobMessage(r)

	//create inline keyboard
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 View Job", r.URL),
		),
	)

	msg := tgbotapi.NewMessage(b.chatID, msgText)
	msg.ParseMode = "MarkdownV2"
	msg.ReplyMarkup = keyboard

	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendStatus(message string) error {
	msg := tgbotapi.NewMessage(b.chatID, "ℹ️ "+message)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendError(errReq error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", errReq))
	_, err := b.api.Send(msg)
	return err
}
