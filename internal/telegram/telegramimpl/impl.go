package telegramimpl

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/insta-daily-poster/internal/telegram"
	"github.com/orgball2608/insta-daily-poster/pkg/config"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramImpl struct {
	bot     sender
	channel string
	logger  logger.Logger
}

var _ telegram.Client = (*TelegramImpl)(nil)

func New(cfg *config.Config, log logger.Logger) (*TelegramImpl, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("Error creating bot", "Error", err)
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramImpl{
		bot:     bot,
		channel: channelName(cfg.Telegram.Channel),
		logger:  log.WithComponent("Telegram"),
	}, nil
}

func channelName(channel string) string {
	return "@" + strings.TrimPrefix(channel, "@")
}

// SendMessageToChannel sends a text message to the configured channel
func (tg *TelegramImpl) SendMessageToChannel(msg string) error {
	_, err := tg.bot.Send(tgbotapi.NewMessageToChannel(tg.channel, msg))
	if err != nil {
		tg.logger.Error("Error sending message to channel", "channel", tg.channel, "error", err)
		return err
	}

	tg.logger.Info("Message sent to channel", "channel", tg.channel)
	return nil
}
