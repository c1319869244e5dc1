package telegramimpl

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestSendMessageToChannel(t *testing.T) {
	bot := &fakeSender{}
	tg := &TelegramImpl{bot: bot, channel: channelName("portrait_log"), logger: logger.NewNop()}

	require.NoError(t, tg.SendMessageToChannel("hello"))
	require.Len(t, bot.sent, 1)

	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	require.Equal(t, "@portrait_log", msg.ChannelUsername)
	require.Equal(t, "hello", msg.Text)

	bot.err = errors.New("flood")
	require.Error(t, tg.SendMessageToChannel("again"))
}

func TestChannelName(t *testing.T) {
	require.Equal(t, "@news", channelName("news"))
	require.Equal(t, "@news", channelName("@news"))
}
