package telegram

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/predicare/voicebot/internal/config"
	"github.com/predicare/voicebot/internal/consultation"
	"github.com/predicare/voicebot/internal/storage"
)

// BotApp is the Telegram presentation layer: a voice message or a photo
// with a caption runs the same consultation pipeline as the REST API.
type BotApp struct {
	bot     *tgbotapi.BotAPI
	consult *consultation.Service
	store   storage.ArtifactStore
}

func NewBotApp(cfg *config.Config, consult *consultation.Service, store storage.ArtifactStore) (*BotApp, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}

	return &BotApp{
		bot:     bot,
		consult: consult,
		store:   store,
	}, nil
}

func (app *BotApp) Run(ctx context.Context) {
	log.Printf("[telegram] authorized as @%s", app.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := app.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			app.bot.StopReceivingUpdates()
			return

		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}

			// each message is an independent consultation
			go app.dispatch(ctx, update.Message)
		}
	}
}

func (app *BotApp) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	switch {
	case msg.Voice != nil:
		app.handleVoice(ctx, msg)
	case len(msg.Photo) > 0:
		app.handlePhoto(ctx, msg)
	case msg.Text != "":
		app.handleText(ctx, msg)
	}
}
