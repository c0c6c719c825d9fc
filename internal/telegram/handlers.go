package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/predicare/voicebot/internal/consultation"
)

func (app *BotApp) handleVoice(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	log.Printf("[voice] start chat=%d file=%s", chatID, msg.Voice.FileID)

	audio, err := app.downloadFile(msg.Voice.FileID)
	if err != nil {
		log.Printf("[voice] download fail chat=%d err=%v", chatID, err)
		app.bot.Send(tgbotapi.NewMessage(chatID, "Could not download your voice message, please try again."))
		return
	}

	res, err := app.consult.Run(ctx, consultation.Input{
		Audio:     audio,
		AudioName: msg.Voice.FileID + ".ogg",
	})
	if err != nil {
		log.Printf("[voice] consultation fail chat=%d err=%v", chatID, err)
		app.bot.Send(tgbotapi.NewMessage(chatID, "Could not understand the recording, please try again."))
		return
	}

	app.reply(ctx, chatID, res)
	log.Printf("[voice] done chat=%d", chatID)
}

func (app *BotApp) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	// a photo alone is not enough: analysis needs a textual query
	if msg.Caption == "" {
		app.bot.Send(tgbotapi.NewMessage(chatID, "Please add a caption describing your symptoms to the photo."))
		return
	}

	p := msg.Photo[len(msg.Photo)-1]
	log.Printf("[photo] start chat=%d file=%s size=%dx%d", chatID, p.FileID, p.Width, p.Height)

	image, err := app.downloadFile(p.FileID)
	if err != nil {
		log.Printf("[photo] download fail chat=%d err=%v", chatID, err)
		app.bot.Send(tgbotapi.NewMessage(chatID, "Could not download the photo, please try again."))
		return
	}

	res, err := app.consult.Run(ctx, consultation.Input{
		Query: msg.Caption,
		Image: image,
	})
	if err != nil {
		log.Printf("[photo] consultation fail chat=%d err=%v", chatID, err)
		app.bot.Send(tgbotapi.NewMessage(chatID, "Consultation failed, please try again."))
		return
	}

	app.reply(ctx, chatID, res)
	log.Printf("[photo] done chat=%d", chatID)
}

func (app *BotApp) handleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	log.Printf("[text] start chat=%d", chatID)

	res, err := app.consult.Run(ctx, consultation.Input{Query: msg.Text})
	if err != nil {
		log.Printf("[text] consultation fail chat=%d err=%v", chatID, err)
		app.bot.Send(tgbotapi.NewMessage(chatID, "Please describe your symptoms in a message or voice note."))
		return
	}

	app.reply(ctx, chatID, res)
	log.Printf("[text] done chat=%d", chatID)
}

// reply sends the assessment text, then the voice note when synthesis
// produced one.
func (app *BotApp) reply(ctx context.Context, chatID int64, res consultation.Result) {
	if _, err := app.bot.Send(tgbotapi.NewMessage(chatID, res.Analysis)); err != nil {
		log.Printf("[reply] send text fail chat=%d err=%v", chatID, err)
	}

	if res.AudioURL == "" {
		return
	}

	rc, err := app.store.Open(ctx, path.Base(res.AudioURL))
	if err != nil {
		log.Printf("[reply] open artifact fail chat=%d err=%v", chatID, err)
		return
	}
	defer rc.Close()

	voice := tgbotapi.NewVoice(chatID, tgbotapi.FileReader{
		Name:   path.Base(res.AudioURL),
		Reader: rc,
	})
	if _, err := app.bot.Send(voice); err != nil {
		log.Printf("[reply] send voice fail chat=%d err=%v", chatID, err)
	}
}

func (app *BotApp) downloadFile(fileID string) ([]byte, error) {
	file, err := app.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	resp, err := http.Get(file.Link(app.bot.Token))
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: status %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}
