package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/raine/recipe-suggester/internal/llm"
	"github.com/raine/recipe-suggester/internal/recipe"
	"github.com/rs/zerolog/log"
)

// BotAPI defines the interface for Telegram bot API operations.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Suggester runs the two pipeline stages separately so progress can be
// reported between them.
type Suggester interface {
	IdentifyIngredients(ctx context.Context, img llm.Image) ([]string, llm.Usage, error)
	GenerateRecipes(ctx context.Context, ingredients []string) (string, llm.Usage, error)
	ModelName() string
}

// Bot answers photo messages with ingredient lists and recipe suggestions.
type Bot struct {
	tg        BotAPI
	suggester Suggester
}

// NewBot creates a new Bot instance.
func NewBot(tg BotAPI, suggester Suggester) *Bot {
	return &Bot{tg: tg, suggester: suggester}
}

// HandleUpdate handles a single update. It is safe to call concurrently;
// every photo is processed independently.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.Chat == nil {
		return
	}

	switch {
	case message.IsCommand():
		b.handleCommand(message)
	case len(message.Photo) > 0:
		// Telegram sends several sizes, largest last
		photo := message.Photo[len(message.Photo)-1]
		b.handleImage(ctx, message, photo.FileID, "")
	case message.Document != nil && isImageDocument(message.Document):
		b.handleImage(ctx, message, message.Document.FileID, message.Document.FileName)
	default:
		b.reply(message, MsgSendPhoto)
	}
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "start", "help":
		b.reply(message, formatReplyText(MsgStart, recipe.MsgTitle))
	default:
		b.reply(message, MsgSendPhoto)
	}
}

// handleImage runs the pipeline for one image. filename is empty for
// compressed photos, which Telegram always delivers as JPEG.
func (b *Bot) handleImage(ctx context.Context, message *tgbotapi.Message, fileID, filename string) {
	chatID := message.Chat.ID
	logger := log.With().Int64("chatID", chatID).Str("fileID", fileID).Logger()

	b.reply(message, recipe.MsgAnalyzing)
	b.typing(chatID)

	data, err := downloadFileID(ctx, b.tg.GetFileDirectURL, fileID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to download photo")
		b.replyNotice(message, err)
		return
	}

	var img llm.Image
	if filename != "" {
		img, err = recipe.NewUpload(filename, data)
	} else {
		img, err = recipe.DecodeImage(data)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("rejected image")
		b.replyNotice(message, err)
		return
	}

	ingredients, _, err := b.suggester.IdentifyIngredients(ctx, img)
	if err != nil {
		logger.Error().Err(err).Msg("ingredient identification failed")
		b.replyNotice(message, err)
		return
	}

	b.reply(message, fmt.Sprintf(recipe.MsgIdentified, recipe.JoinIngredients(ingredients)))
	b.reply(message, recipe.MsgGenerating)
	b.typing(chatID)

	recipes, _, err := b.suggester.GenerateRecipes(ctx, ingredients)
	if err != nil {
		logger.Error().Err(err).Msg("recipe generation failed")
		b.replyNotice(message, err)
		return
	}

	for _, chunk := range splitMessage(fmt.Sprintf(MsgRecipes, recipe.MsgRecipesHeading, recipes), maxMessageLength) {
		b.reply(message, chunk)
	}
}

func (b *Bot) replyNotice(message *tgbotapi.Message, err error) {
	notice := recipe.Describe(err, b.suggester.ModelName())
	text := notice.Message
	if notice.Hint != "" {
		text += "\n\n" + notice.Hint
	}
	prefix := "❌ "
	if notice.Level == recipe.LevelWarning {
		prefix = "⚠️ "
	}
	b.reply(message, prefix+text)
}

func (b *Bot) reply(message *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyToMessageID = message.MessageID
	if _, err := b.tg.Send(msg); err != nil {
		log.Error().Err(err).Int64("chatID", message.Chat.ID).Msg("failed to send message")
	}
}

func (b *Bot) typing(chatID int64) {
	if _, err := b.tg.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		log.Debug().Err(err).Msg("failed to send chat action")
	}
}

func isImageDocument(doc *tgbotapi.Document) bool {
	return strings.HasPrefix(doc.MimeType, "image/")
}
