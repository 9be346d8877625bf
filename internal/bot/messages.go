package bot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/dedent"
)

// maxMessageLength is Telegram's limit for a single text message.
const maxMessageLength = 4096

const (
	MsgSendPhoto = "Send me a photo of your ingredients (JPG or PNG) and I'll suggest recipes."
	MsgRecipes   = "✅ %s ✅\n\n%s"
)

const MsgStart = `
	👨‍🍳 %s 🥦

	Send a photo of the ingredients you have and I'll list what I can see,
	then suggest 3 simple recipes you can make with them.`

func formatReplyText(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

// splitMessage splits text into chunks of at most limit bytes, preferring to
// break at newlines. Chunks never split a UTF-8 sequence.
func splitMessage(text string, limit int) []string {
	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
