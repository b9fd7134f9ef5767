package services

import (
	"fmt"
	"strconv"
	"strings"

	"ShopAssist/models"
)

// RenderTranscript writes messages one per line as "User: ..." or "AI: ...",
// in the order given.
func RenderTranscript(msgs []models.Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.Role.Label())
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}

const latestMessageMarker = "Now respond to the user's latest message: "

// BuildSupportPrompt embeds the transcript and the newest customer message
// into the storefront assistant instructions.
func BuildSupportPrompt(transcript, latest string) string {
	var b strings.Builder
	b.WriteString("You are a smart AI assistant helping customers on an e-commerce clothing platform.\n\n")
	b.WriteString("Context so far:\n")
	b.WriteString(transcript)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s%q\n\n", latestMessageMarker, latest)
	b.WriteString("Your tasks:\n")
	b.WriteString("- Ask clarifying questions if there is not enough information to help\n")
	b.WriteString("- If you have enough info, generate a helpful and relevant response\n")
	b.WriteString("- Keep the tone polite and clear\n")
	return b.String()
}

// latestMessageFromPrompt recovers the customer message embedded by
// BuildSupportPrompt. It returns "" for prompts built some other way.
func latestMessageFromPrompt(prompt string) string {
	i := strings.Index(prompt, latestMessageMarker)
	if i < 0 {
		return ""
	}
	line := prompt[i+len(latestMessageMarker):]
	if j := strings.IndexByte(line, '\n'); j >= 0 {
		line = line[:j]
	}
	if s, err := strconv.Unquote(line); err == nil {
		return s
	}
	return strings.Trim(line, `"`)
}
