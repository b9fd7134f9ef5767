package services

import (
	"context"
	"fmt"
	"strings"
)

// LocalGenerator answers without any network call. It is used in staging
// when no model provider is configured.
type LocalGenerator struct{}

func (LocalGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", upstreamError("local", err)
	}
	last := strings.TrimSpace(latestMessageFromPrompt(prompt))
	if last == "" {
		last = "your question"
	}
	b := &strings.Builder{}
	fmt.Fprintf(b, "Thanks for reaching out about: %s\n\n", truncate(last, 60))
	fmt.Fprintln(b, "To help you faster, could you share:")
	fmt.Fprintln(b, "- the product name or SKU you are looking at")
	fmt.Fprintln(b, "- the size and color you need")
	fmt.Fprintln(b, "- your order number, if this is about an existing order")
	fmt.Fprintln(b, "\nOnce I have those details I can check availability, shipping and returns for you.")
	return b.String(), nil
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
