package responder

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/vovakirdan/mailbridge/internal/core"
	"github.com/vovakirdan/mailbridge/internal/store"
)

// Rule replies with Reply when any keyword occurs in a message.
type Rule struct {
	Keywords []string
	Reply    string
}

// DefaultRules is the conversational rule set used by Keyword.
var DefaultRules = []Rule{
	{Keywords: []string{"hello", "hi", "hey"}, Reply: "Hello! How can I help you?"},
	{Keywords: []string{"how are you"}, Reply: "I'm doing well, thanks! Ready to work."},
	{Keywords: []string{"help"}, Reply: "I can help with:\n- Organizing folders\n- Cleaning up the desktop\n- Managing files\n- And much more!"},
	{Keywords: []string{"thanks", "thank you"}, Reply: "You're welcome! I'm here whenever you need help."},
	{Keywords: []string{"bye", "goodbye"}, Reply: "Goodbye! Reach out whenever you need help."},
}

// Keyword answers with the first matching rule from DefaultRules and falls
// back to an acknowledgement.
func Keyword() core.Responder {
	return KeywordRules(DefaultRules)
}

// KeywordRules answers with the first matching rule. Keywords match whole
// words or phrases, case-insensitively.
func KeywordRules(rules []Rule) core.Responder {
	return core.ResponderFunc(func(_ context.Context, msg store.Message) (string, error) {
		text := normalize(msg.Message)
		for _, rule := range rules {
			for _, kw := range rule.Keywords {
				if containsPhrase(text, normalize(kw)) {
					return rule.Reply, nil
				}
			}
		}
		return fmt.Sprintf("Received your message: '%s'. Connect your assistant here for real answers.", msg.Message), nil
	})
}

// normalize lower-cases s and collapses punctuation into single spaces.
func normalize(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return " " + strings.Join(fields, " ") + " "
}

func containsPhrase(text, phrase string) bool {
	if strings.TrimSpace(phrase) == "" {
		return false
	}
	return strings.Contains(text, phrase)
}
