package bot

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// parsePhrase reports whether content starts with prefix as a whole word and
// returns what follows it, e.g. `repeat... "you can't catch me"` yields
// `you can't catch me`. The phrase is empty when nothing follows.
func parsePhrase(prefix, content string) (phrase string, ok bool) {
	content = strings.TrimSpace(content)
	if len(content) < len(prefix) || !strings.EqualFold(content[:len(prefix)], prefix) {
		return "", false
	}

	rest := content[len(prefix):]
	if r, _ := utf8.DecodeRuneInString(rest); unicode.IsLetter(r) || unicode.IsDigit(r) {
		return "", false
	}

	rest = strings.TrimLeft(rest, ".…:,")
	return trimQuotes(strings.TrimSpace(rest)), true
}

var quotePairs = [][2]string{
	{`"`, `"`},
	{"“", "”"},
	{"'", "'"},
	{"‘", "’"},
}

func trimQuotes(s string) string {
	for _, q := range quotePairs {
		if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			return strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
		}
	}
	return s
}

// contentWithMentionsReplaced replaces user mentions by user names. Mentions
// of selfID are removed.
func contentWithMentionsReplaced(m *discordgo.Message, selfID string) (content string) {
	content = m.Content

	for _, user := range m.Mentions {
		username := user.GlobalName
		if username == "" {
			username = user.Username
		}
		if user.ID == selfID {
			username = ""
		}
		content = strings.NewReplacer(
			"<@"+user.ID+">", username,
			"<@!"+user.ID+">", username,
		).Replace(content)
	}
	return
}

func mentions(m *discordgo.Message, userID string) bool {
	for _, user := range m.Mentions {
		if user.ID == userID {
			return true
		}
	}
	return false
}
