// Package command maps free-form transcripts to teleprompter commands.
package command

import "strings"

// Command is a teleprompter control action.
type Command string

const (
	Play    Command = "play"
	Pause   Command = "pause"
	Faster  Command = "faster"
	Slower  Command = "slower"
	Restart Command = "restart"
	Next    Command = "next"
	None    Command = "none"
)

// multiWord lists multi-word synonyms matched as substrings, so "please
// pause the scroll" still works. The slice is ordered: a transcript
// containing two phrases always resolves to the earlier one, which a
// map range would not guarantee.
var multiWord = []struct {
	phrase string
	cmd    Command
}{
	{"speed up", Faster},
	{"too slow", Faster},
	{"slow down", Slower},
	{"too fast", Slower},
	{"start over", Restart},
	{"from the top", Restart},
	{"next song", Next},
}

// words maps single spoken words to commands. They only match whole
// tokens, otherwise "display" would trigger Play.
var words = map[string]Command{
	"play":      Play,
	"go":        Play,
	"start":     Play,
	"begin":     Play,
	"resume":    Play,
	"scroll":    Play,
	"pause":     Pause,
	"stop":      Pause,
	"hold":      Pause,
	"wait":      Pause,
	"freeze":    Pause,
	"faster":    Faster,
	"slower":    Slower,
	"restart":   Restart,
	"beginning": Restart,
	"next":      Next,
	"skip":      Next,
}

// Map resolves a transcript to a command. Multi-word synonyms take
// precedence over single words, so "slow down" never reads as "down".
func Map(transcript string) Command {
	normalized := normalize(transcript)
	if normalized == "" {
		return None
	}

	for _, mw := range multiWord {
		if strings.Contains(normalized, mw.phrase) {
			return mw.cmd
		}
	}

	for _, token := range strings.Fields(normalized) {
		if cmd, ok := words[token]; ok {
			return cmd
		}
	}
	return None
}

func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
