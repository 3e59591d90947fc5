package translate

import (
	"fmt"
	"strings"

	"github.com/leonardotrapani/captrans/internal/language"
)

// BuildSystemPrompt generates the system prompt for subtitle translation.
func BuildSystemPrompt(sourceLang, targetLang string, glossary []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a subtitle translator. Translate the user's text from %s to %s.\n\n",
		languageName(sourceLang), languageName(targetLang))

	b.WriteString("Rules:\n")
	b.WriteString("- The text was read from a video frame by OCR and may contain recognition errors\n")
	b.WriteString("- Translate naturally, as a subtitle would read\n")
	b.WriteString("- Keep names and honorifics consistent\n")
	b.WriteString("- Output ONLY the translation, nothing else\n")
	b.WriteString("- If the input is nonsensical, return it as-is\n")

	if len(glossary) > 0 {
		fmt.Fprintf(&b, "\nGlossary (keep these terms consistent): %s\n", strings.Join(glossary, ", "))
	}

	return b.String()
}

func languageName(code string) string {
	if lang, ok := language.FromCode(code); ok {
		return lang.Name
	}
	return code
}
