package language

import "strings"

// Language is a source or target language understood by the recognizer and
// the translation engines.
type Language struct {
	Code       string // ISO 639-1 code (e.g., "ja", "ko", "en")
	Name       string // English name
	NativeName string
	Tesseract  string // traineddata name used by the OCR engine
}

// languages is the master list of supported languages
var languages = []Language{
	{Code: "ar", Name: "Arabic", NativeName: "العربية", Tesseract: "ara"},
	{Code: "zh", Name: "Chinese (Simplified)", NativeName: "简体中文", Tesseract: "chi_sim"},
	{Code: "zh-TW", Name: "Chinese (Traditional)", NativeName: "繁體中文", Tesseract: "chi_tra"},
	{Code: "cs", Name: "Czech", NativeName: "Čeština", Tesseract: "ces"},
	{Code: "da", Name: "Danish", NativeName: "Dansk", Tesseract: "dan"},
	{Code: "nl", Name: "Dutch", NativeName: "Nederlands", Tesseract: "nld"},
	{Code: "en", Name: "English", NativeName: "English", Tesseract: "eng"},
	{Code: "fi", Name: "Finnish", NativeName: "Suomi", Tesseract: "fin"},
	{Code: "fr", Name: "French", NativeName: "Français", Tesseract: "fra"},
	{Code: "de", Name: "German", NativeName: "Deutsch", Tesseract: "deu"},
	{Code: "el", Name: "Greek", NativeName: "Ελληνικά", Tesseract: "ell"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी", Tesseract: "hin"},
	{Code: "hu", Name: "Hungarian", NativeName: "Magyar", Tesseract: "hun"},
	{Code: "id", Name: "Indonesian", NativeName: "Bahasa Indonesia", Tesseract: "ind"},
	{Code: "it", Name: "Italian", NativeName: "Italiano", Tesseract: "ita"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語", Tesseract: "jpn"},
	{Code: "ko", Name: "Korean", NativeName: "한국어", Tesseract: "kor"},
	{Code: "no", Name: "Norwegian", NativeName: "Norsk", Tesseract: "nor"},
	{Code: "pl", Name: "Polish", NativeName: "Polski", Tesseract: "pol"},
	{Code: "pt", Name: "Portuguese", NativeName: "Português", Tesseract: "por"},
	{Code: "ro", Name: "Romanian", NativeName: "Română", Tesseract: "ron"},
	{Code: "ru", Name: "Russian", NativeName: "Русский", Tesseract: "rus"},
	{Code: "es", Name: "Spanish", NativeName: "Español", Tesseract: "spa"},
	{Code: "sv", Name: "Swedish", NativeName: "Svenska", Tesseract: "swe"},
	{Code: "th", Name: "Thai", NativeName: "ไทย", Tesseract: "tha"},
	{Code: "tr", Name: "Turkish", NativeName: "Türkçe", Tesseract: "tur"},
	{Code: "uk", Name: "Ukrainian", NativeName: "Українська", Tesseract: "ukr"},
	{Code: "vi", Name: "Vietnamese", NativeName: "Tiếng Việt", Tesseract: "vie"},
}

// codeIndex maps lower-cased language codes to their Language structs
var codeIndex map[string]Language

func init() {
	codeIndex = make(map[string]Language, len(languages))
	for _, lang := range languages {
		codeIndex[strings.ToLower(lang.Code)] = lang
	}
}

// FromCode looks up a language by code, case-insensitively.
func FromCode(code string) (Language, bool) {
	lang, ok := codeIndex[strings.ToLower(strings.TrimSpace(code))]
	return lang, ok
}

// List returns all supported languages
func List() []Language {
	result := make([]Language, len(languages))
	copy(result, languages)
	return result
}

// Codes returns all language codes
func Codes() []string {
	codes := make([]string, len(languages))
	for i, lang := range languages {
		codes[i] = lang.Code
	}
	return codes
}

func IsValidCode(code string) bool {
	_, ok := FromCode(code)
	return ok
}

// TesseractCode maps an ISO code to the OCR engine's language name. Unknown
// codes pass through unchanged so users can name traineddata directly.
func TesseractCode(code string) string {
	if lang, ok := FromCode(code); ok {
		return lang.Tesseract
	}
	return code
}

// Label formats a language for menus, e.g. "Japanese (日本語)".
func Label(code string) string {
	lang, ok := FromCode(code)
	if !ok {
		return code
	}
	if lang.NativeName == "" || lang.NativeName == lang.Name {
		return lang.Name
	}
	return lang.Name + " (" + lang.NativeName + ")"
}
