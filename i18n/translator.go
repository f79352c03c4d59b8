package i18n

import "fmt"

// Translator retrieves localized messages for Issue codes.
// data provides optional details to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_schema":
			return "スキーマ定義が不正です"
		case "invalid_type":
			if data["expected"] != "" {
				return fmt.Sprintf("%s型が必要ですが%sが指定されました", data["expected"], data["got"])
			}
			return "型が不正です"
		case "invalid_enum":
			return "許可されていない値です"
		case "unknown_key":
			if data["key"] != "" {
				return fmt.Sprintf("未知のキーです: %s", data["key"])
			}
			return "未知のキーです"
		case "parse_error":
			if data["file"] != "" {
				return fmt.Sprintf("解析エラー: %s", data["file"])
			}
			return "解析エラー"
		}
	default: // "en"
		switch code {
		case "invalid_schema":
			return "invalid schema declaration"
		case "invalid_type":
			if data["expected"] != "" {
				return fmt.Sprintf("expected %s, got %s", data["expected"], data["got"])
			}
			return "invalid type"
		case "invalid_enum":
			if data["value"] != "" {
				return fmt.Sprintf("%s is not one of the allowed values", data["value"])
			}
			return "value not allowed"
		case "unknown_key":
			if data["key"] != "" {
				return fmt.Sprintf("unknown key %q", data["key"])
			}
			return "unknown key"
		case "parse_error":
			if data["file"] != "" {
				return fmt.Sprintf("cannot parse %s", data["file"])
			}
			return "parse error"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
