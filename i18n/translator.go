package i18n

import "sync"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "tag").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			msg = "型が不正です"
		case "required":
			msg = "必須プロパティが不足しています"
		case "unknown_key":
			msg = "未知のキーです"
		case "too_short":
			msg = "短すぎます"
		case "too_long":
			msg = "長すぎます"
		case "invalid_enum":
			msg = "許可されていない値です"
		case "discriminator_missing":
			msg = "判別フィールドがありません"
		case "discriminator_unknown":
			msg = "未知の判別値です"
		case "parse_error":
			msg = "解析エラー"
		case "overflow":
			msg = "数値が範囲外です"
		case "duplicate_key":
			msg = "キーが重複しています"
		case "invalid_format":
			msg = "形式が不正です"
		case "construct_failed":
			msg = "オブジェクトを構築できません"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			msg = "invalid type"
		case "required":
			msg = "required property missing"
		case "unknown_key":
			msg = "unknown key"
		case "too_short":
			msg = "too short"
		case "too_long":
			msg = "too long"
		case "invalid_enum":
			msg = "value not allowed"
		case "discriminator_missing":
			msg = "discriminator missing"
		case "discriminator_unknown":
			msg = "unknown discriminator value"
		case "parse_error":
			msg = "parse error"
		case "overflow":
			msg = "number out of range"
		case "duplicate_key":
			msg = "duplicate key"
		case "invalid_format":
			msg = "invalid format"
		case "construct_failed":
			msg = "object construction failed"
		}
	}
	if msg == "" {
		return code
	}
	if exp, ok := data["expected"]; ok && exp != "" {
		msg += " (expected " + exp + ")"
	}
	return msg
}

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
