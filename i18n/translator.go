package i18n

import "sync/atomic"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		msg = jaMessages[code]
	default: // "en"
		msg = enMessages[code]
	}
	if msg == "" {
		return code
	}
	if k := data["name"]; k != "" {
		return msg + ": " + k
	}
	return msg
}

var enMessages = map[string]string{
	"duplicate_field":            "duplicate field name",
	"missing_required_field":     "required field missing",
	"field_type_mismatch":        "field type mismatch",
	"unexpected_fields":          "unexpected fields",
	"unexpected_metadata_key":    "unexpected metadata key",
	"metadata_validation_failed": "metadata validation failed",
	"missing_required_metadata":  "required metadata key missing",
	"metadata_codec_conflict":    "metadata key is both a value and a namespace",
	"invalid_version_format":     "invalid version format",
	"version_too_new":            "version too new",
	"unknown_unit":               "unknown unit",
	"invalid_value_format":       "invalid value format",
	"invalid_enum":               "value not in allowed set",
	"duplicate_declaration":      "duplicate declaration",
	"invalid_declaration":        "invalid declaration",
	"unknown_format":             "unknown format",
	"invalid_type":               "invalid type",
	"parse_error":                "parse error",
}

var jaMessages = map[string]string{
	"duplicate_field":            "フィールド名が重複しています",
	"missing_required_field":     "必須フィールドが不足しています",
	"field_type_mismatch":        "フィールドの型が一致しません",
	"unexpected_fields":          "未知のフィールドです",
	"unexpected_metadata_key":    "未知のメタデータキーです",
	"metadata_validation_failed": "メタデータの検証に失敗しました",
	"missing_required_metadata":  "必須メタデータキーが不足しています",
	"metadata_codec_conflict":    "メタデータキーが値と名前空間の両方になっています",
	"invalid_version_format":     "バージョン形式が不正です",
	"version_too_new":            "バージョンが新しすぎます",
	"unknown_unit":               "未知の単位です",
	"invalid_value_format":       "値の形式が不正です",
	"invalid_enum":               "許可されていない値です",
	"duplicate_declaration":      "宣言が重複しています",
	"invalid_declaration":        "宣言が不正です",
	"unknown_format":             "未知のフォーマットです",
	"invalid_type":               "型が不正です",
	"parse_error":                "解析エラー",
}

type holder struct{ tr Translator }

var current atomic.Pointer[holder]

func init() { current.Store(&holder{tr: dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	current.Store(&holder{tr: dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(&holder{tr: tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return current.Load().tr.Message(code, data)
}
