package i18n

import "strings"

// Translator retrieves localized messages for issue codes, outcome statuses
// and repair stages. data provides optional values substituted for {name}
// placeholders (for example, "offset" or "fix").
type Translator interface {
	Message(code string, data map[string]string) string
}

var dictionaries = map[string]map[string]string{
	"en": {
		"missing_member_name":          "object member name missing or not double-quoted",
		"invalid_value":                "invalid value",
		"missing_comma_or_brace":       "missing comma or closing brace after an object member",
		"unexpected_control_character": "raw control character in string",
		"parse_error":                  "parse error",
		"duplicate_key":                "duplicate key",
		"too_deep":                     "nesting too deep",
		"too_large":                    "input too large",

		"recovered": "recovered",
		"unhandled": "unhandled",
		"exhausted": "gave up after too many attempts",

		"diagnosing":  "problematic character at offset {offset}: {window}",
		"dispatching": "unable to decode JSON: {kind}",
		"fixing":      "attempting fix {fix}",
		"reparsing":   "reparsing fixed text",
		"recursing":   "fixed text still invalid, retrying at depth {depth}",
		"success":     "successfully fixed JSON",
		"failing":     "unable to fix JSON: {status}",
	},
	"ja": {
		"missing_member_name":          "メンバー名がないか、ダブルクォートで囲まれていません",
		"invalid_value":                "値が不正です",
		"missing_comma_or_brace":       "メンバーの後にカンマまたは閉じ括弧がありません",
		"unexpected_control_character": "文字列に制御文字が含まれています",
		"parse_error":                  "解析エラー",
		"duplicate_key":                "キーが重複しています",
		"too_deep":                     "ネストが深すぎます",
		"too_large":                    "入力が大きすぎます",

		"recovered": "修復しました",
		"unhandled": "修復できません",
		"exhausted": "試行回数の上限に達しました",

		"diagnosing":  "オフセット {offset} の文字に問題があります: {window}",
		"dispatching": "JSON を解析できません: {kind}",
		"fixing":      "修正 {fix} を試行します",
		"reparsing":   "修正後のテキストを再解析します",
		"recursing":   "修正後も不正なため深さ {depth} で再試行します",
		"success":     "JSON を修復しました",
		"failing":     "JSON を修復できません: {status}",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
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
