package templates

import (
	"strings"

	"golang.org/x/text/language"
)

// Labels are the localized strings that appear in generated documents.
type Labels struct {
	Cover    string
	Contents string
	Foreword string
	// Info is the heading above the foreword text.
	Info string
}

// FallbackLang is used for labels when a language has no built-in set.
const FallbackLang = "en"

var builtinLabels = map[string]Labels{
	"vi": {Cover: "Ảnh bìa", Contents: "Mục lục", Foreword: "Lời tựa", Info: "Lời tựa"},
	"zh": {Cover: "封面", Contents: "目录", Foreword: "前言", Info: "内容简介"},
	"en": {Cover: "Cover", Contents: "Contents", Foreword: "Foreword", Info: "Foreword"},
}

// BaseLanguage reduces a BCP 47 tag such as "zh-Hant" or "vi_VN" to its
// primary language subtag. Unparseable input is lower-cased and returned.
func BaseLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return strings.ToLower(lang)
	}
	base, _ := tag.Base()
	return base.String()
}

// LabelsFor returns the labels for lang. Non-empty fields of a matching
// override replace the built-in values.
func LabelsFor(lang string, overrides map[string]Labels) Labels {
	base := BaseLanguage(lang)
	l, ok := builtinLabels[base]
	if !ok {
		l = builtinLabels[FallbackLang]
	}
	o, ok := overrides[base]
	if !ok {
		o, ok = overrides[lang]
	}
	if !ok {
		return l
	}
	if o.Cover != "" {
		l.Cover = o.Cover
	}
	if o.Contents != "" {
		l.Contents = o.Contents
	}
	if o.Foreword != "" {
		l.Foreword = o.Foreword
	}
	if o.Info != "" {
		l.Info = o.Info
	}
	return l
}
