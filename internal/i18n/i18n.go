// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

// package i18n provides the message catalogue for user facing output. It
// uses go-i18n to load the embedded YAML locale files.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

var (
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	lang      string
)

// Init loads every embedded locale and selects lang. Unknown languages fall
// back to English.
func Init(l string) {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			continue
		}
		_, _ = bundle.ParseMessageFileBytes(data, f.Name())
	}

	lang = l
	localizer = i18n.NewLocalizer(bundle, l, "en")
}

// GetLang returns the language passed to the last Init.
func GetLang() string {
	return lang
}

// AvailableLocales maps each embedded locale tag to its self-describing name.
func AvailableLocales() map[string]string {
	if bundle == nil {
		Init("en")
	}
	out := make(map[string]string)
	for _, tag := range bundle.LanguageTags() {
		name := display.Self.Name(tag)
		if name == "" {
			name = tag.String()
		}
		out[tag.String()] = name
	}
	return out
}

// T translates messageID and formats it with args fmt-style. A missing
// message yields the ID itself.
func T(messageID string, args ...any) string {
	if localizer == nil {
		Init("en")
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		msg = messageID
	}
	if len(args) == 0 || !strings.Contains(msg, "%") {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
