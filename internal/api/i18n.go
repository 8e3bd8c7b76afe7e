package api

import (
	"embed"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed locales/active.*.toml
var localeFS embed.FS

const languageKey = "language"

// Translator 基于 go-i18n 的错误原因翻译
type Translator struct {
	bundle *i18n.Bundle
}

// NewTranslator 加载内置的 en、ru 语言资源,默认 en
func NewTranslator() (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, file := range []string{"locales/active.en.toml", "locales/active.ru.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return &Translator{bundle: bundle}, nil
}

// Translate 按请求语言翻译消息,找不到时回退到英文,最后返回消息 ID
func (t *Translator) Translate(c *gin.Context, id string) string {
	localizer := i18n.NewLocalizer(t.bundle, c.GetString(languageKey), language.English.String())
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return id
	}
	return msg
}

// I18nMiddleware 从 lang 参数或 Accept-Language 头确定语言
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.Query("lang")
		if lang == "" {
			lang = c.GetHeader("Accept-Language")
		}
		c.Set(languageKey, lang)
		c.Next()
	}
}
