package middlewares

import (
	"hotelmaint/src/lib"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

const translatorKey = "trans"

// Locale picks the response language: the user's locale, then
// Accept-Language, then the default.
func Locale(ctx *gin.Context) {
	var candidates []string
	if s := CurrentSession(ctx); s != nil && s.Locale != "" {
		candidates = append(candidates, s.Locale)
	}
	candidates = append(candidates, ctx.GetHeader("Accept-Language"))
	ctx.Set(translatorKey, lib.Translator(candidates...))
	ctx.Next()
}

func Translator(ctx *gin.Context) ut.Translator {
	if v, ok := ctx.Get(translatorKey); ok {
		if trans, ok := v.(ut.Translator); ok {
			return trans
		}
	}
	return lib.Translator(ctx.GetHeader("Accept-Language"))
}
