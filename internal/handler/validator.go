package handler

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Trans 全局翻译器，InitTrans 之前为 nil
var Trans ut.Translator

// collectionPattern 集合名：字母开头，仅含字母数字下划线
var collectionPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// collectionMessages 自定义 collection 规则的提示
var collectionMessages = map[string]string{
	"zh": "{0}必须以字母开头且只含字母数字或下划线",
	"en": "{0} must start with a letter and contain only letters, digits or underscores",
}

// InitTrans 注册自定义校验规则并初始化翻译器
// 必须在注册路由前调用，DTO 中的 collection 规则依赖这里的注册
func InitTrans(locale string) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	// 报错字段使用 json/uri/form tag 名，与客户端传参一致
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "uri", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	if err := v.RegisterValidation("collection", func(fl validator.FieldLevel) bool {
		return collectionPattern.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}

	enT := en.New()
	uni := ut.New(enT, zh.New(), enT)
	trans, found := uni.GetTranslator(locale)
	if !found {
		return fmt.Errorf("uni.GetTranslator(%s) failed", locale)
	}

	var err error
	if locale == "zh" {
		err = zh_translations.RegisterDefaultTranslations(v, trans)
	} else {
		locale = "en"
		err = en_translations.RegisterDefaultTranslations(v, trans)
	}
	if err != nil {
		return err
	}

	msg := collectionMessages[locale]
	err = v.RegisterTranslation("collection", trans,
		func(t ut.Translator) error { return t.Add("collection", msg, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T("collection", fe.Field())
			return s
		},
	)
	if err != nil {
		return err
	}
	Trans = trans
	return nil
}

// RemoveTopStruct 去除提示信息中的结构体名前缀，如 "DocumentURI.collection" → "collection"
func RemoveTopStruct(fields map[string]string) map[string]string {
	res := make(map[string]string, len(fields))
	for field, err := range fields {
		res[field[strings.Index(field, ".")+1:]] = err
	}
	return res
}
