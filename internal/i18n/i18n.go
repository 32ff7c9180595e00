// Package i18n 工具链输出的多语言文本。
//
// 第一次取文本时按环境变量确定语言；项目配置了 language 时由命令行覆盖。
// 文本表以消息键索引，当前语言缺少的条目回退到英文，英文也没有时返回键本身。
package i18n

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Language 语言代码，取区域设置中下划线之前的部分
type Language string

const (
	LangEnglish Language = "en"
	LangChinese Language = "zh"
)

// catalogues 各语言的文本表
var catalogues = map[Language]map[string]string{
	LangEnglish: enMessages,
	LangChinese: zhMessages,
}

// langEnv 检测语言时依次查看的环境变量
var langEnv = []string{"STARBYTES_LANG", "LC_ALL", "LC_MESSAGES", "LANG"}

var (
	mu      sync.RWMutex
	current Language
	chosen  bool
)

// Init 从环境变量确定语言。已经确定过时不做任何事。
func Init() {
	mu.Lock()
	defer mu.Unlock()
	if !chosen {
		current = detect(os.Getenv)
		chosen = true
	}
}

// SetLanguage 指定语言，之后不再检测环境
func SetLanguage(lang Language) {
	mu.Lock()
	current, chosen = lang, true
	mu.Unlock()
}

// GetLanguage 当前语言
func GetLanguage() Language {
	Init()
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// ParseLanguage 解析 "zh_CN.UTF-8"、"en-US"、"zh" 这样的值。
// 没有对应文本表时第二个返回值为 false。
func ParseLanguage(code string) (Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "_-.@"); i >= 0 {
		code = code[:i]
	}
	lang := Language(code)
	_, ok := catalogues[lang]
	return lang, ok
}

// T 取 key 在当前语言下的文本，有参数时按 fmt.Sprintf 格式化
func T(key string, args ...any) string {
	tmpl, ok := catalogues[GetLanguage()][key]
	if !ok {
		if tmpl, ok = catalogues[LangEnglish][key]; !ok {
			return key
		}
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// detect 取第一个能识别的环境变量，都不能识别时用英文。
// "C"、"POSIX" 这类值没有文本表，会被跳过。
func detect(getenv func(string) string) Language {
	for _, name := range langEnv {
		if lang, ok := ParseLanguage(getenv(name)); ok {
			return lang
		}
	}
	return LangEnglish
}
