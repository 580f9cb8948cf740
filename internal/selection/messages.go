package selection

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys in the cause catalog.
const (
	keyOverCount      = "error_over_count"
	keyImageOverCount = "error_image_over_count"
	keyVideoOverCount = "error_video_over_count"
	keyTypeConflict   = "error_type_conflict"
	keyFileType       = "error_file_type"
	keyMissingFile    = "error_missing_file"
)

var causeCatalog = buildCatalog()

// supportedLocales lists the catalog languages; the first is the fallback.
var supportedLocales = []language.Tag{language.English, language.SimplifiedChinese}

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	en := language.English
	must(b.Set(en, keyOverCount, plural.Selectf(1, "%d",
		plural.One, "You can only select up to %[1]d media file",
		plural.Other, "You can only select up to %[1]d media files")))
	must(b.Set(en, keyImageOverCount, plural.Selectf(1, "%d",
		plural.One, "You can only select up to %[1]d image",
		plural.Other, "You can only select up to %[1]d images")))
	must(b.Set(en, keyVideoOverCount, plural.Selectf(1, "%d",
		plural.One, "You can only select up to %[1]d video",
		plural.Other, "You can only select up to %[1]d videos")))
	must(b.SetString(en, keyTypeConflict, "Can't select images and videos at the same time"))
	must(b.SetString(en, keyFileType, "Unsupported file type"))
	must(b.SetString(en, keyMissingFile, "The selected file no longer exists"))

	zh := language.SimplifiedChinese
	must(b.SetString(zh, keyOverCount, "您最多只能选择 %d 个文件"))
	must(b.SetString(zh, keyImageOverCount, "您最多只能选择 %d 张图片"))
	must(b.SetString(zh, keyVideoOverCount, "您最多只能选择 %d 个视频"))
	must(b.SetString(zh, keyTypeConflict, "不能同时选择图片和视频"))
	must(b.SetString(zh, keyFileType, "不支持的文件类型"))
	must(b.SetString(zh, keyMissingFile, "所选文件不存在"))

	return b
}

// Messages renders the built-in cause texts for one locale.
type Messages struct {
	printer *message.Printer
}

// NewMessages returns the cause texts for tag, falling back to English.
func NewMessages(tag language.Tag) *Messages {
	return &Messages{printer: message.NewPrinter(tag, message.Catalog(causeCatalog))}
}

// MessagesFor parses a BCP 47 locale such as "en-US" or "zh-CN".
// Unparseable locales get English.
func MessagesFor(locale string) *Messages {
	tag, err := language.Parse(locale)
	if err != nil {
		return DefaultMessages()
	}
	_, idx, _ := language.NewMatcher(supportedLocales).Match(tag)
	return NewMessages(supportedLocales[idx])
}

// DefaultMessages returns the English cause texts.
func DefaultMessages() *Messages {
	return NewMessages(language.English)
}

func (m *Messages) OverCount(n int) string      { return m.printer.Sprintf(keyOverCount, n) }
func (m *Messages) ImageOverCount(n int) string { return m.printer.Sprintf(keyImageOverCount, n) }
func (m *Messages) VideoOverCount(n int) string { return m.printer.Sprintf(keyVideoOverCount, n) }
func (m *Messages) TypeConflict() string        { return m.printer.Sprintf(keyTypeConflict) }
func (m *Messages) UnsupportedFile() string     { return m.printer.Sprintf(keyFileType) }
func (m *Messages) MissingFile() string         { return m.printer.Sprintf(keyMissingFile) }
