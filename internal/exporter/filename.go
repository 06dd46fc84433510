package exporter

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"boqdesk/internal/model"
)

// ContentDisposition 下载头：ASCII 文件名兜底，filename* 携带 UTF-8 活动名
func ContentDisposition(event *model.Event) string {
	utf8Name := fmt.Sprintf("%s-tasks.xlsx", strings.TrimSpace(event.Name))
	if strings.TrimSpace(event.Name) == "" {
		utf8Name = fmt.Sprintf("%s-tasks.xlsx", event.ID)
	}
	fallback := fmt.Sprintf("%s-tasks.xlsx", asciiSlug(event.Name, event.ID))
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", fallback, url.PathEscape(utf8Name))
}

func asciiSlug(name, fallback string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "event-" + asciiSlug(fallback, "export")
	}
	return slug
}
