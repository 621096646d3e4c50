package usecase

import (
	"fmt"
	"strings"

	"NewsCatcher/internal/domain"
	"NewsCatcher/pkg/textutil"
)

const (
	fallbackTitles     = 5
	fallbackTitleWidth = 50
)

// FallbackDigest lists funding highlights first, then the leading titles.
func FallbackDigest(group domain.LabelGroup) string {
	lines := make([]string, 0, len(group.Funding)+fallbackTitles)
	for _, evt := range group.Funding {
		lines = append(lines, "🔥 "+evt.Highlight())
	}

	for i, item := range group.Items {
		if i == fallbackTitles {
			break
		}
		title := textutil.TruncateWidth(strings.TrimSpace(item.Title), fallbackTitleWidth)
		source := ""
		if item.Source != "" {
			source = fmt.Sprintf("（%s）", item.Source)
		}
		lines = append(lines, "· "+title+source)
	}
	return strings.Join(lines, "\n")
}
