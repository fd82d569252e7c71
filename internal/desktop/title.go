package desktop

import (
	"fmt"
	"strings"
)

const BaseTitle = "Pushbridge"

// Title renders the window title with the badge count.
func Title(page string, badge int) string {
	title := BaseTitle
	if trimmed := strings.TrimSpace(page); trimmed != "" {
		title = fmt.Sprintf("%s | %s", BaseTitle, trimmed)
	}
	if badge > 0 {
		title = fmt.Sprintf("(%d) %s", badge, title)
	}
	return title
}
