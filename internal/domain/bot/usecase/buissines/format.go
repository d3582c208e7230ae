package buissines

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Conte777/linkbot/internal/domain/bot/consts"
	"github.com/Conte777/linkbot/internal/domain/bot/entities"
)

// maxDiagnosticLen keeps the admin diagnostic well under the 4096-char message limit
const maxDiagnosticLen = 3000

// FormatReply renders a successful resolution as HTML. ephemeral is false for
// the "no links found" reply, which carries no deletion notice.
func FormatReply(res *entities.ResolutionResult, deleteAfter time.Duration) (text string, ephemeral bool) {
	if res.Empty() {
		return consts.MsgNoLinks, false
	}

	var sections []string
	if res.DownloadLink != "" {
		sections = append(sections, "🔗 <b>Download Link:</b>\n<code>"+html.EscapeString(res.DownloadLink)+"</code>")
	}
	if res.StreamingLink != "" {
		sections = append(sections, "▶️ <b>Online Streaming:</b>\n<code>"+html.EscapeString(res.StreamingLink)+"</code>")
	}
	sections = append(sections, DeletionNotice(deleteAfter))

	return strings.Join(sections, "\n\n"), true
}

// DeletionNotice tells the user when the reply disappears
func DeletionNotice(deleteAfter time.Duration) string {
	minutes := int(deleteAfter / time.Minute)
	if minutes == 1 {
		return "⏳ This message will be deleted in 1 minute."
	}
	return fmt.Sprintf("⏳ This message will be deleted in %d minutes.", minutes)
}

// FormatFailure renders a failed resolution. Only the administrator sees
// the raw diagnostic.
func FormatFailure(res *entities.ResolutionResult, admin bool) string {
	if !admin {
		return consts.MsgResolveFailed
	}

	diag := res.Diagnostic()
	if runes := []rune(diag); len(runes) > maxDiagnosticLen {
		diag = string(runes[:maxDiagnosticLen]) + "…"
	}
	return consts.MsgResolveFailed + "\n\n<pre>" + html.EscapeString(diag) + "</pre>"
}
