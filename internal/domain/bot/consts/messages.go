package consts

// User-facing texts
const (
	MsgWelcome       = "👋 Send me a TeraBox link and I'll fetch the download and streaming links for you!"
	MsgInvalidLink   = "❌ Please send a valid TeraBox link."
	MsgFetching      = "⏳ Fetching links, please wait..."
	MsgNoLinks       = "❌ No links found."
	MsgResolveFailed = "❌ Failed to fetch links. Please try again later."
	MsgInternalError = "❌ An error occurred while processing your request."

	MsgJoinPrompt     = "🔒 To use this bot, you must join our channel first:\n\n👉 %s\n\n%s"
	MsgJoinRetryStart = "After joining, press /start."
	MsgJoinRetryLink  = "After joining, send your link again."
	MsgJoinButton     = "Join Channel"

	MsgNotAdmin        = "⛔ This command is available to the administrator only."
	MsgUserCount       = "👥 Registered users: %d"
	MsgBroadcastPrompt = "📝 Send the message to broadcast to all users, or /cancel to abort."
	MsgBroadcastEmpty  = "⚠️ Only text messages can be broadcast. Send a text message or /cancel."
	MsgBroadcastDone   = "📣 Broadcast sent to %d of %d users."
	MsgBroadcastCancel = "🚫 Broadcast cancelled."
	MsgNothingToCancel = "ℹ️ Nothing to cancel."

	MsgAuditNewUser = "🆕 New user: %s (<code>%d</code>)"
	MsgAuditResult  = "👤 %s (<code>%d</code>)\n🔗 <code>%s</code>\n\n%s"

	MsgHelpHeader = "📚 <b>Commands:</b>"
)
