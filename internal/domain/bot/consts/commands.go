// Package consts contains constants for the bot domain
package consts

// Command represents a bot command
type Command struct {
	Name        string
	Description string
	AdminOnly   bool
}

// Bot commands
var (
	CommandStart     = Command{Name: "start", Description: "Start the bot"}
	CommandHelp      = Command{Name: "help", Description: "Show help message"}
	CommandUsers     = Command{Name: "users", Description: "Show registered user count", AdminOnly: true}
	CommandBroadcast = Command{Name: "broadcast", Description: "Send a message to every user", AdminOnly: true}
	CommandCancel    = Command{Name: "cancel", Description: "Cancel a pending broadcast", AdminOnly: true}
)

// AllCommands contains all available bot commands
var AllCommands = []Command{
	CommandStart,
	CommandHelp,
	CommandUsers,
	CommandBroadcast,
	CommandCancel,
}

// Slash returns the command as typed by a user
func (c Command) Slash() string {
	return "/" + c.Name
}
