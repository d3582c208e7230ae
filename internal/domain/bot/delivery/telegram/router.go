package telegram

import (
	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/Conte777/linkbot/internal/domain/bot/consts"
)

// Router registers Telegram bot handlers
type Router struct {
	handlers   *Handlers
	dispatcher *Dispatcher
	logger     zerolog.Logger
}

// NewRouter creates new Telegram router
func NewRouter(handlers *Handlers, dispatcher *Dispatcher, logger zerolog.Logger) *Router {
	return &Router{
		handlers:   handlers,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterRoutes registers all command handlers on the bot
func (r *Router) RegisterRoutes(bot *tgbot.Bot) {
	routes := map[consts.Command]tgbot.HandlerFunc{
		consts.CommandStart:     r.handlers.HandleStart,
		consts.CommandHelp:      r.handlers.HandleHelp,
		consts.CommandUsers:     r.handlers.HandleUsers,
		consts.CommandBroadcast: r.handlers.HandleBroadcast,
		consts.CommandCancel:    r.handlers.HandleCancel,
	}

	for cmd, handler := range routes {
		bot.RegisterHandlerMatchFunc(matchCommand(cmd.Name), r.dispatcher.Wrap(handler))
	}

	bot.RegisterHandlerMatchFunc(isPlainText, r.dispatcher.Wrap(r.handlers.HandleText))

	r.logger.Info().Int("commands", len(routes)).Msg("All Telegram handlers registered successfully")
}

// matchCommand matches "/name" and "/name@botname", with or without arguments
func matchCommand(name string) tgbot.MatchFunc {
	return func(update *models.Update) bool {
		return update.Message != nil && commandName(update.Message) == name
	}
}
