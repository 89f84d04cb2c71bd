package discord

import (
	"github.com/bwmarrin/discordgo"
)

// HandlerFunc handles one routed interaction.
type HandlerFunc func(s *discordgo.Session, i *discordgo.InteractionCreate)

// Router dispatches interactions to handlers by command name.
type Router struct {
	commandHandlers map[string]HandlerFunc
}

func NewRouter() *Router {
	return &Router{commandHandlers: make(map[string]HandlerFunc)}
}

// AddCommandHandler registers a handler for a slash command.
func (r *Router) AddCommandHandler(name string, handler HandlerFunc) {
	r.commandHandlers[name] = handler
}

// OnInteractionCreate is registered as the session's interaction handler.
func (r *Router) OnInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if handler, ok := r.commandHandlers[i.ApplicationCommandData().Name]; ok {
		handler(s, i)
	}
}
