package handler

import (
	"groupchat/internal/app/chat"
	"groupchat/internal/configs"
)

type AppDeps struct {
	Hub    *chat.Hub
	Config *configs.AppConfig
}
