package service

import cmddomain "meitanbot/internal/services/command/domain"

func isCommand(text string) bool { return cmddomain.IsCommand(text) }
