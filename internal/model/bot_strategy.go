package model

// Answer strategy constants
const (
	BotStrategyRandom = "random"
	BotStrategyAccept = "accept"
	BotStrategyReject = "reject"
)

// BotStrategyDisplayName returns a human-readable label for a strategy
func BotStrategyDisplayName(strategy string) string {
	switch strategy {
	case BotStrategyRandom:
		return "Random"
	case BotStrategyAccept:
		return "Always accept"
	case BotStrategyReject:
		return "Always reject"
	default:
		return strategy
	}
}

// ValidBotStrategies returns all valid answer strategy names
func ValidBotStrategies() []string {
	return []string{BotStrategyRandom, BotStrategyAccept, BotStrategyReject}
}
