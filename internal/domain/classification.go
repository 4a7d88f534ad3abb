package domain

type Action string

const (
	ActionAllow Action = "allow"
	ActionFlag  Action = "flag"
	ActionBlock Action = "block"
)

// Classification is the normalized classifier verdict. It is never persisted.
type Classification struct {
	SafetyScore    float64
	SentimentScore float64
	Action         Action
}

// DefaultClassification is what an unreadable classifier reply collapses to.
func DefaultClassification() Classification {
	return Classification{SafetyScore: 0, SentimentScore: 0, Action: ActionFlag}
}
