package classifier

import (
	"encoding/json"
	"regexp"
	"strings"

	"business_reviews/internal/domain"
)

var jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

type verdict struct {
	SafetyScore    *float64 `json:"safety_score"`
	SentimentScore *float64 `json:"sentiment_score"`
	Action         *string  `json:"action"`
}

// ParseClassification turns the model's reply text into a fully populated
// classification. Anything unreadable or absent falls back to the defaults,
// so a garbled reply lands on action "flag" and never on "allow".
func ParseClassification(content string) (domain.Classification, bool) {
	out := domain.DefaultClassification()

	v, ok := decodeVerdict(content)
	if !ok {
		return out, false
	}

	complete := true
	if v.SafetyScore != nil {
		out.SafetyScore = *v.SafetyScore
	} else {
		complete = false
	}
	if v.SentimentScore != nil {
		out.SentimentScore = *v.SentimentScore
	} else {
		complete = false
	}
	switch a := domain.Action(deref(v.Action)); a {
	case domain.ActionAllow, domain.ActionFlag, domain.ActionBlock:
		out.Action = a
	default:
		complete = false
	}
	return out, complete
}

// decodeVerdict accepts bare JSON or JSON wrapped in a markdown code fence.
func decodeVerdict(content string) (verdict, bool) {
	var v verdict
	content = strings.TrimSpace(content)
	if err := json.Unmarshal([]byte(content), &v); err == nil {
		return v, true
	}
	if m := jsonBlockRegex.FindStringSubmatch(content); len(m) >= 2 {
		v = verdict{}
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &v); err == nil {
			return v, true
		}
	}
	return verdict{}, false
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
