package scoring

import (
	"fmt"
	"strings"
)

// scoringSystemPrompt instructs the model to act as a performance
// marketer and reply with bare JSON the oracle can parse.
const scoringSystemPrompt = `You are a senior performance marketing analyst.
Score the ad creative combination you are given on five dimensions, each 0-100:

- hook: the creative's ability to interrupt scrolling (motion, contrast, curiosity)
- alignment: thematic consistency between the copy and the visual
- fit: how well the targeting parameters narrow the audience for this message
- clarity: whether the call-to-action contains a clear, recognizable action
- match: consistency between the message and the audience's awareness stage

Respond with a single JSON object and nothing else:
{"hook": <0-100>, "alignment": <0-100>, "fit": <0-100>, "clarity": <0-100>, "match": <0-100>}`

// buildScoringPrompt renders one combination into the user prompt.
func buildScoringPrompt(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Creative asset: %s (%s)\n", in.Asset.Label, in.Asset.Type)
	if len(in.Asset.Themes) > 0 {
		fmt.Fprintf(&b, "Asset themes: %s\n", strings.Join(in.Asset.Themes, ", "))
	}
	fmt.Fprintf(&b, "Headline: %s\n", in.Headline.Text)
	fmt.Fprintf(&b, "Body: %s\n", in.Body.Text)
	if in.Description != nil {
		fmt.Fprintf(&b, "Description: %s\n", in.Description.Text)
	}
	fmt.Fprintf(&b, "Call to action: %s\n", in.CTA)

	t := in.Targeting
	fmt.Fprintf(&b, "\nTargeting: ages %d-%d", t.AgeMin, t.AgeMax)
	if len(t.Interests) > 0 {
		fmt.Fprintf(&b, ", interests: %s", strings.Join(t.Interests, ", "))
	}
	if len(t.Locations) > 0 {
		fmt.Fprintf(&b, ", locations: %s", strings.Join(t.Locations, ", "))
	}
	if t.Awareness != "" {
		fmt.Fprintf(&b, ", awareness stage: %s", t.Awareness)
	}
	b.WriteString("\n")

	return b.String()
}

// extractJSON strips markdown code fences the model sometimes wraps
// around its reply and returns the innermost JSON object.
func extractJSON(reply string) string {
	reply = strings.TrimSpace(reply)
	if strings.HasPrefix(reply, "```") {
		reply = strings.TrimPrefix(reply, "```json")
		reply = strings.TrimPrefix(reply, "```")
		reply = strings.TrimSuffix(strings.TrimSpace(reply), "```")
		reply = strings.TrimSpace(reply)
	}
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start >= 0 && end > start {
		return reply[start : end+1]
	}
	return reply
}
