// Package verify fact-checks a completed song suggestion with a second model
// call. Verification never fails the pipeline: any backend or parsing problem
// degrades to a negative verdict, which the orchestrator treats as a
// retryable outcome.
package verify

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/example/astrostream/internal/providers/llm"
)

// Verdict is the verifier's judgment on a completed suggestion.
type Verdict struct {
	Real        bool   `json:"is_real"`
	Explanation string `json:"explanation"`
}

const couldNotVerify = "could not verify"

const verifyPrompt = `You are a music fact checker. Determine whether the following text names a real, released song by a real artist.
Respond ONLY with JSON in this exact shape: {"is_real": true, "explanation": "..."} or {"is_real": false, "explanation": "..."}.

Text to check:
`

// Verifier runs the fact-check call.
type Verifier struct {
	Client llm.Client
	Log    *zap.Logger
}

func New(client llm.Client, log *zap.Logger) *Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Verifier{Client: client, Log: log}
}

// VerifySong asks the backend whether text names a real song. It makes one
// round trip at temperature 0 and never returns an error: an unreachable or
// incoherent fact checker yields Verdict{Real: false}.
func (v *Verifier) VerifySong(ctx context.Context, text string) Verdict {
	raw, err := v.Client.GenerateText(ctx, "", verifyPrompt+text, 0)
	if err != nil {
		v.Log.Warn("song verification call failed", zap.Error(err))
		return Verdict{Real: false, Explanation: couldNotVerify}
	}

	verdict, ok := parseVerdict(raw)
	if !ok {
		v.Log.Warn("song verification response unparseable", zap.String("response", raw))
		return Verdict{Real: false, Explanation: couldNotVerify}
	}
	return verdict
}

// parseVerdict extracts the verdict JSON from a model reply. The object may
// arrive bare, inside a fenced code block, or surrounded by prose.
func parseVerdict(raw string) (Verdict, bool) {
	candidate := strings.TrimSpace(raw)
	if fenced, ok := extractFenced(candidate); ok {
		candidate = fenced
	}
	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start < 0 || end <= start {
		return Verdict{}, false
	}
	var parsed struct {
		Real        *bool  `json:"is_real"`
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(candidate[start:end+1]), &parsed); err != nil || parsed.Real == nil {
		return Verdict{}, false
	}
	return Verdict{Real: *parsed.Real, Explanation: parsed.Explanation}, true
}

func extractFenced(s string) (string, bool) {
	open := strings.Index(s, "```")
	if open < 0 {
		return "", false
	}
	rest := s[open+3:]
	// skip an optional language tag on the opening fence
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		rest = rest[nl+1:]
	}
	close := strings.Index(rest, "```")
	if close < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:close]), true
}
