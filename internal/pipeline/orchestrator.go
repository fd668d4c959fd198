package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/astrostream/internal/prompt"
	"github.com/example/astrostream/internal/verify"
)

// DefaultMaxAttempts bounds the generate-then-verify loop.
const DefaultMaxAttempts = 3

// Generator produces streamed text for one attempt. Exactly one backend call
// per invocation; a mid-stream failure surfaces as the returned error.
type Generator interface {
	GenerateStream(ctx context.Context, system, userPrompt string, temperature float64, onDelta func(chunk string) error) error
}

// SongVerifier judges a completed suggestion. It never returns an error; an
// unreachable fact checker shows up as a negative verdict.
type SongVerifier interface {
	VerifySong(ctx context.Context, text string) verify.Verdict
}

// GenerationRequest is the immutable input to one pipeline run.
type GenerationRequest struct {
	SystemInstruction string
	BasePrompt        string
	Temperature       float64
	MaxAttempts       int
}

// Orchestrator drives the attempt loop: stream a suggestion, verify the
// assembled text, retry with a corrected prompt until verified or exhausted.
// It holds no per-request state between runs; concurrent Run calls are
// independent.
type Orchestrator struct {
	Generator Generator
	Verifier  SongVerifier
	Log       *zap.Logger
}

// phase is the orchestrator's position within one attempt.
type phase int

const (
	phaseGenerating phase = iota
	phaseVerifying
	phaseDeciding
	phaseDone
)

// errSinkClosed marks a Send failure so it is never mistaken for a backend
// fault. Once the subscriber is gone there is nobody to report to; the run
// just stops.
var errSinkClosed = errors.New("event sink closed")

// Run executes the pipeline and emits events on sink. Every run that still
// has a live subscriber ends with a terminal event (verified or error)
// followed by done. Content failures (unverifiable suggestions, empty
// generations) drive the retry loop; a generation transport failure is fatal
// to the whole request.
func (o *Orchestrator) Run(ctx context.Context, req GenerationRequest, sink EventSink) {
	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	log := o.Log
	if log == nil {
		log = zap.NewNop()
	}

	var (
		st      = phaseGenerating
		attempt = 0
		text    string
		real    bool
	)
	for {
		switch st {
		case phaseGenerating:
			if ctx.Err() != nil {
				return
			}
			userPrompt := req.BasePrompt
			if attempt == 0 {
				if sink.Send(AttemptEvent{Attempt: 1}) != nil {
					return
				}
			} else {
				userPrompt = prompt.BuildRetry(req.BasePrompt, attempt)
				msg := fmt.Sprintf("That one didn't check out, trying again (attempt %d)... 🔄", attempt+1)
				if sink.Send(RetryEvent{Content: msg, Attempt: attempt + 1}) != nil {
					return
				}
			}

			var assembled strings.Builder
			err := o.Generator.GenerateStream(ctx, req.SystemInstruction, userPrompt, req.Temperature, func(chunk string) error {
				if chunk == "" {
					return nil
				}
				assembled.WriteString(chunk)
				if serr := sink.Send(ChunkEvent{Content: chunk}); serr != nil {
					return fmt.Errorf("%w: %v", errSinkClosed, serr)
				}
				return nil
			})
			if err != nil {
				if errors.Is(err, errSinkClosed) || ctx.Err() != nil {
					return
				}
				log.Error("generation stream failed", zap.Int("attempt", attempt+1), zap.Error(err))
				_ = sink.Send(ErrorEvent{Message: err.Error()})
				_ = sink.Send(DoneEvent{})
				return
			}

			text = assembled.String()
			if text == "" {
				// Nothing was generated, so there is nothing to verify.
				real = false
				st = phaseDeciding
			} else {
				st = phaseVerifying
			}

		case phaseVerifying:
			if sink.Send(VerifyingEvent{Content: "Making sure this song actually exists... 🔍"}) != nil {
				return
			}
			verdict := o.Verifier.VerifySong(ctx, text)
			if !verdict.Real {
				log.Info("suggestion failed verification",
					zap.Int("attempt", attempt+1),
					zap.String("explanation", verdict.Explanation))
			}
			real = verdict.Real
			st = phaseDeciding

		case phaseDeciding:
			switch {
			case real:
				o.finish(sink, VerifiedEvent{Content: text, Verified: true, Attempt: attempt + 1})
				return
			case attempt >= maxAttempts-1:
				log.Info("all attempts exhausted", zap.Int("attempts", maxAttempts))
				o.finish(sink, VerifiedEvent{Content: "", Verified: false, Note: "all attempts exhausted"})
				return
			default:
				attempt++
				text = ""
				real = false
				st = phaseGenerating
			}

		default:
			// Unreachable, but a stream must never end without a terminal
			// event and a done marker.
			o.finish(sink, VerifiedEvent{Content: "", Verified: false})
			return
		}
	}
}

func (o *Orchestrator) finish(sink EventSink, terminal VerifiedEvent) {
	if sink.Send(terminal) != nil {
		return
	}
	_ = sink.Send(DoneEvent{})
}
