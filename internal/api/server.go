// Package api exposes the HTTP surface: the verified music suggestion
// stream, plain analysis streams, and the non-streaming chart endpoints.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/astrostream/internal/astro"
	"github.com/example/astrostream/internal/music"
	"github.com/example/astrostream/internal/pipeline"
	"github.com/example/astrostream/internal/prompt"
	"github.com/example/astrostream/internal/providers/llm"
	"github.com/example/astrostream/internal/render"
	"github.com/example/astrostream/internal/verify"
)

const (
	defaultTemperature = 1.0
	promptTrackLimit   = 20

	fallbackDaily = "**Cosmic Note:** The AI astrologer is taking a cosmic tea break. ☕ Trust your intuition today! 🔮"
	fallbackNatal = "**Cosmic Note:** The AI astrologer is taking a cosmic tea break. ☕ You're as special and unique as the stars! 🔮"
	fallbackTaco  = "🌮 **Cosmic Note:** The cosmic Taco Bell oracle is taking a nacho break! ☕ Try a Crunchwrap Supreme - it's universally delicious! 🔔✨"
)

// Server wires the backends into handlers. LLM may be nil when no generation
// backend is configured; streaming endpoints then refuse requests with 503.
type Server struct {
	LLM    llm.Client
	Charts astro.Provider
	Music  *music.Client
	Log    *zap.Logger

	orch *pipeline.Orchestrator
}

func New(llmClient llm.Client, charts astro.Provider, musicClient *music.Client, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{LLM: llmClient, Charts: charts, Music: musicClient, Log: log}
	if llmClient != nil {
		s.orch = &pipeline.Orchestrator{
			Generator: llmClient,
			Verifier:  verify.New(llmClient, log),
			Log:       log,
		}
	}
	return s
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/music-suggestion", s.handleMusicSuggestion)

	mux.HandleFunc("/stream-chart-analysis", s.streamAnalysis(astro.ChartTypeDaily))
	mux.HandleFunc("/stream-full-chart-analysis", s.streamAnalysis(astro.ChartTypeNatal))
	mux.HandleFunc("/stream-live-mas-analysis", s.streamAnalysis("live-mas"))

	mux.HandleFunc("/chart", s.handleAnalysis(astro.ChartTypeDaily))
	mux.HandleFunc("/full-chart", s.handleAnalysis(astro.ChartTypeNatal))
	mux.HandleFunc("/live-mas", s.handleAnalysis("live-mas"))
}

// preflight runs the shared pre-stream checks: method, backend availability,
// body shape, field validation. It writes the response itself on failure.
func (s *Server) preflight(w http.ResponseWriter, r *http.Request) (*pipeline.SuggestionRequest, bool) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return nil, false
	}
	if s.LLM == nil {
		errorJSON(w, http.StatusServiceUnavailable, "text generation service unavailable")
		return nil, false
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	req, err := pipeline.ValidateRequest(body)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return req, true
}

func (s *Server) handleMusicSuggestion(w http.ResponseWriter, r *http.Request) {
	req, ok := s.preflight(w, r)
	if !ok {
		return
	}

	facts, musicContext, err := s.prepare(r, req, true)
	if err != nil {
		errorJSON(w, http.StatusBadGateway, "chart data provider failed")
		return
	}

	system, user := prompt.BuildSuggestion(facts, req.Genre, req.ChartType, musicContext)
	sink, ok := openStream(w)
	if !ok {
		return
	}
	s.Log.Info("starting music suggestion stream",
		zap.String("genre", req.Genre),
		zap.String("chart_type", req.ChartType))
	s.orch.Run(r.Context(), pipeline.GenerationRequest{
		SystemInstruction: system,
		BasePrompt:        user,
		Temperature:       defaultTemperature,
		MaxAttempts:       pipeline.DefaultMaxAttempts,
	}, sink)
}

// streamAnalysis serves the plain chunk-then-done analysis streams. No
// verification loop here; a broken generation stream becomes a single error
// event before done.
func (s *Server) streamAnalysis(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := s.preflight(w, r)
		if !ok {
			return
		}
		facts, _, err := s.prepare(r, req, false)
		if err != nil {
			errorJSON(w, http.StatusBadGateway, "chart data provider failed")
			return
		}

		system, user := analysisPrompt(kind, facts)
		sink, ok := openStream(w)
		if !ok {
			return
		}
		streamErr := s.LLM.GenerateStream(r.Context(), system, user, defaultTemperature, func(chunk string) error {
			if chunk == "" {
				return nil
			}
			return sink.Send(pipeline.ChunkEvent{Content: chunk})
		})
		if streamErr != nil {
			if r.Context().Err() != nil {
				return
			}
			s.Log.Error("analysis stream failed", zap.String("kind", kind), zap.Error(streamErr))
			_ = sink.Send(pipeline.ErrorEvent{Message: streamErr.Error()})
		}
		_ = sink.Send(pipeline.DoneEvent{})
	}
}

// handleAnalysis serves the non-streaming JSON endpoints. A failed model
// call degrades to the canned cosmic-note copy instead of an error.
func (s *Server) handleAnalysis(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		req, err := pipeline.ValidateRequest(body)
		if err != nil {
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		}

		facts, _, err := s.prepare(r, req, false)
		if err != nil {
			errorJSON(w, http.StatusBadGateway, "chart data provider failed")
			return
		}

		analysis := s.generateOrFallback(r, kind, facts)
		analysisHTML, err := render.MarkdownToHTML(analysis)
		if err != nil {
			s.Log.Warn("markdown rendering failed", zap.Error(err))
		}

		resp := map[string]any{
			"sun":                facts.Sun,
			"moon":               facts.Moon,
			"ascendant":          facts.Ascendant,
			"mercury_retrograde": facts.MercuryRetrograde(),
		}
		switch kind {
		case "live-mas":
			resp["taco_bell_order"] = analysis
			resp["taco_bell_order_html"] = analysisHTML
		default:
			resp["astrology_analysis"] = analysis
			resp["astrology_analysis_html"] = analysisHTML
			if kind == astro.ChartTypeNatal {
				resp["houses"] = facts.Houses
			}
		}
		respondJSON(w, resp)
	}
}

func (s *Server) generateOrFallback(r *http.Request, kind string, facts astro.Facts) string {
	fallback := fallbackFor(kind)
	if s.LLM == nil {
		return fallback
	}
	system, user := analysisPrompt(kind, facts)
	text, err := s.LLM.GenerateText(r.Context(), system, user, defaultTemperature)
	if err != nil || text == "" {
		s.Log.Error("analysis generation failed", zap.String("kind", kind), zap.Error(err))
		return fallback
	}
	return text
}

// prepare fetches chart facts and, when withMusic is set, the genre material
// for the prompt. Chart failures abort; music failures just degrade to no
// extra context.
func (s *Server) prepare(r *http.Request, req *pipeline.SuggestionRequest, withMusic bool) (astro.Facts, string, error) {
	var (
		facts  astro.Facts
		tracks []music.Track
		blurb  string
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		if req.ChartType == astro.ChartTypeNatal {
			facts, err = s.Charts.NatalFacts(gctx, req.Birth)
		} else {
			facts, err = s.Charts.DailyFacts(gctx, req.Birth)
		}
		return err
	})
	if withMusic {
		g.Go(func() error {
			t, err := s.Music.TopTracksByGenre(gctx, req.Genre, promptTrackLimit)
			if err != nil {
				s.Log.Warn("genre tracks unavailable", zap.Error(err))
				return nil
			}
			tracks = t
			return nil
		})
		g.Go(func() error {
			b, err := s.Music.GenreBlurb(gctx, req.Genre)
			if err != nil {
				s.Log.Warn("genre blurb unavailable", zap.Error(err))
				return nil
			}
			blurb = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.Log.Error("chart facts unavailable", zap.Error(err))
		return astro.Facts{}, "", err
	}

	musicContext := music.FormatTracksForPrompt(tracks, promptTrackLimit)
	if blurb != "" {
		if musicContext != "" {
			musicContext = "About this genre: " + blurb + "\n\n" + musicContext
		} else {
			musicContext = "About this genre: " + blurb
		}
	}
	return facts, musicContext, nil
}

func analysisPrompt(kind string, facts astro.Facts) (system, user string) {
	switch kind {
	case astro.ChartTypeNatal:
		return prompt.BuildNatalAnalysis(facts)
	case "live-mas":
		return prompt.BuildTacoOrder(facts)
	default:
		return prompt.BuildDailyAnalysis(facts)
	}
}

func fallbackFor(kind string) string {
	switch kind {
	case astro.ChartTypeNatal:
		return fallbackNatal
	case "live-mas":
		return fallbackTaco
	default:
		return fallbackDaily
	}
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

var errStreamingUnsupported = errors.New("response writer does not support streaming")
