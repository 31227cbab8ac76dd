// Package classify maps free-text band descriptions to genre labels.
//
// Classification is total: every classifier always returns a label and never
// an error, so request creation can never block on it. The keyword classifier
// runs offline; the LLM-backed classifier calls OpenRouter and degrades to
// the keyword result when the call fails.
package classify

import (
	"context"
	"log/slog"
	"strings"

	"bandfinder/internal/config"
	"bandfinder/internal/logging"
	"bandfinder/internal/services/openrouter"
)

// DefaultGenre is returned when no genre can be derived from a description.
const DefaultGenre = "Unspecified"

// Classifier labels a request description with a genre. Implementations must
// be total: always return a label, never fail.
type Classifier interface {
	Classify(ctx context.Context, description string) string
}

// FromConfig builds the classifier selected by configuration.
func FromConfig(cfg *config.Config, logger *slog.Logger) Classifier {
	keyword := NewKeywordClassifier()
	if cfg == nil || cfg.Classifier.Provider != "openrouter" {
		return keyword
	}
	return &LLMClassifier{
		client:   openrouter.NewClient(cfg.Classifier),
		fallback: keyword,
		logger:   logging.WithComponent(logger, "classifier"),
	}
}

// KeywordClassifier scans the lowercased description for genre keywords.
type KeywordClassifier struct {
	rules []keywordRule
}

type keywordRule struct {
	genre    string
	keywords []string
}

// NewKeywordClassifier returns the offline keyword classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		// Order matters: the first matching rule wins, so more specific
		// labels come before broader ones (metal before rock).
		rules: []keywordRule{
			{genre: "Metal", keywords: []string{"metal", "thrash", "doom"}},
			{genre: "Rock", keywords: []string{"rock", "punk", "grunge"}},
			{genre: "Jazz", keywords: []string{"jazz", "swing", "bebop"}},
			{genre: "Pop", keywords: []string{"pop", "synth"}},
			{genre: "Blues", keywords: []string{"blues"}},
			{genre: "Folk", keywords: []string{"folk", "acoustic"}},
			{genre: "Electronic", keywords: []string{"electronic", "techno", "house"}},
			{genre: "Hip-Hop", keywords: []string{"hip-hop", "hip hop", "rap"}},
			{genre: "Classical", keywords: []string{"classical", "orchestra", "chamber"}},
		},
	}
}

// Classify returns the first genre whose keywords appear in the description,
// or DefaultGenre when none match.
func (k *KeywordClassifier) Classify(_ context.Context, description string) string {
	lowered := strings.ToLower(description)
	for _, rule := range k.rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.genre
			}
		}
	}
	return DefaultGenre
}

// genreClient is the narrow surface LLMClassifier needs from the OpenRouter
// client.
type genreClient interface {
	ClassifyGenre(ctx context.Context, description string) (openrouter.Verdict, error)
}

// LLMClassifier asks an LLM for a genre label, falling back to the keyword
// classifier on any failure so classification stays total.
type LLMClassifier struct {
	client   genreClient
	fallback Classifier
	logger   *slog.Logger
}

// NewLLMClassifier wires an LLM client with a fallback classifier. Intended
// for tests; production code goes through FromConfig.
func NewLLMClassifier(client genreClient, fallback Classifier, logger *slog.Logger) *LLMClassifier {
	if fallback == nil {
		fallback = NewKeywordClassifier()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LLMClassifier{client: client, fallback: fallback, logger: logger}
}

// Classify consults the LLM and degrades to the fallback label on failure.
func (l *LLMClassifier) Classify(ctx context.Context, description string) string {
	verdict, err := l.client.ClassifyGenre(ctx, description)
	if err != nil {
		l.logger.Warn("llm classification failed, using keyword fallback",
			slog.String("error", err.Error()))
		return l.fallback.Classify(ctx, description)
	}
	return verdict.Genre
}
