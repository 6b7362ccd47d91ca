// Package classifier maps free-text symptom descriptions to a Recommendation
// using an ordered keyword table. The first rule with a matching keyword wins.
package classifier

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/aretw0/triage/pkg/domain"
)

// DefaultFallback is returned when no rule matches.
const DefaultFallback = "I understand. Could you describe your symptoms in a bit more detail? For example: 'I have a headache' or 'My chest hurts'."

// Classifier evaluates rules in declared order. It is safe for concurrent use.
type Classifier struct {
	rules    []domain.ClassifierRule
	fallback string
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithFallback overrides the clarification message used on no match.
func WithFallback(message string) Option {
	return func(c *Classifier) {
		if message != "" {
			c.fallback = message
		}
	}
}

// WithLifecycleHooks registers the OnClassify hook.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Classifier) {
		c.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New copies the rules and normalizes their keywords. Empty keywords are
// dropped since they would match any text.
func New(rules []domain.ClassifierRule, opts ...Option) *Classifier {
	c := &Classifier{
		fallback: DefaultFallback,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.rules = make([]domain.ClassifierRule, 0, len(rules))
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if k := Normalize(kw); strings.TrimSpace(k) != "" {
				kws = append(kws, k)
			}
		}
		r.Keywords = kws
		c.rules = append(c.rules, r)
	}
	return c
}

// Match explains a classification.
type Match struct {
	// RuleID is empty when no rule matched.
	RuleID         string                `json:"rule_id,omitempty"`
	Keyword        string                `json:"keyword,omitempty"`
	Recommendation domain.Recommendation `json:"recommendation"`
}

// Matched reports whether a rule fired.
func (m Match) Matched() bool { return m.RuleID != "" || m.Keyword != "" }

// Classify returns the recommendation of the first matching rule, or the
// fallback message without a specialization. It never fails.
func (c *Classifier) Classify(ctx context.Context, text string) domain.Recommendation {
	return c.Explain(ctx, text).Recommendation
}

// Explain is Classify plus the rule and keyword that fired.
func (c *Classifier) Explain(ctx context.Context, text string) Match {
	m := c.match(Normalize(text))

	c.logger.Debug("classified symptoms",
		"rule_id", m.RuleID,
		"keyword", m.Keyword,
		"specialization", string(m.Recommendation.Specialization))

	if c.hooks.OnClassify != nil {
		c.hooks.OnClassify(ctx, &domain.ClassifyEvent{
			EventBase:      domain.EventBase{Timestamp: time.Now(), Type: domain.EventClassify},
			RuleID:         m.RuleID,
			Keyword:        m.Keyword,
			Recommendation: m.Recommendation,
		})
	}
	return m
}

func (c *Classifier) match(normalized string) Match {
	if strings.TrimSpace(normalized) == "" {
		return Match{Recommendation: domain.NoRecommendation(c.fallback)}
	}
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(normalized, kw) {
				return Match{RuleID: r.ID, Keyword: kw, Recommendation: r.Recommendation()}
			}
		}
	}
	return Match{Recommendation: domain.NoRecommendation(c.fallback)}
}

// Rules returns a copy of the normalized rule table.
func (c *Classifier) Rules() []domain.ClassifierRule {
	out := make([]domain.ClassifierRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Normalize applies Unicode NFKC composition, then lowercases, so full-width
// and ligature forms match their ASCII keywords.
// Matching is plain substring search, so no word boundaries are applied.
func Normalize(text string) string {
	return strings.ToLower(norm.NFKC.String(text))
}
