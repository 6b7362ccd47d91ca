package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/triage/pkg/domain"
)

// debugHooks logs walker and classifier events at debug level.
func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			logger.Debug("node enter", "session_id", e.SessionID, "node_id", e.NodeID)
		},
		OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) {
			logger.Debug("node leave", "session_id", e.SessionID, "node_id", e.NodeID, "choice", e.Choice)
		},
		OnOutcome: func(_ context.Context, e *domain.OutcomeEvent) {
			logger.Debug("outcome",
				"session_id", e.SessionID,
				"node_id", e.NodeID,
				"kind", e.Kind,
				"specialization", string(e.Recommendation.Specialization),
				"depth", e.Depth,
			)
		},
		OnClassify: func(_ context.Context, e *domain.ClassifyEvent) {
			logger.Debug("classified",
				"rule_id", e.RuleID,
				"keyword", e.Keyword,
				"specialization", string(e.Recommendation.Specialization),
			)
		},
	}
}
