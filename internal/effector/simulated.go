package effector

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/scaling-cli/internal/model"
)

// Simulated is a stand-in effector that waits a fixed latency and reports
// success. Used for dry runs and local development where no real ad platform
// is wired up.
type Simulated struct {
	Latency time.Duration
}

// NewSimulated returns a Simulated effector with a 100ms latency.
func NewSimulated() *Simulated {
	return &Simulated{Latency: 100 * time.Millisecond}
}

// Apply waits for the configured latency, honoring ctx cancellation.
func (s *Simulated) Apply(ctx context.Context, action model.Action, target model.Candidate) (*Result, error) {
	if s.Latency > 0 {
		timer := time.NewTimer(s.Latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	zap.L().Info("effector: applied action",
		zap.String("action", string(action.Kind)),
		zap.String("candidate", target.ID),
		zap.Float64("budget", action.Budget),
	)
	return &Result{Status: model.StatusSuccess, Detail: "simulated"}, nil
}
