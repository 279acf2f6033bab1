package effector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/scaling-cli/internal/model"
	"github.com/sells-group/scaling-cli/internal/resilience"
)

// HTTP posts actions to an external effector endpoint. Transient upstream
// failures are retried with backoff; everything else degrades to a failed
// result at the executor boundary.
type HTTP struct {
	client   *http.Client
	endpoint string
	limiter  *rate.Limiter
	retry    resilience.RetryConfig
}

// applyRequest is the wire shape posted to the effector endpoint.
type applyRequest struct {
	Action         model.ActionKind `json:"action"`
	Budget         float64          `json:"budget"`
	ExpectedReturn float64          `json:"expected_return"`
	Multiplier     float64          `json:"multiplier"`
	TargetID       string           `json:"target_id"`
	TargetName     string           `json:"target_name,omitempty"`
}

// applyResponse is the minimal shape expected back.
type applyResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// NewHTTP creates an HTTP effector. rps bounds outbound request rate; zero
// disables the limiter.
func NewHTTP(endpoint string, rps float64, retry resilience.RetryConfig) *HTTP {
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &HTTP{
		client:   &http.Client{Timeout: 15 * time.Second},
		endpoint: endpoint,
		limiter:  limiter,
		retry:    retry,
	}
}

// Apply posts the action to the endpoint and maps the response to a Result.
func (h *HTTP) Apply(ctx context.Context, action model.Action, target model.Candidate) (*Result, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "effector: rate limit wait")
		}
	}

	body, err := json.Marshal(applyRequest{
		Action:         action.Kind,
		Budget:         action.Budget,
		ExpectedReturn: action.ExpectedReturn,
		Multiplier:     action.Multiplier,
		TargetID:       target.ID,
		TargetName:     target.Name,
	})
	if err != nil {
		return nil, eris.Wrap(err, "effector: marshal request")
	}

	retry := h.retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("effector", string(action.Kind))
	}

	resp, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*applyResponse, error) {
		return h.post(ctx, body)
	})
	if err != nil {
		return nil, err
	}

	status := model.ExecutionStatus(resp.Status)
	if status != model.StatusSuccess {
		status = model.StatusFailed
	}
	return &Result{Status: status, Detail: resp.Detail}, nil
}

func (h *HTTP) post(ctx context.Context, body []byte) (*applyResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "effector: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := h.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "effector: post")
	}
	defer httpResp.Body.Close()

	if resilience.IsTransientHTTPStatus(httpResp.StatusCode) {
		return nil, resilience.NewTransientError(
			fmt.Errorf("effector: endpoint returned %d", httpResp.StatusCode),
			httpResp.StatusCode,
		)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, eris.Errorf("effector: endpoint returned %d", httpResp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, eris.Wrap(err, "effector: read response")
	}

	var resp applyResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, eris.Wrap(err, "effector: decode response")
	}
	return &resp, nil
}
