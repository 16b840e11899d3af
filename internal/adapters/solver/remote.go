package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"collection-route-service/internal/milp"
)

// Remote implements the solver port against an external MILP service.
//
// The model is posted as JSON and the service answers with a status,
// variable values, and the objective. Transient failures (network errors,
// 429/5xx) are retried with exponential backoff while respecting context
// cancellation. The adapter is safe for concurrent use.
type Remote struct {
	session *http.Client
	baseURL string
	apiKey  string
}

func NewRemote(baseURL, apiKey string) (*Remote, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("remote solver: base URL is empty")
	}

	return &Remote{
		session: &http.Client{Timeout: 120 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}, nil
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Body)
}

type remoteSolveResponse struct {
	Status    string    `json:"status"`
	Values    []float64 `json:"values"`
	Objective float64   `json:"objective"`
}

// Solve posts the model and maps the service's answer onto the port's
// status vocabulary.
func (a *Remote) Solve(ctx context.Context, m *milp.Model) (milp.Solution, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return milp.Solution{}, fmt.Errorf("remote solve: encode model: %w", err)
	}

	resp, err := a.doWithRetry(ctx, func() (*http.Request, error) {
		return a.newRequest(ctx, http.MethodPost, a.baseURL+"/v1/solve", bytes.NewReader(payload))
	})
	if err != nil {
		return milp.Solution{}, fmt.Errorf("remote solve: %w", err)
	}
	defer resp.Body.Close()

	var body remoteSolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return milp.Solution{}, fmt.Errorf("remote solve: decode response: %w", err)
	}

	sol := milp.Solution{Values: body.Values, Objective: body.Objective}
	switch body.Status {
	case "optimal":
		sol.Status = milp.StatusOptimal
	case "infeasible":
		sol.Status = milp.StatusInfeasible
		sol.Values = nil
	case "time_limit":
		sol.Status = milp.StatusTimeLimit
	default:
		return milp.Solution{}, fmt.Errorf("remote solve: unknown status %q", body.Status)
	}

	if sol.HasSolution() && len(sol.Values) != m.NumVars() {
		return milp.Solution{}, fmt.Errorf(
			"remote solve: got %d values for %d variables", len(sol.Values), m.NumVars(),
		)
	}

	return sol, nil
}

func (a *Remote) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if a.apiKey != "" {
		req.Header.Set("Authorization", a.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (a *Remote) do(req *http.Request) (*http.Response, error) {
	resp, err := a.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 5xx responses)
// using exponential backoff while respecting context cancellation.
func (a *Remote) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	const maxAttempts = 4
	backoff := 200 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := a.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}
