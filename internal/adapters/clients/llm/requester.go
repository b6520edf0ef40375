package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/httpclient"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/logging"
)

// Requester centralizes the HTTP request lifecycle for the transports:
// JSON marshaling, execution via httpclient.Client, response body cleanup,
// status code validation, error translation, and JSON decoding.
type Requester struct {
	client *httpclient.Client
	logger *slog.Logger
}

// NewRequester creates a Requester backed by the given HTTP client and logger.
func NewRequester(client *httpclient.Client, logger *slog.Logger) *Requester {
	return &Requester{client: client, logger: logger}
}

// Post sends reqBody as JSON to path under the client's base URL and decodes
// a 200 response into respBody. Every failure comes back as a *domain.Error.
func (r *Requester) Post(ctx context.Context, path string, header http.Header, reqBody, respBody any) error {
	provider := r.client.Name()

	body, err := json.Marshal(reqBody)
	if err != nil {
		return domain.NewError(domain.KindFormat, fmt.Sprintf("%s: marshaling request", provider)).WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.client.BaseURL()+path, bytes.NewReader(body))
	if err != nil {
		return domain.NewError(domain.KindAPI, fmt.Sprintf("%s: creating request", provider)).WithCause(err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	return r.execute(req, respBody)
}

// closeBody is a helper that closes an HTTP response body and logs on failure.
func (r *Requester) closeBody(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		logging.FromContextOr(ctx, r.logger).WarnContext(ctx, "failed to close response body",
			slog.String("error", err.Error()),
		)
	}
}

// execute sends the request, checks the status code, and decodes the response
// body. It ensures resp.Body is always closed.
func (r *Requester) execute(req *http.Request, respBody any) error {
	ctx := req.Context()
	provider := r.client.Name()

	resp, err := r.client.Do(ctx, req)
	if resp != nil {
		defer r.closeBody(ctx, resp)
	}
	if err != nil && resp == nil {
		logging.FromContextOr(ctx, r.logger).WarnContext(ctx, "model request failed",
			slog.String("operation", "llm.Post"),
			slog.String("provider", provider),
			slog.String("path", req.URL.Path),
			slog.Any("error", err),
		)
		return TranslateTransportError(err, provider)
	}

	if resp.StatusCode != http.StatusOK {
		translated := TranslateHTTPError(resp, provider)
		logging.FromContextOr(ctx, r.logger).WarnContext(ctx, "unexpected status",
			slog.String("operation", "llm.Post"),
			slog.String("provider", provider),
			slog.String("path", req.URL.Path),
			slog.Int("status", resp.StatusCode),
			slog.String("error_kind", translated.Kind.String()),
		)
		return translated
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return domain.NewError(domain.KindParsing, provider+": decoding response").WithCause(err)
	}
	return nil
}
