package graphapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/orgball2608/insta-daily-poster/internal/domain"
	"github.com/orgball2608/insta-daily-poster/pkg/retry"
)

const (
	statusFinished  = "FINISHED"
	statusPublished = "PUBLISHED"
	statusError     = "ERROR"
	statusExpired   = "EXPIRED"
)

var errNotReady = errors.New("container not ready")

type graphResponse struct {
	ID         string      `json:"id"`
	StatusCode string      `json:"status_code"`
	Error      *graphError `json:"error"`
}

type graphError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	FBTraceID    string `json:"fbtrace_id"`
}

// CreateContainer is phase one: it registers the image and caption and returns the creation id.
func (g *GraphAPIImpl) CreateContainer(ctx context.Context, imageURL, caption string, opts domain.PublishOptions) (string, error) {
	form := url.Values{}
	form.Set("image_url", imageURL)
	form.Set("caption", caption)
	form.Set("is_carousel_item", "false")
	form.Set("alt_text", firstNonEmpty(opts.AltText, g.defaultAltText))
	form.Set("access_token", g.accessToken)

	if loc := firstNonEmpty(opts.LocationID, g.defaultLocationID); loc != "" {
		form.Set("location_id", loc)
	}
	if err := setTags(form, "user_tags", opts.UserTags, g.defaultUserTags); err != nil {
		return "", err
	}
	if err := setTags(form, "product_tags", opts.ProductTags, g.defaultProductTags); err != nil {
		return "", err
	}

	resp, err := g.post(ctx, fmt.Sprintf("/%s/media", g.accountID), form, domain.PhaseCreateContainer)
	if err != nil {
		g.emitFailure(ctx, err)
		return "", err
	}

	g.logger.Info("Container created", "creation_id", resp.ID)
	g.events.Emit(ctx, domain.NewEvent(domain.EventContainerCreated, "creation_id", resp.ID))
	return resp.ID, nil
}

// WaitReady bridges the two phases. With status polling it checks the container with
// backoff until it is FINISHED, fails on ERROR/EXPIRED and gives up quietly once the
// attempts run out. Without polling it waits the fixed settle delay.
func (g *GraphAPIImpl) WaitReady(ctx context.Context, creationID string) error {
	if !g.pollStatus {
		return g.sleep(ctx, g.settleDelay)
	}

	var failed *domain.PublishError
	err := retry.Do(ctx, g.logger, "container_status", func() error {
		status, err := g.containerStatus(ctx, creationID)
		if err != nil {
			return err
		}
		switch status {
		case statusFinished, statusPublished:
			return nil
		case statusError, statusExpired:
			failed = &domain.PublishError{
				Phase:   domain.PhaseContainerStatus,
				Message: "container status " + status,
			}
			return retry.Permanent(failed)
		default:
			return fmt.Errorf("%w: %s", errNotReady, status)
		}
	}, g.pollConfig)

	switch {
	case err == nil:
		g.events.Emit(ctx, domain.NewEvent(domain.EventContainerReady, "creation_id", creationID))
		return nil
	case failed != nil:
		g.emitFailure(ctx, failed)
		return failed
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		g.logger.Warn("Container readiness unknown, publishing anyway", "creation_id", creationID, "error", err)
		return nil
	}
}

// PublishContainer is phase two: it turns the container into a post and returns the media id.
func (g *GraphAPIImpl) PublishContainer(ctx context.Context, creationID string) (string, error) {
	form := url.Values{}
	form.Set("creation_id", creationID)
	form.Set("access_token", g.accessToken)

	resp, err := g.post(ctx, fmt.Sprintf("/%s/media_publish", g.accountID), form, domain.PhasePublishContainer)
	if err != nil {
		return "", err
	}

	g.logger.Info("Container published", "creation_id", creationID, "media_id", resp.ID)
	return resp.ID, nil
}

func (g *GraphAPIImpl) containerStatus(ctx context.Context, creationID string) (string, error) {
	q := url.Values{}
	q.Set("fields", "status_code")
	q.Set("access_token", g.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/"+creationID+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := g.do(req, domain.PhaseContainerStatus)
	if err != nil {
		return "", err
	}
	return resp.StatusCode, nil
}

func (g *GraphAPIImpl) post(ctx context.Context, endpoint string, form url.Values, phase domain.PublishPhase) (graphResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return graphResponse{}, fmt.Errorf("%s: build request: %w", phase, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.do(req, phase)
	if err != nil {
		return graphResponse{}, err
	}
	if resp.ID == "" {
		return graphResponse{}, &domain.PublishError{Phase: phase, Status: http.StatusOK, Message: "response has no id"}
	}
	return resp, nil
}

// do returns a *domain.PublishError for anything the service said, and a plain error
// when the service could not be reached.
func (g *GraphAPIImpl) do(req *http.Request, phase domain.PublishPhase) (graphResponse, error) {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return graphResponse{}, fmt.Errorf("%s: request failed: %w", phase, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return graphResponse{}, fmt.Errorf("%s: read response: %w", phase, err)
	}

	g.logger.Debug("Graph API response", "phase", phase, "status", resp.StatusCode, "body", string(body))

	var out graphResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return graphResponse{}, &domain.PublishError{
			Phase:   phase,
			Status:  resp.StatusCode,
			Message: "non-JSON response: " + strings.TrimSpace(string(body)),
		}
	}
	if out.Error != nil {
		return graphResponse{}, &domain.PublishError{
			Phase:   phase,
			Status:  resp.StatusCode,
			Code:    out.Error.Code,
			Type:    out.Error.Type,
			Message: out.Error.Message,
		}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return graphResponse{}, &domain.PublishError{
			Phase:   phase,
			Status:  resp.StatusCode,
			Message: "unexpected status " + resp.Status,
		}
	}
	return out, nil
}

// emitFailure reports container stage failures only. Phase 2 failures surface as
// publish.failed from the caller.
func (g *GraphAPIImpl) emitFailure(ctx context.Context, err error) {
	var pubErr *domain.PublishError
	if !errors.As(err, &pubErr) || pubErr.Phase == domain.PhasePublishContainer {
		return
	}
	g.events.Emit(ctx, domain.NewEvent(domain.EventContainerFailed,
		"phase", string(pubErr.Phase), "status", pubErr.Status, "message", pubErr.Message))
}

// setTags prefers explicit tags and falls back to the configured raw JSON.
func setTags[T any](form url.Values, key string, tags []T, fallback string) error {
	if len(tags) > 0 {
		raw, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		form.Set(key, string(raw))
		return nil
	}
	if fallback != "" {
		form.Set(key, fallback)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
