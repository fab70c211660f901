package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/resolvefit/backend/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	phaseCacheSize      = 2 * 1024 * 1024 // 2 MB
	phaseCacheExpirySec = 15 * 60
)

// HTTP asks a remote planner service for templates. Phase templates are
// cached, the remote answer for one resolution text is stable within the
// cache window.
type HTTP struct {
	baseURL    string
	httpClient *http.Client
	cache      *freecache.Cache
}

func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	return &HTTP{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
		cache: freecache.NewCache(phaseCacheSize),
	}
}

type phaseTemplatesRequest struct {
	ResolutionText string `json:"resolution_text"`
	TotalWeeks     int    `json:"total_weeks"`
}

type weekTemplateRequest struct {
	Phase      PhaseTemplate `json:"phase"`
	WeekNumber int           `json:"week_number"`
}

func (p *HTTP) PhaseTemplates(ctx context.Context, resolutionText string, totalWeeks int) (_ []PhaseTemplate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "planner.http.phaseTemplates")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cacheKey := []byte(fmt.Sprintf("phases::%d::%s", totalWeeks, resolutionText))
	if cached, err := p.cache.Get(cacheKey); err == nil {
		var phases []PhaseTemplate
		if err := json.Unmarshal(cached, &phases); err == nil {
			return phases, nil
		}
		log.Warnf("planner cache holds invalid payload, refetching")
	}

	var phases []PhaseTemplate
	if err := p.post(ctx, "/planner/phases", phaseTemplatesRequest{
		ResolutionText: resolutionText,
		TotalWeeks:     totalWeeks,
	}, &phases); err != nil {
		return nil, err
	}

	if phasesJson, err := json.Marshal(phases); err == nil {
		if err := p.cache.Set(cacheKey, phasesJson, phaseCacheExpirySec); err != nil {
			log.Warnf("failed to cache phase templates: %s", err)
		}
	}

	return phases, nil
}

func (p *HTTP) WeekTemplate(ctx context.Context, phase PhaseTemplate, weekNumber int) (_ WeekTemplate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "planner.http.weekTemplate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var week WeekTemplate
	if err := p.post(ctx, "/planner/week", weekTemplateRequest{
		Phase:      phase,
		WeekNumber: weekNumber,
	}, &week); err != nil {
		return WeekTemplate{}, err
	}
	return week, nil
}

func (p *HTTP) post(ctx context.Context, path string, payload, dst any) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal planner request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(reqBody),
	)
	if err != nil {
		return fmt.Errorf("create planner request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("planner request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("planner returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode planner response: %w", err)
	}
	return nil
}
