package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
	"github.com/nerve-health/referral/backend/internal/domain/providers"
	"github.com/nerve-health/referral/backend/pkg/config"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// Client implements the Groq referral provider over the
// OpenAI-compatible chat completions API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
}

// NewClient creates a new Groq client.
func NewClient(cfg *config.GroqConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: groq api key is required", providers.ErrReferralUnavailable)
	}

	model := cfg.Model
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}

	limiter := newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst)

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: limiter,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete sends a chat completion request and returns the raw message
// content of the first choice.
func (c *Client) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordGroqMetric(ctx, c.model, 0, 0, err)
			return "", err
		}
		recordGroqRateLimitWait(ctx, c.model, time.Since(waitStart))
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0.3,
		MaxTokens:      maxTokens,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordGroqMetric(ctx, c.model, 0, time.Since(start), err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("groq request failed with status %d", resp.StatusCode)
		recordGroqMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	var envelope chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordGroqMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		err := errors.New("groq response missing message content")
		recordGroqMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	recordGroqMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
	return envelope.Choices[0].Message.Content, nil
}

// FindBestHospital asks the model to triage the patient and rank the
// candidate hospitals. Route info computed locally is grafted back onto
// the response so distance and ETA never depend on the model echoing
// them correctly.
func (c *Client) FindBestHospital(ctx context.Context, patient *entities.PatientInput, hospitals []*entities.Hospital, history []*entities.TriageHistoryEntry) (*entities.Recommendation, error) {
	if patient == nil {
		return nil, errors.New("patient is required")
	}
	if len(hospitals) == 0 {
		return nil, errors.New("no candidate hospitals")
	}

	routeByID := make(map[string]*entities.RouteInfo, len(hospitals))
	for _, h := range hospitals {
		if h.RouteInfo.Valid() {
			routeByID[h.ID] = h.RouteInfo
		}
	}

	userPrompt, err := buildReferralUserPrompt(patient, hospitals, history)
	if err != nil {
		return nil, err
	}

	text, err := c.complete(ctx, hospitalReferralSystemPrompt, userPrompt, 2000)
	if err != nil {
		return nil, err
	}

	raw, err := extractJSON(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse groq response: %w", err)
	}

	var payload referralPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse groq response: %w", err)
	}
	if payload.RecommendedHospital == nil {
		return nil, errors.New("groq response missing recommended hospital")
	}

	rec := &entities.Recommendation{
		Triage: entities.TriageAssessment{
			Severity:                entities.ParseSeverity(payload.Triage.Severity),
			RequiredSpecializations: payload.Triage.RequiredSpecializations,
			RequiredFacilities:      payload.Triage.RequiredFacilities,
			Reasoning:               payload.Triage.Reasoning,
		},
		RecommendedHospital: &entities.RecommendedHospital{
			HospitalID:        payload.RecommendedHospital.HospitalID,
			HospitalName:      payload.RecommendedHospital.HospitalName,
			MatchScore:        payload.RecommendedHospital.MatchScore,
			Reasons:           payload.RecommendedHospital.Reasons,
			EstimatedWaitTime: payload.RecommendedHospital.EstimatedWaitTime,
		},
		UrgentTransfer:  payload.UrgentTransfer,
		AdditionalNotes: payload.AdditionalNotes,
	}

	if ri, ok := routeByID[rec.RecommendedHospital.HospitalID]; ok {
		distance := ri.DistanceKm
		eta := ri.ETA()
		rec.RecommendedHospital.Distance = &distance
		rec.RecommendedHospital.ETA = &eta
		rec.RecommendedHospital.RouteInfo = ri
		rec.RecommendedHospital.Reasons = append(rec.RecommendedHospital.Reasons,
			fmt.Sprintf("Distance: %.1f km, ETA: %d min", distance, eta))
	}

	for _, alt := range payload.AlternativeHospitals {
		out := entities.AlternativeHospital{
			HospitalID:   alt.HospitalID,
			HospitalName: alt.HospitalName,
			MatchScore:   alt.MatchScore,
			Reason:       alt.Reason,
		}
		if ri, ok := routeByID[alt.HospitalID]; ok {
			distance := ri.DistanceKm
			eta := ri.ETA()
			out.Distance = &distance
			out.ETA = &eta
		}
		rec.AlternativeHospitals = append(rec.AlternativeHospitals, out)
	}

	return rec, nil
}

// AnalyzePatient performs a triage-only assessment without hospital
// ranking.
func (c *Client) AnalyzePatient(ctx context.Context, patient *entities.PatientInput) (*entities.TriageResult, error) {
	if patient == nil {
		return nil, errors.New("patient is required")
	}

	text, err := c.complete(ctx, triageSystemPrompt, buildTriageUserPrompt(patient), 500)
	if err != nil {
		return nil, err
	}

	raw, err := extractJSON(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse groq response: %w", err)
	}

	var payload triagePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse groq response: %w", err)
	}

	return &entities.TriageResult{
		Severity:          entities.ParseSeverity(payload.Severity),
		Recommendation:    payload.Recommendation,
		Reasoning:         payload.Reasoning,
		EstimatedWaitTime: payload.EstimatedWaitTime,
		AIGeneratedAt:     time.Now(),
	}, nil
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm == 0 {
		rpm = 60
	}
	if rpm < 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}
	return newTokenBucketWithRate(rpm, burst)
}

type tokenBucket struct {
	tokens chan struct{}
}

func newTokenBucketWithRate(rpm int, burst int) *tokenBucket {
	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
	}

	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			select {
			case bucket.tokens <- struct{}{}:
			default:
			}
		}
	}()

	return bucket
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

type groqMetricSet struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var groqMetricsInit = false
var groqMetrics groqMetricSet

func ensureGroqMetrics() {
	if groqMetricsInit {
		return
	}
	meter := otel.Meter("github.com/nerve-health/referral/backend/groq")

	requestCount, err := meter.Int64Counter(
		"ai.groq.request.count",
		metric.WithDescription("Number of Groq requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.groq.request.duration",
		metric.WithDescription("Groq request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.groq.request.errors",
		metric.WithDescription("Number of Groq request errors"),
	)
	if err != nil {
		return
	}
	rateLimitWait, err := meter.Float64Histogram(
		"ai.groq.rate_limit.wait",
		metric.WithDescription("Time spent waiting for Groq rate limiter in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}

	groqMetrics = groqMetricSet{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
		rateLimitWait:   rateLimitWait,
	}
	groqMetricsInit = true
}

func recordGroqMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureGroqMetrics()
	if !groqMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "groq"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	groqMetrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	groqMetrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		groqMetrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordGroqRateLimitWait(ctx context.Context, model string, wait time.Duration) {
	ensureGroqMetrics()
	if !groqMetricsInit {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "groq"),
		attribute.String("ai.model", model),
	}
	groqMetrics.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}
