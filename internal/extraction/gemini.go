package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"pdf2ofx/internal/canonical"
	"pdf2ofx/internal/config"
	"pdf2ofx/internal/logging"
	"pdf2ofx/internal/stage"
)

// Extractor produces a raw extraction payload for a document. Failures
// surface as EXTRACTION stage failures so the batch boundary can record
// them per statement.
type Extractor interface {
	Extract(ctx context.Context, documentPath string) (canonical.Payload, error)
}

const extractionPrompt = `You are a bank statement extraction engine.

Task:
- Read the attached bank statement and extract its data.
- Output STRICT JSON only (no comments, no trailing commas, no extra text).
- Output a single JSON object.

The object must have these fields:
- "bank_name": string or null
- "account_number": string or null
- "start_date": string, ISO format "YYYY-MM-DD", or null
- "end_date": string, ISO format "YYYY-MM-DD", or null
- "starting_balance": number or null
- "ending_balance": number or null
- "currency": string (e.g. "EUR") or null
- "confidence": number between 0 and 1
- "transactions": JSON array of objects

Each transaction object must have these fields:
- "operation_date": string, ISO format "YYYY-MM-DD"
- "posting_date": string or null
- "value_date": string or null
- "amount": number (positive for money IN, negative for money OUT) or null
- "debit_amount": number (unsigned) or null
- "credit_amount": number (unsigned) or null
- "description": string
- "row_confidence_notes": string or null
- "page": integer page number the transaction appears on

Rules:
- If the statement has separate debit/credit columns, fill both "debit_amount"/"credit_amount" and the signed "amount".
- Extract ALL transactions, across all pages.
- Return ONLY valid raw JSON. Do NOT wrap the response in code fences.
- Output must begin with "{" and end with "}".
`

// Gemini extracts statements through the Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	timeout     time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// NewGemini builds a Gemini extractor from configuration.
func NewGemini(ctx context.Context, cfg config.Extraction, logger *slog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{
		client:      client,
		model:       cfg.Model,
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		maxAttempts: cfg.MaxAttempts,
		logger:      logging.NewComponentLogger(logger, "extraction"),
	}, nil
}

// Extract uploads the document inline and decodes the model's JSON reply.
// Transient failures are retried with backoff up to the configured attempt
// limit; the final error is an EXTRACTION stage failure.
func (g *Gemini) Extract(ctx context.Context, documentPath string) (canonical.Payload, error) {
	data, err := os.ReadFile(documentPath)
	if err != nil {
		return nil, stage.NewFailure(stage.Extraction,
			"cannot read source document",
			"check the path and permissions", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: extractionPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: "application/pdf",
						Data:     data,
					},
				},
			},
		},
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		payload, err := g.generate(ctx, contents)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		g.logger.Warn("extraction attempt failed",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", g.maxAttempts),
			logging.Error(err),
		)
		if attempt < g.maxAttempts {
			select {
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			case <-ctx.Done():
			}
		}
	}

	return nil, stage.NewFailure(stage.Extraction,
		"extraction provider failed",
		"check GEMINI_API_KEY, quota, and network connectivity", lastErr)
}

func (g *Gemini) generate(ctx context.Context, contents []*genai.Content) (canonical.Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	clean := cleanModelJSON(rawText)
	var payload canonical.Payload
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, fmt.Errorf("malformed JSON from model: %w", err)
	}
	return payload, nil
}

// cleanModelJSON strips Markdown fences and surrounding prose the model may
// emit despite instructions, keeping the outermost JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
