package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"strings"
	"sync"
	"text/template"
	"time"
)

var ErrCategorizeInProgress = errors.New("categorization is already running")

const (
	defaultBatchSize         = 10
	defaultRequestsPerMinute = 20
	promptExcerptLimit       = 500
)

const DefaultPromptTemplate = `You are filing downloaded 3D printable models into an existing library.

Existing categories:
{{range .Categories}}- {{.}}{{with index $.Descriptions .}}: {{.}}{{end}}
{{end}}
Items:
{{range $i, $item := .Items}}{{inc $i}}. {{$item.Name}}
{{- if $item.Filenames}}
   Files: {{join (limit $item.Filenames 20) ", "}}{{end}}
{{- if $item.Designer}}
   Designer: {{$item.Designer}}{{end}}
{{- if $item.Tags}}
   Tags: {{join $item.Tags ", "}}{{end}}
{{- if $item.Text}}
   Document text: {{excerpt $item.Text}}{{end}}
{{- if $item.Readme}}
   Readme: {{excerpt $item.Readme}}{{end}}
{{end}}
Pick the best existing category for every item. Reply with only a JSON array holding one object
per item, in the same order as the items:
[{"category": "<existing category>", "confidence": "high|medium|low"}]
`

type CategorizerOptions struct {
	BatchSize            int
	RequestsPerMinute    int
	CategoryDescriptions map[string]string
}

// JobProgress is the pollable state of the current or last categorize job.
type JobProgress struct {
	JobID            string       `json:"job_id,omitempty"`
	Active           bool         `json:"active"`
	ItemsProcessed   int          `json:"items_processed"`
	TotalItems       int          `json:"total_items"`
	BatchesProcessed int          `json:"batches_processed"`
	TotalBatches     int          `json:"total_batches"`
	Status           string       `json:"status"`
	Results          []Suggestion `json:"results,omitempty"`
	Error            string       `json:"error,omitempty"`
	StartedAt        *time.Time   `json:"started_at,omitempty"`
	FinishedAt       *time.Time   `json:"finished_at,omitempty"`
}

type Categorizer struct {
	fuzzy        *Fuzzy
	limiter      *rate.Limiter
	batchSize    int
	descriptions map[string]string
	log          *zap.SugaredLogger

	mutex    sync.Mutex
	progress JobProgress
}

func NewCategorizer(fuzzy *Fuzzy, options CategorizerOptions, log *zap.SugaredLogger) *Categorizer {
	if options.BatchSize <= 0 {
		options.BatchSize = defaultBatchSize
	}

	if options.RequestsPerMinute <= 0 {
		options.RequestsPerMinute = defaultRequestsPerMinute
	}

	return &Categorizer{
		fuzzy:        fuzzy,
		limiter:      rate.NewLimiter(rate.Every(time.Minute/time.Duration(options.RequestsPerMinute)), 1),
		batchSize:    options.BatchSize,
		descriptions: options.CategoryDescriptions,
		log:          log,
		progress:     JobProgress{Status: "idle"},
	}
}

type Job struct {
	Items          []Input
	Categories     []string
	PromptTemplate string
}

// Categorize runs job to completion and returns one suggestion per item, in order.
func (c *Categorizer) Categorize(ctx context.Context, completer Completer, job Job) ([]Suggestion, error) {
	if _, err := c.begin(completer, job); err != nil {
		return nil, err
	}

	return c.run(ctx, completer, job)
}

// Start validates job and runs it in the background, returning the job ID to poll with Progress.
func (c *Categorizer) Start(ctx context.Context, completer Completer, job Job) (string, error) {
	jobID, err := c.begin(completer, job)

	if err != nil {
		return "", err
	}

	go func() {
		_, _ = c.run(ctx, completer, job)
	}()

	return jobID, nil
}

func (c *Categorizer) Progress() JobProgress {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	progress := c.progress
	progress.Results = append([]Suggestion(nil), c.progress.Results...)
	return progress
}

func (c *Categorizer) begin(completer Completer, job Job) (string, error) {
	if completer == nil {
		return "", ErrMissingAPIKey
	}

	if _, err := parsePromptTemplate(job.PromptTemplate); err != nil {
		return "", err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.progress.Active {
		return "", ErrCategorizeInProgress
	}

	now := time.Now()
	c.progress = JobProgress{
		JobID:        uuid.NewString(),
		Active:       true,
		TotalItems:   len(job.Items),
		TotalBatches: (len(job.Items) + c.batchSize - 1) / c.batchSize,
		Status:       "running",
		StartedAt:    &now,
	}

	return c.progress.JobID, nil
}

func (c *Categorizer) run(ctx context.Context, completer Completer, job Job) ([]Suggestion, error) {
	results := make([]Suggestion, 0, len(job.Items))
	var runErr error

	for start := 0; start < len(job.Items); start += c.batchSize {
		batch := job.Items[start:min(start+c.batchSize, len(job.Items))]

		if err := c.limiter.Wait(ctx); err != nil {
			runErr = err
			break
		}

		suggestions, err := c.categorizeBatch(ctx, completer, job, batch)

		if err != nil {
			c.log.Warnw("categorize batch failed, using fuzzy matches", "batch_start", start, "error", err)
		}

		results = append(results, suggestions...)

		c.mutex.Lock()
		c.progress.ItemsProcessed += len(batch)
		c.progress.BatchesProcessed++
		c.progress.Results = append(c.progress.Results, suggestions...)
		c.mutex.Unlock()
	}

	// Anything left after a cancellation still gets a fuzzy answer
	for _, item := range job.Items[len(results):] {
		results = append(results, c.fuzzy.Suggest(context.WithoutCancel(ctx), item, job.Categories))
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	c.progress.Active = false
	c.progress.FinishedAt = &now
	c.progress.Results = results
	c.progress.Status = "completed"

	if runErr != nil {
		c.progress.Status = "failed"
		c.progress.Error = runErr.Error()
	}

	return results, runErr
}

// categorizeBatch always returns one suggestion per item, falling back to fuzzy matching for
// every item the LLM did not answer usefully.
func (c *Categorizer) categorizeBatch(ctx context.Context, completer Completer, job Job, batch []Input) ([]Suggestion, error) {
	var parsed []llmAnswer
	prompt, err := c.buildPrompt(job, batch)

	if err == nil {
		var reply string
		reply, err = completer.Complete(ctx, prompt)

		if err == nil {
			parsed, err = parseAnswers(reply)
		}
	}

	suggestions := make([]Suggestion, 0, len(batch))

	for i, item := range batch {
		if i < len(parsed) {
			if suggestion, ok := parsed[i].toSuggestion(job.Categories); ok {
				suggestions = append(suggestions, suggestion)
				continue
			}
		}

		suggestions = append(suggestions, c.fuzzy.Suggest(ctx, item, job.Categories))
	}

	return suggestions, err
}

type promptData struct {
	Categories   []string
	Descriptions map[string]string
	Items        []Input
}

var promptFuncs = template.FuncMap{
	"inc":  func(i int) int { return i + 1 },
	"join": strings.Join,
	"limit": func(values []string, n int) []string {
		return values[:min(n, len(values))]
	},
	"excerpt": func(s string) string {
		s = strings.Join(strings.Fields(s), " ")

		if runes := []rune(s); len(runes) > promptExcerptLimit {
			return string(runes[:promptExcerptLimit]) + "..."
		}

		return s
	},
}

func parsePromptTemplate(text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultPromptTemplate
	}

	tmpl, err := template.New("prompt").Funcs(promptFuncs).Parse(text)

	if err != nil {
		return nil, fmt.Errorf("invalid prompt template: %w", err)
	}

	return tmpl, nil
}

func (c *Categorizer) buildPrompt(job Job, batch []Input) (string, error) {
	tmpl, err := parsePromptTemplate(job.PromptTemplate)

	if err != nil {
		return "", err
	}

	descriptions := c.descriptions

	if descriptions == nil {
		descriptions = map[string]string{}
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, promptData{
		Categories:   job.Categories,
		Descriptions: descriptions,
		Items:        batch,
	})

	return buf.String(), err
}

type llmAnswer struct {
	Category   string `json:"category"`
	Confidence string `json:"confidence"`
}

func (a llmAnswer) toSuggestion(categories []string) (Suggestion, bool) {
	for _, category := range categories {
		if !strings.EqualFold(strings.TrimSpace(a.Category), category) {
			continue
		}

		confidence := Confidence(strings.ToLower(strings.TrimSpace(a.Confidence)))

		if confidence != High && confidence != Low {
			confidence = Medium
		}

		return Suggestion{Category: category, Confidence: confidence, Source: SourceLLM}, true
	}

	return Suggestion{}, false
}

// parseAnswers reads the first JSON array in reply, ignoring prose around it. A truncated array
// yields the elements that were complete.
func parseAnswers(reply string) ([]llmAnswer, error) {
	start := strings.Index(reply, "[")

	if start < 0 {
		return nil, fmt.Errorf("no JSON array in LLM reply")
	}

	decoder := json.NewDecoder(strings.NewReader(reply[start:]))

	if _, err := decoder.Token(); err != nil {
		return nil, err
	}

	var answers []llmAnswer

	for decoder.More() {
		var answer llmAnswer

		if err := decoder.Decode(&answer); err != nil {
			if len(answers) == 0 {
				return nil, fmt.Errorf("unreadable LLM reply: %w", err)
			}

			return answers, nil
		}

		answers = append(answers, answer)
	}

	return answers, nil
}
