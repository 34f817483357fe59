package ingest

import (
	"context"
	"os"
	"print-vault/settings"
	"print-vault/suggest"
)

func (s *Service) completer(ctx context.Context) (suggest.Completer, error) {
	apiKey, err := s.settings.Get(ctx, settings.LLMAPIKey)

	if err != nil {
		return nil, err
	}

	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnvironmentVariable)
	}

	return suggest.NewCompleter(s.options.LLMProvider, apiKey, s.options.LLMBaseURL, s.options.LLMModel)
}

func (s *Service) job(ctx context.Context, items []Item) (suggest.Job, error) {
	categories, err := s.Categories(ctx)

	if err != nil {
		return suggest.Job{}, err
	}

	prompt, err := s.settings.Get(ctx, settings.CustomPrompt)

	if err != nil {
		return suggest.Job{}, err
	}

	inputs := make([]suggest.Input, 0, len(items))

	for _, item := range items {
		inputs = append(inputs, item.Input())
	}

	return suggest.Job{Items: inputs, Categories: categories, PromptTemplate: prompt}, nil
}

// Categorize asks the LLM about items and waits for the answer. When items is empty the
// ingestion root is scanned first.
func (s *Service) Categorize(ctx context.Context, items []Item) ([]Item, error) {
	completer, err := s.completer(ctx)

	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		if items, err = s.Scan(ctx); err != nil {
			return nil, err
		}
	}

	job, err := s.job(ctx, items)

	if err != nil {
		return nil, err
	}

	suggestions, err := s.categorizer.Categorize(ctx, completer, job)

	if err != nil {
		return nil, err
	}

	categorized := append([]Item(nil), items...)

	for i := range categorized {
		categorized[i].Suggestion = suggestions[i]
	}

	return categorized, nil
}

// StartCategorize is Categorize in the background. Poll CategorizeProgress for the results.
func (s *Service) StartCategorize(ctx context.Context, items []Item) (string, error) {
	completer, err := s.completer(ctx)

	if err != nil {
		return "", err
	}

	if len(items) == 0 {
		if items, err = s.Scan(ctx); err != nil {
			return "", err
		}
	}

	job, err := s.job(ctx, items)

	if err != nil {
		return "", err
	}

	return s.categorizer.Start(context.WithoutCancel(ctx), completer, job)
}

func (s *Service) CategorizeProgress() suggest.JobProgress {
	return s.categorizer.Progress()
}
