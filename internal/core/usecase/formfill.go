package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rvaldezm/docscope/internal/core/domain"
	"github.com/rvaldezm/docscope/internal/core/ports"
)

// FormFillUseCase runs extraction over a batch of files per logical form
// slot, concurrently, and merges results into one map for downstream
// template substitution. Slots are joined, not pipelined: a slow or failing
// slot never delays or fails its siblings.
type FormFillUseCase struct {
	extractor   ports.TextExtractor
	completion  ports.CompletionService
	templates   map[string]domain.FormTemplate
	logger      *slog.Logger
	instruments ports.PipelineInstruments
}

func NewFormFillUseCase(
	extractor ports.TextExtractor,
	completion ports.CompletionService,
	templates map[string]domain.FormTemplate,
	logger *slog.Logger,
) *FormFillUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &FormFillUseCase{
		extractor:   extractor,
		completion:  completion,
		templates:   templates,
		logger:      logger,
		instruments: noopInstruments{},
	}
}

// WithInstruments attaches the metric registry; slot outcomes are counted
// through it.
func (uc *FormFillUseCase) WithInstruments(in ports.PipelineInstruments) *FormFillUseCase {
	if in != nil {
		uc.instruments = in
	}
	return uc
}

// FillForms processes every slot that has at least one file. The returned
// map preserves the slot → result correspondence even though requests
// complete out of order; failed slots carry an error marker instead of
// being omitted.
func (uc *FormFillUseCase) FillForms(ctx context.Context, filesBySlot map[string][]domain.FileUpload) (map[string]domain.SlotResult, error) {
	slots := make([]string, 0, len(filesBySlot))
	for slot, files := range filesBySlot {
		if len(files) > 0 {
			slots = append(slots, slot)
		}
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("fill forms: no files supplied for any slot")
	}

	type slotOutcome struct {
		slot   string
		result domain.SlotResult
	}
	outcomes := make([]slotOutcome, len(slots))

	var wg sync.WaitGroup
	for i, slot := range slots {
		wg.Add(1)
		go func(i int, slot string) {
			defer wg.Done()
			data, err := uc.fillSlot(ctx, slot, filesBySlot[slot])
			if err != nil {
				uc.logger.Warn("form_slot_failed", "slot", slot, "error", err)
				uc.instruments.IncFormSlot("failed")
				outcomes[i] = slotOutcome{slot: slot, result: domain.SlotResult{Error: err.Error()}}
				return
			}
			uc.instruments.IncFormSlot("filled")
			outcomes[i] = slotOutcome{slot: slot, result: domain.SlotResult{Data: data}}
		}(i, slot)
	}
	wg.Wait()

	results := make(map[string]domain.SlotResult, len(outcomes))
	for _, o := range outcomes {
		results[o.slot] = o.result
	}
	return results, nil
}

func (uc *FormFillUseCase) fillSlot(ctx context.Context, slot string, files []domain.FileUpload) (json.RawMessage, error) {
	template, ok := uc.templates[slot]
	if !ok {
		return nil, fmt.Errorf("no form template configured for slot %q", slot)
	}

	combined, err := uc.combineTexts(ctx, files)
	if err != nil {
		return nil, err
	}

	prompt := strings.ReplaceAll(template.Prompt, domain.SchemaPlaceholder, template.Schema)
	prompt = strings.ReplaceAll(prompt, domain.TextPlaceholder, combined)

	raw, err := uc.completion.CompleteJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("structured extraction for slot %s: %w", slot, err)
	}

	var shape map[string]any
	if err := json.Unmarshal([]byte(raw), &shape); err != nil {
		return nil, &domain.SchemaParseError{Slot: slot, Raw: raw, Err: err}
	}
	return json.RawMessage(raw), nil
}

// combineTexts extracts every file in the slot and concatenates the texts
// with per-file start/end markers so the model can attribute content to a
// source file.
func (uc *FormFillUseCase) combineTexts(ctx context.Context, files []domain.FileUpload) (string, error) {
	parts := make([]string, 0, len(files))
	for _, file := range files {
		text, err := uc.extractor.Extract(ctx, file)
		if err != nil {
			return "", fmt.Errorf("extract %s: %w", file.OriginalName, err)
		}
		parts = append(parts, fmt.Sprintf(
			"--- BEGIN DOCUMENT: %s ---\n\n%s\n\n--- END DOCUMENT: %s ---",
			file.OriginalName, text, file.OriginalName,
		))
	}
	combined := strings.Join(parts, "\n\n")
	if strings.TrimSpace(combined) == "" {
		return "", domain.WrapError(domain.ErrExtraction, "combine slot texts", errors.New("no content extracted from any file"))
	}
	return combined, nil
}
