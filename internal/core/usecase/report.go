package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rvaldezm/docscope/internal/core/domain"
	"github.com/rvaldezm/docscope/internal/core/ports"
)

// ReportUseCase synthesizes one report from per-slot extracted JSONs. Every
// report kind is pure configuration: slot→form mappings plus a synthesis
// template; there is a single control flow for all kinds.
type ReportUseCase struct {
	forms      ports.FormFiller
	completion ports.CompletionService
	sessions   ports.SessionStore
	configs    map[string]domain.ReportConfig
	logger     *slog.Logger
}

func NewReportUseCase(
	forms ports.FormFiller,
	completion ports.CompletionService,
	sessions ports.SessionStore,
	configs map[string]domain.ReportConfig,
	logger *slog.Logger,
) *ReportUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportUseCase{
		forms:      forms,
		completion: completion,
		sessions:   sessions,
		configs:    configs,
		logger:     logger,
	}
}

func (uc *ReportUseCase) Generate(ctx context.Context, sessionID, kind string, filesBySlot map[string][]domain.FileUpload) (string, error) {
	config, ok := uc.configs[kind]
	if !ok {
		return "", fmt.Errorf("unknown report kind %q", kind)
	}

	// Route each upload slot to its form template name.
	byForm := make(map[string][]domain.FileUpload)
	for slot, form := range config.SlotForms {
		if files := filesBySlot[slot]; len(files) > 0 {
			byForm[form] = append(byForm[form], files...)
		}
	}
	if len(byForm) == 0 {
		return "", fmt.Errorf("report %s: no files supplied for any configured slot", kind)
	}

	results, err := uc.forms.FillForms(ctx, byForm)
	if err != nil {
		return "", fmt.Errorf("fill forms for report %s: %w", kind, err)
	}

	// Every form the config declares gets a substitution: forms whose slots
	// received no files resolve to an explicit gap marker, never a leftover
	// placeholder in the synthesis prompt.
	template := config.Template
	seen := make(map[string]struct{}, len(config.SlotForms))
	for _, form := range config.SlotForms {
		if _, done := seen[form]; done {
			continue
		}
		seen[form] = struct{}{}

		result, ok := results[form]
		if !ok {
			result = domain.SlotResult{Error: "no data supplied"}
		}
		placeholder := fmt.Sprintf("_JSON_%s_", strings.ToUpper(form))
		template = strings.ReplaceAll(template, placeholder, slotJSON(result))
	}

	report, err := uc.completion.Complete(ctx, template)
	if err != nil {
		return "", fmt.Errorf("generate report %s: %w", kind, err)
	}

	uc.appendTranscript(ctx, sessionID, config.Kind, report)
	return report, nil
}

// slotJSON renders a slot result for template substitution. Failed slots
// substitute an explicit error object so the synthesis prompt sees the gap.
func slotJSON(result domain.SlotResult) string {
	if !result.OK() {
		marker, _ := json.Marshal(map[string]string{"error": result.Error})
		return string(marker)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result.Data, "", "  "); err != nil {
		return string(result.Data)
	}
	return pretty.String()
}

func (uc *ReportUseCase) appendTranscript(ctx context.Context, sessionID, kind, report string) {
	now := time.Now().UTC()
	messages := []domain.Message{
		{Sender: domain.SenderUser, Text: fmt.Sprintf("Generate report: %s", kind), Timestamp: now},
		{Sender: domain.SenderAssistant, Text: report, Timestamp: now},
	}
	for _, msg := range messages {
		if err := uc.sessions.AppendMessage(ctx, sessionID, msg); err != nil {
			uc.logger.Warn("append_report_message_failed", "session_id", sessionID, "error", err)
			return
		}
	}
}
