package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rvaldezm/docscope/internal/core/domain"
)

type catalogFake struct {
	mu      sync.Mutex
	docs    map[string]domain.Document
	created []domain.Document
	deleted []string

	listErr   error
	countErr  error
	createErr error
	deleteErr error
}

func newCatalogFake(docs ...domain.Document) *catalogFake {
	f := &catalogFake{docs: make(map[string]domain.Document)}
	for _, d := range docs {
		f.docs[d.ID] = d
	}
	return f
}

func (f *catalogFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.ID] = *doc
	f.created = append(f.created, *doc)
	return nil
}

func (f *catalogFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "catalog fake", fmt.Errorf("id %s", id))
	}
	return &doc, nil
}

func (f *catalogFake) ListByScope(_ context.Context, scope domain.Scope) ([]domain.Document, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Document
	for _, d := range f.docs {
		if d.Scope == scope {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *catalogFake) CountByScope(_ context.Context, scope domain.Scope) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, d := range f.docs {
		if d.Scope == scope {
			n++
		}
	}
	return n, nil
}

func (f *catalogFake) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type sessionStoreFake struct {
	mu        sync.Mutex
	session   *domain.Session
	getErr    error
	setErr    error
	createErr error
	created   []domain.Session
	active    []domain.Category
	appended  []domain.Document
	removed   []string
	messages  []domain.Message
}

func (f *sessionStoreFake) Create(_ context.Context, session *domain.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *session)
	return nil
}

func (f *sessionStoreFake) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.session == nil || f.session.ID != sessionID {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "session fake", fmt.Errorf("id %s", sessionID))
	}
	copySession := *f.session
	return &copySession, nil
}

func (f *sessionStoreFake) SetActiveCategory(_ context.Context, _ string, category domain.Category) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = append(f.active, category)
	return nil
}

func (f *sessionStoreFake) AppendDocument(_ context.Context, _ string, _ domain.Category, doc domain.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, doc)
	return nil
}

func (f *sessionStoreFake) RemoveDocument(_ context.Context, _ string, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, documentID)
	return nil
}

func (f *sessionStoreFake) AppendMessage(_ context.Context, _ string, msg domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

type extractorFake struct {
	texts map[string]string
	errs  map[string]error
}

func (f *extractorFake) Extract(_ context.Context, file domain.FileUpload) (string, error) {
	if err := f.errs[file.OriginalName]; err != nil {
		return "", err
	}
	return f.texts[file.OriginalName], nil
}

type chunkerFake struct {
	perText map[string][]string
}

func (f *chunkerFake) Split(text string) []string {
	if f.perText != nil {
		return f.perText[text]
	}
	return []string{text}
}

type embedderFake struct {
	mu      sync.Mutex
	calls   int
	vector  []float32
	err     error
	perText map[string][]float32
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.perText[text]; ok {
			out[i] = v
			continue
		}
		out[i] = f.vector
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.perText[text]; ok {
		return v, nil
	}
	return f.vector, nil
}

type indexFake struct {
	mu        sync.Mutex
	upserted  []domain.ChunkRecord
	queries   []domain.ScopeFilter
	fragments []domain.RetrievedFragment
	deleted   []string

	upsertErr error
	queryErr  error
	deleteErr error
}

func (f *indexFake) Upsert(_ context.Context, records []domain.ChunkRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, records...)
	return nil
}

func (f *indexFake) Query(_ context.Context, _ []float32, _ int, filter domain.ScopeFilter) ([]domain.RetrievedFragment, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, filter)
	return f.fragments, nil
}

func (f *indexFake) DeleteByDocument(_ context.Context, documentID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, documentID)
	return nil
}

type completionFake struct {
	mu       sync.Mutex
	prompts  []string
	reply    string
	jsonBody string
	err      error
	jsonErr  error
}

func (f *completionFake) Complete(_ context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, nil
}

func (f *completionFake) CompleteJSON(_ context.Context, prompt string) (string, error) {
	if f.jsonErr != nil {
		return "", f.jsonErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.jsonBody, nil
}

type queueFake struct {
	mu        sync.Mutex
	published []domain.IngestionStatus
	err       error
}

func (f *queueFake) PublishIngestionStatus(_ context.Context, status domain.IngestionStatus) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, status)
	return nil
}

func (f *queueFake) SubscribeIngestionStatus(context.Context, func(context.Context, domain.IngestionStatus) error) error {
	return nil
}

type instrumentsFake struct {
	mu            sync.Mutex
	fileStatuses  []string
	chunksIndexed int
	retrievals    []int
	switches      []string
	slotOutcomes  []string
}

func (f *instrumentsFake) ObserveFileIngested(status string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileStatuses = append(f.fileStatuses, status)
}

func (f *instrumentsFake) AddChunksIndexed(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunksIndexed += n
}

func (f *instrumentsFake) ObserveRetrieval(_ time.Duration, fragments int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retrievals = append(f.retrievals, fragments)
}

func (f *instrumentsFake) IncContextSwitch(category string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.switches = append(f.switches, category)
}

func (f *instrumentsFake) IncFormSlot(outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slotOutcomes = append(f.slotOutcomes, outcome)
}

type formFillerFake struct {
	results map[string]domain.SlotResult
	err     error
	got     map[string][]domain.FileUpload
}

func (f *formFillerFake) FillForms(_ context.Context, filesBySlot map[string][]domain.FileUpload) (map[string]domain.SlotResult, error) {
	f.got = filesBySlot
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}
