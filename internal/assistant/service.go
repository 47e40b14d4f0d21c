// Package assistant orchestrates the answer pipeline: intent checks,
// embedding, retrieval, answer composition, provenance lookup, caching, and
// transcript persistence.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ionutpopescu27/ByteMeHackaton/internal/conversation"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/intent"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/qacache"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/rag"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/reports"
	"github.com/ionutpopescu27/ByteMeHackaton/pkg/logging"
)

// SeedCollection holds the curated Q/A pairs answered by the general flow.
const SeedCollection = "my_db"

// DefaultK is the retrieval depth when the caller does not specify one.
const DefaultK = 3

// smsReply is spoken when the caller is routed to the web form instead of an
// answer. The telephony layer matches on the word "sms".
const smsReply = "Sent a sms"

// agentReply is spoken when the caller asks for a person. The word "agent"
// drives the escalated_human label at close.
const agentReply = "Please keep the call open, an agent will answer your questions shortly."

// Narrow views of the collaborators, so tests can fake them.
type (
	embedder interface {
		Embed(ctx context.Context, text string) ([]float32, error)
	}
	retriever interface {
		Query(ctx context.Context, collection string, vector []float32, k int) ([]rag.Document, error)
	}
	composer interface {
		Compose(ctx context.Context, query string, docs []rag.Document) (string, error)
	}
	intentClassifier interface {
		WantsForm(ctx context.Context, text string) (bool, error)
		WantsAgent(ctx context.Context, text string) (bool, error)
	}
	formGenerator interface {
		Generate(ctx context.Context, text string) (intent.Form, error)
	}
	pageLocator interface {
		Locate(dir, snippet string) (string, int)
	}
	transcriptStore interface {
		Start(ctx context.Context, id string) (string, error)
		AppendMessage(ctx context.Context, conversationID, role, text, sourcePath string, sourcePage int) error
		AppendForm(ctx context.Context, conversationID string, questions []string, locale string) error
		Close(ctx context.Context, conversationID, phone string) (string, error)
		ByPhone(ctx context.Context, phone string) ([]conversation.Record, error)
	}
	sessionStore interface {
		Bind(ctx context.Context, callID, conversationID string) error
		Lookup(ctx context.Context, callID string) (string, error)
		Release(ctx context.Context, callID string) error
	}
	answerCache interface {
		Get(ctx context.Context, collection, question string) (*qacache.Entry, error)
		Save(ctx context.Context, collection, question string, entry qacache.Entry) error
	}
	reportWriter interface {
		Save(r reports.ConversationReport) (string, string, error)
	}
)

// Reply is the outcome of an answer request.
type Reply struct {
	Text       string       `json:"text"`
	Form       *intent.Form `json:"form,omitempty"`
	SourcePath string       `json:"source_path,omitempty"`
	SourcePage int          `json:"source_page,omitempty"`
	Cached     bool         `json:"cached,omitempty"`
}

// Service wires the pipeline together.
type Service struct {
	embedder   embedder
	retriever  retriever
	composer   composer
	classifier intentClassifier
	forms      formGenerator
	locator    pageLocator
	transcript transcriptStore
	sessions   sessionStore
	cache      answerCache
	reports    reportWriter

	docsDir string
	model   string
	tracer  trace.Tracer
	logger  *logging.Logger
}

// Options carries the service collaborators and settings.
type Options struct {
	Embedder   embedder
	Retriever  retriever
	Composer   composer
	Classifier intentClassifier
	Forms      formGenerator
	Locator    pageLocator
	Transcript transcriptStore
	Sessions   sessionStore
	Cache      answerCache
	Reports    reportWriter
	DocsDir    string
	Model      string
	Logger     *logging.Logger
}

// NewService creates the assistant service.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		embedder:   opts.Embedder,
		retriever:  opts.Retriever,
		composer:   opts.Composer,
		classifier: opts.Classifier,
		forms:      opts.Forms,
		locator:    opts.Locator,
		transcript: opts.Transcript,
		sessions:   opts.Sessions,
		cache:      opts.Cache,
		reports:    opts.Reports,
		docsDir:    opts.DocsDir,
		model:      opts.Model,
		tracer:     otel.Tracer("byteme.internal.assistant"),
		logger:     logger,
	}
}

// Answer handles a general question against the curated Q/A collection and
// records both sides of the exchange.
func (s *Service) Answer(ctx context.Context, callID, text string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "assistant.answer")
	defer span.End()

	if s.cache != nil {
		if entry, err := s.cache.Get(ctx, SeedCollection, text); err != nil {
			s.logger.Warn("answer cache lookup failed", "error", err)
		} else if entry != nil {
			s.record(ctx, callID, text, entry.Answer, "", 0)
			return entry.Answer, nil
		}
	}

	reply, err := s.retrieveAndCompose(ctx, text, SeedCollection, DefaultK)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	s.record(ctx, callID, text, reply.Text, "", 0)

	if s.cache != nil {
		if err := s.cache.Save(ctx, SeedCollection, text, qacache.Entry{Answer: reply.Text}); err != nil {
			s.logger.Warn("answer cache save failed", "error", err)
		}
	}
	return reply.Text, nil
}

// AnswerWithDocs handles a question against an uploaded document collection.
// A form intent short-circuits retrieval; otherwise the reply carries the
// source PDF and page when provenance is found.
func (s *Service) AnswerWithDocs(ctx context.Context, callID, text, collection string, k int) (Reply, error) {
	ctx, span := s.tracer.Start(ctx, "assistant.answer_with_docs")
	defer span.End()

	if k <= 0 {
		k = DefaultK
	}

	wantsForm, err := s.classifier.WantsForm(ctx, text)
	if err != nil {
		span.RecordError(err)
		return Reply{}, err
	}
	if wantsForm {
		form, err := s.forms.Generate(ctx, text)
		if err != nil {
			span.RecordError(err)
			return Reply{}, err
		}
		conversationID := s.record(ctx, callID, text, smsReply, "", 0)
		if conversationID != "" {
			if err := s.transcript.AppendForm(ctx, conversationID, form.Questions, form.Locale); err != nil {
				s.logger.Error("persist form failed", "error", err)
			}
		}
		return Reply{Text: smsReply, Form: &form}, nil
	}

	wantsAgent, err := s.classifier.WantsAgent(ctx, text)
	if err != nil {
		span.RecordError(err)
		return Reply{}, err
	}
	if wantsAgent {
		s.record(ctx, callID, text, agentReply, "", 0)
		return Reply{Text: agentReply}, nil
	}

	if s.cache != nil {
		if entry, err := s.cache.Get(ctx, collection, text); err != nil {
			s.logger.Warn("answer cache lookup failed", "error", err)
		} else if entry != nil {
			s.record(ctx, callID, text, entry.Answer, entry.SourcePath, entry.SourcePage)
			return Reply{Text: entry.Answer, SourcePath: entry.SourcePath, SourcePage: entry.SourcePage, Cached: true}, nil
		}
	}

	reply, err := s.retrieveAndCompose(ctx, text, collection, k)
	if err != nil {
		span.RecordError(err)
		return Reply{}, err
	}

	s.record(ctx, callID, text, reply.Text, reply.SourcePath, reply.SourcePage)

	if s.cache != nil {
		if err := s.cache.Save(ctx, collection, text, qacache.Entry{
			Answer:     reply.Text,
			SourcePath: reply.SourcePath,
			SourcePage: reply.SourcePage,
		}); err != nil {
			s.logger.Warn("answer cache save failed", "error", err)
		}
	}
	return reply, nil
}

// Query runs plain retrieval with no answer generation.
func (s *Service) Query(ctx context.Context, text, collection string, k int) ([]rag.Document, error) {
	ctx, span := s.tracer.Start(ctx, "assistant.query")
	defer span.End()

	if k <= 0 {
		k = DefaultK
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	docs, err := s.retriever.Query(ctx, collection, vector, k)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return docs, nil
}

// EndCall closes the call's conversation, deriving its label and attaching
// the phone number found in text. A call without an active conversation is
// not an error.
func (s *Service) EndCall(ctx context.Context, callID, text string) (phone, label string, err error) {
	ctx, span := s.tracer.Start(ctx, "assistant.end_call")
	defer span.End()

	phone = conversation.ExtractPhone(text)

	conversationID, err := s.sessions.Lookup(ctx, callID)
	if errors.Is(err, conversation.ErrNoSession) {
		return phone, "", nil
	}
	if err != nil {
		span.RecordError(err)
		return phone, "", err
	}

	label, err = s.transcript.Close(ctx, conversationID, phone)
	if err != nil {
		span.RecordError(err)
		return phone, "", fmt.Errorf("assistant: close conversation: %w", err)
	}
	if err := s.sessions.Release(ctx, callID); err != nil {
		s.logger.Warn("release session failed", "call_id", callID, "error", err)
	}
	return phone, label, nil
}

// History returns the caller's past conversations, newest first.
func (s *Service) History(ctx context.Context, phone string) ([]conversation.Record, error) {
	return s.transcript.ByPhone(ctx, phone)
}

func (s *Service) retrieveAndCompose(ctx context.Context, text, collection string, k int) (Reply, error) {
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return Reply{}, err
	}
	docs, err := s.retriever.Query(ctx, collection, vector, k)
	if err != nil {
		return Reply{}, err
	}
	answer, err := s.composer.Compose(ctx, text, docs)
	if err != nil {
		return Reply{}, err
	}

	reply := Reply{Text: answer}
	if len(docs) > 0 && s.locator != nil {
		reply.SourcePath, reply.SourcePage = s.locator.Locate(s.docsDir, docs[0].Content)
		if reply.SourcePage < 0 {
			reply.SourcePath, reply.SourcePage = "", 0
		}
	}

	s.saveReport(text, collection, k, docs, answer, reply.SourcePath, reply.SourcePage)
	return reply, nil
}

// record appends the user and bot turns to the call's conversation, starting
// one on first contact. Persistence failures are logged, not surfaced; the
// caller still gets their answer.
func (s *Service) record(ctx context.Context, callID, question, answer, sourcePath string, sourcePage int) string {
	conversationID, err := s.sessions.Lookup(ctx, callID)
	if errors.Is(err, conversation.ErrNoSession) {
		conversationID, err = s.transcript.Start(ctx, "")
		if err != nil {
			s.logger.Error("start conversation failed", "error", err)
			return ""
		}
		if err := s.sessions.Bind(ctx, callID, conversationID); err != nil {
			s.logger.Error("bind session failed", "call_id", callID, "error", err)
		}
	} else if err != nil {
		s.logger.Error("session lookup failed", "call_id", callID, "error", err)
		return ""
	}

	if err := s.transcript.AppendMessage(ctx, conversationID, conversation.RoleUser, question, "", 0); err != nil {
		s.logger.Error("persist user message failed", "error", err)
	}
	if err := s.transcript.AppendMessage(ctx, conversationID, conversation.RoleBot, answer, sourcePath, sourcePage); err != nil {
		s.logger.Error("persist bot message failed", "error", err)
	}
	return conversationID
}

func (s *Service) saveReport(query, collection string, k int, docs []rag.Document, answer, sourcePath string, sourcePage int) {
	if s.reports == nil {
		return
	}
	matches := make([]reports.Match, 0, len(docs))
	for i, d := range docs {
		matches = append(matches, reports.Match{Rank: i + 1, Text: d.Content})
	}
	page := sourcePage
	if sourcePath == "" {
		page = -1
	}
	r := reports.ConversationReport{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Query:      query,
		Collection: collection,
		K:          k,
		Matches:    matches,
		Summary:    rag.BuildSummary(docs, rag.SummaryMaxChars),
		Answer:     answer,
		Model:      s.model,
		SourcePath: sourcePath,
		SourcePage: page,
	}
	if _, _, err := s.reports.Save(r); err != nil {
		s.logger.Warn("save report failed", "error", err)
	}
}
