// Package conversation persists call transcripts to PostgreSQL and derives
// the terminal label of each conversation when it closes.
package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ionutpopescu27/ByteMeHackaton/pkg/logging"
)

// Message roles.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// ErrNotFound is returned when a conversation id does not exist.
var ErrNotFound = errors.New("conversation: not found")

// Record is a stored conversation with its messages and forms.
type Record struct {
	ID        string       `json:"id"`
	Phone     string       `json:"phone_number,omitempty"`
	Label     string       `json:"label,omitempty"`
	StartedAt time.Time    `json:"started_at"`
	EndedAt   *time.Time   `json:"ended_at,omitempty"`
	Messages  []Message    `json:"messages"`
	Forms     []FormRecord `json:"forms,omitempty"`
}

// Message is a single utterance. Messages are append-only.
type Message struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	Text       string    `json:"text"`
	SourcePath string    `json:"source_path,omitempty"`
	SourcePage int       `json:"source_page,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FormRecord is a claim form generated during a conversation.
type FormRecord struct {
	ID        string    `json:"id"`
	Questions []string  `json:"questions"`
	Locale    string    `json:"locale,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists conversations, messages, and forms.
type Store struct {
	db     *sql.DB
	tracer trace.Tracer
	logger *logging.Logger
}

// NewStore creates a conversation store over an open database handle.
func NewStore(db *sql.DB, logger *logging.Logger) *Store {
	if db == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		db:     db,
		tracer: otel.Tracer("byteme.internal.conversation"),
		logger: logger,
	}
}

// Start opens a new conversation and returns its id. A blank id gets a fresh
// UUID.
func (s *Store) Start(ctx context.Context, id string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	ctx, span := s.tracer.Start(ctx, "conversation.start")
	defer span.End()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, started_at) VALUES ($1, $2)`,
		id, time.Now().UTC(),
	)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("conversation: start: %w", err)
	}
	return id, nil
}

// AppendMessage adds a message to a conversation. sourcePath and sourcePage
// carry provenance when the reply was grounded in a PDF; pass "" and 0 when
// there is none.
func (s *Store) AppendMessage(ctx context.Context, conversationID, role, text, sourcePath string, sourcePage int) error {
	if conversationID == "" {
		return errors.New("conversation: conversation id required")
	}
	ctx, span := s.tracer.Start(ctx, "conversation.append_message")
	defer span.End()

	var path sql.NullString
	if sourcePath != "" {
		path = sql.NullString{String: sourcePath, Valid: true}
	}
	var page sql.NullInt64
	if sourcePage > 0 {
		page = sql.NullInt64{Int64: int64(sourcePage), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, text, source_path, source_page, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.NewString(), conversationID, role, text, path, page, time.Now().UTC(),
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: append message: %w", err)
	}
	return nil
}

// AppendForm records a generated claim form.
func (s *Store) AppendForm(ctx context.Context, conversationID string, questions []string, locale string) error {
	if conversationID == "" {
		return errors.New("conversation: conversation id required")
	}
	ctx, span := s.tracer.Start(ctx, "conversation.append_form")
	defer span.End()

	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("conversation: marshal form questions: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO forms (id, conversation_id, questions, locale, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), conversationID, data, locale, time.Now().UTC(),
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: append form: %w", err)
	}
	return nil
}

// Close stamps the end time, derives the terminal label from the most recent
// message, and attaches the caller's phone number when not already set. The
// label is assigned exactly once; closing an already-closed conversation is a
// no-op for the label.
func (s *Store) Close(ctx context.Context, conversationID, phone string) (string, error) {
	if conversationID == "" {
		return "", errors.New("conversation: conversation id required")
	}
	ctx, span := s.tracer.Start(ctx, "conversation.close")
	defer span.End()

	var lastText sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT text FROM messages WHERE conversation_id = $1 ORDER BY created_at DESC LIMIT 1`,
		conversationID,
	).Scan(&lastText)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		return "", fmt.Errorf("conversation: load last message: %w", err)
	}

	label := DeriveLabel(lastText.String)

	var phoneArg sql.NullString
	if phone != "" {
		phoneArg = sql.NullString{String: phone, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations
		 SET ended_at = $2,
		     label = COALESCE(label, $3),
		     phone_number = COALESCE(phone_number, $4)
		 WHERE id = $1`,
		conversationID, time.Now().UTC(), label, phoneArg,
	)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("conversation: close: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return "", ErrNotFound
	}

	s.logger.Info("conversation closed", "conversation_id", conversationID, "label", label)
	return label, nil
}

// ByPhone returns all conversations for a phone number, newest first, each
// with its messages and generated forms in chronological order.
func (s *Store) ByPhone(ctx context.Context, phone string) ([]Record, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.by_phone")
	defer span.End()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, phone_number, label, started_at, ended_at
		 FROM conversations WHERE phone_number = $1 ORDER BY started_at DESC`,
		phone,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: query by phone: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec      Record
			phoneVal sql.NullString
			labelVal sql.NullString
			endedAt  sql.NullTime
		)
		if err := rows.Scan(&rec.ID, &phoneVal, &labelVal, &rec.StartedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("conversation: scan conversation: %w", err)
		}
		rec.Phone = phoneVal.String
		rec.Label = labelVal.String
		if endedAt.Valid {
			t := endedAt.Time
			rec.EndedAt = &t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("conversation: iterate conversations: %w", err)
	}

	for i := range records {
		msgs, err := s.messages(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Messages = msgs

		forms, err := s.forms(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Forms = forms
	}
	return records, nil
}

func (s *Store) messages(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, text, source_path, source_page, created_at
		 FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("conversation: query messages: %w", err)
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var (
			msg  Message
			path sql.NullString
			page sql.NullInt64
		)
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Text, &path, &page, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("conversation: scan message: %w", err)
		}
		msg.SourcePath = path.String
		msg.SourcePage = int(page.Int64)
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (s *Store) forms(ctx context.Context, conversationID string) ([]FormRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, questions, locale, created_at
		 FROM forms WHERE conversation_id = $1 ORDER BY created_at ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("conversation: query forms: %w", err)
	}
	defer rows.Close()

	var forms []FormRecord
	for rows.Next() {
		var (
			form      FormRecord
			questions []byte
			locale    sql.NullString
		)
		if err := rows.Scan(&form.ID, &questions, &locale, &form.CreatedAt); err != nil {
			return nil, fmt.Errorf("conversation: scan form: %w", err)
		}
		if err := json.Unmarshal(questions, &form.Questions); err != nil {
			return nil, fmt.Errorf("conversation: decode form questions: %w", err)
		}
		form.Locale = locale.String
		forms = append(forms, form)
	}
	return forms, rows.Err()
}
