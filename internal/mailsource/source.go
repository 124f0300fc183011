package mailsource

import (
	"context"
	"time"

	"leadinbox/internal/model"
)

// RawMessage is a candidate message as returned by a mail source, before any
// persistence.
type RawMessage struct {
	MessageID   string
	FromAddress string
	ToAddress   string
	Subject     string
	Body        string
	Folder      string
	ReceivedAt  time.Time
}

// Source fetches candidate messages for one account. A real IMAP/POP client
// plugs in here without touching the ingestion stage's dedup/persist logic.
type Source interface {
	FetchCandidates(ctx context.Context, account *model.Account) ([]RawMessage, error)
}
