package mailsource

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"leadinbox/internal/model"
)

// SampleSource fabricates a fixed batch of messages per sync. It stands in for
// a real protocol client during development and demos.
type SampleSource struct{}

func NewSampleSource() *SampleSource {
	return &SampleSource{}
}

var sampleMessages = []struct {
	subject string
	body    string
}{
	{
		"Re: Job Application - Software Engineer Position",
		"Thank you for applying. We'd love to discuss the position further.",
	},
	{
		"Great to connect! Let's schedule a call",
		"Hi! I'm interested in learning more about your product. When can we meet?",
	},
	{
		"Not interested at this time",
		"Thank you for reaching out, but we're not looking for this right now.",
	},
	{
		"Out of Office: Vacation until next week",
		"I'm currently out of the office and will respond when I return.",
	},
	{
		"Special offer just for you!",
		"Click here for an exclusive deal! Limited time only!!!",
	},
	{
		"Your application has been reviewed",
		"We've reviewed your profile and would like to move forward with an interview.",
	},
}

// FetchCandidates returns the sample batch addressed to the account, received
// timestamps staggered one day apart.
func (s *SampleSource) FetchCandidates(ctx context.Context, account *model.Account) ([]RawMessage, error) {
	now := time.Now()

	msgs := make([]RawMessage, 0, len(sampleMessages))
	for i, m := range sampleMessages {
		msgs = append(msgs, RawMessage{
			MessageID:   fmt.Sprintf("msg-%d-%s", account.ID, uuid.NewString()),
			FromAddress: fmt.Sprintf("sender%d@example.com", i),
			ToAddress:   account.Email,
			Subject:     m.subject,
			Body:        m.body,
			Folder:      "INBOX",
			ReceivedAt:  now.Add(-time.Duration(i) * 24 * time.Hour),
		})
	}

	return msgs, nil
}
