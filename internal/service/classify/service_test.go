package classify

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	mqcontracts "leadinbox/contracts/mq"
	"leadinbox/internal/model"
	"leadinbox/pkg/mq"
)

type mockEmailStore struct {
	findFunc        func(ctx context.Context, messageID string) (*model.Email, error)
	updateFunc      func(ctx context.Context, id int64, category model.Category) error
	updatedCategory model.Category
	updateCalls     int
}

func (m *mockEmailStore) FindByMessageID(ctx context.Context, messageID string) (*model.Email, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, messageID)
	}
	return &model.Email{ID: 42, MessageID: messageID, Subject: "Hello", Body: "Hi"}, nil
}

func (m *mockEmailStore) UpdateCategory(ctx context.Context, id int64, category model.Category) error {
	m.updateCalls++
	m.updatedCategory = category
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, category)
	}
	return nil
}

type mockClassifier struct {
	reply string
	err   error
}

func (m *mockClassifier) Classify(ctx context.Context, subject, body string) (string, error) {
	return m.reply, m.err
}

type mockPublisher struct {
	publishFunc func(routingKey string, payload any) error
	routingKeys []string
	payloads    []any
}

func (m *mockPublisher) Publish(routingKey string, payload any) error {
	m.routingKeys = append(m.routingKeys, routingKey)
	m.payloads = append(m.payloads, payload)
	if m.publishFunc != nil {
		return m.publishFunc(routingKey, payload)
	}
	return nil
}

func TestCategorize_InterestedFansOut(t *testing.T) {
	emails := &mockEmailStore{}
	publisher := &mockPublisher{}
	svc := NewService(emails, &mockClassifier{reply: "interested"}, publisher, zap.NewNop())

	category, err := svc.Categorize(context.Background(), "msg-1")
	if err != nil {
		t.Fatalf("Categorize() error = %v", err)
	}
	if category != model.CategoryInterested {
		t.Errorf("category = %q, want interested", category)
	}
	if emails.updatedCategory != model.CategoryInterested {
		t.Errorf("persisted category = %q, want interested", emails.updatedCategory)
	}
	if len(publisher.routingKeys) != 1 || publisher.routingKeys[0] != mq.RoutingKeyEmailInterested {
		t.Fatalf("routing keys = %v, want [%s]", publisher.routingKeys, mq.RoutingKeyEmailInterested)
	}
	payload, ok := publisher.payloads[0].(mqcontracts.EmailInterestedPayload)
	if !ok {
		t.Fatalf("payload type = %T, want EmailInterestedPayload", publisher.payloads[0])
	}
	if payload.EmailID != 42 {
		t.Errorf("payload email id = %d, want 42", payload.EmailID)
	}
}

func TestCategorize_NonInterestedDoesNotFanOut(t *testing.T) {
	for _, reply := range []string{"spam", "out_of_office", "not_interested", "meeting_booked", "uncategorized"} {
		t.Run(reply, func(t *testing.T) {
			publisher := &mockPublisher{}
			svc := NewService(&mockEmailStore{}, &mockClassifier{reply: reply}, publisher, zap.NewNop())

			category, err := svc.Categorize(context.Background(), "msg-1")
			if err != nil {
				t.Fatalf("Categorize() error = %v", err)
			}
			if category.String() != reply {
				t.Errorf("category = %q, want %q", category, reply)
			}
			if len(publisher.routingKeys) != 0 {
				t.Errorf("published %v, want no fan-out", publisher.routingKeys)
			}
		})
	}
}

func TestCategorize_UnknownLabelCoercedToUncategorized(t *testing.T) {
	emails := &mockEmailStore{}
	publisher := &mockPublisher{}
	svc := NewService(emails, &mockClassifier{reply: "urgent"}, publisher, zap.NewNop())

	category, err := svc.Categorize(context.Background(), "msg-1")
	if err != nil {
		t.Fatalf("Categorize() error = %v", err)
	}
	if category != model.CategoryUncategorized {
		t.Errorf("category = %q, want uncategorized", category)
	}
	if emails.updatedCategory != model.CategoryUncategorized {
		t.Errorf("persisted category = %q, want uncategorized", emails.updatedCategory)
	}
	if len(publisher.routingKeys) != 0 {
		t.Error("uncategorized must not fan out")
	}
}

func TestCategorize_ClassifierFailureLeavesCategoryUnchanged(t *testing.T) {
	emails := &mockEmailStore{}
	svc := NewService(emails, &mockClassifier{err: errors.New("classifier service unreachable: dial tcp")}, &mockPublisher{}, zap.NewNop())

	_, err := svc.Categorize(context.Background(), "msg-1")
	if err == nil {
		t.Fatal("Categorize() error = nil, want classifier error")
	}
	if emails.updateCalls != 0 {
		t.Errorf("UpdateCategory calls = %d, want 0", emails.updateCalls)
	}
}

func TestCategorize_EmailNotFound(t *testing.T) {
	emails := &mockEmailStore{
		findFunc: func(ctx context.Context, messageID string) (*model.Email, error) {
			return nil, model.ErrEmailNotFound
		},
	}
	svc := NewService(emails, &mockClassifier{reply: "spam"}, &mockPublisher{}, zap.NewNop())

	_, err := svc.Categorize(context.Background(), "missing")
	if !errors.Is(err, model.ErrEmailNotFound) {
		t.Fatalf("Categorize() error = %v, want ErrEmailNotFound", err)
	}
}

func TestCategorize_PublishFailureDoesNotFailStage(t *testing.T) {
	publisher := &mockPublisher{
		publishFunc: func(routingKey string, payload any) error {
			return errors.New("mq down")
		},
	}
	svc := NewService(&mockEmailStore{}, &mockClassifier{reply: "interested"}, publisher, zap.NewNop())

	category, err := svc.Categorize(context.Background(), "msg-1")
	if err != nil {
		t.Fatalf("Categorize() error = %v", err)
	}
	if category != model.CategoryInterested {
		t.Errorf("category = %q, want interested", category)
	}
}

func TestCategorize_RerunIsIdempotent(t *testing.T) {
	emails := &mockEmailStore{}
	svc := NewService(emails, &mockClassifier{reply: "spam"}, &mockPublisher{}, zap.NewNop())

	for i := 0; i < 2; i++ {
		category, err := svc.Categorize(context.Background(), "msg-1")
		if err != nil {
			t.Fatalf("run %d: Categorize() error = %v", i, err)
		}
		if category != model.CategorySpam {
			t.Errorf("run %d: category = %q, want spam", i, category)
		}
	}
	if emails.updatedCategory != model.CategorySpam {
		t.Errorf("persisted category = %q, want spam", emails.updatedCategory)
	}
}
