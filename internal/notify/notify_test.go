package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/tests/testutil"
)

var confirmedAt = time.Date(2024, 3, 6, 8, 5, 0, 0, time.UTC)

func testEvent() Event {
	return Event{
		Medication: model.Medication{ID: "m1", Name: "Metformin", PillsPerTime: 1.5},
		Contact:    "081-234-5678",
		At:         confirmedAt,
	}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recordingNotifier) AdherenceConfirmed(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Your family member has taken Metformin, 1.5 pills.", Message(testEvent()))

	ev := testEvent()
	ev.Medication.PillsPerTime = 1
	assert.Equal(t, "Your family member has taken Metformin, 1 pill.", Message(ev))
}

func TestOutboxNotifierRecordsNotification(t *testing.T) {
	s := testutil.NewTestStore(t)
	n := NewOutboxNotifier(s, nil)

	require.NoError(t, n.AdherenceConfirmed(context.Background(), testEvent()))

	got, err := s.GetNotifications(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].MedicationID)
	assert.Equal(t, "081-234-5678", got[0].Contact)
	assert.Equal(t, Message(testEvent()), got[0].Message)
	assert.NotEmpty(t, got[0].ID)
}

func TestMultiTriesEveryNotifier(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("boom")}
	ok := &recordingNotifier{}

	err := Multi{failing, nil, ok}.AdherenceConfirmed(context.Background(), testEvent())
	assert.ErrorContains(t, err, "boom")
	assert.Len(t, failing.events, 1)
	assert.Len(t, ok.events, 1)
}

func TestDispatcherSwallowsErrors(t *testing.T) {
	rec := &recordingNotifier{err: errors.New("unreachable")}
	d := NewDispatcher(rec, time.Second, nil)

	d.Send(testEvent())
	d.Send(testEvent())
	d.Wait()

	assert.Len(t, rec.events, 2)
}

func TestDispatcherWithoutNotifier(t *testing.T) {
	var d *Dispatcher
	d.Send(testEvent())
	d.Wait()

	NewDispatcher(nil, 0, nil).Send(testEvent())
}

func TestMailComposeAddressesGateway(t *testing.T) {
	n := NewMailNotifier(model.MailConfig{
		Username:      "me@example.com",
		Mailbox:       "Outbox",
		GatewayDomain: "sms.example.net",
	}, "secret", nil)

	raw, err := n.Compose(testEvent())
	require.NoError(t, err)

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)

	to, err := mr.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "0812345678@sms.example.net", to[0].Address)

	from, err := mr.Header.AddressList("From")
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", from[0].Address)

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Medication taken: Metformin", subject)

	date, err := mr.Header.Date()
	require.NoError(t, err)
	assert.True(t, date.Equal(confirmedAt))

	part, err := mr.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), Message(testEvent()))
}

func TestMailNotifierAppendsComposedMessage(t *testing.T) {
	n := NewMailNotifier(model.MailConfig{From: "alerts@example.com", Mailbox: "Outbox"}, "", nil)

	var appended []byte
	n.appendFn = func(_ context.Context, raw []byte) error {
		appended = raw
		return nil
	}

	ev := testEvent()
	ev.Contact = "daughter@example.com"
	require.NoError(t, n.AdherenceConfirmed(context.Background(), ev))
	assert.Contains(t, string(appended), "daughter@example.com")

	n.appendFn = func(context.Context, []byte) error { return errors.New("imap down") }
	assert.ErrorContains(t, n.AdherenceConfirmed(context.Background(), ev), "imap down")
}
