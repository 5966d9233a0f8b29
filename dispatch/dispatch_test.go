package dispatch

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pure-golang/board-mailer/logger"
	"github.com/pure-golang/board-mailer/mail"
	"github.com/pure-golang/board-mailer/mail/noop"
	"github.com/pure-golang/board-mailer/monday"
)

type fakeBoard struct {
	page    *monday.Page
	err     error
	columns []string
	calls   int
}

func (f *fakeBoard) FetchItems(_ context.Context, columnIDs ...string) (*monday.Page, error) {
	f.calls++
	f.columns = columnIDs
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

// failingSender rejects the listed addresses and accepts everything else.
type failingSender struct {
	*noop.Sender
	reject map[string]int
}

func (s *failingSender) Send(ctx context.Context, email mail.Email) (mail.Receipt, error) {
	if code, ok := s.reject[email.To.Address]; ok {
		return mail.Receipt{}, &mail.SendError{To: email.To.Address, StatusCode: code, Body: "rejected"}
	}
	return s.Sender.Send(ctx, email)
}

func item(name, email, content string) monday.Item {
	return monday.Item{Name: name, ColumnValues: []monday.ColumnValue{
		{ID: DefaultEmailColumn, Text: email},
		{ID: DefaultContentColumn, Text: content},
	}}
}

func testContext(buf *bytes.Buffer) context.Context {
	l := logger.New(logger.Config{Provider: logger.ProviderStdJson, Level: logger.DEBUG}, buf)
	return logger.NewContext(context.Background(), l)
}

func TestDispatcher_Run_SendsCompleteItemsAndSkipsTheRest(t *testing.T) {
	board := &fakeBoard{page: &monday.Page{Items: []monday.Item{
		item("Ann", "ann@x.com", "Hi Ann"),
		item("Bo", "", "Hi Bo"),
	}}}
	sender := noop.NewSender()
	var logs bytes.Buffer

	report, err := New(Config{From: "board@example.com"}, board, sender).Run(testContext(&logs))

	require.NoError(t, err)
	assert.Equal(t, []string{"email1__1", "email_content__1"}, board.columns)

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ann@x.com", sent[0].To.Address)
	assert.Equal(t, "Hi Ann", sent[0].Body)
	assert.Equal(t, "board@example.com", sent[0].From.Address)
	assert.Equal(t, "Your Email from Monday Board", sent[0].Subject)

	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, StatusSent, report.Outcomes[0].Status)
	assert.Equal(t, http.StatusAccepted, report.Outcomes[0].StatusCode)
	assert.Equal(t, StatusSkipped, report.Outcomes[1].Status)
	assert.Equal(t, "Bo", report.Outcomes[1].Recipient.Name)
	assert.Equal(t, 1, report.Sent())
	assert.Equal(t, 0, report.Failed())
	assert.Equal(t, 1, report.Skipped())
	assert.False(t, report.Truncated)

	assert.Contains(t, logs.String(), `"msg":"email sent"`)
	assert.Contains(t, logs.String(), `"msg":"skipping item due to missing email or content"`)
	assert.Contains(t, logs.String(), `"msg":"run finished"`)
}

func TestDispatcher_Run_FailureDoesNotStopBatch(t *testing.T) {
	board := &fakeBoard{page: &monday.Page{Items: []monday.Item{
		item("Ann", "ann@x.com", "Hi Ann"),
		item("Bad", "not-an-address", "Hi"),
		item("Cy", "cy@x.com", "Hi Cy"),
	}}}
	sender := &failingSender{Sender: noop.NewSender(), reject: map[string]int{"not-an-address": http.StatusBadRequest}}
	var logs bytes.Buffer

	report, err := New(Config{From: "board@example.com"}, board, sender).Run(testContext(&logs))

	require.NoError(t, err)
	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, StatusSent, report.Outcomes[0].Status)
	assert.Equal(t, StatusFailed, report.Outcomes[1].Status)
	assert.Equal(t, http.StatusBadRequest, report.Outcomes[1].StatusCode)
	require.Error(t, report.Outcomes[1].Err)
	assert.Equal(t, StatusSent, report.Outcomes[2].Status)

	sent := sender.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "cy@x.com", sent[1].To.Address)

	assert.Contains(t, logs.String(), `"msg":"failed to send email"`)
}

func TestDispatcher_Run_FetchErrorStopsRun(t *testing.T) {
	board := &fakeBoard{err: &monday.StatusError{StatusCode: http.StatusInternalServerError, Body: "oops"}}
	sender := noop.NewSender()

	report, err := New(Config{From: "board@example.com"}, board, sender).Run(testContext(&bytes.Buffer{}))

	require.Error(t, err)
	assert.Nil(t, report)
	assert.Empty(t, sender.Sent())

	var statusErr *monday.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "oops")
}

func TestDispatcher_Run_MalformedResponse(t *testing.T) {
	board := &fakeBoard{err: &monday.ResponseError{Reason: "no boards found"}}

	_, err := New(Config{From: "board@example.com"}, board, noop.NewSender()).Run(testContext(&bytes.Buffer{}))

	require.Error(t, err)
	assert.True(t, monday.IsMalformed(err))
}

func TestDispatcher_Run_TruncatedBoard(t *testing.T) {
	board := &fakeBoard{page: &monday.Page{Items: []monday.Item{item("Ann", "ann@x.com", "Hi")}, Cursor: "abc"}}
	var logs bytes.Buffer

	report, err := New(Config{From: "board@example.com"}, board, noop.NewSender()).Run(testContext(&logs))

	require.NoError(t, err)
	assert.True(t, report.Truncated)
	assert.Contains(t, logs.String(), "more items than were fetched")
}

func TestDispatcher_Run_CustomConfig(t *testing.T) {
	board := &fakeBoard{page: &monday.Page{Items: []monday.Item{
		{Name: "Ann", ColumnValues: []monday.ColumnValue{
			{ID: "contact", Text: "ann@x.com"},
			{ID: "body", Text: "Hello"},
		}},
	}}}
	sender := noop.NewSender()
	cfg := Config{
		From:          "board@example.com",
		FromName:      "Board",
		Subject:       "Weekly update",
		EmailColumn:   "contact",
		ContentColumn: "body",
	}

	_, err := New(cfg, board, sender).Run(testContext(&bytes.Buffer{}))

	require.NoError(t, err)
	assert.Equal(t, []string{"contact", "body"}, board.columns)
	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Weekly update", sent[0].Subject)
	assert.Equal(t, mail.Address{Name: "Board", Address: "board@example.com"}, sent[0].From)
}

func TestDispatcher_Run_CanceledContext(t *testing.T) {
	board := &fakeBoard{page: &monday.Page{Items: []monday.Item{
		item("Ann", "ann@x.com", "Hi Ann"),
		item("Cy", "cy@x.com", "Hi Cy"),
	}}}
	sender := noop.NewSender()

	ctx, cancel := context.WithCancel(testContext(&bytes.Buffer{}))
	cancel()

	report, err := New(Config{From: "board@example.com"}, board, sender).Run(ctx)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, report)
	assert.Empty(t, report.Outcomes)
	assert.Empty(t, sender.Sent())
}

func TestDispatcher_Run_EmptyBoard(t *testing.T) {
	board := &fakeBoard{page: &monday.Page{Items: []monday.Item{}}}

	report, err := New(Config{From: "board@example.com"}, board, noop.NewSender()).Run(testContext(&bytes.Buffer{}))

	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
	assert.Equal(t, 1, board.calls)
}

func TestDispatcher_Run_RecordsMetrics(t *testing.T) {
	board := &fakeBoard{page: &monday.Page{Items: []monday.Item{
		item("Ann", "ann@x.com", "Hi Ann"),
		item("Bo", "", "Hi Bo"),
		item("Bad", "bad", "Hi"),
	}}}
	sender := &failingSender{Sender: noop.NewSender(), reject: map[string]int{"bad": http.StatusBadRequest}}

	sentBefore := testutil.ToFloat64(itemsTotal.WithLabelValues(string(StatusSent)))
	failedBefore := testutil.ToFloat64(itemsTotal.WithLabelValues(string(StatusFailed)))
	skippedBefore := testutil.ToFloat64(itemsTotal.WithLabelValues(string(StatusSkipped)))

	_, err := New(Config{From: "board@example.com"}, board, sender).Run(testContext(&bytes.Buffer{}))
	require.NoError(t, err)

	assert.Equal(t, sentBefore+1, testutil.ToFloat64(itemsTotal.WithLabelValues(string(StatusSent))))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(itemsTotal.WithLabelValues(string(StatusFailed))))
	assert.Equal(t, skippedBefore+1, testutil.ToFloat64(itemsTotal.WithLabelValues(string(StatusSkipped))))
	assert.Equal(t, float64(3), testutil.ToFloat64(lastRunItems))
}
