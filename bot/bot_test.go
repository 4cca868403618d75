package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sewa-attendance/internal/models"
	"sewa-attendance/internal/services"
)

const testChatID int64 = 4242

type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) texts() []string {
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

type fakeDesk struct {
	checkIn    models.CheckInRequest
	markOutFor string
	markOutAt  string
	record     models.AttendanceRecord
	sheet      models.DaySheet
	err        error
}

func (f *fakeDesk) CheckIn(_ context.Context, req models.CheckInRequest) (models.AttendanceRecord, error) {
	f.checkIn = req
	return f.record, f.err
}

func (f *fakeDesk) MarkOut(_ context.Context, _ string, _ models.MarkOutRequest) (models.AttendanceRecord, error) {
	return f.record, f.err
}

func (f *fakeDesk) MarkOutBySewadar(_ context.Context, _, name, outTime string) (models.AttendanceRecord, error) {
	f.markOutFor = name
	f.markOutAt = outTime
	return f.record, f.err
}

func (f *fakeDesk) DaySheet(_ context.Context, date string) models.DaySheet {
	sheet := f.sheet
	sheet.Date = date
	return sheet
}

type fakeDirectory struct {
	services.Directory
	sewadars []models.Sewadar
	counters []models.Counter
}

func (f *fakeDirectory) ListSewadars(_ context.Context) []models.Sewadar { return f.sewadars }
func (f *fakeDirectory) ListCounters(_ context.Context) []models.Counter { return f.counters }

type fakeSummarizer struct{}

func (fakeSummarizer) Generate(_ context.Context, date string, records []models.AttendanceRecord) string {
	return "summary of " + date
}

type deadlineSummarizer struct {
	deadline time.Time
	ok       bool
}

func (d *deadlineSummarizer) Generate(ctx context.Context, date string, _ []models.AttendanceRecord) string {
	d.deadline, d.ok = ctx.Deadline()
	return "summary of " + date
}

func newTestBot(desk *fakeDesk) (*Bot, *fakeSender) {
	sender := &fakeSender{}
	b := &Bot{
		sender:     sender,
		chatID:     testChatID,
		desk:       desk,
		store:      &fakeDirectory{sewadars: []models.Sewadar{{ID: "1", Name: "Anita"}, {ID: "2", Name: "Ravi"}}, counters: []models.Counter{{ID: "1", Name: "Gate 1"}}},
		summarizer: fakeSummarizer{},
		logger:     zap.NewNop(),
	}
	return b, sender
}

func commandUpdate(chatID int64, text string) tgbotapi.Update {
	length := strings.IndexByte(text, ' ')
	if length < 0 {
		length = len(text)
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}}
}

func TestParseCheckIn(t *testing.T) {
	tests := []struct {
		args    string
		want    models.CheckInRequest
		wantErr bool
	}{
		{args: "Ravi | Gate 1", want: models.CheckInRequest{SewadarName: "Ravi", CounterName: "Gate 1"}},
		{args: " Ravi Kumar|Langar | 07:30 ", want: models.CheckInRequest{SewadarName: "Ravi Kumar", CounterName: "Langar", InTime: "07:30"}},
		{args: "Ravi", wantErr: true},
		{args: "Ravi | ", wantErr: true},
		{args: "Ravi | Gate | 7am", wantErr: true},
		{args: "Ravi | Gate | 9:05", wantErr: true},
		{args: "a | b | 10:00 | extra", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseCheckIn(tt.args)
		if tt.wantErr {
			assert.Error(t, err, tt.args)
			continue
		}
		require.NoError(t, err, tt.args)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseCheckOut(t *testing.T) {
	tests := []struct {
		args        string
		wantName    string
		wantOutTime string
		wantErr     bool
	}{
		{args: "Ravi", wantName: "Ravi"},
		{args: "Ravi Kumar 13:15", wantName: "Ravi Kumar", wantOutTime: "13:15"},
		{args: "Ravi Kumar", wantName: "Ravi Kumar"},
		{args: "12:00", wantName: "12:00"},
		{args: "   ", wantErr: true},
	}
	for _, tt := range tests {
		name, outTime, err := parseCheckOut(tt.args)
		if tt.wantErr {
			assert.Error(t, err, tt.args)
			continue
		}
		require.NoError(t, err, tt.args)
		assert.Equal(t, tt.wantName, name)
		assert.Equal(t, tt.wantOutTime, outTime)
	}
}

func TestParseDate(t *testing.T) {
	date, ok := parseDate("")
	assert.True(t, ok)
	assert.Equal(t, models.TodayKey(), date)

	date, ok = parseDate(" 2024-05-01 ")
	assert.True(t, ok)
	assert.Equal(t, "2024-05-01", date)

	_, ok = parseDate("yesterday")
	assert.False(t, ok)
}

func TestHandleUpdate_CheckInAndOut(t *testing.T) {
	desk := &fakeDesk{record: models.AttendanceRecord{
		SewadarName: "Ravi", CounterName: "Gate 1", InTime: "09:00", OutTime: models.StringPtr("13:15"),
	}}
	b, sender := newTestBot(desk)
	ctx := context.Background()

	b.handleUpdate(ctx, commandUpdate(testChatID, "/checkin Ravi | Gate 1 | 09:00"))
	assert.Equal(t, "Ravi", desk.checkIn.SewadarName)
	assert.Equal(t, "09:00", desk.checkIn.InTime)

	b.handleUpdate(ctx, commandUpdate(testChatID, "/checkout Ravi 13:15"))
	assert.Equal(t, "Ravi", desk.markOutFor)
	assert.Equal(t, "13:15", desk.markOutAt)

	texts := sender.texts()
	require.Len(t, texts, 2)
	assert.Equal(t, "✅ Ravi checked in at Gate 1 (9:00 AM)", texts[0])
	assert.Equal(t, "🏁 Ravi finished at 1:15 PM (4h 15m)", texts[1])
}

func TestHandleUpdate_CheckOutWithoutActiveShift(t *testing.T) {
	b, sender := newTestBot(&fakeDesk{err: services.ErrRecordNotFound})

	b.handleUpdate(context.Background(), commandUpdate(testChatID, "/checkout Ravi"))
	assert.Equal(t, []string{"No active shift for Ravi today."}, sender.texts())
}

func TestHandleUpdate_Unauthorized(t *testing.T) {
	desk := &fakeDesk{}
	b, sender := newTestBot(desk)
	ctx := context.Background()

	b.handleUpdate(ctx, commandUpdate(1, "/checkin Ravi | Gate 1"))
	assert.Empty(t, desk.checkIn.SewadarName)
	assert.Equal(t, []string{"⛔ This chat is not authorized."}, sender.texts())

	b.handleUpdate(ctx, commandUpdate(1, "/getid"))
	assert.Equal(t, "Chat ID: `1`", sender.texts()[1])
}

func TestHandleUpdate_IgnoresPlainText(t *testing.T) {
	b, sender := newTestBot(&fakeDesk{})
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "hello",
		Chat: &tgbotapi.Chat{ID: testChatID},
	}})
	b.handleUpdate(context.Background(), tgbotapi.Update{})
	assert.Empty(t, sender.sent)
}

func TestDispatch(t *testing.T) {
	desk := &fakeDesk{sheet: models.DaySheet{
		Active: 1,
		Records: []models.AttendanceRecord{
			{SewadarName: "Anita", CounterName: "Langar", InTime: "10:00"},
			{SewadarName: "Ravi", CounterName: "Gate 1", InTime: "09:00", OutTime: models.StringPtr("13:15")},
		},
	}}
	b, _ := newTestBot(desk)
	ctx := context.Background()

	tests := []struct {
		command  string
		args     string
		contains string
	}{
		{"start", "", "/checkin"},
		{"today", "2024-05-01", "🟢 Anita @ Langar since 10:00 AM"},
		{"today", "not-a-date", "Usage: /today"},
		{"summary", "2024-05-01", "summary of 2024-05-01"},
		{"team", "rav", "• Ravi"},
		{"team", "nobody", "No sewadars found"},
		{"counters", "", "• Gate 1"},
		{"checkin", "Ravi", "Usage: /checkin"},
		{"unknown", "", "Unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.command+" "+tt.args, func(t *testing.T) {
			r := b.dispatch(ctx, testChatID, tt.command, tt.args)
			assert.Contains(t, r.text, tt.contains)
		})
	}

	r := b.dispatch(ctx, testChatID, "today", "2024-05-01")
	assert.NotContains(t, r.text, "🟢 Ravi")
}

func TestHandleSummary_BoundedByTimeout(t *testing.T) {
	b, _ := newTestBot(&fakeDesk{})
	summarizer := &deadlineSummarizer{}
	b.summarizer = summarizer

	start := time.Now()
	r := b.dispatch(context.Background(), testChatID, "summary", "2024-05-01")
	assert.Equal(t, "summary of 2024-05-01", r.text)
	require.True(t, summarizer.ok, "summary context has no deadline")
	assert.WithinDuration(t, start.Add(summaryTimeout), summarizer.deadline, 5*time.Second)
}

func TestHandleUpdate_ReportSendsWorkbook(t *testing.T) {
	desk := &fakeDesk{sheet: models.DaySheet{Records: []models.AttendanceRecord{
		{SewadarName: "Ravi", CounterName: "Gate 1", InTime: "09:00", OutTime: models.StringPtr("13:15")},
	}}}
	b, sender := newTestBot(desk)

	b.handleUpdate(context.Background(), commandUpdate(testChatID, "/report 2024-05-01"))

	require.Len(t, sender.sent, 2)
	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Contains(t, msg.Text, "1. Ravi - Gate 1: 9:00 AM - 1:15 PM (4h 15m)")

	doc, ok := sender.sent[1].(tgbotapi.DocumentConfig)
	require.True(t, ok)
	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "sewa_attendance_2024-05-01.xlsx", file.Name)
	assert.NotEmpty(t, file.Bytes)
}

func TestNotifier(t *testing.T) {
	sender := &fakeSender{}
	n := &Notifier{sender: sender, chatID: testChatID, logger: zap.NewNop()}
	n.SendNotification("✅ Check-in")
	assert.Equal(t, []string{"✅ Check-in"}, sender.texts())

	// no bot configured
	assert.NotPanics(t, func() { NewNotifier(nil, testChatID, zap.NewNop()).SendNotification("x") })

	silent := &Notifier{sender: sender, logger: zap.NewNop()}
	silent.SendNotification("dropped")
	assert.Len(t, sender.sent, 1)
}
