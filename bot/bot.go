// Package bot runs the Telegram front desk: duty commands from the
// authorized chat and check-in/mark-out notifications back to it.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"sewa-attendance/internal/models"
	"sewa-attendance/internal/services"
)

// summaryTimeout bounds one /summary call to the language model
const summaryTimeout = 45 * time.Second

// Sender is the subset of *tgbotapi.BotAPI used to post messages
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot answers commands from the authorized chat
type Bot struct {
	api        *tgbotapi.BotAPI
	sender     Sender
	chatID     int64
	desk       services.AttendanceDesk
	store      services.Directory
	summarizer services.Summarizer
	logger     *zap.Logger
}

// reply is the answer to one command
type reply struct {
	text     string
	markdown bool
	document *tgbotapi.FileBytes
}

// Connect logs in to the Telegram Bot API
func Connect(token string, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}
	api.Debug = false
	logger.Info("telegram bot authorized", zap.String("account", api.Self.UserName))
	return api, nil
}

// New creates a bot over a connected API. A zero chatID accepts every chat.
func New(api *tgbotapi.BotAPI, chatID int64, desk services.AttendanceDesk, store services.Directory,
	summarizer services.Summarizer, logger *zap.Logger) *Bot {
	return &Bot{
		api:        api,
		sender:     api,
		chatID:     chatID,
		desk:       desk,
		store:      store,
		summarizer: summarizer,
		logger:     logger,
	}
}

// StartPolling starts the update loop; it stops when ctx is cancelled.
// Each update is handled on its own goroutine.
func (b *Bot) StartPolling(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				b.api.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				go b.handleUpdate(ctx, update)
			}
		}
	}()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	chatID := update.Message.Chat.ID
	command := update.Message.Command()

	var r reply
	if b.authorized(chatID, command) {
		r = b.dispatch(ctx, chatID, command, update.Message.CommandArguments())
	} else {
		b.logger.Warn("command from unauthorized chat", zap.Int64("chat_id", chatID), zap.String("command", command))
		r = reply{text: "⛔ This chat is not authorized."}
	}
	b.send(chatID, r)
}

// authorized reports whether chatID may run command. /start and /getid are open
// so a new chat can find its id.
func (b *Bot) authorized(chatID int64, command string) bool {
	if b.chatID == 0 || chatID == b.chatID {
		return true
	}
	return command == "start" || command == "getid"
}

func (b *Bot) dispatch(ctx context.Context, chatID int64, command, args string) reply {
	switch command {
	case "start":
		return reply{text: helpText, markdown: true}
	case "getid":
		return reply{text: fmt.Sprintf("Chat ID: `%d`", chatID), markdown: true}
	case "today":
		return b.handleToday(ctx, args)
	case "checkin":
		return b.handleCheckIn(ctx, args)
	case "checkout":
		return b.handleCheckOut(ctx, args)
	case "summary":
		return b.handleSummary(ctx, args)
	case "report":
		return b.handleReport(ctx, args)
	case "team":
		return b.handleTeam(ctx, args)
	case "counters":
		return b.handleCounters(ctx)
	default:
		return reply{text: "Unknown command. Use /start"}
	}
}

const helpText = "🙏 *Sewa Attendance*\n\n" +
	"*Commands:*\n" +
	"/today `[YYYY-MM-DD]` - who is on duty\n" +
	"/checkin `Name | Counter [| HH:mm]` - start a shift\n" +
	"/checkout `Name [HH:mm]` - finish a shift\n" +
	"/summary `[YYYY-MM-DD]` - AI daily summary\n" +
	"/report `[YYYY-MM-DD]` - day log and Excel file\n" +
	"/team `[search]` - sewadars\n" +
	"/counters - service counters\n" +
	"/getid - this chat's id"

func (b *Bot) handleToday(ctx context.Context, args string) reply {
	date, ok := parseDate(args)
	if !ok {
		return reply{text: "Usage: /today [YYYY-MM-DD]"}
	}
	sheet := b.desk.DaySheet(ctx, date)

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 %s\nTotal: %d | Active now: %d\n", sheet.Date, len(sheet.Records), sheet.Active)
	for _, r := range sheet.Records {
		if !models.IsActive(r) {
			continue
		}
		fmt.Fprintf(&sb, "🟢 %s @ %s since %s\n", r.SewadarName, r.CounterName, models.FormatDisplayTime(r.InTime))
	}
	return reply{text: sb.String()}
}

func (b *Bot) handleCheckIn(ctx context.Context, args string) reply {
	req, err := parseCheckIn(args)
	if err != nil {
		return reply{text: "Usage: /checkin Name | Counter [| HH:mm]"}
	}
	record, err := b.desk.CheckIn(ctx, req)
	if err != nil {
		b.logger.Warn("bot check-in failed", zap.String("sewadar", req.SewadarName), zap.Error(err))
		return reply{text: "❌ " + deskErrorText(err)}
	}
	return reply{text: fmt.Sprintf("✅ %s checked in at %s (%s)",
		record.SewadarName, record.CounterName, models.FormatDisplayTime(record.InTime))}
}

func (b *Bot) handleCheckOut(ctx context.Context, args string) reply {
	name, outTime, err := parseCheckOut(args)
	if err != nil {
		return reply{text: "Usage: /checkout Name [HH:mm]"}
	}
	record, err := b.desk.MarkOutBySewadar(ctx, "", name, outTime)
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			return reply{text: fmt.Sprintf("No active shift for %s today.", name)}
		}
		b.logger.Warn("bot mark-out failed", zap.String("sewadar", name), zap.Error(err))
		return reply{text: "❌ " + deskErrorText(err)}
	}
	return reply{text: fmt.Sprintf("🏁 %s finished at %s (%s)",
		record.SewadarName, models.FormatDisplayTimePtr(record.OutTime),
		models.ComputeDuration(record.InTime, record.OutTime))}
}

func (b *Bot) handleSummary(ctx context.Context, args string) reply {
	date, ok := parseDate(args)
	if !ok {
		return reply{text: "Usage: /summary [YYYY-MM-DD]"}
	}
	sheet := b.desk.DaySheet(ctx, date)

	ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()
	return reply{text: b.summarizer.Generate(ctx, sheet.Date, sheet.Records)}
}

func (b *Bot) handleReport(ctx context.Context, args string) reply {
	date, ok := parseDate(args)
	if !ok {
		return reply{text: "Usage: /report [YYYY-MM-DD]"}
	}
	sheet := b.desk.DaySheet(ctx, date)
	r := reply{text: services.ShareText(sheet.Date, sheet.Records)}

	buf, filename, err := services.Workbook(sheet.Date, sheet.Records)
	if err != nil {
		b.logger.Error("workbook export failed", zap.String("date", sheet.Date), zap.Error(err))
		return r
	}
	r.document = &tgbotapi.FileBytes{Name: filename, Bytes: buf.Bytes()}
	return r
}

func (b *Bot) handleTeam(ctx context.Context, args string) reply {
	list := models.FilterSewadars(b.store.ListSewadars(ctx), args)
	if len(list) == 0 {
		return reply{text: "No sewadars found"}
	}
	names := make([]string, len(list))
	for i, s := range list {
		names[i] = "• " + s.Name
	}
	return reply{text: fmt.Sprintf("👥 Sewadars (%d)\n%s", len(list), strings.Join(names, "\n"))}
}

func (b *Bot) handleCounters(ctx context.Context) reply {
	list := b.store.ListCounters(ctx)
	if len(list) == 0 {
		return reply{text: "No counters yet"}
	}
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = "• " + c.Name
	}
	return reply{text: "📍 Counters\n" + strings.Join(names, "\n")}
}

func (b *Bot) send(chatID int64, r reply) {
	msg := tgbotapi.NewMessage(chatID, r.text)
	if r.markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("bot send error", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	if r.document != nil {
		if _, err := b.sender.Send(tgbotapi.NewDocument(chatID, *r.document)); err != nil {
			b.logger.Error("bot document send error", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}

func deskErrorText(err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidName), errors.Is(err, services.ErrInvalidRecord):
		return "Invalid input: " + err.Error()
	case errors.Is(err, services.ErrShiftComplete):
		return "That shift is already marked out."
	default:
		return "Could not save, please try again."
	}
}
