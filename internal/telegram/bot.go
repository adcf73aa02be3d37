// Package telegram exposes the journal over a webhook bot.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nutrijournal/internal/app"
	"nutrijournal/internal/config"
	"nutrijournal/internal/mealplan"
	"nutrijournal/internal/metrics"
	"nutrijournal/internal/suggest"
)

// Bot wraps the Telegram API and the journal service.
type Bot struct {
	api          *tgbotapi.BotAPI
	service      *app.Service
	planner      *suggest.Planner // nil when no API key is configured
	metricsStore *metrics.Store
	cfg          *config.Config
}

// NewBot initializes the Telegram bot and sets the webhook.
func NewBot(cfg *config.Config, service *app.Service, planner *suggest.Planner, metricsStore *metrics.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	slog.Info("authorized on telegram", "account", api.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	slog.Info("webhook set", "response", resp.Description)

	return &Bot{
		api:          api,
		service:      service,
		planner:      planner,
		metricsStore: metricsStore,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		slog.Error("error parsing update", "error", err)
		return
	}
	if update.Message == nil {
		return
	}

	isAllowed := false
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if update.Message.From.ID == id {
			isAllowed = true
			break
		}
	}
	if !isAllowed {
		slog.Warn("unauthorized access attempt",
			"user_id", update.Message.From.ID, "user_name", update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx := context.Background()
	fields := strings.Fields(msg.Text)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "/today":
		b.handleToday(ctx, msg, fields[1:])
	case "/log":
		b.handleLog(ctx, msg, fields[1:])
	case "/remove":
		b.handleRemove(ctx, msg, fields[1:])
	case "/suggest":
		b.handleSuggest(ctx, msg, fields[1:])
	case "/metrics":
		b.handleMetrics(ctx, msg)
	default:
		b.reply(msg, "Commands:\n/today [date]\n/log <section> <slug> <quantity>\n/remove <section> <n>\n/suggest [date]\n/metrics")
	}
}

func (b *Bot) handleToday(ctx context.Context, msg *tgbotapi.Message, args []string) {
	date := ""
	if len(args) > 0 {
		date = args[0]
	}
	day, err := b.service.Day(ctx, date)
	if err != nil {
		b.reply(msg, fmt.Sprintf("Failed to load day: %v", err))
		return
	}
	b.reply(msg, fmt.Sprintf("%s\n\n%s", day.Date, mealplan.RenderSummary(day)))
}

func (b *Bot) handleLog(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) < 3 {
		b.reply(msg, "Usage: /log <section> <slug> <quantity>")
		return
	}
	quantity, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		b.reply(msg, fmt.Sprintf("Bad quantity %q", args[2]))
		return
	}
	if err := b.service.AddProduct(ctx, "", args[0], args[1], quantity); err != nil {
		b.reply(msg, fmt.Sprintf("Failed to log: %v", err))
		return
	}
	b.reply(msg, fmt.Sprintf("Logged %s into %s ✅", args[1], args[0]))
}

func (b *Bot) handleRemove(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) < 2 {
		b.reply(msg, "Usage: /remove <section> <n>")
		return
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		b.reply(msg, fmt.Sprintf("Bad index %q", args[1]))
		return
	}
	if err := b.service.RemoveItem(ctx, "", args[0], index); err != nil {
		b.reply(msg, fmt.Sprintf("Failed to remove: %v", err))
		return
	}
	b.reply(msg, "Removed ✅")
}

func (b *Bot) handleSuggest(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if b.planner == nil {
		b.reply(msg, "Suggestions are disabled: no GEMINI_API_KEY configured.")
		return
	}
	date := ""
	if len(args) > 0 {
		date = args[0]
	}
	b.reply(msg, "Drafting a plan... 🍳")
	applied, err := b.planner.SuggestDay(ctx, date, 0)
	if err != nil {
		b.reply(msg, fmt.Sprintf("Suggestion failed: %v", err))
		return
	}
	b.reply(msg, fmt.Sprintf("Added %d suggested entries ✅", applied))
}

func (b *Bot) handleMetrics(ctx context.Context, msg *tgbotapi.Message) {
	if b.metricsStore == nil {
		b.reply(msg, "Metrics are disabled.")
		return
	}
	recent, err := b.metricsStore.Recent(ctx, 10)
	if err != nil {
		b.reply(msg, fmt.Sprintf("Failed to read metrics: %v", err))
		return
	}
	if len(recent) == 0 {
		b.reply(msg, "No mutations recorded yet.")
		return
	}
	var sb strings.Builder
	sb.WriteString("Recent mutations:\n")
	for _, m := range recent {
		fmt.Fprintf(&sb, "%s %s %s (%dms)\n",
			m.Timestamp.Format("01-02 15:04"), m.Operation, m.Date, m.Duration.Milliseconds())
	}
	b.reply(msg, sb.String())
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	if _, err := b.api.Send(reply); err != nil {
		slog.Error("failed to send reply", "error", err)
	}
}
