package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	saldolog "saldo/internal/log"
)

// WebhookPath is where Telegram delivers updates in webhook mode.
const WebhookPath = "/webhook"

// Commands is the menu registered with setMyCommands.
var Commands = []tele.Command{
	{Text: "start", Description: "🚀 Iniciar bot e ver instruções"},
	{Text: "balanco", Description: "📊 Ver balanço mensal e gráfico"},
	{Text: "delete", Description: "🗑️ Deletar última transação"},
}

// Config configures the Bot API connection.
type Config struct {
	Token string
	// WebhookURL is the public base URL; empty selects long polling.
	WebhookURL    string
	WebhookSecret string
	// APIURL overrides the Bot API endpoint.
	APIURL         string
	PollTimeout    time.Duration
	HandlerTimeout time.Duration
	// Offline skips the getMe call on startup.
	Offline bool
}

// Bot binds a Handler to the Telegram Bot API.
type Bot struct {
	bot     *tele.Bot
	handler *Handler
	logger  *saldolog.Logger
	cfg     Config
}

func NewBot(cfg Config, handler *Handler, logger *saldolog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("missing TELEGRAM_BOT_TOKEN")
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 10 * time.Second
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = 30 * time.Second
	}
	cfg.WebhookURL = strings.TrimSuffix(cfg.WebhookURL, "/")
	if logger == nil {
		logger = saldolog.New(saldolog.DefaultConfig())
	}
	logger = logger.WithComponent(saldolog.ComponentTelegram)

	b := &Bot{handler: handler, logger: logger, cfg: cfg}

	settings := tele.Settings{
		URL:     cfg.APIURL,
		Token:   cfg.Token,
		Offline: cfg.Offline,
		OnError: b.onError,
	}
	if cfg.WebhookURL != "" {
		// Updates arrive through WebhookHandler; answering before the HTTP
		// response keeps Telegram from redelivering slow updates.
		settings.Synchronous = true
	} else {
		settings.Poller = &tele.LongPoller{Timeout: cfg.PollTimeout}
	}

	tb, err := tele.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	b.bot = tb
	b.register()
	return b, nil
}

// UsesWebhook reports whether updates are pushed by Telegram.
func (b *Bot) UsesWebhook() bool { return b.cfg.WebhookURL != "" }

func (b *Bot) register() {
	b.bot.Use(b.logUpdate)

	b.bot.Handle("/start", func(c tele.Context) error {
		return b.send(c, b.handler.Start(firstName(c)))
	})

	b.bot.Handle("/balanco", func(c tele.Context) error {
		ctx, cancel := b.updateContext()
		defer cancel()

		for i, r := range b.handler.Balance(ctx) {
			if err := b.send(c, r); err != nil {
				if r.IsPhoto() && i > 0 {
					// The report text already went out.
					b.logger.Error("Failed to send chart", saldolog.FieldError, err.Error())
					return nil
				}
				return err
			}
		}
		return nil
	})

	b.bot.Handle("/delete", func(c tele.Context) error {
		ctx, cancel := b.updateContext()
		defer cancel()
		return b.send(c, b.handler.DeleteLast(ctx))
	})

	b.bot.Handle(tele.OnText, func(c tele.Context) error {
		text := c.Text()
		if !b.handler.Accepts(text) {
			return nil
		}
		if err := c.Notify(tele.Typing); err != nil {
			b.logger.Debug("Failed to send typing action", saldolog.FieldError, err.Error())
		}

		ctx, cancel := b.updateContext()
		defer cancel()
		reply, ok := b.handler.Text(ctx, text, firstName(c))
		if !ok {
			return nil
		}
		return b.send(c, reply)
	})
}

func (b *Bot) send(c tele.Context, r Reply) error {
	if r.IsPhoto() {
		return c.Send(&tele.Photo{File: tele.FromReader(bytes.NewReader(r.Photo)), Caption: r.Caption})
	}
	if r.Markdown {
		return c.Send(r.Text, tele.ModeMarkdown)
	}
	return c.Send(r.Text)
}

func (b *Bot) updateContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.cfg.HandlerTimeout)
}

func (b *Bot) logUpdate(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		fields := saldolog.NewFields().WithChat(chatID(c), c.Update().ID)
		if text := c.Text(); strings.HasPrefix(text, "/") {
			fields[saldolog.FieldCommand] = strings.Fields(text)[0]
		}
		b.logger.Debug("Update received", fields.ToSlice()...)
		return next(c)
	}
}

func (b *Bot) onError(err error, c tele.Context) {
	fields := saldolog.NewFields().WithError(err)
	if c != nil {
		fields.WithChat(chatID(c), c.Update().ID)
	}
	b.logger.Error("Telegram handler failed", fields.ToSlice()...)
}

// RegisterCommands publishes the command menu.
func (b *Bot) RegisterCommands() error {
	if err := b.bot.SetCommands(Commands); err != nil {
		return fmt.Errorf("set bot commands: %w", err)
	}
	return nil
}

// Run receives updates until ctx is cancelled. In webhook mode it registers
// the webhook and waits; updates are fed by WebhookHandler. On return the
// webhook is removed or polling stopped.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.RegisterCommands(); err != nil {
		b.logger.Warn("Failed to register commands", saldolog.FieldError, err.Error())
	}

	if b.UsesWebhook() {
		endpoint := b.cfg.WebhookURL + WebhookPath
		err := b.bot.SetWebhook(&tele.Webhook{
			Endpoint:       &tele.WebhookEndpoint{PublicURL: endpoint},
			SecretToken:    b.cfg.WebhookSecret,
			AllowedUpdates: []string{"message"},
		})
		if err != nil {
			return fmt.Errorf("set webhook: %w", err)
		}
		b.logger.Info("Webhook configured", "url", endpoint)

		<-ctx.Done()
		if err := b.bot.RemoveWebhook(); err != nil {
			b.logger.Warn("Failed to remove webhook", saldolog.FieldError, err.Error())
		}
		return nil
	}

	// A webhook left over from a previous deployment blocks getUpdates.
	if err := b.bot.RemoveWebhook(); err != nil {
		b.logger.Warn("Failed to remove webhook before polling", saldolog.FieldError, err.Error())
	}
	b.logger.Info("Long polling started")

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.bot.Start()
	}()

	<-ctx.Done()
	b.bot.Stop()
	<-done
	b.logger.Info("Long polling stopped")
	return nil
}

// WebhookHandler accepts update POSTs from Telegram. Secret verification is
// left to the HTTP middleware in front of it.
func (b *Bot) WebhookHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		var u tele.Update
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			saldolog.FromContext(r.Context()).WarnContext(r.Context(), "Invalid webhook payload",
				saldolog.FieldError, err.Error())
			http.Error(w, "Error", http.StatusInternalServerError)
			return
		}

		b.bot.ProcessUpdate(u)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK"))
	})
}

func firstName(c tele.Context) string {
	if u := c.Sender(); u != nil {
		return u.FirstName
	}
	return ""
}

func chatID(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return 0
}
