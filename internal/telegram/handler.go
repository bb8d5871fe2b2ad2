// Package telegram exposes the ledger as a Telegram chat bot.
//
// Handler holds the conversation logic and knows nothing about telebot; Bot
// binds it to the Bot API over long polling or a webhook.
package telegram

import (
	"context"
	"errors"

	"saldo/internal/core"
	saldolog "saldo/internal/log"
	"saldo/internal/parser"
	"saldo/internal/report"
	"saldo/internal/services"
)

// Ledger is the slice of services.Ledger the bot drives.
type Ledger interface {
	Accepts(text string) bool
	Record(ctx context.Context, rawText, userName string) (*core.Confirmation, error)
	CurrentMonthReport(ctx context.Context) (*core.MonthlyReport, error)
	DeleteLast(ctx context.Context) (*core.Deletion, error)
	Policy() services.BalancePolicy
}

// Reply is one outgoing message. A non-nil Photo is sent as an image with
// Caption; otherwise Text is sent, parsed as Markdown when Markdown is set.
type Reply struct {
	Text     string
	Markdown bool
	Photo    []byte
	Caption  string
}

// IsPhoto reports whether the reply carries an image.
func (r Reply) IsPhoto() bool { return r.Photo != nil }

// Handler maps chat input to replies.
type Handler struct {
	ledger Ledger
	charts report.ChartRenderer
	logger *saldolog.Logger
	sl     *saldolog.StructuredLogger
}

func NewHandler(ledger Ledger, charts report.ChartRenderer, logger *saldolog.Logger) *Handler {
	if logger == nil {
		logger = saldolog.New(saldolog.DefaultConfig())
	}
	logger = logger.WithComponent(saldolog.ComponentTelegram)
	return &Handler{
		ledger: ledger,
		charts: charts,
		logger: logger,
		sl:     saldolog.NewStructuredLogger(logger),
	}
}

// Start answers /start.
func (h *Handler) Start(firstName string) Reply {
	return Reply{
		Text:     report.HelpText(firstName, h.ledger.Policy().TracksPaymentMethod()),
		Markdown: true,
	}
}

// Balance answers /balanco with the monthly report followed by the pie chart.
// The chart is best effort: a rendering failure only drops the photo.
func (h *Handler) Balance(ctx context.Context) []Reply {
	rep, err := h.ledger.CurrentMonthReport(ctx)
	if errors.Is(err, services.ErrNoTransactions) {
		return []Reply{{Text: report.MsgNoTransactionsThisMonth}}
	}
	if err != nil {
		h.sl.LogError(ctx, "Failed to build monthly report", err, saldolog.ComponentTelegram, saldolog.OpReport, nil)
		return []Reply{{Text: report.MsgStorageError}}
	}

	replies := []Reply{{Text: report.FormatMonthlyReport(*rep), Markdown: true}}
	if h.charts == nil {
		return replies
	}
	if len(rep.Expenses) == 0 {
		h.logger.DebugContext(ctx, "No expenses to chart", saldolog.FieldYear, rep.Year, saldolog.FieldMonth, int(rep.Month))
		return replies
	}

	png, err := h.charts.Render(ctx, rep.ChartSeries(), report.ChartTitle(*rep))
	if err != nil {
		h.sl.LogError(ctx, "Failed to render chart", err, saldolog.ComponentTelegram, saldolog.OpRender,
			saldolog.NewFields().WithMonth(rep.Year, int(rep.Month)))
		return replies
	}
	return append(replies, Reply{Photo: png, Caption: report.ChartCaption})
}

// DeleteLast answers /delete.
func (h *Handler) DeleteLast(ctx context.Context) Reply {
	d, err := h.ledger.DeleteLast(ctx)
	if errors.Is(err, services.ErrNothingToDelete) {
		return Reply{Text: report.MsgNothingToDelete}
	}
	if err != nil {
		h.sl.LogError(ctx, "Failed to delete last transaction", err, saldolog.ComponentTelegram, saldolog.OpDelete, nil)
		return Reply{Text: report.MsgStorageError}
	}
	h.logger.InfoContext(ctx, "Transaction deleted",
		saldolog.FieldTransactionID, d.Transaction.ID,
		saldolog.FieldAmountCents, d.Transaction.Amount.Cents)
	return Reply{Text: report.FormatDeletion(*d), Markdown: true}
}

// Text handles a free-form message. ok is false when the message is not a
// transaction and must be left unanswered.
func (h *Handler) Text(ctx context.Context, text, firstName string) (reply Reply, ok bool) {
	conf, err := h.ledger.Record(ctx, text, firstName)
	switch {
	case errors.Is(err, parser.ErrNotTransaction):
		return Reply{}, false
	case errors.Is(err, core.ErrZeroAmount):
		return Reply{Text: report.MsgZeroAmount}, true
	case err != nil:
		h.sl.LogError(ctx, "Failed to record transaction", err, saldolog.ComponentTelegram, saldolog.OpRecord, nil)
		return Reply{Text: report.MsgStorageError}, true
	}

	tx := conf.Transaction
	h.sl.LogTransactionRecorded(ctx, tx.ID, tx.Description, tx.Amount.Cents, string(tx.Category), string(tx.PaymentMethod))
	return Reply{Text: report.FormatConfirmation(*conf)}, true
}

// Accepts reports whether text deserves a typing indicator and a reply.
func (h *Handler) Accepts(text string) bool {
	return h.ledger.Accepts(text)
}
