// Package monitor runs the per-event pipeline: identify the DEX from the
// event's logs, fetch the transaction detail, classify it, and emit the
// notification. One bad event never tears down a subscription.
package monitor

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/dexes"
	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/models"
	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/parser"
	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/rpc"
	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/stream"
)

// TransactionFetcher fetches parsed transaction detail for signatures.
type TransactionFetcher interface {
	GetParsedTransactions(ctx context.Context, signatures []string) ([]*rpc.TransactionResult, error)
}

// Classifier turns fetched detail plus a matched label into an outcome.
type Classifier interface {
	Parse(ctx context.Context, detail []*rpc.TransactionResult, label dexes.Label) parser.Outcome
}

// Notifier delivers the formatted record text.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Publisher fans the structured record out to other consumers.
type Publisher interface {
	PublishSwap(ctx context.Context, swap *models.ParsedSwap) error
}

// Commentator produces an optional one-line note about a record.
type Commentator interface {
	Comment(ctx context.Context, swap *models.ParsedSwap) string
}

// Deps are the monitor's collaborators. Publisher and Commentator are
// optional and may be nil.
type Deps struct {
	Fetcher     TransactionFetcher
	Classifier  Classifier
	Notifier    Notifier
	Publisher   Publisher
	Commentator Commentator
	Logger      *logrus.Logger
}

// Monitor dispatches log events through the classification pipeline.
type Monitor struct {
	fetcher     TransactionFetcher
	classifier  Classifier
	notifier    Notifier
	publisher   Publisher
	commentator Commentator
	logger      *logrus.Logger
}

func New(deps Deps) *Monitor {
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	return &Monitor{
		fetcher:     deps.Fetcher,
		classifier:  deps.Classifier,
		notifier:    deps.Notifier,
		publisher:   deps.Publisher,
		commentator: deps.Commentator,
		logger:      deps.Logger,
	}
}

// Handler adapts the monitor to the stream subscriber. Each event runs in
// its own goroutine, so classifications of concurrent events interleave
// freely; every record is independent.
func (m *Monitor) Handler(ctx context.Context) stream.Handler {
	return func(wallet string, event stream.LogEvent) {
		go m.HandleEvent(ctx, wallet, event)
	}
}

// HandleEvent runs the full pipeline for one log event. All failures are
// contained here: logged and dropped, never propagated.
func (m *Monitor) HandleEvent(ctx context.Context, wallet string, event stream.LogEvent) {
	log := m.logger.WithFields(logrus.Fields{
		"wallet":    wallet,
		"signature": shorten(event.Signature),
	})

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("event handler panicked")
		}
	}()

	// Failed transactions move nothing; skip before any downstream call.
	if event.Err != nil {
		log.Debug("skipping failed transaction")
		return
	}

	label := dexes.Identify(event.Logs)
	if !label.Matched() {
		return
	}
	log = log.WithField("dex", label.Dex)

	detail, err := m.fetcher.GetParsedTransactions(ctx, []string{event.Signature})
	if err != nil {
		log.WithError(err).Warn("failed to fetch transaction detail")
		return
	}

	out := m.classifier.Parse(ctx, detail, label)
	switch out.Status {
	case parser.StatusParsed:
	case parser.StatusNoMatch:
		log.Debug("not a recognizable swap")
		return
	default:
		log.WithError(out.Err).WithField("status", out.Status).Debug("dropped unclassifiable transaction")
		return
	}

	text := out.Swap.Format()
	if m.commentator != nil {
		if note := m.commentator.Comment(ctx, out.Swap); note != "" {
			text += "\n\nnote: " + note
		}
	}

	if err := m.notifier.Send(ctx, text); err != nil {
		log.WithError(err).Warn("failed to deliver notification")
	}
	if m.publisher != nil {
		if err := m.publisher.PublishSwap(ctx, out.Swap); err != nil {
			log.WithError(err).Warn("failed to publish swap")
		}
	}

	log.WithFields(logrus.Fields{
		"direction": out.Swap.Direction,
		"operation": out.Swap.Operation,
	}).Info("emitted swap record")
}

func shorten(sig string) string {
	if len(sig) > 8 {
		return sig[:8]
	}
	return sig
}
