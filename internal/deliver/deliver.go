// Package deliver sends local media files to the chat, falling back from the
// media transport to the generic file transport, and guarantees every file
// it is handed gets removed once its attempts resolve.
package deliver

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	telefetch "github.com/telefetch/telefetch"
)

// Outcome of one delivery unit.
type Outcome int

const (
	Failed Outcome = iota
	SentAsMedia
	SentAsDocument
)

func (o Outcome) String() string {
	switch o {
	case SentAsMedia:
		return "sent as media"
	case SentAsDocument:
		return "sent as document"
	default:
		return "failed"
	}
}

// Transport sends one local file into the chat.
type Transport interface {
	// SendVideo is the primary, streamable media transport.
	SendVideo(ctx context.Context, path, caption string) error
	// SendDocument is the generic file transport used as fallback.
	SendDocument(ctx context.Context, path, caption string) error
}

// Status is the single owned status-message handle for one interaction.
type Status interface {
	Update(text string)
}

// Unit is one file to deliver: the whole fetched file or one segment.
type Unit struct {
	Path    string
	Caption string
}

type Manager struct {
	transport Transport
	timeout   time.Duration
	log       *zap.SugaredLogger
}

// New creates a Manager; timeout bounds each individual send attempt, zero
// means unbounded.
func New(transport Transport, timeout time.Duration) *Manager {
	return &Manager{
		transport: transport,
		timeout:   timeout,
		log:       zap.S().Named("deliver"),
	}
}

// Deliver runs the delivery state machine for one unit: primary send, one
// fallback attempt on failure, then unconditional best-effort removal of the
// unit's file. Cleanup errors never change the outcome.
func (m *Manager) Deliver(ctx context.Context, unit Unit) Outcome {
	defer m.cleanup(unit.Path)

	if err := m.send(ctx, m.transport.SendVideo, unit); err != nil {
		m.log.Warnw("primary send failed",
			"path", unit.Path, "error", telefetch.NewError(telefetch.KindPrimarySendFailed, err))
	} else {
		return SentAsMedia
	}

	if err := m.send(ctx, m.transport.SendDocument, unit); err != nil {
		m.log.Warnw("fallback send failed",
			"path", unit.Path, "error", telefetch.NewError(telefetch.KindFallbackSendFailed, err))
		return Failed
	}
	return SentAsDocument
}

// DeliverAll delivers units strictly in order, updating status before each
// attempt and after each total failure. One unit failing does not halt the
// rest.
func (m *Manager) DeliverAll(ctx context.Context, units []Unit, status Status) []Outcome {
	outcomes := make([]Outcome, 0, len(units))
	for i, unit := range units {
		if len(units) > 1 && status != nil {
			status.Update(fmt.Sprintf("📤 Uploading part %d of %d...", i+1, len(units)))
		}
		outcome := m.Deliver(ctx, unit)
		if outcome == Failed && status != nil {
			if len(units) > 1 {
				status.Update(fmt.Sprintf("❌ Error uploading part %d of %d", i+1, len(units)))
			} else {
				status.Update("❌ Sorry, there was an error uploading the file.")
			}
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (m *Manager) send(ctx context.Context, attempt func(context.Context, string, string) error, unit Unit) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	return attempt(ctx, unit.Path, unit.Caption)
}

// cleanup removes the unit's file. Removal of an already-removed file is a
// no-op; any other error is logged and swallowed so it can never mask the
// delivery outcome.
func (m *Manager) cleanup(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		m.log.Warnw("cleanup failed",
			"path", path, "error", telefetch.NewError(telefetch.KindCleanupFailed, err))
	}
}
