package moderation

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/voxchat/voxbot/internal/db"
	"github.com/voxchat/voxbot/internal/i18n"
	"github.com/voxchat/voxbot/internal/ledger"
	"github.com/voxchat/voxbot/internal/observability"
)

// BanRecorder appends durable ban records for auditing. The ledger entry
// stays authoritative for enforcement, so recorder failures are logged and
// swallowed.
type BanRecorder interface {
	CreateBanRecord(ctx context.Context, record *db.BanRecord) error
}

type Result struct {
	IsSpam  bool
	Verdict Verdict
	Action  Action
	Message string
}

// Moderator composes the classifier, the warning ledger and the escalation
// policy into the per-message decision.
type Moderator struct {
	ledger   ledger.Ledger
	policy   Policy
	recorder BanRecorder
	lang     string
	nowFn    func() time.Time
}

func NewModerator(l ledger.Ledger, policy Policy, recorder BanRecorder, lang string) *Moderator {
	return &Moderator{
		ledger:   l,
		policy:   policy,
		recorder: recorder,
		lang:     lang,
		nowFn:    time.Now,
	}
}

// HandleMessage classifies one inbound message and applies the escalation
// path for spam. Each call counts as a genuinely new message, two identical
// spam texts increment the counter twice.
func (m *Moderator) HandleMessage(ctx context.Context, userID int64, text string, allowed AllowSet) Result {
	verdict := Classify(text, allowed)
	observability.SpamVerdictsTotal.WithLabelValues(string(verdict.Reason)).Inc()
	if !verdict.IsSpam {
		return Result{Verdict: verdict, Action: Action{Kind: ActionNone}}
	}

	count := m.ledger.IncrementWarning(ctx, userID)
	action := m.policy.Decide(count)
	observability.EscalationActionsTotal.WithLabelValues(string(action.Kind)).Inc()

	result := Result{IsSpam: true, Verdict: verdict, Action: action}
	switch action.Kind {
	case ActionWarn:
		result.Message = fmt.Sprintf(
			i18n.Get("Please keep links, mentions and promotions out of the chat. Warning %d.", m.lang),
			count,
		)
	case ActionTempBan:
		m.ledger.SetTemporaryBan(ctx, userID, action.Duration)
		m.recordBan(ctx, userID, verdict.Reason, count)
		result.Message = fmt.Sprintf(
			i18n.Get("You are muted for %d minutes (offense #%d).", m.lang),
			int(action.Duration/time.Minute),
			count,
		)
	}
	return result
}

func (m *Moderator) recordBan(ctx context.Context, userID int64, reason Reason, count int) {
	if m.recorder == nil {
		return
	}
	record := &db.BanRecord{
		UserID:    userID,
		Reason:    fmt.Sprintf("spam: %s (offense #%d)", reason, count),
		CreatedAt: m.nowFn(),
	}
	if err := m.recorder.CreateBanRecord(ctx, record); err != nil {
		m.getLogEntry().WithError(err).WithField("user_id", userID).Error("failed to append ban record")
	}
}

func (m *Moderator) getLogEntry() *log.Entry {
	return log.WithField("object", "Moderator")
}
