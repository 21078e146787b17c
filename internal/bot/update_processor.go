package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/voxchat/voxbot/internal/auth"
	"github.com/voxchat/voxbot/internal/config"
	"github.com/voxchat/voxbot/internal/i18n"
	"github.com/voxchat/voxbot/internal/ledger"
	"github.com/voxchat/voxbot/internal/moderation"
)

const (
	UpdateTimeout = 5 * time.Minute
)

// UpdateProcessor routes inbound updates: group messages through the
// moderation pipeline, private /verify commands into the login handshake.
type UpdateProcessor struct {
	s         Service
	moderator *moderation.Moderator
	ledger    ledger.Ledger
	auth      *auth.Service
	cfg       config.Config
	allowed   moderation.AllowSet
}

func NewUpdateProcessor(s Service, moderator *moderation.Moderator, l ledger.Ledger, authService *auth.Service, cfg config.Config) *UpdateProcessor {
	return &UpdateProcessor{
		s:         s,
		moderator: moderator,
		ledger:    l,
		auth:      authService,
		cfg:       cfg,
		allowed:   moderation.NewAllowSet(cfg.AllowedHandles...),
	}
}

func (up *UpdateProcessor) Process(ctx context.Context, u *api.Update) error {
	if u == nil {
		return errors.New("update is nil")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := u.Message
	if msg == nil || msg.From == nil {
		return nil
	}

	updateTime := time.Unix(int64(msg.Date), 0)
	if time.Since(updateTime) > UpdateTimeout {
		log.WithFields(log.Fields{
			"update_time": updateTime,
			"age":         time.Since(updateTime),
		}).Debug("Skipping outdated update")
		return nil
	}

	if msg.Chat.IsPrivate() {
		if msg.IsCommand() && msg.Command() == "verify" {
			return up.handleVerify(ctx, msg)
		}
		if remaining := up.ledger.BanRemainingMinutes(ctx, msg.From.ID); remaining > 0 {
			up.reply(msg.Chat.ID, fmt.Sprintf(
				i18n.Get("You are still muted for %d more minutes.", up.cfg.DefaultLanguage),
				remaining,
			))
		}
		return nil
	}

	return up.handleChatMessage(ctx, msg)
}

func (up *UpdateProcessor) handleChatMessage(ctx context.Context, msg *api.Message) error {
	entry := up.getLogEntry().WithFields(log.Fields{
		"chat_id": msg.Chat.ID,
		"user_id": msg.From.ID,
	})

	if msg.IsCommand() && msg.Command() == "pardon" {
		return up.handlePardon(ctx, msg)
	}

	if up.ledger.IsBanned(ctx, msg.From.ID) {
		if err := DeleteChatMessage(ctx, up.s.GetBot(), msg.Chat.ID, msg.MessageID); err != nil {
			entry.WithError(err).Error("failed to delete message from banned user")
		}
		entry.WithField("remaining_minutes", up.ledger.BanRemainingMinutes(ctx, msg.From.ID)).
			Debug("dropped message from banned user")
		return nil
	}

	text := messageText(msg)
	result := up.moderator.HandleMessage(ctx, msg.From.ID, text, up.allowed)
	if !result.IsSpam {
		return nil
	}

	entry.WithFields(log.Fields{
		"reason": result.Verdict.Reason,
		"action": result.Action.Kind,
	}).Info("spam message handled")

	if err := DeleteChatMessage(ctx, up.s.GetBot(), msg.Chat.ID, msg.MessageID); err != nil {
		entry.WithError(err).Error("failed to delete spam message")
	}

	if result.Action.Kind == moderation.ActionTempBan {
		// restriction via the chat transport is best-effort, the ledger entry
		// is what enforces the ban
		if err := RestrictChatting(ctx, up.s.GetBot(), msg.From.ID, msg.Chat.ID, result.Action.Duration); err != nil {
			entry.WithError(err).Error("failed to restrict user")
		}
	}

	if result.Message != "" {
		up.reply(msg.Chat.ID, result.Message)
	}
	return nil
}

// handlePardon lifts all restrictions from the author of the replied-to
// message. Admin-only, silently ignored for everyone else.
func (up *UpdateProcessor) handlePardon(ctx context.Context, msg *api.Message) error {
	if !containsID(up.cfg.AdminIDs, strconv.FormatInt(msg.From.ID, 10)) {
		return nil
	}
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		up.reply(msg.Chat.ID, i18n.Get("Reply to a message with /pardon to lift restrictions.", up.cfg.DefaultLanguage))
		return nil
	}

	target := msg.ReplyToMessage.From.ID
	up.ledger.ClearAll(ctx, target)
	if err := UnrestrictChatting(ctx, up.s.GetBot(), target, msg.Chat.ID); err != nil {
		up.getLogEntry().WithError(err).WithField("user_id", target).Error("failed to unrestrict user")
	}
	up.getLogEntry().WithFields(log.Fields{
		"chat_id":  msg.Chat.ID,
		"user_id":  target,
		"admin_id": msg.From.ID,
	}).Info("restrictions lifted")
	up.reply(msg.Chat.ID, fmt.Sprintf(
		i18n.Get("Restrictions lifted for %s.", up.cfg.DefaultLanguage),
		GetUN(msg.ReplyToMessage.From),
	))
	return nil
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func (up *UpdateProcessor) handleVerify(ctx context.Context, msg *api.Message) error {
	lang := up.cfg.DefaultLanguage
	token := strings.TrimSpace(msg.CommandArguments())
	if token == "" {
		up.reply(msg.Chat.ID, i18n.Get("Usage: /verify <token>", lang))
		return nil
	}

	identity := auth.VerifierIdentity{
		ID:        msg.From.ID,
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
	}
	_, err := up.auth.VerifyToken(ctx, token, identity, up.cfg.AdminIDs)
	if err != nil {
		// uniform denial, the sender learns nothing about why
		up.getLogEntry().WithError(err).WithField("user_id", msg.From.ID).Debug("verification rejected")
		up.reply(msg.Chat.ID, i18n.Get("Verification failed.", lang))
		return nil
	}

	up.reply(msg.Chat.ID, i18n.Get("Login approved. Return to your browser to continue.", lang))
	return nil
}

func (up *UpdateProcessor) reply(chatID int64, text string) {
	reply := api.NewMessage(chatID, text)
	reply.DisableNotification = true
	reply.LinkPreviewOptions.IsDisabled = true
	if _, err := up.s.GetBot().Send(reply); err != nil {
		up.getLogEntry().WithError(err).Error("failed to send reply")
	}
}

func messageText(msg *api.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

func (up *UpdateProcessor) getLogEntry() *log.Entry {
	return log.WithField("object", "UpdateProcessor")
}
