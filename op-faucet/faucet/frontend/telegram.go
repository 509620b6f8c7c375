package frontend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/claims"
	ftypes "github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/types"
)

const (
	msgWelcome         = "Welcome to the faucet! 🚰\n\nPlease send me your Ethereum address (0x...) to receive tokens."
	msgInvalidFormat   = "❌ Invalid address format. Please send a valid Ethereum address starting with 0x."
	msgIdentityClaimed = "❌ You've already received tokens from this faucet."
	msgInProgress      = "⏳ Your previous request is still being processed."
	msgProcessing      = "Processing your request... ⏳"
	msgSuccess         = "✅ Tokens sent successfully\\!\n\nTransaction hash:\n`%s`"
	msgAddressClaimed  = "❌ This address has already received tokens from the faucet."
	msgInvalidAddress  = "❌ Invalid address: %s"
	msgDisabled        = "❌ The faucet is currently disabled. Please try again later."
	msgFailed          = "❌ Failed to send tokens. Please try again later."
)

const (
	DefaultPollTimeout = 30 * time.Second
	pollRetryDelay     = 5 * time.Second
	replyTimeout       = 10 * time.Second
)

type BotClient interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]TelegramUpdate, error)
	SendMessage(ctx context.Context, chatID int64, text string, parseMode string) error
}

type TelegramBackend interface {
	RequestFunds(ctx context.Context, req *ftypes.FaucetRequest) (common.Hash, error)
	Claimed(ctx context.Context, key claims.Key) (bool, error)
	RecordClaim(ctx context.Context, key claims.Key) error
	Reserve(key claims.Key) (release func(), ok bool)
}

// TelegramBot serves funding requests sent as chat messages. Each chat user
// is served at most once, on top of the per-address rule.
type TelegramBot struct {
	log         log.Logger
	api         BotClient
	b           TelegramBackend
	pollTimeout time.Duration
	retryDelay  time.Duration

	cancel   context.CancelFunc
	loopDone chan struct{}
	handlers sync.WaitGroup
}

func NewTelegramBot(logger log.Logger, api BotClient, b TelegramBackend, pollTimeout time.Duration) *TelegramBot {
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	return &TelegramBot{
		log:         logger,
		api:         api,
		b:           b,
		pollTimeout: pollTimeout,
		retryDelay:  pollRetryDelay,
	}
}

func (t *TelegramBot) Start(_ context.Context) error {
	if t.loopDone != nil {
		return errors.New("telegram bot already started")
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.loopDone = make(chan struct{})
	go t.loop(ctx)
	t.log.Info("Started telegram bot")
	return nil
}

// Stop ends polling and waits for messages being handled, or for ctx to expire.
func (t *TelegramBot) Stop(ctx context.Context) error {
	if t.loopDone == nil {
		return nil
	}
	t.cancel()
	done := make(chan struct{})
	go func() {
		<-t.loopDone
		t.handlers.Wait()
		close(done)
	}()
	select {
	case <-done:
		t.log.Info("Stopped telegram bot")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to stop telegram bot: %w", ctx.Err())
	}
}

func (t *TelegramBot) loop(ctx context.Context) {
	defer close(t.loopDone)
	var offset int64
	for {
		updates, err := t.api.GetUpdates(ctx, offset, t.pollTimeout)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			t.log.Warn("Failed to poll telegram updates", "err", err)
			select {
			case <-time.After(t.retryDelay):
				continue
			case <-ctx.Done():
				return
			}
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil {
				continue
			}
			msg := u.Message
			t.handlers.Add(1)
			go func() {
				defer t.handlers.Done()
				t.handleMessage(ctx, msg)
			}()
		}
	}
}

func (t *TelegramBot) handleMessage(ctx context.Context, msg *TelegramMessage) {
	// channel posts and service messages carry no sender
	if msg.From == nil || msg.Text == "" {
		return
	}
	chatID := msg.Chat.ID
	logger := t.log.New("user", msg.From.ID, "chat", chatID)
	text := strings.TrimSpace(msg.Text)

	if text == "/start" || strings.HasPrefix(text, "/start ") {
		t.reply(ctx, logger, chatID, msgWelcome, "")
		return
	}
	if !strings.HasPrefix(text, "0x") || len(text) != 42 {
		t.reply(ctx, logger, chatID, msgInvalidFormat, "")
		return
	}

	key := claims.IdentityKey(msg.From.ID)
	claimed, err := t.b.Claimed(ctx, key)
	if err != nil {
		logger.Error("Failed to look up telegram claim", "err", err)
		t.reply(ctx, logger, chatID, msgFailed, "")
		return
	}
	if claimed {
		t.reply(ctx, logger, chatID, msgIdentityClaimed, "")
		return
	}
	release, ok := t.b.Reserve(key)
	if !ok {
		t.reply(ctx, logger, chatID, msgInProgress, "")
		return
	}
	defer release()

	t.reply(ctx, logger, chatID, msgProcessing, "")
	hash, err := t.b.RequestFunds(ctx, &ftypes.FaucetRequest{
		Channel: ftypes.ChannelTelegram,
		Address: text,
		Origin:  key.String(),
	})
	if err != nil {
		t.reply(ctx, logger, chatID, failureText(err), "")
		return
	}
	if err := t.b.RecordClaim(context.WithoutCancel(ctx), key); err != nil {
		logger.Error("Failed to record telegram claim, user may be funded again", "tx", hash, "err", err)
	}
	t.reply(ctx, logger, chatID, fmt.Sprintf(msgSuccess, hash.Hex()), ParseModeMarkdownV2)
}

func failureText(err error) string {
	var verr *backend.ValidationError
	switch {
	case errors.Is(err, backend.ErrAlreadyClaimed):
		return msgAddressClaimed
	case errors.As(err, &verr):
		return fmt.Sprintf(msgInvalidAddress, verr.Reason)
	case errors.Is(err, backend.ErrClaimInProgress):
		return msgInProgress
	case errors.Is(err, backend.ErrFaucetDisabled):
		return msgDisabled
	default:
		return msgFailed
	}
}

// reply sends a message, even while the bot is stopping.
func (t *TelegramBot) reply(ctx context.Context, logger log.Logger, chatID int64, text string, parseMode string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), replyTimeout)
	defer cancel()
	if err := t.api.SendMessage(ctx, chatID, text, parseMode); err != nil {
		logger.Warn("Failed to send telegram reply", "err", err)
	}
}
