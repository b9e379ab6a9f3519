package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kiribu/budget-buddy/internal/bot/client"
	"github.com/kiribu/budget-buddy/internal/bot/period"
	"github.com/kiribu/budget-buddy/internal/bot/render"
	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"github.com/kiribu/budget-buddy/internal/statement"
	"go.uber.org/zap"
)

const (
	msgFailed          = "Something went wrong. Please try again later."
	msgUnknownCommand  = "I don't know this command. Type /help to see what I can do."
	msgChooseBank      = "Choose the bank your statement comes from."
	msgChoosePeriod    = "Choose a period for the report:"
	msgNoTransactions  = "There are no valid transactions in the file"
	msgUnsupportedBank = "This bank is not supported. Choose one from the keyboard."
	msgSendDocument    = "Please send the statement as a file."
	msgUploadFirst     = "Type /upload before sending a statement."
	msgStored          = "%d transactions were processed and saved"
	msgInvite          = "Here is your link, share it to invite someone to a joint budget\n%s"
)

type Gateway interface {
	Start(ctx context.Context, req client.StartRequest) (*client.StartResponse, error)
	Banks(ctx context.Context) ([]statement.Bank, error)
	Report(ctx context.Context, telegramID int64, p model.Period) (*model.Report, error)
	Analytics(ctx context.Context, telegramID int64, original, compared model.Period) (*model.Analytics, error)
	UploadStatement(ctx context.Context, telegramID int64, bank, filename string, document io.Reader) (*client.UploadResponse, error)
	CreateInvite(ctx context.Context, telegramID int64) (string, error)
}

// Sender is the part of *tgbotapi.BotAPI the handler uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// upload tracks a chat between /upload and the statement document.
type upload struct {
	bank *statement.Bank
}

type Handler struct {
	bot         Sender
	gateway     Gateway
	botUsername string
	httpClient  *http.Client
	now         func() time.Time
	logger      *zap.Logger

	mu      sync.Mutex
	uploads map[int64]*upload
}

func NewHandler(bot Sender, gateway Gateway, botUsername string, logger *zap.Logger) *Handler {
	return &Handler{
		bot:         bot,
		gateway:     gateway,
		botUsername: botUsername,
		httpClient:  &http.Client{Timeout: time.Minute},
		now:         time.Now,
		logger:      logger,
		uploads:     make(map[int64]*upload),
	}
}

func (h *Handler) Cleanup() {
	h.mu.Lock()
	h.uploads = make(map[int64]*upload)
	h.mu.Unlock()
	h.logger.Info("Bot cleanup completed")
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	if msg.IsCommand() {
		h.resetUpload(msg.Chat.ID)
		h.handleCommand(ctx, msg)
		return
	}

	if state := h.pendingUpload(msg.Chat.ID); state != nil {
		h.continueUpload(ctx, msg, state)
		return
	}

	if msg.Document != nil {
		h.sendText(msg.Chat.ID, msgUploadFirst)
		return
	}
	h.sendText(msg.Chat.ID, msgUnknownCommand)
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.handleStart(ctx, msg)
	case "help":
		h.handleHelp(ctx, msg)
	case "upload":
		h.handleUpload(ctx, msg)
	case "report":
		h.handleReport(msg)
	case "analytics":
		h.handleAnalytics(ctx, msg)
	case "create_invitation":
		h.handleInvite(ctx, msg)
	default:
		h.sendText(msg.Chat.ID, msgUnknownCommand)
	}
}

func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	req := client.StartRequest{
		TelegramID:   msg.From.ID,
		Username:     msg.From.UserName,
		FirstName:    msg.From.FirstName,
		LastName:     msg.From.LastName,
		LanguageCode: msg.From.LanguageCode,
	}
	if code := strings.TrimSpace(msg.CommandArguments()); isInviteCode(code) {
		req.InviteCode = code
	}

	resp, err := h.gateway.Start(ctx, req)
	if err != nil {
		h.logger.Error("failed to start user", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		h.sendText(msg.Chat.ID, msgFailed)
		return
	}

	h.sendMarkdown(msg.Chat.ID, render.Welcome)
	if resp.Inviter != nil {
		h.sendMarkdown(msg.Chat.ID, render.Invited(resp.Inviter.FirstName, resp.Inviter.LastName))
	}
}

func (h *Handler) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	banks, err := h.gateway.Banks(ctx)
	if err != nil {
		h.logger.Error("failed to list banks", zap.Error(err))
		h.sendText(msg.Chat.ID, msgFailed)
		return
	}
	h.sendMarkdown(msg.Chat.ID, render.Help(banks))
}

func (h *Handler) handleUpload(ctx context.Context, msg *tgbotapi.Message) {
	banks, err := h.gateway.Banks(ctx)
	if err != nil {
		h.logger.Error("failed to list banks", zap.Error(err))
		h.sendText(msg.Chat.ID, msgFailed)
		return
	}
	if len(banks) == 0 {
		h.sendMarkdown(msg.Chat.ID, render.SupportedBanks(banks))
		return
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(banks))
	for _, bank := range banks {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(bank.Name)))
	}
	keyboard := tgbotapi.NewOneTimeReplyKeyboard(rows...)

	h.mu.Lock()
	h.uploads[msg.Chat.ID] = &upload{}
	h.mu.Unlock()

	reply := tgbotapi.NewMessage(msg.Chat.ID, msgChooseBank)
	reply.ReplyMarkup = keyboard
	h.send(reply)
}

func (h *Handler) continueUpload(ctx context.Context, msg *tgbotapi.Message, state *upload) {
	if state.bank == nil {
		h.selectBank(ctx, msg)
		return
	}
	if msg.Document == nil {
		h.sendText(msg.Chat.ID, msgSendDocument)
		return
	}
	h.uploadDocument(ctx, msg, *state.bank)
}

func (h *Handler) selectBank(ctx context.Context, msg *tgbotapi.Message) {
	banks, err := h.gateway.Banks(ctx)
	if err != nil {
		h.logger.Error("failed to list banks", zap.Error(err))
		h.sendText(msg.Chat.ID, msgFailed)
		return
	}

	name := strings.TrimSpace(msg.Text)
	for i := range banks {
		if strings.EqualFold(banks[i].Name, name) {
			bank := banks[i]
			h.mu.Lock()
			if state, ok := h.uploads[msg.Chat.ID]; ok {
				state.bank = &bank
			}
			h.mu.Unlock()

			reply := tgbotapi.NewMessage(msg.Chat.ID, render.SupportedFormats(bank))
			reply.ParseMode = tgbotapi.ModeMarkdownV2
			reply.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
			h.send(reply)
			return
		}
	}

	h.sendText(msg.Chat.ID, msgUnsupportedBank)
}

func (h *Handler) uploadDocument(ctx context.Context, msg *tgbotapi.Message, bank statement.Bank) {
	chatID := msg.Chat.ID
	doc := msg.Document

	body, err := h.download(ctx, doc.FileID)
	if err != nil {
		h.logger.Error("failed to download statement", zap.String("file_id", doc.FileID), zap.Error(err))
		h.sendText(chatID, msgFailed)
		return
	}
	defer body.Close()

	resp, err := h.gateway.UploadStatement(ctx, msg.From.ID, bank.Name, doc.FileName, body)
	if err == nil {
		h.resetUpload(chatID)
		h.logger.Info("statement uploaded",
			zap.Int64("telegram_id", msg.From.ID),
			zap.String("bank", bank.Name),
			zap.Int64("stored", resp.Stored))
		h.sendText(chatID, fmt.Sprintf(msgStored, resp.Stored))
		return
	}

	switch client.StatusOf(err) {
	case http.StatusUnsupportedMediaType:
		// The chat keeps its bank so the user can retry with another file.
		h.sendMarkdown(chatID, render.SupportedFormats(bank))
	case http.StatusUnprocessableEntity:
		h.resetUpload(chatID)
		h.sendText(chatID, msgNoTransactions)
	default:
		h.resetUpload(chatID)
		h.logger.Error("failed to upload statement", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		h.sendText(chatID, msgFailed)
	}
}

func (h *Handler) download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	fileURL, err := h.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("telegram returned %d for file download", resp.StatusCode)
	}
	return resp.Body, nil
}

func (h *Handler) handleReport(msg *tgbotapi.Message) {
	presets := period.ReportPresets(h.now())
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(presets))
	for _, preset := range presets {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(preset.Label, period.PackCallback(preset.Period)),
		))
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, msgChoosePeriod)
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.send(reply)
}

func (h *Handler) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	defer h.answer(query.ID)

	if query.Message == nil || !period.IsCallback(query.Data) {
		return
	}
	chatID := query.Message.Chat.ID

	p, err := period.ParseCallback(query.Data, h.now().Location())
	if err != nil {
		h.logger.Warn("invalid report callback", zap.String("data", query.Data), zap.Error(err))
		h.sendText(chatID, msgFailed)
		return
	}

	report, err := h.gateway.Report(ctx, query.From.ID, p)
	if err != nil {
		h.logger.Error("failed to get report", zap.Int64("telegram_id", query.From.ID), zap.Error(err))
		h.sendText(chatID, msgFailed)
		return
	}

	h.sendMarkdown(chatID, render.Report(p.Start, p.End, report))
}

func (h *Handler) handleAnalytics(ctx context.Context, msg *tgbotapi.Message) {
	original, compared := period.Analytics(h.now())

	analytics, err := h.gateway.Analytics(ctx, msg.From.ID, original, compared)
	if err != nil {
		h.logger.Error("failed to get analytics", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		h.sendText(msg.Chat.ID, msgFailed)
		return
	}

	h.sendMarkdown(msg.Chat.ID, render.Analytics(original, compared, analytics))
}

func (h *Handler) handleInvite(ctx context.Context, msg *tgbotapi.Message) {
	code, err := h.gateway.CreateInvite(ctx, msg.From.ID)
	if err != nil {
		h.logger.Error("failed to create invite", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		h.sendText(msg.Chat.ID, msgFailed)
		return
	}

	link := fmt.Sprintf("https://t.me/%s?start=%s", h.botUsername, code)
	h.sendText(msg.Chat.ID, fmt.Sprintf(msgInvite, link))
}

func (h *Handler) pendingUpload(chatID int64) *upload {
	h.mu.Lock()
	defer h.mu.Unlock()
	state, ok := h.uploads[chatID]
	if !ok {
		return nil
	}
	copied := *state
	return &copied
}

func (h *Handler) resetUpload(chatID int64) {
	h.mu.Lock()
	delete(h.uploads, chatID)
	h.mu.Unlock()
}

// isInviteCode reports whether a /start argument looks like an invite code.
func isInviteCode(code string) bool {
	if len(code) < 8 || len(code) > 12 {
		return false
	}
	for _, r := range code {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func (h *Handler) sendText(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	h.send(msg)
}

func (h *Handler) send(msg tgbotapi.MessageConfig) {
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Error("failed to send message", zap.Int64("chat_id", msg.ChatID), zap.Error(err))
	}
}

func (h *Handler) answer(callbackID string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		h.logger.Warn("failed to answer callback", zap.Error(err))
	}
}
