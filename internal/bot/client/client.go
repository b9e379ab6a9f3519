// Package client talks to the gateway HTTP API on behalf of the bot.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"github.com/kiribu/budget-buddy/internal/statement"
)

// Error is a non-2xx gateway response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status of a gateway error, or 0 for transport
// failures.
func StatusOf(err error) int {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Status
	}
	return 0
}

type StartRequest struct {
	TelegramID   int64  `json:"telegram_id"`
	Username     string `json:"username,omitempty"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	InviteCode   string `json:"invite_code,omitempty"`
}

type Inviter struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type StartResponse struct {
	UserID        int64    `json:"user_id"`
	BudgetOwnerID int64    `json:"budget_owner_id"`
	Inviter       *Inviter `json:"inviter"`
}

type UploadResponse struct {
	Stored  int64  `json:"stored"`
	BatchID string `json:"batch_id"`
}

type Gateway struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (g *Gateway) Start(ctx context.Context, req StartRequest) (*StartResponse, error) {
	var resp StartResponse
	if err := g.doJSON(ctx, http.MethodPost, "/api/bot/start", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (g *Gateway) Banks(ctx context.Context) ([]statement.Bank, error) {
	var resp struct {
		Banks []statement.Bank `json:"banks"`
	}
	if err := g.doJSON(ctx, http.MethodGet, "/api/banks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Banks, nil
}

func (g *Gateway) Report(ctx context.Context, telegramID int64, p model.Period) (*model.Report, error) {
	query := url.Values{
		"telegram_id": {strconv.FormatInt(telegramID, 10)},
		"start":       {p.Start.Format(time.RFC3339Nano)},
		"end":         {p.End.Format(time.RFC3339Nano)},
	}

	report := model.NewReport()
	if err := g.doJSON(ctx, http.MethodGet, "/api/report?"+query.Encode(), nil, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (g *Gateway) Analytics(ctx context.Context, telegramID int64, original, compared model.Period) (*model.Analytics, error) {
	query := url.Values{
		"telegram_id":    {strconv.FormatInt(telegramID, 10)},
		"original_start": {original.Start.Format(time.RFC3339Nano)},
		"original_end":   {original.End.Format(time.RFC3339Nano)},
		"compared_start": {compared.Start.Format(time.RFC3339Nano)},
		"compared_end":   {compared.End.Format(time.RFC3339Nano)},
	}

	analytics := &model.Analytics{OriginalPeriod: model.NewReport(), ComparedPeriod: model.NewReport()}
	if err := g.doJSON(ctx, http.MethodGet, "/api/analytics?"+query.Encode(), nil, analytics); err != nil {
		return nil, err
	}
	return analytics, nil
}

func (g *Gateway) CreateInvite(ctx context.Context, telegramID int64) (string, error) {
	var resp struct {
		Code string `json:"code"`
	}
	if err := g.doJSON(ctx, http.MethodPost, "/api/invites", map[string]int64{"telegram_id": telegramID}, &resp); err != nil {
		return "", err
	}
	return resp.Code, nil
}

// UploadStatement streams a statement file to the gateway as multipart form
// data.
func (g *Gateway) UploadStatement(ctx context.Context, telegramID int64, bank, filename string, document io.Reader) (*UploadResponse, error) {
	body, writer := io.Pipe()
	form := multipart.NewWriter(writer)

	go func() {
		err := writeUploadForm(form, telegramID, bank, filename, document)
		writer.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/statements", body)
	if err != nil {
		body.Close()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var resp UploadResponse
	if err := g.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func writeUploadForm(form *multipart.Writer, telegramID int64, bank, filename string, document io.Reader) error {
	if err := form.WriteField("telegram_id", strconv.FormatInt(telegramID, 10)); err != nil {
		return err
	}
	if err := form.WriteField("bank", bank); err != nil {
		return err
	}
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, document); err != nil {
		return err
	}
	return form.Close()
}

func (g *Gateway) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return g.do(req, out)
}

func (g *Gateway) do(req *http.Request, out interface{}) error {
	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return &Error{Status: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}
