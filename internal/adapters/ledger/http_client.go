// Package ledger contains implementations of the wallet ledger port.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/pickup/internal/ports/secondary"
)

// DefaultWalletAPIURL is the default wallet API base URL.
const DefaultWalletAPIURL = "https://staging.crossmint.com/api/2025-06-09"

// DefaultChain is the chain the asset is transferred on.
const DefaultChain = "base-sepolia"

// WalletConfig configures the HTTP wallet ledger.
type WalletConfig struct {
	// URL is the base URL of the wallet API
	URL string

	// APIKey is sent as X-API-KEY
	APIKey string

	// Locator identifies the sending wallet
	Locator string

	// Chain the asset lives on (optional, defaults to DefaultChain)
	Chain string

	// HTTPClient is the HTTP client to use (optional)
	HTTPClient *http.Client

	// Timeout for requests (optional, defaults to 30s)
	Timeout time.Duration
}

// HTTPLedger submits transfers and reads their status from a custodial
// wallet API. Implements secondary.Ledger.
type HTTPLedger struct {
	url        string
	apiKey     string
	locator    string
	chain      string
	httpClient *http.Client
}

type transferRequest struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type transferResponse struct {
	ID            string `json:"id"`
	TransactionID string `json:"transactionId"`
	Hash          string `json:"hash"`
	OnChain       struct {
		TxID string `json:"txId"`
	} `json:"onChain"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// NewHTTPLedger creates a new HTTP wallet ledger
func NewHTTPLedger(config *WalletConfig) *HTTPLedger {
	if config == nil {
		config = &WalletConfig{}
	}

	base := strings.TrimRight(config.URL, "/")
	if base == "" {
		base = DefaultWalletAPIURL
	}

	chain := config.Chain
	if chain == "" {
		chain = DefaultChain
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	return &HTTPLedger{
		url:        base,
		apiKey:     config.APIKey,
		locator:    config.Locator,
		chain:      chain,
		httpClient: httpClient,
	}
}

// Available reports whether credentials and a wallet locator are configured.
func (l *HTTPLedger) Available() bool {
	return l.apiKey != "" && l.locator != ""
}

// SubmitTransfer sends amount of asset to destination.
func (l *HTTPLedger) SubmitTransfer(ctx context.Context, destination, asset, amount string) (*secondary.TransferReceipt, error) {
	if err := checkTransfer(l.Available(), destination, amount); err != nil {
		return nil, err
	}

	body, err := json.Marshal(transferRequest{Recipient: destination, Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transfer request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/wallets/%s/tokens/%s:%s/transfers",
		l.url, url.PathEscape(l.locator), url.PathEscape(l.chain), url.PathEscape(asset))

	responseBody, status, err := l.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("transfer request failed: %w", err)
	}
	if status != http.StatusOK && status != http.StatusCreated && status != http.StatusAccepted {
		return nil, fmt.Errorf("wallet transfer failed (%d): %s", status, strings.TrimSpace(string(responseBody)))
	}

	var resp transferResponse
	if err := json.Unmarshal(responseBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode transfer response: %w", err)
	}

	settlementID := resp.TransactionID
	if settlementID == "" {
		settlementID = resp.ID
	}
	ref := resp.Hash
	if ref == "" {
		ref = resp.OnChain.TxID
	}
	if ref == "" {
		ref = settlementID
	}

	return &secondary.TransferReceipt{
		TransferRef:  ref,
		SettlementID: settlementID,
	}, nil
}

// QueryStatus reads the settlement status of a submitted transfer.
// Unrecognized statuses are reported as pending.
func (l *HTTPLedger) QueryStatus(ctx context.Context, settlementID string) (secondary.SettlementStatus, error) {
	endpoint := fmt.Sprintf("%s/wallets/%s/transactions/%s",
		l.url, url.PathEscape(l.locator), url.PathEscape(settlementID))

	responseBody, status, err := l.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("status request failed: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("wallet status failed (%d): %s", status, strings.TrimSpace(string(responseBody)))
	}

	var resp statusResponse
	if err := json.Unmarshal(responseBody, &resp); err != nil {
		return "", fmt.Errorf("failed to decode status response: %w", err)
	}

	return mapStatus(resp.Status), nil
}

func (l *HTTPLedger) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", l.apiKey)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return responseBody, resp.StatusCode, nil
}

func mapStatus(raw string) secondary.SettlementStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success", "succeeded", "completed":
		return secondary.SettlementSuccess
	case "failed", "failure", "rejected":
		return secondary.SettlementFailed
	default:
		return secondary.SettlementPending
	}
}

// checkTransfer applies the up-front rejections every ledger shares.
func checkTransfer(available bool, destination, amount string) error {
	if !available {
		return fmt.Errorf("%w: wallet is not connected", secondary.ErrTransferRejected)
	}
	if strings.TrimSpace(destination) == "" {
		return fmt.Errorf("%w: destination is empty", secondary.ErrTransferRejected)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil || value <= 0 {
		return fmt.Errorf("%w: amount %q must be a positive number", secondary.ErrTransferRejected, amount)
	}
	return nil
}

// Ensure HTTPLedger implements the interface
var _ secondary.Ledger = (*HTTPLedger)(nil)
