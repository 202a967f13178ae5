package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/cashledger/internal/usecase"
)

const maxResponseBytes = 8 << 20

// HTTPParserConfig configures an HTTPParser. Zero values pick the defaults.
type HTTPParserConfig struct {
	URL            string
	Timeout        time.Duration
	MaxRetries     uint64
	InitialBackoff time.Duration
	Client         *http.Client
	Logger         zerolog.Logger
}

// HTTPParser delegates parsing to an external service. The service receives
// {"fileData": "..."} and answers with a JSON array of transactions whose
// fields may be null.
type HTTPParser struct {
	url            string
	client         *http.Client
	maxRetries     uint64
	initialBackoff time.Duration
	logger         zerolog.Logger
}

// NewHTTPParser creates an HTTP parser.
func NewHTTPParser(cfg HTTPParserConfig) *HTTPParser {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}

	return &HTTPParser{
		url:            cfg.URL,
		client:         cfg.Client,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		logger:         cfg.Logger,
	}
}

type parseRequest struct {
	FileData string `json:"fileData"`
}

// flexString accepts a JSON string, number or null.
type flexString struct {
	value *string
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		f.value = nil
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f.value = &s
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", raw)
	}
	s := n.String()
	f.value = &s
	return nil
}

type parsedTransaction struct {
	Type             flexString     `json:"type"`
	Amount           flexString     `json:"amount"`
	Scope            flexString     `json:"scope"`
	Denominations    map[string]int `json:"denominations"`
	CustomerName     flexString     `json:"customerName"`
	CompanyName      flexString     `json:"companyName"`
	Location         flexString     `json:"location"`
	AccountID        flexString     `json:"accountId"`
	ATMID            flexString     `json:"atmId"`
	PartnerBankUTR   flexString     `json:"partnerBankUTR"`
	UPITransactionID flexString     `json:"upiTransactionId"`
}

func (t parsedTransaction) record() usecase.ImportedRecord {
	return usecase.ImportedRecord{
		Type:             t.Type.value,
		Amount:           t.Amount.value,
		Scope:            t.Scope.value,
		Denominations:    t.Denominations,
		CustomerName:     t.CustomerName.value,
		CompanyName:      t.CompanyName.value,
		Location:         t.Location.value,
		AccountID:        t.AccountID.value,
		ATMID:            t.ATMID.value,
		PartnerBankUTR:   t.PartnerBankUTR.value,
		UPITransactionID: t.UPITransactionID.value,
	}
}

// Parse implements usecase.ImportParser. Network errors, 429 and 5xx answers
// are retried with exponential backoff; other failures are returned at once.
func (p *HTTPParser) Parse(ctx context.Context, data string) ([]usecase.ImportedRecord, error) {
	if p.url == "" {
		return nil, errors.New("import parser url is not configured")
	}

	body, err := json.Marshal(parseRequest{FileData: data})
	if err != nil {
		return nil, fmt.Errorf("encode parse request: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initialBackoff

	var parsed []parsedTransaction
	attempt := 0

	err = backoff.Retry(func() error {
		attempt++
		result, err := p.post(ctx, body)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			p.logger.Warn().Err(err).Int("attempt", attempt).Msg("import parser request failed")
			return err
		}
		parsed = result
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(b, p.maxRetries), ctx))
	if err != nil {
		return nil, err
	}

	records := make([]usecase.ImportedRecord, 0, len(parsed))
	for _, t := range parsed {
		records = append(records, t.record())
	}
	return records, nil
}

func (p *HTTPParser) post(ctx context.Context, body []byte) ([]parsedTransaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build parse request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call import parser: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read import parser response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("import parser returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	var parsed []parsedTransaction
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode import parser response: %w", err))
	}
	return parsed, nil
}
