// Package druginfo is a client for the public e-drug information API
// used to seed and extend the drug catalog.
package druginfo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mediguide-api/internal/config"
	"github.com/mediguide-api/internal/models"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// Source supplies catalog records
type Source interface {
	Search(ctx context.Context, name string) ([]models.DrugRecord, error)
	FetchAll(ctx context.Context) ([]models.DrugRecord, error)
}

// ErrUnauthorized means the API rejected the service key
var ErrUnauthorized = errors.New("e-drug API rejected the service key")

// maxPages bounds FetchAll in case the API never returns an empty page
const maxPages = 500

// Client is the HTTP implementation of Source
type Client struct {
	baseURL    string
	serviceKey string
	pageSize   int
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a client from config
func NewClient(cfg *config.DrugAPIConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		pageSize:   cfg.PageSize,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With().Str("component", "druginfo").Logger(),
	}
}

// Search returns the records whose item name matches name
func (c *Client) Search(ctx context.Context, name string) ([]models.DrugRecord, error) {
	records, _, err := c.fetchPage(ctx, 1, url.Values{"itemName": {name}})
	return records, err
}

// FetchAll walks every page until the API returns an empty one
func (c *Client) FetchAll(ctx context.Context) ([]models.DrugRecord, error) {
	var all []models.DrugRecord
	for page := 1; page <= maxPages; page++ {
		records, total, err := c.fetchPage(ctx, page, nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(records) == 0 {
			break
		}
		all = append(all, records...)

		c.log.Debug().Int("page", page).Int("fetched", len(all)).Int("total", total).Msg("Fetched catalog page")
		if total > 0 && len(all) >= total {
			break
		}
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, page int, extra url.Values) ([]models.DrugRecord, int, error) {
	params := url.Values{}
	params.Set("serviceKey", c.serviceKey)
	params.Set("pageNo", strconv.Itoa(page))
	params.Set("numOfRows", strconv.Itoa(c.pageSize))
	params.Set("type", "json")
	for k, v := range extra {
		params[k] = v
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("e-drug API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read e-drug API response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, 0, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("e-drug API returned status %d", resp.StatusCode)
	}
	// Key errors come back as an XML envelope with status 200
	if !gjson.ValidBytes(body) {
		if bytes.Contains(body, []byte("SERVICE_KEY")) {
			return nil, 0, ErrUnauthorized
		}
		return nil, 0, errors.New("e-drug API returned a non-JSON body")
	}

	return ParseItems(body)
}

// ParseItems extracts records and the total count from a response body.
// The API returns items either as a list or wrapped as {"item": ...},
// and a single item may be an object rather than a list.
func ParseItems(body []byte) ([]models.DrugRecord, int, error) {
	if code := gjson.GetBytes(body, "header.resultCode").String(); code != "" && code != "00" {
		msg := gjson.GetBytes(body, "header.resultMsg").String()
		if strings.Contains(strings.ToUpper(msg), "SERVICE_KEY") {
			return nil, 0, ErrUnauthorized
		}
		return nil, 0, fmt.Errorf("e-drug API error %s: %s", code, msg)
	}

	total := int(gjson.GetBytes(body, "body.totalCount").Int())
	items := gjson.GetBytes(body, "body.items")
	if items.IsObject() {
		items = items.Get("item")
	}

	var records []models.DrugRecord
	collect := func(item gjson.Result) {
		name := strings.TrimSpace(item.Get("itemName").String())
		if name == "" {
			return
		}
		records = append(records, models.DrugRecord{
			Name:     name,
			Effect:   item.Get("efcyQesitm").String(),
			Usage:    item.Get("useMethodQesitm").String(),
			Warning:  item.Get("atpnWarnQesitm").String(),
			ImageURL: item.Get("itemImage").String(),
		})
	}

	switch {
	case items.IsArray():
		items.ForEach(func(_, item gjson.Result) bool {
			collect(item)
			return true
		})
	case items.IsObject():
		collect(items)
	}
	return records, total, nil
}
