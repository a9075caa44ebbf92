package harvest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aluiziolira/go-scrape-lcsc/config"
	"github.com/aluiziolira/go-scrape-lcsc/models"
)

// Client issues paginated queries against the product-list API. It
// performs exactly one round trip per call and never retries; failures
// come back as a typed *FetchError for the loop to budget.
type Client struct {
	cfg     *config.Config
	http    *http.Client
	metrics *Metrics
}

// listRequest mirrors the product-list API payload. The filter fields
// are pass-throughs the harvester does not interpret.
type listRequest struct {
	Keyword           string            `json:"keyword"`
	CatalogIDList     []int             `json:"catalogIdList"`
	BrandIDList       []int             `json:"brandIdList"`
	EncapValueList    []string          `json:"encapValueList"`
	IsStock           bool              `json:"isStock"`
	IsOtherSuppliers  bool              `json:"isOtherSuppliers"`
	IsAsianBrand      bool              `json:"isAsianBrand"`
	IsDeals           bool              `json:"isDeals"`
	IsEnvironment     bool              `json:"isEnvironment"`
	ParamNameValueMap map[string]string `json:"paramNameValueMap"`
	CurrentPage       int               `json:"currentPage"`
	PageSize          int               `json:"pageSize"`
}

type listItem struct {
	ProductModel          string `json:"productModel"`
	ProductCode           string `json:"productCode"`
	BrandNameEn           string `json:"brandNameEn"`
	ProductIntroEn        string `json:"productIntroEn"`
	ProductNameEn         string `json:"productNameEn"`
	FirstWmCatalogNameEn  string `json:"firstWmCatalogNameEn"`
	SecondWmCatalogNameEn string `json:"secondWmCatalogNameEn"`
	ThirdWmCatalogNameEn  string `json:"thirdWmCatalogNameEn"`
}

type listResponse struct {
	Result struct {
		TotalPage int        `json:"totalPage"`
		DataList  []listItem `json:"dataList"`
	} `json:"result"`
}

// NewClient builds a listing API client configured from cfg.
func NewClient(cfg *config.Config, metrics *Metrics) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		cfg:     cfg,
		metrics: metrics,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

// WithTransport swaps the underlying round tripper, used by tests.
func (c *Client) WithTransport(rt http.RoundTripper) {
	c.http.Transport = rt
}

// FetchPage issues one listing query for a 1-indexed page. A non-nil
// error is always a *FetchError.
func (c *Client) FetchPage(ctx context.Context, categoryID, page int) (*models.PageResult, error) {
	payload := listRequest{
		CatalogIDList:     []int{categoryID},
		BrandIDList:       []int{},
		EncapValueList:    []string{},
		ParamNameValueMap: map[string]string{},
		CurrentPage:       page,
		PageSize:          c.cfg.PageSize,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &FetchError{Kind: FetchMalformed, Page: page, Err: fmt.Errorf("encode payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ListingAPI, bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{Kind: FetchNetwork, Page: page, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		fetchErr := classifyFetchError(page, err)
		c.metrics.IncFetchError(fetchErr.Kind)
		return nil, fetchErr
	}
	defer resp.Body.Close()
	c.metrics.ObserveDuration(time.Since(start))

	if resp.StatusCode != http.StatusOK {
		fetchErr := &FetchError{Kind: FetchNetwork, Page: page, Err: fmt.Errorf("http status %d", resp.StatusCode)}
		c.metrics.IncFetchError(fetchErr.Kind)
		return nil, fetchErr
	}

	var decoded listResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		fetchErr := &FetchError{Kind: FetchMalformed, Page: page, Err: fmt.Errorf("decode response: %w", err)}
		c.metrics.IncFetchError(fetchErr.Kind)
		return nil, fetchErr
	}

	records := make([]models.RawProduct, 0, len(decoded.Result.DataList))
	for _, item := range decoded.Result.DataList {
		description := item.ProductIntroEn
		if strings.TrimSpace(description) == "" {
			description = item.ProductNameEn
		}
		records = append(records, models.RawProduct{
			MPN:           item.ProductModel,
			LCSCCode:      item.ProductCode,
			Manufacturer:  item.BrandNameEn,
			Description:   description,
			Category:      item.FirstWmCatalogNameEn,
			Subcategory:   item.SecondWmCatalogNameEn,
			ChildCategory: item.ThirdWmCatalogNameEn,
			Page:          page,
		})
	}

	return &models.PageResult{
		Records:    records,
		TotalPages: decoded.Result.TotalPage,
	}, nil
}
