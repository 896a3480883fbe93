package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the portal backend. Company-facing calls are JSON POSTs
// to /index.php with an "action" field; admin calls are form-encoded POSTs
// to /admin.php. Responses always carry a "success" flag; a false flag is a
// domain failure (*APIError), anything else a transport error.
type Client struct {
	httpClient *http.Client
	BaseURL    string
	AdminToken string
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

// APIError is a server-reported domain failure: success:false plus
// whichever flags the action carries.
type APIError struct {
	Message             string
	Blocked             bool
	BlockReason         string
	OrderTimeRestricted bool
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "request rejected by server"
}

// envelope is the part of every response the client inspects before
// handing the body to the caller's own struct.
type envelope struct {
	Success             bool   `json:"success"`
	Message             string `json:"message"`
	Blocked             bool   `json:"blocked"`
	Reason              string `json:"reason"`
	OrderTimeRestricted bool   `json:"orderTimeRestricted"`
}

func (c *Client) decode(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		return &APIError{
			Message:             env.Message,
			Blocked:             env.Blocked,
			BlockReason:         env.Reason,
			OrderTimeRestricted: env.OrderTimeRestricted,
		}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(buf.Bytes(), out)
}

// doJSON posts a company-surface action.
func (c *Client) doJSON(ctx context.Context, action string, fields map[string]interface{}, out interface{}) error {
	body := map[string]interface{}{"action": action}
	for k, v := range fields {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/index.php", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return c.decode(resp, out)
}

// doForm posts an admin-surface action.
func (c *Client) doForm(ctx context.Context, action string, values url.Values, out interface{}) error {
	if values == nil {
		values = url.Values{}
	}
	values.Set("action", action)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/admin.php",
		strings.NewReader(values.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.AdminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AdminToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return c.decode(resp, out)
}

// ---- company surface ----

type Item struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type OrderLine struct {
	ItemName string `json:"itemName"`
	Quantity int    `json:"quantity"`
}

type LoginResult struct {
	CompanyName      string `json:"companyName"`
	Items            []Item `json:"items"`
	OrderBlocked     bool   `json:"orderBlocked"`
	BlockReason      string `json:"blockReason"`
	OrderTimeAllowed bool   `json:"orderTimeAllowed"`
}

type BlockStatus struct {
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason"`
}

type TodayOrder struct {
	HasOrder  bool        `json:"hasOrder"`
	OrderDate string      `json:"orderDate"`
	Items     []OrderLine `json:"items"`
	CanModify bool        `json:"canModify"`
	Blocked   bool        `json:"blocked"`
	Reason    string      `json:"reason"`
}

type HistoryDay struct {
	OrderDate string      `json:"orderDate"`
	Items     []OrderLine `json:"items"`
}

type Notice struct {
	ID        string     `json:"id"`
	Scope     string     `json:"scope"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Priority  int        `json:"priority"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

type Profile struct {
	CompanyName   string `json:"companyName"`
	ContactName   string `json:"contactName"`
	Phone         string `json:"phone"`
	PostalCode    string `json:"postalCode"`
	Address       string `json:"address"`
	AddressDetail string `json:"addressDetail"`
}

type Registration struct {
	CompanyName    string `json:"companyName"`
	Password       string `json:"password"`
	ContactName    string `json:"contactName"`
	Phone          string `json:"phone"`
	PostalCode     string `json:"postalCode"`
	Address        string `json:"address"`
	AddressDetail  string `json:"addressDetail"`
	AttachmentName string `json:"attachmentName"`
	AttachmentType string `json:"attachmentType"`
	AttachmentSize int64  `json:"attachmentSize"`
}

type ItemRequest struct {
	ID        uint      `json:"id"`
	ItemName  string    `json:"item_name"`
	Note      string    `json:"note"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Client) FindCompanyByPassword(ctx context.Context, password string) (*LoginResult, error) {
	var result LoginResult
	err := c.doJSON(ctx, "findCompanyByPassword", map[string]interface{}{"password": password}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Logout(ctx context.Context, companyName string) error {
	return c.doJSON(ctx, "logout", map[string]interface{}{"companyName": companyName}, nil)
}

func (c *Client) GetCompanyID(ctx context.Context, companyName string) (uint, error) {
	var result struct {
		CompanyID uint `json:"companyId"`
	}
	err := c.doJSON(ctx, "getCompanyId", map[string]interface{}{"companyName": companyName}, &result)
	return result.CompanyID, err
}

func (c *Client) GetCompanyProfile(ctx context.Context, companyName string) (*Profile, error) {
	var result struct {
		Profile Profile `json:"profile"`
	}
	err := c.doJSON(ctx, "getCompanyProfile", map[string]interface{}{"companyName": companyName}, &result)
	if err != nil {
		return nil, err
	}
	return &result.Profile, nil
}

func (c *Client) UpdateCompanyProfile(ctx context.Context, p Profile) error {
	return c.doJSON(ctx, "updateCompanyProfile", map[string]interface{}{
		"companyName":   p.CompanyName,
		"contactName":   p.ContactName,
		"phone":         p.Phone,
		"postalCode":    p.PostalCode,
		"address":       p.Address,
		"addressDetail": p.AddressDetail,
	}, nil)
}

func (c *Client) CheckCompanyName(ctx context.Context, companyName string) (bool, error) {
	var result struct {
		Available bool `json:"available"`
	}
	err := c.doJSON(ctx, "checkCompanyName", map[string]interface{}{"companyName": companyName}, &result)
	return result.Available, err
}

func (c *Client) RegisterCompany(ctx context.Context, reg Registration) (string, error) {
	var result struct {
		ReferenceCode string `json:"referenceCode"`
	}
	err := c.doJSON(ctx, "registerCompany", map[string]interface{}{
		"companyName":    reg.CompanyName,
		"password":       reg.Password,
		"contactName":    reg.ContactName,
		"phone":          reg.Phone,
		"postalCode":     reg.PostalCode,
		"address":        reg.Address,
		"addressDetail":  reg.AddressDetail,
		"attachmentName": reg.AttachmentName,
		"attachmentType": reg.AttachmentType,
		"attachmentSize": reg.AttachmentSize,
	}, &result)
	return result.ReferenceCode, err
}

func (c *Client) GetTodayOrderStatus(ctx context.Context, companyName string) (*TodayOrder, error) {
	var result TodayOrder
	err := c.doJSON(ctx, "getTodayOrderStatus", map[string]interface{}{"companyName": companyName}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CheckOrderBlock(ctx context.Context, companyName string) (*BlockStatus, error) {
	var result BlockStatus
	err := c.doJSON(ctx, "checkOrderBlock", map[string]interface{}{"companyName": companyName}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ProcessOrder sends the full draft as a replacement of today's order. An
// empty slice clears the day.
func (c *Client) ProcessOrder(ctx context.Context, companyName string, lines []OrderLine) error {
	if lines == nil {
		lines = []OrderLine{}
	}
	return c.doJSON(ctx, "processOrder", map[string]interface{}{
		"companyName": companyName,
		"items":       lines,
	}, nil)
}

func (c *Client) GetRecentOrderHistory(ctx context.Context, companyName string, days int) ([]HistoryDay, error) {
	var result struct {
		History []HistoryDay `json:"history"`
	}
	err := c.doJSON(ctx, "getRecentOrderHistory", map[string]interface{}{
		"companyName": companyName,
		"days":        days,
	}, &result)
	return result.History, err
}

func (c *Client) GetUnreadGlobalNotices(ctx context.Context, companyName string) ([]Notice, error) {
	var result struct {
		Notices []Notice `json:"notices"`
	}
	err := c.doJSON(ctx, "getUnreadGlobalNotices", map[string]interface{}{"companyName": companyName}, &result)
	return result.Notices, err
}

func (c *Client) MarkNoticeAsRead(ctx context.Context, companyName, noticeID string) error {
	return c.doJSON(ctx, "markNoticeAsRead", map[string]interface{}{
		"companyName": companyName,
		"noticeId":    noticeID,
	}, nil)
}

func (c *Client) GetIndividualNotices(ctx context.Context, companyName string) ([]Notice, error) {
	var result struct {
		Notices []Notice `json:"notices"`
	}
	err := c.doJSON(ctx, "getIndividualNotices", map[string]interface{}{"companyName": companyName}, &result)
	return result.Notices, err
}

func (c *Client) GetCompanyItemRequestStatus(ctx context.Context, companyName string) ([]ItemRequest, error) {
	var result struct {
		Requests []ItemRequest `json:"requests"`
	}
	err := c.doJSON(ctx, "getCompanyItemRequestStatus", map[string]interface{}{"companyName": companyName}, &result)
	return result.Requests, err
}

func (c *Client) CreateCompanyItemRequest(ctx context.Context, companyName, itemName, note string) error {
	return c.doJSON(ctx, "createCompanyItemRequest", map[string]interface{}{
		"companyName": companyName,
		"itemName":    itemName,
		"note":        note,
	}, nil)
}
