package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Admin-surface calls. AdminLogin stores the token on the client; every
// other call rides it.

type CompanyStatus struct {
	CompanyID    uint      `json:"companyId"`
	CompanyName  string    `json:"companyName"`
	Status       string    `json:"status"`
	RejectReason string    `json:"rejectReason"`
	OrderBlocked bool      `json:"orderBlocked"`
	BlockReason  string    `json:"blockReason"`
	GroupID      *uint     `json:"groupId"`
	OrderedToday bool      `json:"orderedToday"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CompanyOrder struct {
	CompanyID   uint        `json:"companyId"`
	CompanyName string      `json:"companyName"`
	OrderDate   string      `json:"orderDate"`
	Items       []OrderLine `json:"items"`
}

type NoticeSummary struct {
	NoticeID  string     `json:"noticeId"`
	Scope     string     `json:"scope"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Priority  int        `json:"priority"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

type NoticeDraft struct {
	Scope            string
	Title            string
	Message          string
	Priority         int
	ExpiresAt        *time.Time
	TargetCompanyIDs []uint
}

type ItemGroupView struct {
	GroupID     uint     `json:"groupId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ItemIDs     []uint   `json:"itemIds"`
	ItemNames   []string `json:"itemNames"`
}

type SheetConfig struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	SheetURL string `json:"sheet_url"`
	Active   bool   `json:"active"`
}

type CatalogItem struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
	CategoryID  *uint  `json:"category_id"`
}

type Category struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func joinIDs(ids []uint) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ",")
}

// AdminLogin authenticates against the console and keeps the token for
// subsequent calls.
func (c *Client) AdminLogin(ctx context.Context, username, password string) error {
	var result struct {
		Token string `json:"token"`
	}
	err := c.doForm(ctx, "adminLogin", url.Values{
		"username": {username},
		"password": {password},
	}, &result)
	if err != nil {
		return err
	}
	c.AdminToken = result.Token
	return nil
}

// AdminLogout revokes the server-side session and drops the local token.
func (c *Client) AdminLogout(ctx context.Context) error {
	err := c.doForm(ctx, "adminLogout", nil, nil)
	c.AdminToken = ""
	return err
}

func (c *Client) GetAllCompaniesWithStatus(ctx context.Context) ([]CompanyStatus, error) {
	var result struct {
		Companies []CompanyStatus `json:"companies"`
	}
	err := c.doForm(ctx, "getAllCompaniesWithStatus", nil, &result)
	return result.Companies, err
}

// ApproveWithSettings approves a pending company; groupID zero means
// approve without assigning a catalog group.
func (c *Client) ApproveWithSettings(ctx context.Context, companyID, groupID uint) error {
	values := url.Values{"companyId": {fmt.Sprint(companyID)}}
	if groupID != 0 {
		values.Set("groupId", fmt.Sprint(groupID))
	}
	return c.doForm(ctx, "approveWithSettings", values, nil)
}

func (c *Client) RejectCompany(ctx context.Context, companyID uint, reason string) error {
	return c.doForm(ctx, "reject", url.Values{
		"companyId": {fmt.Sprint(companyID)},
		"reason":    {reason},
	}, nil)
}

func (c *Client) ToggleCompanyOrderBlock(ctx context.Context, companyID uint, reason string) (*BlockStatus, error) {
	var result BlockStatus
	err := c.doForm(ctx, "toggleCompanyOrderBlock", url.Values{
		"companyId": {fmt.Sprint(companyID)},
		"reason":    {reason},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) UpdateBlockReason(ctx context.Context, companyID uint, reason string) error {
	return c.doForm(ctx, "updateBlockReason", url.Values{
		"companyId": {fmt.Sprint(companyID)},
		"reason":    {reason},
	}, nil)
}

func (c *Client) UpdateCompanyGroup(ctx context.Context, companyID, groupID uint) error {
	return c.doForm(ctx, "updateCompanyGroup", url.Values{
		"companyId": {fmt.Sprint(companyID)},
		"groupId":   {fmt.Sprint(groupID)},
	}, nil)
}

func (c *Client) GetOrdersByDate(ctx context.Context, date string) ([]CompanyOrder, error) {
	var result struct {
		Orders []CompanyOrder `json:"orders"`
	}
	err := c.doForm(ctx, "getOrdersByDate", url.Values{"date": {date}}, &result)
	return result.Orders, err
}

func (c *Client) GetOrderDateRange(ctx context.Context) (minDate, maxDate string, err error) {
	var result struct {
		MinDate string `json:"minDate"`
		MaxDate string `json:"maxDate"`
	}
	err = c.doForm(ctx, "getOrderDateRange", nil, &result)
	return result.MinDate, result.MaxDate, err
}

func noticeValues(d NoticeDraft) url.Values {
	values := url.Values{
		"scope":    {d.Scope},
		"message":  {d.Message},
		"priority": {strconv.Itoa(d.Priority)},
	}
	if d.Title != "" {
		values.Set("title", d.Title)
	}
	if d.ExpiresAt != nil {
		values.Set("expiresAt", d.ExpiresAt.Format(time.RFC3339))
	}
	if len(d.TargetCompanyIDs) > 0 {
		values.Set("targetCompanyIds", joinIDs(d.TargetCompanyIDs))
	}
	return values
}

func (c *Client) CreateNotice(ctx context.Context, d NoticeDraft) (string, error) {
	var result struct {
		NoticeID string `json:"noticeId"`
	}
	err := c.doForm(ctx, "createNotice", noticeValues(d), &result)
	return result.NoticeID, err
}

func (c *Client) UpdateNotice(ctx context.Context, noticeID string, d NoticeDraft) error {
	values := noticeValues(d)
	values.Set("noticeId", noticeID)
	return c.doForm(ctx, "updateNotice", values, nil)
}

func (c *Client) DeleteNotice(ctx context.Context, noticeID string) error {
	return c.doForm(ctx, "deleteNotice", url.Values{"noticeId": {noticeID}}, nil)
}

func (c *Client) ToggleNoticeStatus(ctx context.Context, noticeID string) (bool, error) {
	var result struct {
		Active bool `json:"active"`
	}
	err := c.doForm(ctx, "toggleNoticeStatus", url.Values{"noticeId": {noticeID}}, &result)
	return result.Active, err
}

func (c *Client) GetNoticeList(ctx context.Context) ([]NoticeSummary, error) {
	var result struct {
		Notices []NoticeSummary `json:"notices"`
	}
	err := c.doForm(ctx, "getNoticeList", nil, &result)
	return result.Notices, err
}

func (c *Client) GetActiveCompaniesForNotice(ctx context.Context) ([]CompanyStatus, error) {
	var result struct {
		Companies []CompanyStatus `json:"companies"`
	}
	err := c.doForm(ctx, "getActiveCompaniesForNotice", nil, &result)
	return result.Companies, err
}

func (c *Client) ValidatePasswordStrength(ctx context.Context, password string) (bool, error) {
	var result struct {
		Valid bool `json:"valid"`
	}
	err := c.doForm(ctx, "validatePasswordStrength", url.Values{"password": {password}}, &result)
	return result.Valid, err
}

func (c *Client) ChangeAdminPassword(ctx context.Context, current, next string) error {
	return c.doForm(ctx, "changeAdminPassword", url.Values{
		"currentPassword": {current},
		"newPassword":     {next},
	}, nil)
}

func (c *Client) GetSheetConfigs(ctx context.Context) ([]SheetConfig, error) {
	var result struct {
		Configs []SheetConfig `json:"configs"`
	}
	err := c.doForm(ctx, "getSheetConfigs", nil, &result)
	return result.Configs, err
}

func (c *Client) UpdateSheetConfig(ctx context.Context, id uint, name, sheetURL string, active bool) error {
	values := url.Values{
		"name":     {name},
		"sheetUrl": {sheetURL},
		"active":   {strconv.FormatBool(active)},
	}
	if id != 0 {
		values.Set("configId", fmt.Sprint(id))
	}
	return c.doForm(ctx, "updateSheetConfig", values, nil)
}

func (c *Client) DeleteSheetConfig(ctx context.Context, id uint) error {
	return c.doForm(ctx, "deleteSheetConfig", url.Values{"configId": {fmt.Sprint(id)}}, nil)
}

func (c *Client) GetItemGroups(ctx context.Context) ([]ItemGroupView, error) {
	var result struct {
		Groups []ItemGroupView `json:"groups"`
	}
	err := c.doForm(ctx, "getItemGroups", nil, &result)
	return result.Groups, err
}

// UpdateItemGroup creates a group when groupID is zero, otherwise replaces
// the named group's definition.
func (c *Client) UpdateItemGroup(ctx context.Context, groupID uint, name, description string, itemIDs []uint) (uint, error) {
	values := url.Values{
		"name":        {name},
		"description": {description},
		"itemIds":     {joinIDs(itemIDs)},
	}
	if groupID != 0 {
		values.Set("groupId", fmt.Sprint(groupID))
	}
	var result struct {
		GroupID uint `json:"groupId"`
	}
	err := c.doForm(ctx, "updateItemGroup", values, &result)
	return result.GroupID, err
}

func (c *Client) DeleteItemGroup(ctx context.Context, groupID uint) error {
	return c.doForm(ctx, "deleteItemGroup", url.Values{"groupId": {fmt.Sprint(groupID)}}, nil)
}

func (c *Client) GetCategories(ctx context.Context) ([]Category, error) {
	var result struct {
		Categories []Category `json:"categories"`
	}
	err := c.doForm(ctx, "getCategories", nil, &result)
	return result.Categories, err
}

func (c *Client) CreateCategory(ctx context.Context, name string, sortOrder int) error {
	return c.doForm(ctx, "createCategory", url.Values{
		"name":      {name},
		"sortOrder": {strconv.Itoa(sortOrder)},
	}, nil)
}

func (c *Client) DeleteCategory(ctx context.Context, id uint) error {
	return c.doForm(ctx, "deleteCategory", url.Values{"categoryId": {fmt.Sprint(id)}}, nil)
}

func (c *Client) GetItems(ctx context.Context) ([]CatalogItem, error) {
	var result struct {
		Items []CatalogItem `json:"items"`
	}
	err := c.doForm(ctx, "getItems", nil, &result)
	return result.Items, err
}

func (c *Client) CreateItem(ctx context.Context, name, description string, categoryID uint) error {
	values := url.Values{
		"name":        {name},
		"description": {description},
	}
	if categoryID != 0 {
		values.Set("categoryId", fmt.Sprint(categoryID))
	}
	return c.doForm(ctx, "createItem", values, nil)
}

func (c *Client) DeleteItem(ctx context.Context, id uint) error {
	return c.doForm(ctx, "deleteItem", url.Values{"itemId": {fmt.Sprint(id)}}, nil)
}

func (c *Client) GetCompanyItems(ctx context.Context, companyID uint) ([]CatalogItem, error) {
	var result struct {
		Items []struct {
			ItemID      uint   `json:"itemId"`
			Name        string `json:"name"`
			Description string `json:"description"`
			Active      bool   `json:"active"`
		} `json:"items"`
	}
	err := c.doForm(ctx, "getCompanyItems", url.Values{"companyId": {fmt.Sprint(companyID)}}, &result)
	if err != nil {
		return nil, err
	}
	items := make([]CatalogItem, 0, len(result.Items))
	for _, it := range result.Items {
		items = append(items, CatalogItem{
			ID:          it.ItemID,
			Name:        it.Name,
			Description: it.Description,
			Active:      it.Active,
		})
	}
	return items, nil
}

func (c *Client) UpdateCompanyItems(ctx context.Context, companyID uint, itemIDs []uint) error {
	return c.doForm(ctx, "updateCompanyItems", url.Values{
		"companyId": {fmt.Sprint(companyID)},
		"itemIds":   {joinIDs(itemIDs)},
	}, nil)
}
