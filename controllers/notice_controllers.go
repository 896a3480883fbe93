package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kjcheon2024/shop-orders-sub000/feed"
	"github.com/kjcheon2024/shop-orders-sub000/models"
	"github.com/kjcheon2024/shop-orders-sub000/utils"
)

type NoticeController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewNoticeController(db *gorm.DB) *NoticeController {
	return &NoticeController{DB: db, Now: time.Now}
}

// NoticeView is the shape companies receive.
type NoticeView struct {
	ID        string     `json:"id"`
	Scope     string     `json:"scope"`
	Title     string     `json:"title,omitempty"`
	Message   string     `json:"message"`
	Priority  int        `json:"priority"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func toNoticeView(n models.Notice) NoticeView {
	view := NoticeView{
		ID:        n.PublicID,
		Scope:     n.Scope,
		Message:   n.Message,
		Priority:  n.Priority,
		CreatedAt: n.CreatedAt,
		ExpiresAt: n.ExpiresAt,
	}
	if n.Title != nil {
		view.Title = *n.Title
	}
	return view
}

func (nc *NoticeController) companyByName(name string) (*models.Company, error) {
	var company models.Company
	err := nc.DB.Where("name = ? AND status = ?", name, models.CompanyApproved).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetUnreadGlobalNotices returns the post-login modal sequence, in the
// order the modal walks it: priority first, then oldest first.
func (nc *NoticeController) GetUnreadGlobalNotices(c *gin.Context) {
	var req struct {
		CompanyName string `json:"companyName"`
	}
	if err := utils.BindAction(c, &req); err != nil || req.CompanyName == "" {
		utils.RespondFail(c, "companyName is required", nil)
		return
	}
	company, err := nc.companyByName(req.CompanyName)
	if err != nil {
		utils.RespondFail(c, "company not found", nil)
		return
	}

	var notices []models.Notice
	if err := nc.DB.Where("scope = ? AND active = ?", models.NoticeScopeGlobal, true).
		Order("priority desc, created_at asc").Find(&notices).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var reads []models.NoticeRead
	if err := nc.DB.Where("company_id = ?", company.ID).Find(&reads).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	read := make(map[uint]bool, len(reads))
	for _, r := range reads {
		read[r.NoticeID] = true
	}

	now := nc.Now()
	unread := make([]NoticeView, 0, len(notices))
	for _, n := range notices {
		if read[n.ID] || !n.VisibleTo(company.ID, now) {
			continue
		}
		unread = append(unread, toNoticeView(n))
	}
	utils.RespondOK(c, gin.H{"notices": unread})
}

// MarkNoticeAsRead records a "don't show again" confirmation.
func (nc *NoticeController) MarkNoticeAsRead(c *gin.Context) {
	var req struct {
		CompanyName string `json:"companyName"`
		NoticeID    string `json:"noticeId"`
	}
	if err := utils.BindAction(c, &req); err != nil || req.CompanyName == "" || req.NoticeID == "" {
		utils.RespondFail(c, "companyName and noticeId are required", nil)
		return
	}
	company, err := nc.companyByName(req.CompanyName)
	if err != nil {
		utils.RespondFail(c, "company not found", nil)
		return
	}

	var notice models.Notice
	if err := nc.DB.Where("public_id = ?", req.NoticeID).First(&notice).Error; err != nil {
		utils.RespondFail(c, "notice not found", nil)
		return
	}

	read := models.NoticeRead{
		NoticeID:  notice.ID,
		CompanyID: company.ID,
		ReadAt:    nc.Now(),
	}
	// A repeated confirm is harmless; the unique index turns it into a no-op.
	if err := nc.DB.Where("notice_id = ? AND company_id = ?", notice.ID, company.ID).
		FirstOrCreate(&read).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"message": "notice marked as read"})
}

// GetIndividualNotices returns banner notices targeted at the company,
// loaded whenever the item-selection screen is built.
func (nc *NoticeController) GetIndividualNotices(c *gin.Context) {
	var req struct {
		CompanyName string `json:"companyName"`
	}
	if err := utils.BindAction(c, &req); err != nil || req.CompanyName == "" {
		utils.RespondFail(c, "companyName is required", nil)
		return
	}
	company, err := nc.companyByName(req.CompanyName)
	if err != nil {
		utils.RespondFail(c, "company not found", nil)
		return
	}

	var notices []models.Notice
	if err := nc.DB.Preload("Targets").
		Where("scope = ? AND active = ?", models.NoticeScopeIndividual, true).
		Order("priority desc, created_at asc").Find(&notices).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	now := nc.Now()
	visible := make([]NoticeView, 0, len(notices))
	for _, n := range notices {
		if n.VisibleTo(company.ID, now) {
			visible = append(visible, toNoticeView(n))
		}
	}
	utils.RespondOK(c, gin.H{"notices": visible})
}

// ---- admin surface (form-encoded) ----

func parseTargetIDs(raw string) []uint {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err == nil && id > 0 {
			ids = append(ids, uint(id))
		}
	}
	return ids
}

func (nc *NoticeController) CreateNotice(c *gin.Context) {
	message := c.PostForm("message")
	if message == "" {
		utils.RespondFail(c, "message is required", nil)
		return
	}

	scope := c.PostForm("scope")
	if scope != models.NoticeScopeIndividual {
		scope = models.NoticeScopeGlobal
	}
	priority, _ := strconv.Atoi(c.PostForm("priority"))

	notice := models.Notice{
		PublicID: uuid.NewString(),
		Scope:    scope,
		Message:  message,
		Priority: priority,
		Active:   true,
	}
	if title := c.PostForm("title"); title != "" {
		notice.Title = &title
	}
	if raw := c.PostForm("expiresAt"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			notice.ExpiresAt = &t
		}
	}

	if err := nc.DB.Create(&notice).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	for _, id := range parseTargetIDs(c.PostForm("targetCompanyIds")) {
		nc.DB.Create(&models.NoticeTarget{NoticeID: notice.ID, CompanyID: id})
	}

	feed.BroadcastNoticeUpdate(notice.PublicID, true)
	utils.InfoLogger.Printf("notice created: %s scope=%s", notice.PublicID, scope)
	utils.RespondOK(c, gin.H{"noticeId": notice.PublicID})
}

func (nc *NoticeController) noticeByPublicID(c *gin.Context) (*models.Notice, bool) {
	id := c.PostForm("noticeId")
	if id == "" {
		utils.RespondFail(c, "noticeId is required", nil)
		return nil, false
	}
	var notice models.Notice
	if err := nc.DB.Where("public_id = ?", id).First(&notice).Error; err != nil {
		utils.RespondFail(c, "notice not found", nil)
		return nil, false
	}
	return &notice, true
}

func (nc *NoticeController) UpdateNotice(c *gin.Context) {
	notice, ok := nc.noticeByPublicID(c)
	if !ok {
		return
	}

	if message := c.PostForm("message"); message != "" {
		notice.Message = message
	}
	if title, set := c.GetPostForm("title"); set {
		if title == "" {
			notice.Title = nil
		} else {
			notice.Title = &title
		}
	}
	if raw := c.PostForm("priority"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			notice.Priority = p
		}
	}
	if raw, set := c.GetPostForm("expiresAt"); set {
		if raw == "" {
			notice.ExpiresAt = nil
		} else if t, err := time.Parse(time.RFC3339, raw); err == nil {
			notice.ExpiresAt = &t
		}
	}

	if err := nc.DB.Save(notice).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if raw, set := c.GetPostForm("targetCompanyIds"); set && notice.Scope == models.NoticeScopeIndividual {
		nc.DB.Where("notice_id = ?", notice.ID).Delete(&models.NoticeTarget{})
		for _, id := range parseTargetIDs(raw) {
			nc.DB.Create(&models.NoticeTarget{NoticeID: notice.ID, CompanyID: id})
		}
	}

	feed.BroadcastNoticeUpdate(notice.PublicID, notice.Active)
	utils.RespondOK(c, gin.H{"message": "notice updated"})
}

func (nc *NoticeController) DeleteNotice(c *gin.Context) {
	notice, ok := nc.noticeByPublicID(c)
	if !ok {
		return
	}

	if err := nc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("notice_id = ?", notice.ID).Delete(&models.NoticeTarget{}).Error; err != nil {
			return err
		}
		if err := tx.Where("notice_id = ?", notice.ID).Delete(&models.NoticeRead{}).Error; err != nil {
			return err
		}
		return tx.Delete(notice).Error
	}); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	feed.BroadcastNoticeUpdate(notice.PublicID, false)
	utils.RespondOK(c, gin.H{"message": "notice deleted"})
}

func (nc *NoticeController) ToggleNoticeStatus(c *gin.Context) {
	notice, ok := nc.noticeByPublicID(c)
	if !ok {
		return
	}

	notice.Active = !notice.Active
	if err := nc.DB.Save(notice).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	feed.BroadcastNoticeUpdate(notice.PublicID, notice.Active)
	utils.RespondOK(c, gin.H{"active": notice.Active})
}

func (nc *NoticeController) GetNoticeList(c *gin.Context) {
	var notices []models.Notice
	if err := nc.DB.Preload("Targets").
		Order("created_at desc").Find(&notices).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	list := make([]gin.H, 0, len(notices))
	for _, n := range notices {
		entry := gin.H{
			"noticeId":  n.PublicID,
			"scope":     n.Scope,
			"message":   n.Message,
			"priority":  n.Priority,
			"active":    n.Active,
			"createdAt": n.CreatedAt,
		}
		if n.Title != nil {
			entry["title"] = *n.Title
		}
		if n.ExpiresAt != nil {
			entry["expiresAt"] = *n.ExpiresAt
		}
		list = append(list, entry)
	}
	utils.RespondOK(c, gin.H{"notices": list})
}

func (nc *NoticeController) GetNoticeDetail(c *gin.Context) {
	notice, ok := nc.noticeByPublicID(c)
	if !ok {
		return
	}

	var targets []models.NoticeTarget
	nc.DB.Where("notice_id = ?", notice.ID).Find(&targets)
	targetIDs := make([]uint, 0, len(targets))
	for _, t := range targets {
		targetIDs = append(targetIDs, t.CompanyID)
	}

	var readCount int64
	nc.DB.Model(&models.NoticeRead{}).Where("notice_id = ?", notice.ID).Count(&readCount)

	detail := gin.H{
		"noticeId":         notice.PublicID,
		"scope":            notice.Scope,
		"message":          notice.Message,
		"priority":         notice.Priority,
		"active":           notice.Active,
		"createdAt":        notice.CreatedAt,
		"targetCompanyIds": targetIDs,
		"readCount":        readCount,
	}
	if notice.Title != nil {
		detail["title"] = *notice.Title
	}
	if notice.ExpiresAt != nil {
		detail["expiresAt"] = *notice.ExpiresAt
	}
	utils.RespondOK(c, gin.H{"notice": detail})
}

// GetActiveCompaniesForNotice lists approved companies for the target
// picker on the notice form.
func (nc *NoticeController) GetActiveCompaniesForNotice(c *gin.Context) {
	var companies []models.Company
	if err := nc.DB.Where("status = ?", models.CompanyApproved).
		Order("name asc").Find(&companies).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	list := make([]gin.H, 0, len(companies))
	for _, co := range companies {
		list = append(list, gin.H{"companyId": co.ID, "companyName": co.Name})
	}
	utils.RespondOK(c, gin.H{"companies": list})
}
