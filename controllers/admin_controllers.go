package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kjcheon2024/shop-orders-sub000/feed"
	"github.com/kjcheon2024/shop-orders-sub000/middlewares"
	"github.com/kjcheon2024/shop-orders-sub000/models"
	"github.com/kjcheon2024/shop-orders-sub000/utils"
)

type AdminController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db, Now: time.Now}
}

// AdminLogin verifies console credentials and issues a token.
func (ac *AdminController) AdminLogin(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		utils.RespondFail(c, "username and password are required", nil)
		return
	}

	var admin models.AdminUser
	if err := ac.DB.Where("username = ?", username).First(&admin).Error; err != nil {
		utils.RespondFail(c, "invalid credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		utils.RespondFail(c, "invalid credentials", nil)
		return
	}

	token, err := utils.GenerateAdminToken(admin.ID, admin.Username)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("admin login: %s", admin.Username)
	utils.RespondOK(c, gin.H{"token": token})
}

// AdminLogout revokes the presented token so it cannot be replayed.
func (ac *AdminController) AdminLogout(c *gin.Context) {
	if token := middlewares.AdminTokenFromRequest(c); token != "" {
		utils.RevokeToken(token)
	}
	utils.RespondOK(c, gin.H{"message": "logged out"})
}

func (ac *AdminController) companyByFormID(c *gin.Context) (*models.Company, bool) {
	id, err := strconv.ParseUint(c.PostForm("companyId"), 10, 32)
	if err != nil || id == 0 {
		utils.RespondFail(c, "companyId is required", nil)
		return nil, false
	}
	var company models.Company
	if err := ac.DB.First(&company, uint(id)).Error; err != nil {
		utils.RespondFail(c, "company not found", nil)
		return nil, false
	}
	return &company, true
}

// assignGroupItems replaces a company's catalog with the group's items.
func (ac *AdminController) assignGroupItems(tx *gorm.DB, companyID, groupID uint) error {
	var entries []models.ItemGroupItem
	if err := tx.Where("group_id = ?", groupID).Find(&entries).Error; err != nil {
		return err
	}
	if err := tx.Where("company_id = ?", companyID).Delete(&models.CompanyItem{}).Error; err != nil {
		return err
	}
	for _, e := range entries {
		if err := tx.Create(&models.CompanyItem{CompanyID: companyID, ItemID: e.ItemID}).Error; err != nil {
			return err
		}
	}
	return nil
}

// ApproveWithSettings approves a pending registration, optionally wiring an
// item group into the company's catalog in the same step.
func (ac *AdminController) ApproveWithSettings(c *gin.Context) {
	company, ok := ac.companyByFormID(c)
	if !ok {
		return
	}
	if company.Status == models.CompanyApproved {
		utils.RespondFail(c, "company is already approved", nil)
		return
	}

	var groupID *uint
	if raw := c.PostForm("groupId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.RespondFail(c, "invalid groupId", nil)
			return
		}
		gid := uint(id)
		groupID = &gid
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		company.Status = models.CompanyApproved
		company.RejectReason = ""
		company.GroupID = groupID
		if err := tx.Save(company).Error; err != nil {
			return err
		}
		if groupID != nil {
			return ac.assignGroupItems(tx, company.ID, *groupID)
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	feed.BroadcastCompanyUpdate(company.ID, company.Name, company.Status, company.OrderBlocked)
	utils.InfoLogger.Printf("company approved: %s", company.Name)
	utils.RespondOK(c, gin.H{"message": "company approved"})
}

// Reject declines a registration; the reason is mandatory because the
// console shows it to the applicant.
func (ac *AdminController) Reject(c *gin.Context) {
	reason := strings.TrimSpace(c.PostForm("reason"))
	if reason == "" {
		utils.RespondFail(c, "a rejection reason is required", nil)
		return
	}
	company, ok := ac.companyByFormID(c)
	if !ok {
		return
	}

	company.Status = models.CompanyRejected
	company.RejectReason = reason
	if err := ac.DB.Save(company).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	feed.BroadcastCompanyUpdate(company.ID, company.Name, company.Status, company.OrderBlocked)
	utils.InfoLogger.Printf("company rejected: %s (%s)", company.Name, reason)
	utils.RespondOK(c, gin.H{"message": "company rejected"})
}

// GetAllCompaniesWithStatus backs the roster tab: every company with its
// approval state, block state and whether it ordered today.
func (ac *AdminController) GetAllCompaniesWithStatus(c *gin.Context) {
	var companies []models.Company
	if err := ac.DB.Order("name asc").Find(&companies).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	today := ac.Now().Format("2006-01-02")
	var todaysOrders []models.Order
	if err := ac.DB.Where("order_date = ?", today).Find(&todaysOrders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	ordered := make(map[uint]bool, len(todaysOrders))
	for _, o := range todaysOrders {
		ordered[o.CompanyID] = true
	}

	list := make([]gin.H, 0, len(companies))
	for _, co := range companies {
		list = append(list, gin.H{
			"companyId":    co.ID,
			"companyName":  co.Name,
			"status":       co.Status,
			"rejectReason": co.RejectReason,
			"orderBlocked": co.OrderBlocked,
			"blockReason":  co.BlockReason,
			"groupId":      co.GroupID,
			"orderedToday": ordered[co.ID],
			"createdAt":    co.CreatedAt,
		})
	}
	utils.RespondOK(c, gin.H{"companies": list})
}

// ToggleCompanyOrderBlock flips the order block. Turning it on requires a
// reason; turning it off clears the stored one.
func (ac *AdminController) ToggleCompanyOrderBlock(c *gin.Context) {
	company, ok := ac.companyByFormID(c)
	if !ok {
		return
	}

	if company.OrderBlocked {
		company.OrderBlocked = false
		company.BlockReason = ""
	} else {
		reason := strings.TrimSpace(c.PostForm("reason"))
		if reason == "" {
			utils.RespondFail(c, "a block reason is required", nil)
			return
		}
		company.OrderBlocked = true
		company.BlockReason = reason
	}

	if err := ac.DB.Save(company).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	feed.BroadcastCompanyUpdate(company.ID, company.Name, company.Status, company.OrderBlocked)
	utils.InfoLogger.Printf("order block toggled: %s blocked=%v", company.Name, company.OrderBlocked)
	utils.RespondOK(c, gin.H{"blocked": company.OrderBlocked, "reason": company.BlockReason})
}

func (ac *AdminController) UpdateBlockReason(c *gin.Context) {
	reason := strings.TrimSpace(c.PostForm("reason"))
	if reason == "" {
		utils.RespondFail(c, "reason is required", nil)
		return
	}
	company, ok := ac.companyByFormID(c)
	if !ok {
		return
	}
	if !company.OrderBlocked {
		utils.RespondFail(c, "company is not blocked", nil)
		return
	}

	company.BlockReason = reason
	if err := ac.DB.Save(company).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"message": "block reason updated"})
}

// UpdateCompanyGroup reassigns a company to another item group and rebuilds
// its catalog from that group.
func (ac *AdminController) UpdateCompanyGroup(c *gin.Context) {
	company, ok := ac.companyByFormID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.PostForm("groupId"), 10, 32)
	if err != nil || id == 0 {
		utils.RespondFail(c, "groupId is required", nil)
		return
	}
	gid := uint(id)

	var group models.ItemGroup
	if err := ac.DB.First(&group, gid).Error; err != nil {
		utils.RespondFail(c, "item group not found", nil)
		return
	}

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		company.GroupID = &gid
		if err := tx.Save(company).Error; err != nil {
			return err
		}
		return ac.assignGroupItems(tx, company.ID, gid)
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"message": "company group updated"})
}

// passwordStrength applies the console password policy: at least 8
// characters with both letters and digits.
func passwordStrength(password string) (gin.H, bool) {
	hasLetter := false
	hasDigit := false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	checks := gin.H{
		"minLength": len(password) >= 8,
		"hasLetter": hasLetter,
		"hasDigit":  hasDigit,
	}
	return checks, len(password) >= 8 && hasLetter && hasDigit
}

func (ac *AdminController) ValidatePasswordStrength(c *gin.Context) {
	checks, valid := passwordStrength(c.PostForm("password"))
	utils.RespondOK(c, gin.H{"valid": valid, "requirements": checks})
}

func (ac *AdminController) ChangeAdminPassword(c *gin.Context) {
	current := c.PostForm("currentPassword")
	next := c.PostForm("newPassword")
	if current == "" || next == "" {
		utils.RespondFail(c, "currentPassword and newPassword are required", nil)
		return
	}

	adminID, exists := c.Get("admin_id")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("no admin in context"))
		return
	}

	var admin models.AdminUser
	if err := ac.DB.First(&admin, adminID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(current)) != nil {
		utils.RespondFail(c, "current password is incorrect", nil)
		return
	}
	if _, valid := passwordStrength(next); !valid {
		utils.RespondFail(c, "new password does not meet the strength policy", nil)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	admin.PasswordHash = string(hashed)
	if err := ac.DB.Save(&admin).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("admin password changed: %s", admin.Username)
	utils.RespondOK(c, gin.H{"message": "password changed"})
}

// ---- sheet configs (settings tab) ----

func (ac *AdminController) GetSheetConfigs(c *gin.Context) {
	var configs []models.SheetConfig
	if err := ac.DB.Order("id asc").Find(&configs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"configs": configs})
}

// UpdateSheetConfig creates or updates a config depending on configId.
func (ac *AdminController) UpdateSheetConfig(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	sheetURL := strings.TrimSpace(c.PostForm("sheetUrl"))
	if name == "" || sheetURL == "" {
		utils.RespondFail(c, "name and sheetUrl are required", nil)
		return
	}
	active := c.PostForm("active") != "false"

	if raw := c.PostForm("configId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.RespondFail(c, "invalid configId", nil)
			return
		}
		var cfg models.SheetConfig
		if err := ac.DB.First(&cfg, uint(id)).Error; err != nil {
			utils.RespondFail(c, "sheet config not found", nil)
			return
		}
		cfg.Name = name
		cfg.SheetURL = sheetURL
		cfg.Active = active
		if err := ac.DB.Save(&cfg).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		utils.RespondOK(c, gin.H{"config": cfg})
		return
	}

	cfg := models.SheetConfig{Name: name, SheetURL: sheetURL, Active: active}
	if err := ac.DB.Create(&cfg).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"config": cfg})
}

func (ac *AdminController) DeleteSheetConfig(c *gin.Context) {
	id, err := strconv.ParseUint(c.PostForm("configId"), 10, 32)
	if err != nil || id == 0 {
		utils.RespondFail(c, "configId is required", nil)
		return
	}
	if err := ac.DB.Delete(&models.SheetConfig{}, uint(id)).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"message": "sheet config deleted"})
}

// ---- item groups ----

func (ac *AdminController) GetItemGroups(c *gin.Context) {
	var groups []models.ItemGroup
	if err := ac.DB.Preload("Entries.Item").Order("name asc").Find(&groups).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	list := make([]gin.H, 0, len(groups))
	for _, g := range groups {
		itemIDs := make([]uint, 0, len(g.Entries))
		itemNames := make([]string, 0, len(g.Entries))
		for _, e := range g.Entries {
			itemIDs = append(itemIDs, e.ItemID)
			itemNames = append(itemNames, e.Item.Name)
		}
		list = append(list, gin.H{
			"groupId":     g.ID,
			"name":        g.Name,
			"description": g.Description,
			"itemIds":     itemIDs,
			"itemNames":   itemNames,
		})
	}
	utils.RespondOK(c, gin.H{"groups": list})
}

// UpdateItemGroup creates or updates a group and replaces its item set.
func (ac *AdminController) UpdateItemGroup(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	itemIDs := parseTargetIDs(c.PostForm("itemIds"))

	var group models.ItemGroup
	if raw := c.PostForm("groupId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.RespondFail(c, "invalid groupId", nil)
			return
		}
		if err := ac.DB.First(&group, uint(id)).Error; err != nil {
			utils.RespondFail(c, "item group not found", nil)
			return
		}
		if name != "" {
			group.Name = name
		}
	} else {
		if name == "" {
			utils.RespondFail(c, "name is required", nil)
			return
		}
		group = models.ItemGroup{Name: name}
	}
	group.Description = c.PostForm("description")

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&group).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.ItemGroupItem{}).Error; err != nil {
			return err
		}
		for _, id := range itemIDs {
			if err := tx.Create(&models.ItemGroupItem{GroupID: group.ID, ItemID: id}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"groupId": group.ID})
}

func (ac *AdminController) DeleteItemGroup(c *gin.Context) {
	id, err := strconv.ParseUint(c.PostForm("groupId"), 10, 32)
	if err != nil || id == 0 {
		utils.RespondFail(c, "groupId is required", nil)
		return
	}

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", uint(id)).Delete(&models.ItemGroupItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ItemGroup{}, uint(id)).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"message": "item group deleted"})
}
