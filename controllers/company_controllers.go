package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kjcheon2024/shop-orders-sub000/config"
	"github.com/kjcheon2024/shop-orders-sub000/models"
	"github.com/kjcheon2024/shop-orders-sub000/utils"
)

type CompanyController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewCompanyController(db *gorm.DB) *CompanyController {
	return &CompanyController{DB: db, Now: time.Now}
}

// ItemView is the catalog entry shape sent to the ordering screen.
type ItemView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// findApprovedByPassword scans approved companies for a bcrypt match. The
// portal uses one shared password per company, so lookup is by password
// alone; company counts are small enough for the linear scan.
func (cc *CompanyController) findApprovedByPassword(password string) (*models.Company, error) {
	var companies []models.Company
	if err := cc.DB.Where("status = ?", models.CompanyApproved).Find(&companies).Error; err != nil {
		return nil, err
	}
	for i := range companies {
		if bcrypt.CompareHashAndPassword([]byte(companies[i].PasswordHash), []byte(password)) == nil {
			return &companies[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (cc *CompanyController) assignedItems(companyID uint) ([]ItemView, error) {
	var assignments []models.CompanyItem
	if err := cc.DB.Preload("Item").Where("company_id = ?", companyID).
		Order("id asc").Find(&assignments).Error; err != nil {
		return nil, err
	}
	items := make([]ItemView, 0, len(assignments))
	for _, a := range assignments {
		if !a.Item.Active {
			continue
		}
		items = append(items, ItemView{Name: a.Item.Name, Description: a.Item.Description})
	}
	return items, nil
}

// FindCompanyByPassword resolves a password to a company, its catalog and
// its current ordering flags. Both the login preview and login proper use
// this action.
func (cc *CompanyController) FindCompanyByPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := utils.BindAction(c, &req); err != nil || req.Password == "" {
		utils.RespondFail(c, "password is required", nil)
		return
	}

	company, err := cc.findApprovedByPassword(req.Password)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondFail(c, "no company found for this password", nil)
		return
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	items, err := cc.assignedItems(company.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondOK(c, gin.H{
		"companyName":      company.Name,
		"items":            items,
		"orderBlocked":     company.OrderBlocked,
		"blockReason":      company.BlockReason,
		"orderTimeAllowed": config.OrderingAllowed(cc.Now()),
	})
}

// Logout is best-effort bookkeeping; the client does not wait on it.
func (cc *CompanyController) Logout(c *gin.Context) {
	var req struct {
		CompanyName string `json:"companyName"`
	}
	_ = utils.BindAction(c, &req)
	if req.CompanyName != "" {
		utils.InfoLogger.Printf("company logged out: %s", req.CompanyName)
	}
	utils.RespondOK(c, nil)
}

func (cc *CompanyController) companyByName(name string) (*models.Company, error) {
	var company models.Company
	err := cc.DB.Where("name = ? AND status = ?", name, models.CompanyApproved).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (cc *CompanyController) GetCompanyID(c *gin.Context) {
	var req struct {
		CompanyName string `json:"companyName"`
	}
	if err := utils.BindAction(c, &req); err != nil || req.CompanyName == "" {
		utils.RespondFail(c, "companyName is required", nil)
		return
	}
	company, err := cc.companyByName(req.CompanyName)
	if err != nil {
		utils.RespondFail(c, "company not found", nil)
		return
	}
	utils.RespondOK(c, gin.H{"companyId": company.ID})
}

func (cc *CompanyController) GetCompanyProfile(c *gin.Context) {
	var req struct {
		CompanyName string `json:"companyName"`
	}
	if err := utils.BindAction(c, &req); err != nil || req.CompanyName == "" {
		utils.RespondFail(c, "companyName is required", nil)
		return
	}
	company, err := cc.companyByName(req.CompanyName)
	if err != nil {
		utils.RespondFail(c, "company not found", nil)
		return
	}
	utils.RespondOK(c, gin.H{
		"profile": gin.H{
			"companyName":   company.Name,
			"contactName":   company.ContactName,
			"phone":         company.Phone,
			"postalCode":    company.PostalCode,
			"address":       company.Address,
			"addressDetail": company.AddressDetail,
		},
	})
}

func (cc *CompanyController) UpdateCompanyProfile(c *gin.Context) {
	var req struct {
		CompanyName   string `json:"companyName"`
		ContactName   string `json:"contactName"`
		Phone         string `json:"phone"`
		PostalCode    string `json:"postalCode"`
		Address       string `json:"address"`
		AddressDetail string `json:"addressDetail"`
	}
	if err := utils.BindAction(c, &req); err != nil || req.CompanyName == "" {
		utils.RespondFail(c, "companyName is required", nil)
		return
	}
	company, err := cc.companyByName(req.CompanyName)
	if err != nil {
		utils.RespondFail(c, "company not found", nil)
		return
	}

	company.ContactName = req.ContactName
	company.Phone = req.Phone
	company.PostalCode = req.PostalCode
	company.Address = req.Address
	company.AddressDetail = req.AddressDetail
	if err := cc.DB.Save(company).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("profile updated for company %s", company.Name)
	utils.RespondOK(c, gin.H{"message": "profile updated"})
}

// CheckCompanyName backs the live uniqueness check on the signup form.
func (cc *CompanyController) CheckCompanyName(c *gin.Context) {
	var req struct {
		CompanyName string `json:"companyName"`
	}
	if err := utils.BindAction(c, &req); err != nil || strings.TrimSpace(req.CompanyName) == "" {
		utils.RespondFail(c, "companyName is required", nil)
		return
	}

	var count int64
	if err := cc.DB.Model(&models.Company{}).
		Where("name = ?", strings.TrimSpace(req.CompanyName)).Count(&count).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"available": count == 0})
}

// Registration attachment limits; the client validates these before any
// upload, the server re-validates on submit.
const maxAttachmentSize = 5 * 1024 * 1024

var allowedAttachmentMIME = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"application/pdf": true,
}

var allowedAttachmentExt = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"pdf":  true,
}

func attachmentAllowed(name, mime string, size int64) (string, bool) {
	if size > maxAttachmentSize {
		return "attachment exceeds the 5MB limit", false
	}
	if !allowedAttachmentMIME[strings.ToLower(mime)] {
		return "attachment type not allowed", false
	}
	idx := strings.LastIndex(name, ".")
	if idx < 0 || !allowedAttachmentExt[strings.ToLower(name[idx+1:])] {
		return "attachment extension not allowed", false
	}
	return "", true
}

// RegisterCompany files a signup for admin approval.
func (cc *CompanyController) RegisterCompany(c *gin.Context) {
	var req struct {
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
	if err := utils.BindAction(c, &req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if req.CompanyName == "" || req.Password == "" {
		utils.RespondFail(c, "companyName and password are required", nil)
		return
	}

	if req.AttachmentName != "" {
		if msg, ok := attachmentAllowed(req.AttachmentName, req.AttachmentType, req.AttachmentSize); !ok {
			utils.RespondFail(c, msg, nil)
			return
		}
	}

	var count int64
	if err := cc.DB.Model(&models.Company{}).
		Where("name = ?", req.CompanyName).Count(&count).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if count > 0 {
		utils.RespondFail(c, "company name already in use", nil)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	company := models.Company{
		Name:          req.CompanyName,
		PasswordHash:  string(hashed),
		Status:        models.CompanyPending,
		ContactName:   req.ContactName,
		Phone:         req.Phone,
		PostalCode:    req.PostalCode,
		Address:       req.Address,
		AddressDetail: req.AddressDetail,
		Attachment:    req.AttachmentName,
		ReferenceCode: uuid.NewString(),
	}
	if err := cc.DB.Create(&company).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("registration filed: %s (ref=%s)", company.Name, company.ReferenceCode)
	utils.RespondOK(c, gin.H{
		"message":       "registration submitted for approval",
		"referenceCode": company.ReferenceCode,
	})
}

func (cc *CompanyController) GetCompanyItemRequestStatus(c *gin.Context) {
	var req struct {
		CompanyName string `json:"companyName"`
	}
	if err := utils.BindAction(c, &req); err != nil || req.CompanyName == "" {
		utils.RespondFail(c, "companyName is required", nil)
		return
	}
	company, err := cc.companyByName(req.CompanyName)
	if err != nil {
		utils.RespondFail(c, "company not found", nil)
		return
	}

	var requests []models.ItemRequest
	if err := cc.DB.Where("company_id = ?", company.ID).
		Order("created_at desc").Find(&requests).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"requests": requests})
}

func (cc *CompanyController) CreateCompanyItemRequest(c *gin.Context) {
	var req struct {
		CompanyName string `json:"companyName"`
		ItemName    string `json:"itemName"`
		Note        string `json:"note"`
	}
	if err := utils.BindAction(c, &req); err != nil || req.CompanyName == "" || strings.TrimSpace(req.ItemName) == "" {
		utils.RespondFail(c, "companyName and itemName are required", nil)
		return
	}
	company, err := cc.companyByName(req.CompanyName)
	if err != nil {
		utils.RespondFail(c, "company not found", nil)
		return
	}

	request := models.ItemRequest{
		CompanyID: company.ID,
		ItemName:  strings.TrimSpace(req.ItemName),
		Note:      req.Note,
		Status:    "pending",
	}
	if err := cc.DB.Create(&request).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"message": "item request submitted", "request": request})
}
