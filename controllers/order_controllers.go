package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kjcheon2024/shop-orders-sub000/config"
	"github.com/kjcheon2024/shop-orders-sub000/feed"
	"github.com/kjcheon2024/shop-orders-sub000/models"
	"github.com/kjcheon2024/shop-orders-sub000/utils"
)

type OrderController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{DB: db, Now: time.Now}
}

// OrderLine is the wire shape of one draft line.
type OrderLine struct {
	ItemName string `json:"itemName"`
	Quantity int    `json:"quantity"`
}

func (oc *OrderController) approvedCompany(name string) (*models.Company, error) {
	var company models.Company
	err := oc.DB.Where("name = ? AND status = ?", name, models.CompanyApproved).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetTodayOrderStatus reports whether the company already ordered today and
// returns the committed lines. The duplicate-order guard and the "today's
// order" view both consume this.
func (oc *OrderController) GetTodayOrderStatus(c *gin.Context) {
	var req struct {
		CompanyName string `json:"companyName"`
	}
	if err := utils.BindAction(c, &req); err != nil || req.CompanyName == "" {
		utils.RespondFail(c, "companyName is required", nil)
		return
	}

	company, err := oc.approvedCompany(req.CompanyName)
	if err != nil {
		utils.RespondFail(c, "company not found", nil)
		return
	}

	today := config.OrderDate(oc.Now())
	var order models.Order
	err = oc.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id asc")
	}).Where("company_id = ? AND order_date = ?", company.ID, today).First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondOK(c, gin.H{
			"hasOrder":  false,
			"items":     []OrderLine{},
			"canModify": !company.OrderBlocked,
			"blocked":   company.OrderBlocked,
			"reason":    company.BlockReason,
		})
		return
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	lines := make([]OrderLine, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, OrderLine{ItemName: it.ItemName, Quantity: it.Quantity})
	}
	utils.RespondOK(c, gin.H{
		"hasOrder":  true,
		"orderDate": order.OrderDate,
		"items":     lines,
		"canModify": !company.OrderBlocked,
		"blocked":   company.OrderBlocked,
		"reason":    company.BlockReason,
	})
}

// CheckOrderBlock is the fresh block poll the client runs before each
// sensitive transition.
func (oc *OrderController) CheckOrderBlock(c *gin.Context) {
	var req struct {
		CompanyName string `json:"companyName"`
	}
	if err := utils.BindAction(c, &req); err != nil || req.CompanyName == "" {
		utils.RespondFail(c, "companyName is required", nil)
		return
	}

	company, err := oc.approvedCompany(req.CompanyName)
	if err != nil {
		utils.RespondFail(c, "company not found", nil)
		return
	}
	utils.RespondOK(c, gin.H{
		"blocked": company.OrderBlocked,
		"reason":  company.BlockReason,
	})
}

// ProcessOrder replaces the company's entire order for today with the
// submitted lines. An empty line list clears the day. The server re-checks
// the block flag and the order window no matter what the client verified.
func (oc *OrderController) ProcessOrder(c *gin.Context) {
	var req struct {
		CompanyName string      `json:"companyName"`
		Items       []OrderLine `json:"items"`
	}
	if err := utils.BindAction(c, &req); err != nil || req.CompanyName == "" {
		utils.RespondFail(c, "companyName is required", nil)
		return
	}

	company, err := oc.approvedCompany(req.CompanyName)
	if err != nil {
		utils.RespondFail(c, "company not found", nil)
		return
	}

	if company.OrderBlocked {
		utils.RespondFail(c, "ordering is blocked for this company", gin.H{
			"blocked": true,
			"reason":  company.BlockReason,
		})
		return
	}

	now := oc.Now()
	if !config.OrderingAllowed(now) {
		utils.RespondFail(c, "ordering is closed during restricted hours", gin.H{
			"orderTimeRestricted": true,
			"orderTimeAllowed":    false,
		})
		return
	}

	for _, line := range req.Items {
		if line.ItemName == "" || line.Quantity < 1 {
			utils.RespondFail(c, "every line needs an item name and a quantity of at least 1", nil)
			return
		}
	}

	today := config.OrderDate(now)
	err = oc.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Where("company_id = ? AND order_date = ?", company.ID, today).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if len(req.Items) == 0 {
				return nil // nothing to clear
			}
			order = models.Order{CompanyID: company.ID, OrderDate: today}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else {
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			if len(req.Items) == 0 {
				return tx.Delete(&order).Error
			}
		}

		for _, line := range req.Items {
			item := models.OrderItem{
				OrderID:  order.ID,
				ItemName: line.ItemName,
				Quantity: line.Quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	feed.BroadcastOrderUpdate(company.Name, today, len(req.Items))
	utils.InfoLogger.Printf("order saved: company=%s date=%s lines=%d", company.Name, today, len(req.Items))

	message := "order saved"
	if len(req.Items) == 0 {
		message = "order cleared for today"
	}
	utils.RespondOK(c, gin.H{"message": message})
}

// GetRecentOrderHistory returns past days' orders (today excluded) for the
// copy-from-history picker.
func (oc *OrderController) GetRecentOrderHistory(c *gin.Context) {
	var req struct {
		CompanyName string `json:"companyName"`
		Days        int    `json:"days"`
	}
	if err := utils.BindAction(c, &req); err != nil || req.CompanyName == "" {
		utils.RespondFail(c, "companyName is required", nil)
		return
	}
	if req.Days <= 0 {
		req.Days = 14
	}

	company, err := oc.approvedCompany(req.CompanyName)
	if err != nil {
		utils.RespondFail(c, "company not found", nil)
		return
	}

	now := oc.Now()
	today := config.OrderDate(now)
	since := config.OrderDate(now.AddDate(0, 0, -req.Days))

	var orders []models.Order
	if err := oc.DB.Preload("Items").
		Where("company_id = ? AND order_date >= ? AND order_date < ?", company.ID, since, today).
		Order("order_date desc").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	history := make([]gin.H, 0, len(orders))
	for _, o := range orders {
		lines := make([]OrderLine, 0, len(o.Items))
		for _, it := range o.Items {
			lines = append(lines, OrderLine{ItemName: it.ItemName, Quantity: it.Quantity})
		}
		history = append(history, gin.H{"orderDate": o.OrderDate, "items": lines})
	}
	utils.RespondOK(c, gin.H{"history": history})
}

// GetOrdersByDate lists every company's order for a day (admin orders tab).
func (oc *OrderController) GetOrdersByDate(c *gin.Context) {
	date := c.PostForm("date")
	if date == "" {
		date = config.OrderDate(oc.Now())
	}

	var orders []models.Order
	if err := oc.DB.Preload("Items").Preload("Company").
		Where("order_date = ?", date).Order("company_id asc").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	result := make([]gin.H, 0, len(orders))
	for _, o := range orders {
		lines := make([]OrderLine, 0, len(o.Items))
		for _, it := range o.Items {
			lines = append(lines, OrderLine{ItemName: it.ItemName, Quantity: it.Quantity})
		}
		result = append(result, gin.H{
			"companyId":   o.CompanyID,
			"companyName": o.Company.Name,
			"orderDate":   o.OrderDate,
			"items":       lines,
		})
	}
	utils.RespondOK(c, gin.H{"date": date, "orders": result})
}

// GetOrderDateRange returns the first and last day with any order, used to
// bound the admin date picker.
func (oc *OrderController) GetOrderDateRange(c *gin.Context) {
	var minDate, maxDate *string
	row := oc.DB.Model(&models.Order{}).
		Select("MIN(order_date) as min_date, MAX(order_date) as max_date").Row()
	if err := row.Scan(&minDate, &maxDate); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if minDate == nil || maxDate == nil {
		utils.RespondOK(c, gin.H{"minDate": "", "maxDate": ""})
		return
	}
	utils.RespondOK(c, gin.H{"minDate": *minDate, "maxDate": *maxDate})
}
