package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kjcheon2024/shop-orders-sub000/controllers"
	"github.com/kjcheon2024/shop-orders-sub000/feed"
	"github.com/kjcheon2024/shop-orders-sub000/middlewares"
	"github.com/kjcheon2024/shop-orders-sub000/utils"
)

// The portal keeps the legacy endpoint shape: every company-facing call is
// a JSON POST to /index.php carrying an "action" field, every admin call a
// form-encoded POST to /admin.php. Handlers are looked up in explicit
// action tables.

func SetupRouter(db *gorm.DB) *gin.Engine {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	if db == nil {
		db = utils.GetDB()
	}

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware())
	r.Use(middlewares.LoggerMiddleware())

	companyCtrl := controllers.NewCompanyController(db)
	orderCtrl := controllers.NewOrderController(db)
	noticeCtrl := controllers.NewNoticeController(db)
	adminCtrl := controllers.NewAdminController(db)
	itemCtrl := controllers.NewItemController(db)

	companyActions := map[string]gin.HandlerFunc{
		"findCompanyByPassword":       companyCtrl.FindCompanyByPassword,
		"logout":                      companyCtrl.Logout,
		"getCompanyId":                companyCtrl.GetCompanyID,
		"getCompanyProfile":           companyCtrl.GetCompanyProfile,
		"updateCompanyProfile":        companyCtrl.UpdateCompanyProfile,
		"checkCompanyName":            companyCtrl.CheckCompanyName,
		"registerCompany":             companyCtrl.RegisterCompany,
		"getCompanyItemRequestStatus": companyCtrl.GetCompanyItemRequestStatus,
		"createCompanyItemRequest":    companyCtrl.CreateCompanyItemRequest,
		"getTodayOrderStatus":         orderCtrl.GetTodayOrderStatus,
		"checkOrderBlock":             orderCtrl.CheckOrderBlock,
		"processOrder":                orderCtrl.ProcessOrder,
		"getRecentOrderHistory":       orderCtrl.GetRecentOrderHistory,
		"getUnreadGlobalNotices":      noticeCtrl.GetUnreadGlobalNotices,
		"markNoticeAsRead":            noticeCtrl.MarkNoticeAsRead,
		"getIndividualNotices":        noticeCtrl.GetIndividualNotices,
	}

	adminActions := map[string]gin.HandlerFunc{
		"adminLogin":                  adminCtrl.AdminLogin,
		"adminLogout":                 adminCtrl.AdminLogout,
		"approveWithSettings":         adminCtrl.ApproveWithSettings,
		"reject":                      adminCtrl.Reject,
		"getAllCompaniesWithStatus":   adminCtrl.GetAllCompaniesWithStatus,
		"toggleCompanyOrderBlock":     adminCtrl.ToggleCompanyOrderBlock,
		"updateBlockReason":           adminCtrl.UpdateBlockReason,
		"updateCompanyGroup":          adminCtrl.UpdateCompanyGroup,
		"validatePasswordStrength":    adminCtrl.ValidatePasswordStrength,
		"changeAdminPassword":         adminCtrl.ChangeAdminPassword,
		"getSheetConfigs":             adminCtrl.GetSheetConfigs,
		"updateSheetConfig":           adminCtrl.UpdateSheetConfig,
		"deleteSheetConfig":           adminCtrl.DeleteSheetConfig,
		"getItemGroups":               adminCtrl.GetItemGroups,
		"updateItemGroup":             adminCtrl.UpdateItemGroup,
		"deleteItemGroup":             adminCtrl.DeleteItemGroup,
		"getOrdersByDate":             orderCtrl.GetOrdersByDate,
		"getOrderDateRange":           orderCtrl.GetOrderDateRange,
		"createNotice":                noticeCtrl.CreateNotice,
		"updateNotice":                noticeCtrl.UpdateNotice,
		"deleteNotice":                noticeCtrl.DeleteNotice,
		"toggleNoticeStatus":          noticeCtrl.ToggleNoticeStatus,
		"getNoticeList":               noticeCtrl.GetNoticeList,
		"getNoticeDetail":             noticeCtrl.GetNoticeDetail,
		"getActiveCompaniesForNotice": noticeCtrl.GetActiveCompaniesForNotice,
		"getCategories":               itemCtrl.GetCategories,
		"createCategory":              itemCtrl.CreateCategory,
		"updateCategory":              itemCtrl.UpdateCategory,
		"deleteCategory":              itemCtrl.DeleteCategory,
		"getItems":                    itemCtrl.GetItems,
		"createItem":                  itemCtrl.CreateItem,
		"updateItem":                  itemCtrl.UpdateItem,
		"deleteItem":                  itemCtrl.DeleteItem,
		"getCompanyItems":             itemCtrl.GetCompanyItems,
		"updateCompanyItems":          itemCtrl.UpdateCompanyItems,
	}

	lookupLimiter := middlewares.NewLookupRateLimiter()

	companyDispatch := func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		var head struct {
			Action string `json:"action"`
		}
		if err := json.Unmarshal(body, &head); err != nil || head.Action == "" {
			utils.RespondError(c, http.StatusBadRequest, errors.New("missing or invalid action"))
			return
		}

		handler, ok := companyActions[head.Action]
		if !ok {
			utils.RespondFail(c, "unknown action: "+head.Action, nil)
			return
		}

		// Throttle the password-guessing surface only.
		if head.Action == "findCompanyByPassword" && !lookupLimiter.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "too many requests, please wait",
			})
			return
		}

		utils.SetRawBody(c, body)
		handler(c)
	}

	adminDispatch := func(c *gin.Context) {
		action := c.PostForm("action")
		if action == "" {
			utils.RespondError(c, http.StatusBadRequest, errors.New("missing action"))
			return
		}

		handler, ok := adminActions[action]
		if !ok {
			utils.RespondFail(c, "unknown action: "+action, nil)
			return
		}

		if action == "adminLogin" {
			if !lookupLimiter.Allow(c.ClientIP()) {
				c.JSON(http.StatusTooManyRequests, gin.H{
					"success": false,
					"message": "too many requests, please wait",
				})
				return
			}
			handler(c)
			return
		}

		// Everything except the login itself needs a console token.
		token := middlewares.AdminTokenFromRequest(c)
		claims, err := utils.ParseAdminToken(token)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			return
		}
		c.Set("admin_id", claims.AdminID)
		c.Set("admin_username", claims.Username)
		handler(c)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/index.php", companyDispatch)
	// Legacy pages posted to the empty (same-page) endpoint.
	r.POST("/", companyDispatch)
	r.POST("/admin.php", adminDispatch)

	feedLimiter := middlewares.NewFeedRateLimiter()
	ws := r.Group("/ws")
	ws.Use(feedLimiter.Middleware(), middlewares.AdminAuthMiddleware())
	{
		ws.GET("/feed", feed.Handler)
	}

	return r
}
