package Controllers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kjcheon2024/shop-orders-sub000/models"
	"github.com/kjcheon2024/shop-orders-sub000/utils"
)

// newPortalDB opens a private in-memory database and migrates every model.
// Each test file passes its own name so databases never bleed into each
// other.
func newPortalDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Company{},
		&models.Category{},
		&models.Item{},
		&models.CompanyItem{},
		&models.ItemRequest{},
		&models.ItemGroup{},
		&models.ItemGroupItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Notice{},
		&models.NoticeTarget{},
		&models.NoticeRead{},
		&models.SheetConfig{},
		&models.AdminUser{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// companyRouter mirrors the production /index.php dispatch: read the body,
// pick the handler by action, stash the raw body for the handler to bind.
func companyRouter(handlers map[string]gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/index.php", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		var head struct {
			Action string `json:"action"`
		}
		if err := json.Unmarshal(body, &head); err != nil || head.Action == "" {
			utils.RespondError(c, http.StatusBadRequest, errors.New("missing action"))
			return
		}
		handler, ok := handlers[head.Action]
		if !ok {
			utils.RespondFail(c, "unknown action: "+head.Action, nil)
			return
		}
		utils.SetRawBody(c, body)
		handler(c)
	})
	return router
}

// adminRouter mirrors the /admin.php dispatch with the auth middleware
// already satisfied: the admin identity is injected directly.
func adminRouter(handlers map[string]gin.HandlerFunc, adminID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/admin.php", func(c *gin.Context) {
		action := c.PostForm("action")
		handler, ok := handlers[action]
		if !ok {
			utils.RespondFail(c, "unknown action: "+action, nil)
			return
		}
		if adminID != 0 {
			c.Set("admin_id", adminID)
		}
		handler(c)
	})
	return router
}

func postAction(t *testing.T, router *gin.Engine, action string, payload map[string]interface{}) map[string]interface{} {
	t.Helper()
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["action"] = action
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req, _ := http.NewRequest("POST", "/index.php", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response (%d): %v", w.Code, err)
	}
	return resp
}

func urlUint(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func postAdminAction(t *testing.T, router *gin.Engine, action string, values url.Values) map[string]interface{} {
	t.Helper()
	if values == nil {
		values = url.Values{}
	}
	values.Set("action", action)

	req, _ := http.NewRequest("POST", "/admin.php", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response (%d): %v", w.Code, err)
	}
	return resp
}
