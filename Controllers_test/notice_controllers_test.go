package Controllers_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/kjcheon2024/shop-orders-sub000/controllers"
	"github.com/kjcheon2024/shop-orders-sub000/models"
	"github.com/kjcheon2024/shop-orders-sub000/utils"
)

func setupNoticeTest(t *testing.T, name string, now time.Time) (*gorm.DB, *gin.Engine, *gin.Engine) {
	utils.InitLogger()
	db := newPortalDB(t, name)

	ctrl := controllers.NewNoticeController(db)
	ctrl.Now = func() time.Time { return now }

	company := companyRouter(map[string]gin.HandlerFunc{
		"getUnreadGlobalNotices": ctrl.GetUnreadGlobalNotices,
		"markNoticeAsRead":       ctrl.MarkNoticeAsRead,
		"getIndividualNotices":   ctrl.GetIndividualNotices,
	})
	admin := adminRouter(map[string]gin.HandlerFunc{
		"createNotice":       ctrl.CreateNotice,
		"updateNotice":       ctrl.UpdateNotice,
		"deleteNotice":       ctrl.DeleteNotice,
		"toggleNoticeStatus": ctrl.ToggleNoticeStatus,
		"getNoticeList":      ctrl.GetNoticeList,
		"getNoticeDetail":    ctrl.GetNoticeDetail,
	}, 1)
	return db, company, admin
}

func TestUnreadGlobalNoticesOrderAndMarkRead(t *testing.T) {
	db, company, admin := setupNoticeTest(t, "notices_unread", openHours)
	seedApprovedCompany(t, db, "Notice Reader")

	postAdminAction(t, admin, "createNotice", url.Values{
		"message":  {"regular announcement"},
		"priority": {"0"},
	})
	postAdminAction(t, admin, "createNotice", url.Values{
		"title":    {"Holiday"},
		"message":  {"urgent announcement"},
		"priority": {"5"},
	})

	resp := postAction(t, company, "getUnreadGlobalNotices", map[string]interface{}{
		"companyName": "Notice Reader",
	})
	assert.Equal(t, true, resp["success"])
	notices := resp["notices"].([]interface{})
	assert.Len(t, notices, 2)

	// Higher priority first.
	first := notices[0].(map[string]interface{})
	assert.Equal(t, "urgent announcement", first["message"])
	assert.Equal(t, "Holiday", first["title"])
	urgentID := first["id"].(string)

	// "Don't show again" removes it from the next fetch.
	resp = postAction(t, company, "markNoticeAsRead", map[string]interface{}{
		"companyName": "Notice Reader",
		"noticeId":    urgentID,
	})
	assert.Equal(t, true, resp["success"])

	resp = postAction(t, company, "getUnreadGlobalNotices", map[string]interface{}{
		"companyName": "Notice Reader",
	})
	notices = resp["notices"].([]interface{})
	assert.Len(t, notices, 1)
	assert.Equal(t, "regular announcement", notices[0].(map[string]interface{})["message"])

	// Marking twice is a no-op, not an error.
	resp = postAction(t, company, "markNoticeAsRead", map[string]interface{}{
		"companyName": "Notice Reader",
		"noticeId":    urgentID,
	})
	assert.Equal(t, true, resp["success"])
	var count int64
	db.Model(&models.NoticeRead{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestIndividualNoticesOnlyReachTargets(t *testing.T) {
	db, company, admin := setupNoticeTest(t, "notices_individual", openHours)
	target := seedApprovedCompany(t, db, "Target Co")
	seedApprovedCompany(t, db, "Bystander Co")

	postAdminAction(t, admin, "createNotice", url.Values{
		"scope":            {"individual"},
		"message":          {"your delivery slot moved"},
		"targetCompanyIds": {urlUint(target.ID)},
	})

	resp := postAction(t, company, "getIndividualNotices", map[string]interface{}{
		"companyName": "Target Co",
	})
	notices := resp["notices"].([]interface{})
	assert.Len(t, notices, 1)
	assert.Equal(t, "your delivery slot moved", notices[0].(map[string]interface{})["message"])

	resp = postAction(t, company, "getIndividualNotices", map[string]interface{}{
		"companyName": "Bystander Co",
	})
	assert.Len(t, resp["notices"].([]interface{}), 0)
}

func TestExpiredNoticeIsHidden(t *testing.T) {
	db, company, admin := setupNoticeTest(t, "notices_expired", openHours)
	seedApprovedCompany(t, db, "Expiry Co")

	past := openHours.Add(-time.Hour).Format(time.RFC3339)
	postAdminAction(t, admin, "createNotice", url.Values{
		"message":   {"already over"},
		"expiresAt": {past},
	})

	resp := postAction(t, company, "getUnreadGlobalNotices", map[string]interface{}{
		"companyName": "Expiry Co",
	})
	assert.Len(t, resp["notices"].([]interface{}), 0)

	// It still shows up in the admin list.
	listResp := postAdminAction(t, admin, "getNoticeList", nil)
	assert.Len(t, listResp["notices"].([]interface{}), 1)
}

func TestToggleAndDeleteNotice(t *testing.T) {
	db, company, admin := setupNoticeTest(t, "notices_toggle", openHours)
	seedApprovedCompany(t, db, "Toggle Co")

	created := postAdminAction(t, admin, "createNotice", url.Values{
		"message": {"switchable"},
	})
	noticeID := created["noticeId"].(string)

	resp := postAdminAction(t, admin, "toggleNoticeStatus", url.Values{"noticeId": {noticeID}})
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, false, resp["active"])

	// Inactive notices disappear from the company surface.
	companyResp := postAction(t, company, "getUnreadGlobalNotices", map[string]interface{}{
		"companyName": "Toggle Co",
	})
	assert.Len(t, companyResp["notices"].([]interface{}), 0)

	resp = postAdminAction(t, admin, "deleteNotice", url.Values{"noticeId": {noticeID}})
	assert.Equal(t, true, resp["success"])

	var count int64
	db.Model(&models.Notice{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestNoticeDetailCountsReads(t *testing.T) {
	db, company, admin := setupNoticeTest(t, "notices_detail", openHours)
	seedApprovedCompany(t, db, "Reader One")
	seedApprovedCompany(t, db, "Reader Two")

	created := postAdminAction(t, admin, "createNotice", url.Values{
		"message": {"count me"},
	})
	noticeID := created["noticeId"].(string)

	postAction(t, company, "markNoticeAsRead", map[string]interface{}{
		"companyName": "Reader One",
		"noticeId":    noticeID,
	})

	resp := postAdminAction(t, admin, "getNoticeDetail", url.Values{"noticeId": {noticeID}})
	detail := resp["notice"].(map[string]interface{})
	assert.Equal(t, float64(1), detail["readCount"])
}
