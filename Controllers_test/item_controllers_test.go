package Controllers_test

import (
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/kjcheon2024/shop-orders-sub000/controllers"
	"github.com/kjcheon2024/shop-orders-sub000/models"
	"github.com/kjcheon2024/shop-orders-sub000/utils"
)

func setupItemTest(t *testing.T, name string) (*gorm.DB, *gin.Engine) {
	utils.InitLogger()
	db := newPortalDB(t, name)

	ctrl := controllers.NewItemController(db)
	router := adminRouter(map[string]gin.HandlerFunc{
		"getCategories":      ctrl.GetCategories,
		"createCategory":     ctrl.CreateCategory,
		"updateCategory":     ctrl.UpdateCategory,
		"deleteCategory":     ctrl.DeleteCategory,
		"getItems":           ctrl.GetItems,
		"createItem":         ctrl.CreateItem,
		"updateItem":         ctrl.UpdateItem,
		"deleteItem":         ctrl.DeleteItem,
		"getCompanyItems":    ctrl.GetCompanyItems,
		"updateCompanyItems": ctrl.UpdateCompanyItems,
	}, 1)
	return db, router
}

func TestCategoryLifecycle(t *testing.T) {
	db, router := setupItemTest(t, "items_categories")

	resp := postAdminAction(t, router, "createCategory", url.Values{
		"name":      {"Dairy"},
		"sortOrder": {"2"},
	})
	assert.Equal(t, true, resp["success"])
	category := resp["category"].(map[string]interface{})
	categoryID := urlUint(uint(category["id"].(float64)))

	// Duplicate names are refused.
	resp = postAdminAction(t, router, "createCategory", url.Values{"name": {"Dairy"}})
	assert.Equal(t, false, resp["success"])

	// Deleting the category detaches its items instead of removing them.
	item := models.Item{Name: "Milk", Active: true}
	cid := uint(category["id"].(float64))
	item.CategoryID = &cid
	db.Create(&item)

	resp = postAdminAction(t, router, "deleteCategory", url.Values{"categoryId": {categoryID}})
	assert.Equal(t, true, resp["success"])

	var fresh models.Item
	db.First(&fresh, item.ID)
	assert.Nil(t, fresh.CategoryID)
}

func TestItemLifecycle(t *testing.T) {
	db, router := setupItemTest(t, "items_lifecycle")

	resp := postAdminAction(t, router, "createItem", url.Values{
		"name":        {"Butter"},
		"description": {"500g block"},
	})
	assert.Equal(t, true, resp["success"])
	item := resp["item"].(map[string]interface{})
	itemID := urlUint(uint(item["id"].(float64)))
	assert.Equal(t, true, item["active"])

	resp = postAdminAction(t, router, "updateItem", url.Values{
		"itemId": {itemID},
		"active": {"false"},
	})
	assert.Equal(t, true, resp["success"])

	var fresh models.Item
	db.First(&fresh, uint(item["id"].(float64)))
	assert.False(t, fresh.Active)
	assert.Equal(t, "500g block", fresh.Description)
}

func TestDeleteItemCleansAssignments(t *testing.T) {
	db, router := setupItemTest(t, "items_delete")
	company := seedApprovedCompany(t, db, "Assignment Co")

	item := models.Item{Name: "Yogurt", Active: true}
	db.Create(&item)
	group := models.ItemGroup{Name: "Snacks"}
	db.Create(&group)
	db.Create(&models.CompanyItem{CompanyID: company.ID, ItemID: item.ID})
	db.Create(&models.ItemGroupItem{GroupID: group.ID, ItemID: item.ID})

	resp := postAdminAction(t, router, "deleteItem", url.Values{"itemId": {urlUint(item.ID)}})
	assert.Equal(t, true, resp["success"])

	var companyItems, groupItems int64
	db.Model(&models.CompanyItem{}).Count(&companyItems)
	db.Model(&models.ItemGroupItem{}).Count(&groupItems)
	assert.Equal(t, int64(0), companyItems)
	assert.Equal(t, int64(0), groupItems)
}

func TestUpdateCompanyItemsReplacesSet(t *testing.T) {
	db, router := setupItemTest(t, "items_assign")
	company := seedApprovedCompany(t, db, "Catalog Co")

	milk := models.Item{Name: "Milk", Active: true}
	bread := models.Item{Name: "Bread", Active: true}
	eggs := models.Item{Name: "Eggs", Active: true}
	db.Create(&milk)
	db.Create(&bread)
	db.Create(&eggs)
	db.Create(&models.CompanyItem{CompanyID: company.ID, ItemID: milk.ID})

	resp := postAdminAction(t, router, "updateCompanyItems", url.Values{
		"companyId": {urlUint(company.ID)},
		"itemIds":   {urlUint(bread.ID) + "," + urlUint(eggs.ID)},
	})
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(2), resp["count"])

	resp = postAdminAction(t, router, "getCompanyItems", url.Values{
		"companyId": {urlUint(company.ID)},
	})
	items := resp["items"].([]interface{})
	assert.Len(t, items, 2)
	names := []string{
		items[0].(map[string]interface{})["name"].(string),
		items[1].(map[string]interface{})["name"].(string),
	}
	assert.ElementsMatch(t, []string{"Bread", "Eggs"}, names)
}
