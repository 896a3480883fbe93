package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kjcheon2024/shop-orders-sub000/models"
	"github.com/kjcheon2024/shop-orders-sub000/utils"
)

// ItemController covers the admin categories, items and assignment tabs.
type ItemController struct {
	DB *gorm.DB
}

func NewItemController(db *gorm.DB) *ItemController {
	return &ItemController{DB: db}
}

// ---- categories ----

func (ic *ItemController) GetCategories(c *gin.Context) {
	var categories []models.Category
	if err := ic.DB.Order("sort_order asc, name asc").Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"categories": categories})
}

func (ic *ItemController) CreateCategory(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		utils.RespondFail(c, "name is required", nil)
		return
	}
	sortOrder, _ := strconv.Atoi(c.PostForm("sortOrder"))

	category := models.Category{Name: name, SortOrder: sortOrder}
	if err := ic.DB.Create(&category).Error; err != nil {
		utils.RespondFail(c, "category name already exists", nil)
		return
	}
	utils.RespondOK(c, gin.H{"category": category})
}

func (ic *ItemController) UpdateCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.PostForm("categoryId"), 10, 32)
	if err != nil || id == 0 {
		utils.RespondFail(c, "categoryId is required", nil)
		return
	}

	var category models.Category
	if err := ic.DB.First(&category, uint(id)).Error; err != nil {
		utils.RespondFail(c, "category not found", nil)
		return
	}
	if name := strings.TrimSpace(c.PostForm("name")); name != "" {
		category.Name = name
	}
	if raw := c.PostForm("sortOrder"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			category.SortOrder = v
		}
	}

	if err := ic.DB.Save(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"category": category})
}

func (ic *ItemController) DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.PostForm("categoryId"), 10, 32)
	if err != nil || id == 0 {
		utils.RespondFail(c, "categoryId is required", nil)
		return
	}

	// Items keep existing; they just lose the category link.
	err = ic.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Item{}).Where("category_id = ?", uint(id)).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, uint(id)).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"message": "category deleted"})
}

// ---- items ----

func (ic *ItemController) GetItems(c *gin.Context) {
	query := ic.DB.Preload("Category").Order("name asc")
	if raw := c.PostForm("categoryId"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			query = query.Where("category_id = ?", uint(id))
		}
	}

	var items []models.Item
	if err := query.Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"items": items})
}

func (ic *ItemController) CreateItem(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		utils.RespondFail(c, "name is required", nil)
		return
	}

	item := models.Item{
		Name:        name,
		Description: c.PostForm("description"),
		Active:      true,
	}
	if raw := c.PostForm("categoryId"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil && id > 0 {
			cid := uint(id)
			item.CategoryID = &cid
		}
	}

	if err := ic.DB.Create(&item).Error; err != nil {
		utils.RespondFail(c, "item name already exists", nil)
		return
	}
	utils.RespondOK(c, gin.H{"item": item})
}

func (ic *ItemController) UpdateItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.PostForm("itemId"), 10, 32)
	if err != nil || id == 0 {
		utils.RespondFail(c, "itemId is required", nil)
		return
	}

	var item models.Item
	if err := ic.DB.First(&item, uint(id)).Error; err != nil {
		utils.RespondFail(c, "item not found", nil)
		return
	}

	if name := strings.TrimSpace(c.PostForm("name")); name != "" {
		item.Name = name
	}
	if desc, set := c.GetPostForm("description"); set {
		item.Description = desc
	}
	if raw := c.PostForm("active"); raw != "" {
		item.Active = raw != "false"
	}
	if raw, set := c.GetPostForm("categoryId"); set {
		if raw == "" {
			item.CategoryID = nil
		} else if cid, err := strconv.ParseUint(raw, 10, 32); err == nil && cid > 0 {
			v := uint(cid)
			item.CategoryID = &v
		}
	}

	if err := ic.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"item": item})
}

func (ic *ItemController) DeleteItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.PostForm("itemId"), 10, 32)
	if err != nil || id == 0 {
		utils.RespondFail(c, "itemId is required", nil)
		return
	}

	err = ic.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", uint(id)).Delete(&models.CompanyItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", uint(id)).Delete(&models.ItemGroupItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Item{}, uint(id)).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"message": "item deleted"})
}

// ---- company assignments ----

func (ic *ItemController) GetCompanyItems(c *gin.Context) {
	id, err := strconv.ParseUint(c.PostForm("companyId"), 10, 32)
	if err != nil || id == 0 {
		utils.RespondFail(c, "companyId is required", nil)
		return
	}

	var assignments []models.CompanyItem
	if err := ic.DB.Preload("Item").Where("company_id = ?", uint(id)).
		Order("id asc").Find(&assignments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	items := make([]gin.H, 0, len(assignments))
	for _, a := range assignments {
		items = append(items, gin.H{
			"itemId":      a.ItemID,
			"name":        a.Item.Name,
			"description": a.Item.Description,
			"active":      a.Item.Active,
		})
	}
	utils.RespondOK(c, gin.H{"items": items})
}

// UpdateCompanyItems replaces a company's catalog with the given item set.
func (ic *ItemController) UpdateCompanyItems(c *gin.Context) {
	id, err := strconv.ParseUint(c.PostForm("companyId"), 10, 32)
	if err != nil || id == 0 {
		utils.RespondFail(c, "companyId is required", nil)
		return
	}
	itemIDs := parseTargetIDs(c.PostForm("itemIds"))

	err = ic.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", uint(id)).Delete(&models.CompanyItem{}).Error; err != nil {
			return err
		}
		for _, itemID := range itemIDs {
			if err := tx.Create(&models.CompanyItem{CompanyID: uint(id), ItemID: itemID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondOK(c, gin.H{"message": "company items updated", "count": len(itemIDs)})
}
