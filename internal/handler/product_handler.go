package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/model"
	"storefront/internal/service"
)

// Messages returned by the product endpoints.
const (
	MsgProductCreated      = "Product created successfully"
	MsgProductUpdated      = "Product updated successfully"
	MsgProductDeleted      = "Product deleted successfully"
	MsgProductRetrieved    = "Product retrieved successfully"
	MsgProductsRetrieved   = "Products retrieved successfully"
	MsgSearchResults       = "Search results retrieved successfully"
	MsgCategoriesRetrieved = "Categories retrieved successfully"
	MsgStockAdjusted       = "Stock updated successfully"
)

// ListProducts godoc
// @Summary List active products
// @Tags products
// @Produce json
// @Param category query string false "Category"
// @Param minPrice query number false "Minimum price (inclusive)"
// @Param maxPrice query number false "Maximum price (inclusive)"
// @Param search query string false "Free-text search"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} Response{data=[]model.Product}
// @Failure 400 {object} Response
// @Router /products/api/products [get]
func ListProducts(svc service.ProductService) echo.HandlerFunc {
	return func(c echo.Context) error {
		minPrice, err := queryFloat(c, "minPrice")
		if err != nil {
			return err
		}
		maxPrice, err := queryFloat(c, "maxPrice")
		if err != nil {
			return err
		}

		filter := model.ProductFilter{
			Category: model.Category(c.QueryParam("category")),
			MinPrice: minPrice,
			MaxPrice: maxPrice,
			Search:   c.QueryParam("search"),
		}
		result, err := svc.List(c.Request().Context(), filter, pageFromQuery(c))
		if err != nil {
			return err
		}
		return respondPage(c, MsgProductsRetrieved, result.Items, result.Pagination)
	}
}

// GetProduct godoc
// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} Response{data=model.Product}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /products/api/products/{id} [get]
func GetProduct(svc service.ProductService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		product, err := svc.GetByID(c.Request().Context(), id)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, MsgProductRetrieved, product)
	}
}

// GetProductBySlug godoc
// @Summary Get product by slug
// @Tags products
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {object} Response{data=model.Product}
// @Failure 404 {object} Response
// @Router /products/api/slug/{slug} [get]
func GetProductBySlug(svc service.ProductService) echo.HandlerFunc {
	return func(c echo.Context) error {
		product, err := svc.GetBySlug(c.Request().Context(), c.Param("slug"))
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, MsgProductRetrieved, product)
	}
}

// SearchProducts godoc
// @Summary Search products
// @Tags products
// @Produce json
// @Param q query string true "Search query"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} Response{data=[]model.Product}
// @Failure 400 {object} Response
// @Router /products/api/search [get]
func SearchProducts(svc service.ProductService) echo.HandlerFunc {
	return func(c echo.Context) error {
		result, err := svc.Search(c.Request().Context(), c.QueryParam("q"), pageFromQuery(c))
		if err != nil {
			return err
		}
		return respondPage(c, MsgSearchResults, result.Items, result.Pagination)
	}
}

// ListCategories godoc
// @Summary Categories in use by active products
// @Tags products
// @Produce json
// @Success 200 {object} Response{data=[]string}
// @Router /products/api/categories [get]
func ListCategories(svc service.ProductService) echo.HandlerFunc {
	return func(c echo.Context) error {
		categories, err := svc.Categories(c.Request().Context())
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, MsgCategoriesRetrieved, categories)
	}
}

// FeaturedProducts godoc
// @Summary Newest active products
// @Tags products
// @Produce json
// @Param limit query int false "Number of products" default(6)
// @Success 200 {object} Response{data=[]model.Product}
// @Router /products/api/featured [get]
func FeaturedProducts(svc service.ProductService) echo.HandlerFunc {
	return func(c echo.Context) error {
		products, err := svc.Featured(c.Request().Context(), queryInt(c, "limit", model.DefaultFeaturedN))
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, MsgProductsRetrieved, products)
	}
}

// CreateProduct godoc
// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body model.NewProduct true "Product payload"
// @Success 201 {object} Response{data=model.Product}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 403 {object} Response
// @Router /products/api/products [post]
func CreateProduct(svc service.ProductService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in model.NewProduct
		if err := bind(c, &in); err != nil {
			return err
		}
		product, err := svc.Create(c.Request().Context(), in)
		if err != nil {
			return err
		}
		return respond(c, http.StatusCreated, MsgProductCreated, product)
	}
}

// UpdateProduct godoc
// @Summary Update product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param product body model.ProductPatch true "Fields to change"
// @Success 200 {object} Response{data=model.Product}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /products/api/products/{id} [put]
func UpdateProduct(svc service.ProductService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		var patch model.ProductPatch
		if err := bind(c, &patch); err != nil {
			return err
		}
		product, err := svc.Update(c.Request().Context(), id, patch)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, MsgProductUpdated, product)
	}
}

// AdjustStock godoc
// @Summary Adjust product stock
// @Description Adds delta to the stock atomically. Results below zero are rejected.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body model.AdjustStock true "Stock delta"
// @Success 200 {object} Response{data=model.Product}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /products/api/products/{id}/stock [patch]
func AdjustStock(svc service.ProductService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		var cmd model.AdjustStock
		if err := bind(c, &cmd); err != nil {
			return err
		}
		product, err := svc.AdjustStock(c.Request().Context(), id, cmd)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, MsgStockAdjusted, product)
	}
}

// DeleteProduct godoc
// @Summary Delete product
// @Description Soft delete: the product disappears from every listing.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /products/api/products/{id} [delete]
func DeleteProduct(svc service.ProductService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.Request().Context(), id); err != nil {
			return err
		}
		return respond(c, http.StatusOK, MsgProductDeleted, nil)
	}
}
