package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lmoreno/comanda/internal/core/domain"
	"github.com/lmoreno/comanda/internal/core/service"
)

// HTTPHandler exposes the form-driven surface the POS front end consumes:
// redirects on successful posts, human-readable error bodies otherwise.
type HTTPHandler struct {
	orders  *service.OrderService
	catalog *service.CatalogService
	ledger  *service.LedgerService
	cashbox *service.CashboxService
}

func NewHTTPHandler(orders *service.OrderService, catalog *service.CatalogService, ledger *service.LedgerService, cashbox *service.CashboxService) *HTTPHandler {
	return &HTTPHandler{orders: orders, catalog: catalog, ledger: ledger, cashbox: cashbox}
}

func (h *HTTPHandler) Register(r *gin.Engine) {
	r.GET("/health", h.Health)

	r.GET("/menu", h.ListMenu)
	r.POST("/menu/add", h.AddMenuItem)
	r.POST("/menu/:id/edit", h.EditMenuItem)
	r.POST("/menu/:id/delete", h.DeleteMenuItem)
	r.GET("/menu/audit", h.MenuAudit)

	r.GET("/tables", h.ListTables)
	r.POST("/tables/add", h.AddTable)

	r.GET("/orders", h.ListOrders)
	r.POST("/orders/new/:table", h.OpenOrder)
	r.GET("/orders/:id", h.OrderDetail)
	r.GET("/orders/:id/history", h.OrderHistory)
	r.POST("/orders/:id/add_item", h.AddOrderItem)
	r.POST("/orders/:id/items/:item_id/edit", h.EditOrderItem)
	r.POST("/orders/:id/items/:item_id/remove", h.RemoveOrderItem)
	r.POST("/orders/:id/close", h.CloseOrder)

	r.GET("/movements", h.ListMovements)
	r.POST("/movements/add", h.AddMovement)
	r.GET("/stock/:id", h.CurrentStock)

	r.GET("/caja", h.CashReport)
	r.POST("/caja/modify_money", h.ModifyMoney)
}

func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- menu ---

func (h *HTTPHandler) ListMenu(c *gin.Context) {
	items, err := h.catalog.MenuItems(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *HTTPHandler) AddMenuItem(c *gin.Context) {
	item, ok := menuItemFromForm(c)
	if !ok {
		return
	}

	created, err := h.catalog.CreateMenuItem(c.Request.Context(), item)
	if err != nil {
		fail(c, err)
		return
	}
	RecordOperation("menu_add", true)
	c.JSON(http.StatusCreated, created)
}

func (h *HTTPHandler) EditMenuItem(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	item, ok := menuItemFromForm(c)
	if !ok {
		return
	}
	item.ID = id

	if err := h.catalog.UpdateMenuItem(c.Request.Context(), item); err != nil {
		fail(c, err)
		return
	}
	RecordOperation("menu_edit", true)
	c.Redirect(http.StatusSeeOther, "/menu")
}

func (h *HTTPHandler) DeleteMenuItem(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteMenuItem(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	RecordOperation("menu_delete", true)
	c.Redirect(http.StatusSeeOther, "/menu")
}

func (h *HTTPHandler) MenuAudit(c *gin.Context) {
	entries, err := h.catalog.AuditLog(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// --- tables ---

func (h *HTTPHandler) ListTables(c *gin.Context) {
	tables, err := h.catalog.Tables(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (h *HTTPHandler) AddTable(c *gin.Context) {
	number, err := strconv.Atoi(c.PostForm("table_number"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid table number")
		return
	}
	capacity, err := strconv.Atoi(c.PostForm("capacity"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid capacity")
		return
	}

	table, err := h.catalog.CreateTable(c.Request.Context(), number, capacity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

// --- orders ---

func (h *HTTPHandler) ListOrders(c *gin.Context) {
	details, err := h.orders.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detailViews(details))
}

func (h *HTTPHandler) OpenOrder(c *gin.Context) {
	table, err := strconv.Atoi(c.Param("table"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid table number")
		return
	}

	order, err := h.orders.Open(c.Request.Context(), table, c.PostForm("customer_name"))
	if err != nil {
		RecordOperation("open", false)
		fail(c, err)
		return
	}
	RecordOperation("open", true)
	c.Redirect(http.StatusSeeOther, "/orders/"+order.ID)
}

func (h *HTTPHandler) OrderDetail(c *gin.Context) {
	detail, err := h.orders.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detailView(detail))
}

func (h *HTTPHandler) OrderHistory(c *gin.Context) {
	entries, err := h.orders.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *HTTPHandler) AddOrderItem(c *gin.Context) {
	orderID := c.Param("id")

	itemID, err := strconv.ParseInt(c.PostForm("menu_item_id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid menu item id")
		return
	}
	quantity, err := strconv.Atoi(c.PostForm("quantity"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid quantity")
		return
	}

	_, err = h.orders.AddLine(c.Request.Context(), orderID, itemID, quantity, c.PostForm("notes"))
	if err != nil {
		RecordOperation("add_item", false)
		fail(c, err)
		return
	}
	RecordOperation("add_item", true)
	c.Redirect(http.StatusSeeOther, "/orders/"+orderID)
}

func (h *HTTPHandler) EditOrderItem(c *gin.Context) {
	orderID := c.Param("id")
	lineID, ok := int64Param(c, "item_id")
	if !ok {
		return
	}
	quantity, err := strconv.Atoi(c.PostForm("quantity"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid quantity")
		return
	}

	_, err = h.orders.EditLine(c.Request.Context(), orderID, lineID, quantity, c.PostForm("notes"))
	if err != nil {
		RecordOperation("edit_item", false)
		fail(c, err)
		return
	}
	RecordOperation("edit_item", true)
	c.Redirect(http.StatusSeeOther, "/orders/"+orderID)
}

func (h *HTTPHandler) RemoveOrderItem(c *gin.Context) {
	orderID := c.Param("id")
	lineID, ok := int64Param(c, "item_id")
	if !ok {
		return
	}

	if err := h.orders.RemoveLine(c.Request.Context(), orderID, lineID); err != nil {
		RecordOperation("remove_item", false)
		fail(c, err)
		return
	}
	RecordOperation("remove_item", true)
	c.Redirect(http.StatusSeeOther, "/orders/"+orderID)
}

func (h *HTTPHandler) CloseOrder(c *gin.Context) {
	orderID := c.Param("id")
	methods := c.PostFormArray("payment_method[]")
	amounts := c.PostFormArray("amount[]")

	if err := h.orders.Close(c.Request.Context(), orderID, methods, amounts); err != nil {
		RecordOperation("close", false)
		fail(c, err)
		return
	}
	RecordOperation("close", true)
	c.Redirect(http.StatusSeeOther, "/orders")
}

// --- movements ---

func (h *HTTPHandler) ListMovements(c *gin.Context) {
	movements, err := h.ledger.Movements(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, movements)
}

func (h *HTTPHandler) AddMovement(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.PostForm("menu_item_id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid menu item id")
		return
	}
	delta, err := strconv.Atoi(c.PostForm("quantity_change"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid quantity change")
		return
	}

	_, err = h.ledger.RecordMovement(c.Request.Context(), itemID, delta, c.PostForm("notes"))
	if err != nil {
		RecordOperation("movement_add", false)
		fail(c, err)
		return
	}
	RecordOperation("movement_add", true)
	c.Redirect(http.StatusSeeOther, "/movements")
}

func (h *HTTPHandler) CurrentStock(c *gin.Context) {
	itemID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	stock, err := h.ledger.CurrentStock(c.Request.Context(), itemID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu_item_id": itemID, "stock": stock})
}

// --- cash register ---

func (h *HTTPHandler) CashReport(c *gin.Context) {
	report, err := h.cashbox.Report(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *HTTPHandler) ModifyMoney(c *gin.Context) {
	movement, err := h.cashbox.RecordManual(c.Request.Context(),
		c.PostForm("payment_method"), c.PostForm("description"), c.PostForm("amount"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, movement)
}

// --- helpers ---

func fail(c *gin.Context, err error) {
	c.String(statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrTableOccupied), errors.Is(err, service.ErrOrderNotActive):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPayment),
		errors.Is(err, service.ErrPaymentMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	value, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return value, true
}

func menuItemFromForm(c *gin.Context) (domain.MenuItem, bool) {
	price := c.PostForm("price")
	item := domain.MenuItem{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Stockable:   c.PostForm("stockable") == "on" || c.PostForm("stockable") == "true",
	}
	if item.Name == "" || item.Category == "" {
		c.String(http.StatusBadRequest, "name and category are required")
		return domain.MenuItem{}, false
	}

	parsed, err := parsePrice(price)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid price")
		return domain.MenuItem{}, false
	}
	item.Price = parsed
	return item, true
}

type orderView struct {
	Order    domain.Order       `json:"order"`
	Lines    []domain.OrderLine `json:"lines"`
	Payments []domain.Payment   `json:"payments"`
	Total    string             `json:"total"`
}

func detailView(d service.OrderDetail) orderView {
	return orderView{
		Order:    d.Order,
		Lines:    d.Lines,
		Payments: d.Payments,
		Total:    d.Total.StringFixed(2),
	}
}

func detailViews(details []service.OrderDetail) []orderView {
	views := make([]orderView, 0, len(details))
	for _, d := range details {
		views = append(views, detailView(d))
	}
	return views
}
