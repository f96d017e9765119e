package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ticket-marketplace/internal/model"
	"ticket-marketplace/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const dateOnly = "2006-01-02"

type TicketHandler struct {
	tickets         service.TicketService
	search          service.TicketSearchService
	defaultPageSize int
	seedRoute       bool
}

func NewTicketHandler(tickets service.TicketService, search service.TicketSearchService, defaultPageSize int) *TicketHandler {
	return &TicketHandler{
		tickets:         tickets,
		search:          search,
		defaultPageSize: defaultPageSize,
	}
}

// WithSeedRoute 開發環境用：註冊補示範資料的路由
func (h *TicketHandler) WithSeedRoute() *TicketHandler {
	h.seedRoute = true
	return h
}

// RegisterRoutes auth 套用在需要登入的路由上
func (h *TicketHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	router := r.Group("/api/v1")
	{
		router.GET("tickets", h.Search)
		router.GET("tickets/:id", h.GetTicket)
	}

	authed := router.Group("", auth)
	{
		authed.PUT("tickets/:id/status/:status", h.ChangeStatus)
		authed.POST("sellers/tickets", h.Create)
		authed.GET("sellers/tickets", h.SellerTickets)
		authed.PUT("sellers/tickets/:id", h.Update)
		authed.DELETE("sellers/tickets/:id", h.Delete)
		if h.seedRoute {
			authed.POST("admin/tickets/seed", h.Seed)
		}
	}
}

// SearchTicketsQuery 搜尋參數；日期接受 RFC3339 或 YYYY-MM-DD
type SearchTicketsQuery struct {
	EventName     string `form:"event_name"`
	Status        string `form:"status"`
	OwnerID       *int64 `form:"owner_id"`
	CategoryID    *int64 `form:"category_id"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	Page          *int   `form:"page"`
	Size          *int   `form:"size"`
	SortBy        string `form:"sort_by"`
	SortDirection string `form:"sort_direction"`
}

// TicketRequest 建立與更新共用；JSON 與 multipart 欄位名稱相同
type TicketRequest struct {
	EventName     *string          `json:"event_name"`
	EventDate     *time.Time       `json:"event_date"`
	EventLocation *string          `json:"event_location"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	SeatInfo      *string          `json:"seat_info"`
	TicketType    *string          `json:"ticket_type"`
	CategoryID    *int64           `json:"category_id"`
	Description   *string          `json:"description"`
	TradeType     *string          `json:"trade_type"`
}

func (h *TicketHandler) Search(c *gin.Context) {
	var query SearchTicketsQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}

	cond, err := query.condition()
	if err != nil {
		handleError(c, err, "Search")
		return
	}

	page, size := 0, h.defaultPageSize
	if query.Page != nil {
		page = *query.Page
	}
	if query.Size != nil {
		size = *query.Size
	}

	result, err := h.search.Search(c, cond, page, size, query.SortBy, query.SortDirection)
	if err != nil {
		handleError(c, err, "Search")
		return
	}

	handleSuccess(c, result, http.StatusOK)
}

func (q SearchTicketsQuery) condition() (model.TicketSearchCondition, error) {
	cond := model.TicketSearchCondition{
		EventName:  q.EventName,
		OwnerID:    q.OwnerID,
		CategoryID: q.CategoryID,
	}

	if q.Status != "" {
		status, err := model.ParseTicketStatus(q.Status)
		if err != nil {
			return cond, err
		}
		cond.Status = &status
	}

	start, err := parseDate(q.StartDate, false)
	if err != nil {
		return cond, err
	}
	end, err := parseDate(q.EndDate, true)
	if err != nil {
		return cond, err
	}
	cond.StartDate, cond.EndDate = start, end

	return cond, nil
}

// parseDate 只有日期時，結束日期包含當天整天
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return nil, validationf("invalid date %q", raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	id, ok := bindTicketID(c)
	if !ok {
		return
	}

	ticket, err := h.tickets.GetTicket(c, id)
	if err != nil {
		handleError(c, err, "GetTicket")
		return
	}

	handleSuccess(c, ticket, http.StatusOK)
}

func (h *TicketHandler) ChangeStatus(c *gin.Context) {
	id, ok := bindTicketID(c)
	if !ok {
		return
	}
	caller, ok := callerID(c)
	if !ok {
		return
	}

	ticket, err := h.tickets.ChangeStatus(c, id, caller, c.Param("status"))
	if err != nil {
		handleError(c, err, "ChangeStatus")
		return
	}

	handleSuccess(c, ticket, http.StatusOK)
}

func (h *TicketHandler) Create(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	req, images, ok := h.bindTicketRequest(c)
	if !ok {
		return
	}
	defer images.close()

	params := req.createParams()
	params.Image1, params.Image2 = images.image1, images.image2

	created, err := h.tickets.CreateTicket(c, caller, params)
	if err != nil {
		handleError(c, err, "Create")
		return
	}

	handleSuccess(c, created, http.StatusCreated)
}

func (h *TicketHandler) SellerTickets(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	tickets, err := h.search.SellerTickets(c, caller)
	if err != nil {
		handleError(c, err, "SellerTickets")
		return
	}

	handleSuccess(c, tickets, http.StatusOK)
}

func (h *TicketHandler) Update(c *gin.Context) {
	id, ok := bindTicketID(c)
	if !ok {
		return
	}
	caller, ok := callerID(c)
	if !ok {
		return
	}

	req, images, ok := h.bindTicketRequest(c)
	if !ok {
		return
	}
	defer images.close()

	params := req.updateParams()
	params.Image1, params.Image2 = images.image1, images.image2

	updated, err := h.tickets.UpdateTicket(c, id, caller, params)
	if err != nil {
		handleError(c, err, "Update")
		return
	}

	handleSuccess(c, updated, http.StatusOK)
}

func (h *TicketHandler) Delete(c *gin.Context) {
	id, ok := bindTicketID(c)
	if !ok {
		return
	}
	caller, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.tickets.DeleteTicket(c, id, caller); err != nil {
		handleError(c, err, "Delete")
		return
	}

	handleSuccess(c, nil, http.StatusNoContent)
}

func (h *TicketHandler) Seed(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	created, err := h.tickets.SeedTickets(c, caller)
	if err != nil {
		handleError(c, err, "Seed")
		return
	}

	handleSuccess(c, gin.H{"created": created}, http.StatusOK)
}

// bindTicketRequest 依 Content-Type 讀 JSON 或 multipart
func (h *TicketHandler) bindTicketRequest(c *gin.Context) (*TicketRequest, *uploadedImages, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		var req TicketRequest
		if err := BindJson(c, &req); err != nil {
			return nil, nil, false
		}
		return &req, &uploadedImages{}, true
	}

	req, err := readTicketForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}

	images := &uploadedImages{}
	if images.image1, err = images.open(c, "image1"); err == nil {
		images.image2, err = images.open(c, "image2")
	}
	if err != nil {
		images.close()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image upload"})
		return nil, nil, false
	}

	return req, images, true
}

func readTicketForm(c *gin.Context) (*TicketRequest, error) {
	req := &TicketRequest{}
	text := func(key string) *string {
		if v, ok := c.GetPostForm(key); ok {
			return &v
		}
		return nil
	}

	req.EventName = text("event_name")
	req.EventLocation = text("event_location")
	req.SeatInfo = text("seat_info")
	req.TicketType = text("ticket_type")
	req.Description = text("description")
	req.TradeType = text("trade_type")

	if v := text("event_date"); v != nil {
		t, err := time.Parse(time.RFC3339, *v)
		if err != nil {
			return nil, fmt.Errorf("invalid event_date %q", *v)
		}
		req.EventDate = &t
	}
	for key, dst := range map[string]**decimal.Decimal{
		"original_price": &req.OriginalPrice,
		"selling_price":  &req.SellingPrice,
	} {
		if v := text(key); v != nil {
			d, err := decimal.NewFromString(*v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s %q", key, *v)
			}
			*dst = &d
		}
	}
	if v := text("category_id"); v != nil {
		id, err := parseOptionalInt(*v)
		if err != nil {
			return nil, fmt.Errorf("invalid category_id %q", *v)
		}
		req.CategoryID = id
	}

	return req, nil
}

func (r *TicketRequest) createParams() model.CreateTicketParams {
	params := model.CreateTicketParams{
		EventDate:     r.EventDate,
		OriginalPrice: r.OriginalPrice,
		SellingPrice:  r.SellingPrice,
		SeatInfo:      r.SeatInfo,
		TicketType:    r.TicketType,
		CategoryID:    r.CategoryID,
		Description:   r.Description,
	}
	if r.EventName != nil {
		params.EventName = *r.EventName
	}
	if r.EventLocation != nil {
		params.EventLocation = *r.EventLocation
	}
	if r.TradeType != nil {
		params.TradeType = model.TradeType(strings.ToUpper(*r.TradeType))
	}
	return params
}

func (r *TicketRequest) updateParams() model.UpdateTicketParams {
	params := model.UpdateTicketParams{
		EventName:     r.EventName,
		EventDate:     r.EventDate,
		EventLocation: r.EventLocation,
		OriginalPrice: r.OriginalPrice,
		SellingPrice:  r.SellingPrice,
		SeatInfo:      r.SeatInfo,
		TicketType:    r.TicketType,
		CategoryID:    r.CategoryID,
		Description:   r.Description,
	}
	if r.TradeType != nil {
		tradeType := model.TradeType(strings.ToUpper(*r.TradeType))
		params.TradeType = &tradeType
	}
	return params
}

// uploadedImages multipart 上傳的圖片，handler 結束時關閉
type uploadedImages struct {
	image1, image2 *model.MediaUpload
	files          []io.Closer
}

func (u *uploadedImages) open(c *gin.Context, field string) (*model.MediaUpload, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	u.files = append(u.files, file)

	return &model.MediaUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}, nil
}

func (u *uploadedImages) close() {
	for _, f := range u.files {
		_ = f.Close()
	}
}
