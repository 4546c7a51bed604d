package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"export-catalog-service/internal/catalog"
	"export-catalog-service/internal/domain"
	"export-catalog-service/internal/inquiry"
	"export-catalog-service/internal/store"
)

// HTTPHandler holds dependencies for HTTP handlers. The public product,
// category and blog endpoints read the immutable catalog; the admin
// endpoints read and write the copy-on-write overlay; inquiries flow
// through the sink. inquiryStore is nil when persistence is not configured.
type HTTPHandler struct {
	catalog      *catalog.Catalog
	overlay      *catalog.Overlay
	sink         inquiry.Sink
	inquiryStore store.InquiryStorer
	validate     *validator.Validate
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(cat *catalog.Catalog, overlay *catalog.Overlay, sink inquiry.Sink, inquiryStore store.InquiryStorer) *HTTPHandler {
	return &HTTPHandler{
		catalog:      cat,
		overlay:      overlay,
		sink:         sink,
		inquiryStore: inquiryStore,
		validate:     validator.New(),
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil { // Avoid writing empty body for 204 No Content
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("ERROR: Failed to encode JSON response: %v", err)
			http.Error(w, `{"error": "Internal server error during JSON encoding"}`, http.StatusInternalServerError)
		}
	}
}

// pagination is the envelope metadata attached to list responses.
type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

func parsePageLimit(r *http.Request, defaultLimit, maxLimit int) (page, limit, offset int) {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	page, err = strconv.Atoi(q.Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}
	return page, limit, (page - 1) * limit
}

func paginate(page, limit, total int) pagination {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return pagination{Page: page, Limit: limit, TotalItems: total, TotalPages: totalPages}
}

// --- Product Handlers ---

var allowedSortFields = map[string]catalog.SortField{
	"":         catalog.SortByName, // default
	"name":     catalog.SortByName,
	"category": catalog.SortByCategory,
	"featured": catalog.SortByFeatured,
	"premium":  catalog.SortByPremium,
}

// ListProducts applies the search/filter/sort criteria from the query
// string to the public catalog and returns the matching page.
func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	qParams := r.URL.Query()
	page, limit, offset := parsePageLimit(r, 12, 100)

	crit := catalog.Criteria{
		Search:    qParams.Get("q"),
		SortOrder: catalog.SortAsc,
	}

	// Repeated category params select the category set; "All" and empty
	// entries mean no restriction.
	for _, c := range qParams["category"] {
		if c != "" && c != catalog.AllCategoryName {
			crit.Categories = append(crit.Categories, c)
		}
	}

	if v := qParams.Get("featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid featured value: must be true or false")
			return
		}
		crit.OnlyFeatured = b
	}
	if v := qParams.Get("premium"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid premium value: must be true or false")
			return
		}
		crit.OnlyPremium = b
	}

	sortField, ok := allowedSortFields[strings.ToLower(qParams.Get("sort_by"))]
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid sort_by field. Allowed: name, category, featured, premium")
		return
	}
	crit.SortField = sortField

	switch strings.ToLower(qParams.Get("sort_order")) {
	case "":
	case "asc":
		crit.SortOrder = catalog.SortAsc
	case "desc":
		crit.SortOrder = catalog.SortDesc
	default:
		respondWithError(w, http.StatusBadRequest, "Invalid sort_order value. Allowed: asc, desc")
		return
	}

	results := catalog.FilterSort(h.catalog.Products(), crit)
	totalCount := len(results)

	// Page window over the already-filtered, already-sorted list.
	if offset >= len(results) {
		results = []domain.Product{}
	} else {
		end := offset + limit
		if end > len(results) {
			end = len(results)
		}
		results = results[offset:end]
	}

	response := struct {
		Data       []domain.Product `json:"data"`
		Pagination pagination       `json:"pagination"`
	}{
		Data:       results,
		Pagination: paginate(page, limit, totalCount),
	}
	respondWithJSON(w, http.StatusOK, response)
}

// GetProductSuggestions returns search completion strings for terms of at
// least two characters; shorter terms yield an empty list, never an error.
func (h *HTTPHandler) GetProductSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions := h.catalog.Suggest(r.URL.Query().Get("q"))
	if suggestions == nil {
		suggestions = []string{}
	}
	respondWithJSON(w, http.StatusOK, struct {
		Suggestions []string `json:"suggestions"`
	}{Suggestions: suggestions})
}

// productDetail is the product record plus the resolved detail image for
// every tag, falling back to the flat image field where tags are absent.
type productDetail struct {
	domain.Product
	ImageTabs map[string]domain.ProductImage `json:"image_tabs"`
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "productId")
	productID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || productID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	product, ok := h.catalog.ProductByID(productID)
	if !ok {
		respondWithError(w, http.StatusNotFound, catalog.ErrProductNotFound.Error())
		return
	}

	tabs := make(map[string]domain.ProductImage, len(domain.ImageTags))
	for _, tag := range domain.ImageTags {
		tabs[tag] = product.ImageFor(tag)
	}
	respondWithJSON(w, http.StatusOK, productDetail{Product: product, ImageTabs: tabs})
}

// --- Category Handlers ---

// ListCategories returns every category with its product count, preceded by
// the "All" pseudo-category carrying the total count.
func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, struct {
		Data []catalog.CategoryCount `json:"data"`
	}{Data: h.catalog.CategoryCounts()})
}

// --- Blog Handlers ---

func (h *HTTPHandler) ListBlogPosts(w http.ResponseWriter, r *http.Request) {
	posts := h.catalog.Posts()
	if cat := r.URL.Query().Get("category"); cat != "" && cat != "all" {
		filtered := make([]domain.BlogPost, 0, len(posts))
		for _, p := range posts {
			if p.Category == cat {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}
	respondWithJSON(w, http.StatusOK, struct {
		Data []domain.BlogPost `json:"data"`
	}{Data: posts})
}

func (h *HTTPHandler) GetBlogPostByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "postId")
	postID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || postID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid blog post ID format")
		return
	}

	post, ok := h.catalog.PostByID(postID)
	if !ok {
		respondWithError(w, http.StatusNotFound, "blog post not found")
		return
	}
	respondWithJSON(w, http.StatusOK, post)
}

// --- Inquiry Handlers ---

// InquiryCreateInput defines the expected input for submitting an inquiry.
// Only name, email and message are required; everything else mirrors the
// optional contact-form fields.
type InquiryCreateInput struct {
	Name            string   `json:"name" validate:"required,max=255"`
	Email           string   `json:"email" validate:"required,email,max=255"`
	Phone           string   `json:"phone" validate:"omitempty,max=50"`
	Company         string   `json:"company" validate:"omitempty,max=255"`
	Country         string   `json:"country" validate:"omitempty,max=100"`
	ProductInterest string   `json:"product_interest" validate:"omitempty,max=255"`
	CustomProduct   string   `json:"custom_product" validate:"omitempty,max=255"`
	Quantity        string   `json:"quantity" validate:"omitempty,max=100"`
	DeliveryPort    string   `json:"delivery_port" validate:"omitempty,max=255"`
	TargetPrice     string   `json:"target_price" validate:"omitempty,max=100"`
	Certifications  []string `json:"certifications" validate:"omitempty,dive,max=100"`
	Message         string   `json:"message" validate:"required"`
}

// CreateInquiry validates the submission and drives both sink legs. Any
// terminal failure surfaces as a single error message with no partial
// success reported; a dev-mode fallback acknowledgement still counts as
// success so the form resolves cleanly without a live backend.
func (h *HTTPHandler) CreateInquiry(w http.ResponseWriter, r *http.Request) {
	var input InquiryCreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	inq := &domain.Inquiry{
		Name:            input.Name,
		Email:           input.Email,
		Phone:           input.Phone,
		Company:         input.Company,
		Country:         input.Country,
		ProductInterest: input.ProductInterest,
		CustomProduct:   input.CustomProduct,
		Quantity:        input.Quantity,
		DeliveryPort:    input.DeliveryPort,
		TargetPrice:     input.TargetPrice,
		Certifications:  input.Certifications,
		Message:         input.Message,
		Status:          domain.InquiryStatusPending,
		Source:          "website",
		CreatedAt:       time.Now().UTC(),
	}

	submitAck, err := h.sink.Submit(r.Context(), inq)
	if err != nil {
		log.Printf("ERROR: Inquiry submit failed: %v", err)
		respondWithError(w, http.StatusBadGateway, "Failed to send inquiry. Please contact support directly.")
		return
	}

	persistAck, err := h.sink.Persist(r.Context(), inq)
	if err != nil {
		log.Printf("ERROR: Inquiry persist failed: %v", err)
		respondWithError(w, http.StatusBadGateway, "Failed to send inquiry. Please contact support directly.")
		return
	}

	response := struct {
		Success bool   `json:"success"`
		ID      int64  `json:"id,omitempty"`
		Message string `json:"message,omitempty"`
	}{
		Success: true,
		ID:      persistAck.ID,
		Message: strings.TrimSpace(strings.Join(nonEmpty(submitAck.Message, persistAck.Message), "; ")),
	}
	respondWithJSON(w, http.StatusCreated, response)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// --- Admin Handlers ---

// ProductInput defines the expected input for creating or updating a
// product through the admin overlay.
type ProductInput struct {
	Name           string                         `json:"name" validate:"required,max=255"`
	Category       string                         `json:"category" validate:"required,max=255"`
	Description    string                         `json:"description"`
	Price          string                         `json:"price" validate:"omitempty,max=100"`
	Featured       bool                           `json:"featured"`
	Premium        bool                           `json:"premium"`
	Image          string                         `json:"image" validate:"omitempty,max=2048"`
	Images         map[string]domain.ProductImage `json:"images"`
	Specifications *domain.Specifications         `json:"specifications"`
}

func (in *ProductInput) toProduct(id int64) domain.Product {
	price := in.Price
	if price == "" {
		price = "On Request"
	}
	return domain.Product{
		ID:             id,
		Name:           in.Name,
		Category:       in.Category,
		Description:    in.Description,
		Price:          price,
		Featured:       in.Featured,
		Premium:        in.Premium,
		Image:          in.Image,
		Images:         in.Images,
		Specifications: in.Specifications,
	}
}

// ListAdminProducts returns the overlay's merged view, edits included.
func (h *HTTPHandler) ListAdminProducts(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, struct {
		Data []domain.Product `json:"data"`
	}{Data: h.overlay.Products()})
}

func (h *HTTPHandler) CreateAdminProduct(w http.ResponseWriter, r *http.Request) {
	var input ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	created := h.overlay.Upsert(input.toProduct(0))
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) UpdateAdminProduct(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "productId")
	productID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || productID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	if _, ok := h.overlay.ProductByID(productID); !ok {
		respondWithError(w, http.StatusNotFound, catalog.ErrProductNotFound.Error())
		return
	}

	var input ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	updated := h.overlay.Upsert(input.toProduct(productID))
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteAdminProduct(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "productId")
	productID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || productID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	if err := h.overlay.Delete(productID); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, catalog.ErrProductNotFound.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to delete product")
		}
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *HTTPHandler) GetAdminStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.overlay.Stats())
}

// ListAdminInquiries serves the stored inquiries when persistence is
// configured; otherwise the admin screen gets a clear 503 instead of an
// empty list that looks like "no inquiries yet".
func (h *HTTPHandler) ListAdminInquiries(w http.ResponseWriter, r *http.Request) {
	if h.inquiryStore == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Inquiry persistence is not configured")
		return
	}

	page, limit, offset := parsePageLimit(r, 10, 100)
	params := store.ListInquiriesParams{Limit: limit, Offset: offset}
	if status := r.URL.Query().Get("status"); status != "" {
		params.Status = &status
	}

	inquiries, totalCount, err := h.inquiryStore.ListInquiries(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: ListInquiries store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve inquiries")
		return
	}

	response := struct {
		Data       []domain.Inquiry `json:"data"`
		Pagination pagination       `json:"pagination"`
	}{
		Data:       inquiries,
		Pagination: paginate(page, limit, totalCount),
	}
	respondWithJSON(w, http.StatusOK, response)
}

func (h *HTTPHandler) GetAdminInquiryByID(w http.ResponseWriter, r *http.Request) {
	if h.inquiryStore == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Inquiry persistence is not configured")
		return
	}

	idStr := chi.URLParam(r, "inquiryId")
	inquiryID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || inquiryID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid inquiry ID format")
		return
	}

	inq, err := h.inquiryStore.GetInquiryByID(r.Context(), inquiryID)
	if err != nil {
		if errors.Is(err, store.ErrInquiryNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrInquiryNotFound.Error())
		} else {
			log.Printf("ERROR: GetInquiryByID store operation for ID %d failed: %v", inquiryID, err)
			respondWithError(w, http.StatusInternalServerError, "Failed to retrieve inquiry")
		}
		return
	}
	respondWithJSON(w, http.StatusOK, inq)
}

func (h *HTTPHandler) UpdateAdminInquiryStatus(w http.ResponseWriter, r *http.Request) {
	if h.inquiryStore == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Inquiry persistence is not configured")
		return
	}

	idStr := chi.URLParam(r, "inquiryId")
	inquiryID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || inquiryID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid inquiry ID format")
		return
	}

	var input struct {
		Status string `json:"status" validate:"required,oneof=pending answered closed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	updated, err := h.inquiryStore.UpdateInquiryStatus(r.Context(), inquiryID, input.Status)
	if err != nil {
		log.Printf("ERROR: UpdateInquiryStatus store operation for ID %d failed: %v", inquiryID, err)
		switch {
		case errors.Is(err, store.ErrInquiryNotFound):
			respondWithError(w, http.StatusNotFound, store.ErrInquiryNotFound.Error())
		case errors.Is(err, store.ErrInvalidStatus):
			respondWithError(w, http.StatusBadRequest, store.ErrInvalidStatus.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to update inquiry")
		}
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.ListProducts) // GET /api/v1/products
		// Before the {productId} route so "suggestions" is not treated as an ID
		r.Get("/suggestions", h.GetProductSuggestions) // GET /api/v1/products/suggestions
		r.Get("/{productId}", h.GetProductByID)        // GET /api/v1/products/{productId}
	})

	r.Get("/api/v1/categories", h.ListCategories) // GET /api/v1/categories

	r.Route("/api/v1/blog", func(r chi.Router) {
		r.Get("/", h.ListBlogPosts)        // GET /api/v1/blog
		r.Get("/{postId}", h.GetBlogPostByID) // GET /api/v1/blog/{postId}
	})

	r.Post("/api/v1/inquiries", h.CreateInquiry) // POST /api/v1/inquiries

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListAdminProducts)   // GET /api/v1/admin/products
			r.Post("/", h.CreateAdminProduct) // POST /api/v1/admin/products
			r.Route("/{productId}", func(r chi.Router) {
				r.Put("/", h.UpdateAdminProduct)    // PUT /api/v1/admin/products/{productId}
				r.Delete("/", h.DeleteAdminProduct) // DELETE /api/v1/admin/products/{productId}
			})
		})
		r.Get("/stats", h.GetAdminStats) // GET /api/v1/admin/stats
		r.Route("/inquiries", func(r chi.Router) {
			r.Get("/", h.ListAdminInquiries)                         // GET /api/v1/admin/inquiries
			r.Get("/{inquiryId}", h.GetAdminInquiryByID)             // GET /api/v1/admin/inquiries/{inquiryId}
			r.Put("/{inquiryId}/status", h.UpdateAdminInquiryStatus) // PUT /api/v1/admin/inquiries/{inquiryId}/status
		})
	})
}
