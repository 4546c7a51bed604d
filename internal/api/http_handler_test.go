package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"export-catalog-service/internal/catalog"
	"export-catalog-service/internal/domain"
	"export-catalog-service/internal/inquiry"
	"export-catalog-service/internal/store"
)

// MockInquirySink is a mock implementation of inquiry.Sink.
type MockInquirySink struct {
	mock.Mock
}

func (m *MockInquirySink) Submit(ctx context.Context, inq *domain.Inquiry) (*inquiry.Ack, error) {
	args := m.Called(ctx, inq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inquiry.Ack), args.Error(1)
}

func (m *MockInquirySink) Persist(ctx context.Context, inq *domain.Inquiry) (*inquiry.Ack, error) {
	args := m.Called(ctx, inq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inquiry.Ack), args.Error(1)
}

// MockInquiryStorer is a mock implementation of store.InquiryStorer.
type MockInquiryStorer struct {
	mock.Mock
}

func (m *MockInquiryStorer) CreateInquiry(ctx context.Context, inq *domain.Inquiry) (*domain.Inquiry, error) {
	args := m.Called(ctx, inq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Inquiry), args.Error(1)
}

func (m *MockInquiryStorer) GetInquiryByID(ctx context.Context, id int64) (*domain.Inquiry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Inquiry), args.Error(1)
}

func (m *MockInquiryStorer) ListInquiries(ctx context.Context, params store.ListInquiriesParams) ([]domain.Inquiry, int, error) {
	args := m.Called(ctx, params)
	var inquiries []domain.Inquiry
	if arg0 := args.Get(0); arg0 != nil {
		inquiries = arg0.([]domain.Inquiry)
	}
	return inquiries, args.Int(1), args.Error(2)
}

func (m *MockInquiryStorer) UpdateInquiryStatus(ctx context.Context, id int64, status string) (*domain.Inquiry, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Inquiry), args.Error(1)
}

const testCatalogDocument = `{
	"categories": [
		{"id": 1, "name": "Spices", "icon": "pepper"},
		{"id": 2, "name": "Snacks", "icon": "bowl"}
	],
	"products": [
		{"id": 1, "name": "Turmeric Powder", "category": "Spices", "featured": true, "premium": true,
		 "image": "/images/turmeric.jpg",
		 "images": {
			"farming": {"url": "/images/turmeric-farm.jpg", "alt": "Turmeric farm"},
			"final": {"url": "/images/turmeric-final.jpg", "alt": "Packed turmeric"}
		 },
		 "specifications": {"origin": "Erode, Tamil Nadu", "certification": "FSSAI"}},
		{"id": 2, "name": "Makhana", "category": "Snacks", "featured": true,
		 "image": "/images/makhana.jpg",
		 "specifications": {"origin": "Bihar"}},
		{"id": 3, "name": "Black Pepper", "category": "Spices", "premium": true}
	],
	"posts": [
		{"id": 1, "title": "Export Documentation Guide", "category": "export-tips"},
		{"id": 2, "title": "Makhana: From Bihar Farms to Global Markets", "category": "product-spotlights"}
	]
}`

// setupTestServer builds a handler over the inline catalog document and
// returns the httptest server around it.
func setupTestServer(t *testing.T, sink inquiry.Sink, storer store.InquiryStorer) (*httptest.Server, *catalog.Overlay) {
	t.Helper()
	cat, err := catalog.Load([]byte(testCatalogDocument))
	require.NoError(t, err)
	overlay := catalog.NewOverlay(cat)

	handler := NewHTTPHandler(cat, overlay, sink, storer)
	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, overlay
}

type productListResponse struct {
	Data       []domain.Product `json:"data"`
	Pagination pagination       `json:"pagination"`
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func TestListProducts_Defaults(t *testing.T) {
	server, _ := setupTestServer(t, nil, nil)

	var got productListResponse
	code := getJSON(t, server.URL+"/api/v1/products", &got)

	assert.Equal(t, http.StatusOK, code)
	require.Len(t, got.Data, 3)
	assert.Equal(t, "Turmeric Powder", got.Data[0].Name)
	assert.Equal(t, 1, got.Pagination.Page)
	assert.Equal(t, 3, got.Pagination.TotalItems)
	assert.Equal(t, 1, got.Pagination.TotalPages)
}

func TestListProducts_SearchAndFlags(t *testing.T) {
	server, _ := setupTestServer(t, nil, nil)

	var got productListResponse
	code := getJSON(t, server.URL+"/api/v1/products?q=makh", &got)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "Makhana", got.Data[0].Name)

	code = getJSON(t, server.URL+"/api/v1/products?featured=true&premium=true", &got)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "Turmeric Powder", got.Data[0].Name)
}

func TestListProducts_CategoryFilter(t *testing.T) {
	server, _ := setupTestServer(t, nil, nil)

	var got productListResponse
	code := getJSON(t, server.URL+"/api/v1/products?category=Spices", &got)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, got.Data, 2)

	// "All" is not a real category and never restricts the result.
	code = getJSON(t, server.URL+"/api/v1/products?category=All", &got)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, got.Data, 3)
}

func TestListProducts_Sorting(t *testing.T) {
	server, _ := setupTestServer(t, nil, nil)

	var got productListResponse
	code := getJSON(t, server.URL+"/api/v1/products?sort_by=name&sort_order=desc", &got)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, got.Data, 3)
	assert.Equal(t, "Turmeric Powder", got.Data[0].Name)
	assert.Equal(t, "Makhana", got.Data[1].Name)
	assert.Equal(t, "Black Pepper", got.Data[2].Name)
}

func TestListProducts_Pagination(t *testing.T) {
	server, _ := setupTestServer(t, nil, nil)

	var got productListResponse
	code := getJSON(t, server.URL+"/api/v1/products?page=2&limit=2", &got)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, got.Data, 1)
	assert.Equal(t, 2, got.Pagination.Page)
	assert.Equal(t, 3, got.Pagination.TotalItems)
	assert.Equal(t, 2, got.Pagination.TotalPages)

	// A page past the end is an empty data array, not an error.
	code = getJSON(t, server.URL+"/api/v1/products?page=9&limit=2", &got)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, got.Data)
}

func TestListProducts_BadParams(t *testing.T) {
	server, _ := setupTestServer(t, nil, nil)

	for _, path := range []string{
		"/api/v1/products?sort_by=price",
		"/api/v1/products?sort_order=sideways",
		"/api/v1/products?featured=maybe",
	} {
		var got ErrorResponse
		code := getJSON(t, server.URL+path, &got)
		assert.Equal(t, http.StatusBadRequest, code, path)
		assert.NotEmpty(t, got.Error)
	}
}

func TestGetProductSuggestions(t *testing.T) {
	server, _ := setupTestServer(t, nil, nil)

	var got struct {
		Suggestions []string `json:"suggestions"`
	}
	code := getJSON(t, server.URL+"/api/v1/products/suggestions?q=makh", &got)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"makhana"}, got.Suggestions)

	// Too-short terms return an empty list, never an error.
	code = getJSON(t, server.URL+"/api/v1/products/suggestions?q=m", &got)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, got.Suggestions)
}

func TestGetProductByID(t *testing.T) {
	server, _ := setupTestServer(t, nil, nil)

	var got struct {
		domain.Product
		ImageTabs map[string]domain.ProductImage `json:"image_tabs"`
	}
	code := getJSON(t, server.URL+"/api/v1/products/1", &got)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Turmeric Powder", got.Name)

	// Declared tags resolve to their own image; missing tags fall back to
	// the flat image field.
	require.Len(t, got.ImageTabs, 4)
	assert.Equal(t, "/images/turmeric-farm.jpg", got.ImageTabs["farming"].URL)
	assert.Equal(t, "/images/turmeric.jpg", got.ImageTabs["processing"].URL)
}

func TestGetProductByID_Errors(t *testing.T) {
	server, _ := setupTestServer(t, nil, nil)

	code := getJSON(t, server.URL+"/api/v1/products/999", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code = getJSON(t, server.URL+"/api/v1/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListCategories(t *testing.T) {
	server, _ := setupTestServer(t, nil, nil)

	var got struct {
		Data []catalog.CategoryCount `json:"data"`
	}
	code := getJSON(t, server.URL+"/api/v1/categories", &got)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, got.Data, 3)
	assert.Equal(t, catalog.AllCategoryName, got.Data[0].Name)
	assert.Equal(t, 3, got.Data[0].Count)
	assert.Equal(t, "Spices", got.Data[1].Name)
	assert.Equal(t, 2, got.Data[1].Count)
}

func TestBlogEndpoints(t *testing.T) {
	server, _ := setupTestServer(t, nil, nil)

	var list struct {
		Data []domain.BlogPost `json:"data"`
	}
	code := getJSON(t, server.URL+"/api/v1/blog", &list)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, list.Data, 2)

	code = getJSON(t, server.URL+"/api/v1/blog?category=export-tips", &list)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Export Documentation Guide", list.Data[0].Title)

	var post domain.BlogPost
	code = getJSON(t, server.URL+"/api/v1/blog/2", &post)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Makhana: From Bihar Farms to Global Markets", post.Title)

	code = getJSON(t, server.URL+"/api/v1/blog/99", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCreateInquiry_Success(t *testing.T) {
	mockSink := new(MockInquirySink)
	mockSink.On("Submit", mock.Anything, mock.MatchedBy(func(i *domain.Inquiry) bool {
		return i.Name == "Asha" && i.Status == domain.InquiryStatusPending && i.Source == "website"
	})).Return(&inquiry.Ack{Success: true}, nil).Once()
	mockSink.On("Persist", mock.Anything, mock.Anything).
		Return(&inquiry.Ack{Success: true, ID: 7}, nil).Once()

	server, _ := setupTestServer(t, mockSink, nil)

	payload := map[string]interface{}{
		"name":    "Asha",
		"email":   "asha@example.com",
		"message": "Please quote 2 tons of turmeric.",
	}
	body, _ := json.Marshal(payload)
	res, err := http.Post(server.URL+"/api/v1/inquiries", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusCreated, res.StatusCode)
	var got struct {
		Success bool  `json:"success"`
		ID      int64 `json:"id"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.True(t, got.Success)
	assert.Equal(t, int64(7), got.ID)
	mockSink.AssertExpectations(t)
}

func TestCreateInquiry_ValidationFailure(t *testing.T) {
	mockSink := new(MockInquirySink)
	server, _ := setupTestServer(t, mockSink, nil)

	payload := map[string]interface{}{
		"name":    "Asha",
		"email":   "not-an-email",
		"message": "hello",
	}
	body, _ := json.Marshal(payload)
	res, err := http.Post(server.URL+"/api/v1/inquiries", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	mockSink.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestCreateInquiry_SinkFailureIsSingleError(t *testing.T) {
	mockSink := new(MockInquirySink)
	mockSink.On("Submit", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("backend unreachable")).Once()

	server, _ := setupTestServer(t, mockSink, nil)

	payload := map[string]interface{}{
		"name":    "Asha",
		"email":   "asha@example.com",
		"message": "hello",
	}
	body, _ := json.Marshal(payload)
	res, err := http.Post(server.URL+"/api/v1/inquiries", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	var got ErrorResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Equal(t, "Failed to send inquiry. Please contact support directly.", got.Error)
	mockSink.AssertNotCalled(t, "Persist", mock.Anything, mock.Anything)
}

func TestAdminProductCRUD(t *testing.T) {
	server, overlay := setupTestServer(t, nil, nil)
	client := server.Client()

	// Create assigns the next id after the base catalog's maximum.
	createBody, _ := json.Marshal(ProductInput{Name: "Fennel Seeds", Category: "Spices"})
	res, err := client.Post(server.URL+"/api/v1/admin/products", "application/json", bytes.NewReader(createBody))
	require.NoError(t, err)
	var created domain.Product
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	res.Body.Close()
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, int64(4), created.ID)
	assert.Equal(t, "On Request", created.Price, "empty price defaults")

	// Update an existing product.
	updateBody, _ := json.Marshal(ProductInput{Name: "Turmeric Powder (Bulk)", Category: "Spices"})
	req, _ := http.NewRequest(http.MethodPut, server.URL+"/api/v1/admin/products/1", bytes.NewReader(updateBody))
	req.Header.Set("Content-Type", "application/json")
	res, err = client.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	got, ok := overlay.ProductByID(1)
	require.True(t, ok)
	assert.Equal(t, "Turmeric Powder (Bulk)", got.Name)

	// Update of an unknown id misses.
	req, _ = http.NewRequest(http.MethodPut, server.URL+"/api/v1/admin/products/999", bytes.NewReader(updateBody))
	req.Header.Set("Content-Type", "application/json")
	res, err = client.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	// Delete, then verify the merged view shrank.
	req, _ = http.NewRequest(http.MethodDelete, server.URL+"/api/v1/admin/products/2", nil)
	res, err = client.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	var list struct {
		Data []domain.Product `json:"data"`
	}
	code := getJSON(t, server.URL+"/api/v1/admin/products", &list)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, list.Data, 3, "3 base - 1 deleted + 1 created")
}

func TestAdminEditsDoNotLeakToPublicEndpoints(t *testing.T) {
	server, overlay := setupTestServer(t, nil, nil)

	overlay.Upsert(domain.Product{ID: 1, Name: "Edited Name", Category: "Spices"})

	var got struct {
		domain.Product
	}
	code := getJSON(t, server.URL+"/api/v1/products/1", &got)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Turmeric Powder", got.Name, "public read serves the base catalog")
}

func TestGetAdminStats(t *testing.T) {
	server, _ := setupTestServer(t, nil, nil)

	var got catalog.Stats
	code := getJSON(t, server.URL+"/api/v1/admin/stats", &got)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, catalog.Stats{TotalProducts: 3, FeaturedProducts: 2, PremiumProducts: 2, Categories: 2}, got)
}

func TestListAdminInquiries_NoStoreConfigured(t *testing.T) {
	server, _ := setupTestServer(t, nil, nil)

	code := getJSON(t, server.URL+"/api/v1/admin/inquiries", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestListAdminInquiries(t *testing.T) {
	mockStore := new(MockInquiryStorer)
	stored := []domain.Inquiry{{ID: 2, Name: "Ben"}, {ID: 1, Name: "Asha"}}
	mockStore.On("ListInquiries", mock.Anything, store.ListInquiriesParams{Limit: 10, Offset: 0}).
		Return(stored, 2, nil).Once()

	server, _ := setupTestServer(t, nil, mockStore)

	var got struct {
		Data       []domain.Inquiry `json:"data"`
		Pagination pagination       `json:"pagination"`
	}
	code := getJSON(t, server.URL+"/api/v1/admin/inquiries", &got)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, got.Data, 2)
	assert.Equal(t, "Ben", got.Data[0].Name)
	assert.Equal(t, 2, got.Pagination.TotalItems)
	mockStore.AssertExpectations(t)
}

func TestUpdateAdminInquiryStatus(t *testing.T) {
	mockStore := new(MockInquiryStorer)
	mockStore.On("UpdateInquiryStatus", mock.Anything, int64(3), "answered").
		Return(&domain.Inquiry{ID: 3, Status: domain.InquiryStatusAnswered}, nil).Once()

	server, _ := setupTestServer(t, nil, mockStore)

	body, _ := json.Marshal(map[string]string{"status": "answered"})
	req, _ := http.NewRequest(http.MethodPut, server.URL+"/api/v1/admin/inquiries/3/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	mockStore.AssertExpectations(t)
}

func TestUpdateAdminInquiryStatus_NotFound(t *testing.T) {
	mockStore := new(MockInquiryStorer)
	mockStore.On("UpdateInquiryStatus", mock.Anything, int64(99), "closed").
		Return(nil, store.ErrInquiryNotFound).Once()

	server, _ := setupTestServer(t, nil, mockStore)

	body, _ := json.Marshal(map[string]string{"status": "closed"})
	req, _ := http.NewRequest(http.MethodPut, server.URL+"/api/v1/admin/inquiries/99/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
