package handler_test

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/livingroomcafe/api/internal/database"
	"github.com/livingroomcafe/api/internal/handler"
)

// --- Mock store ---

// mockMenuStore backs the public menu, the menu editor and the category
// handlers.
type mockMenuStore struct {
	categories map[int64]database.Category
	items      map[int64]database.MenuItem
	nextID     int64
	listErr    error
}

func newMockMenuStore() *mockMenuStore {
	return &mockMenuStore{
		categories: make(map[int64]database.Category),
		items:      make(map[int64]database.MenuItem),
		nextID:     100,
	}
}

func (m *mockMenuStore) addCategory(id int64, name string, order int32) {
	m.categories[id] = database.Category{ID: id, Name: name, DisplayOrder: order, CreatedAt: time.Now()}
}

func (m *mockMenuStore) addItem(id, categoryID int64, name, price string) {
	m.items[id] = database.MenuItem{
		ID: id, Name: name, Price: numeric(price), CategoryID: categoryID,
		IsVeg: true, IsAvailable: true, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
}

func (m *mockMenuStore) ListCategories(_ context.Context) ([]database.Category, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []database.Category
	for _, c := range m.categories {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DisplayOrder != result[j].DisplayOrder {
			return result[i].DisplayOrder < result[j].DisplayOrder
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockMenuStore) ListMenuItems(_ context.Context) ([]database.MenuItem, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []database.MenuItem
	for _, it := range m.items {
		result = append(result, it)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockMenuStore) CreateMenuItem(_ context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
	if _, ok := m.categories[arg.CategoryID]; !ok {
		return database.MenuItem{}, fkViolation()
	}
	m.nextID++
	it := database.MenuItem{
		ID: m.nextID, Name: arg.Name, Description: arg.Description, Price: arg.Price,
		CategoryID: arg.CategoryID, IsVeg: arg.IsVeg, IsAvailable: arg.IsAvailable,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.items[it.ID] = it
	return it, nil
}

func (m *mockMenuStore) UpdateMenuItem(_ context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error) {
	it, ok := m.items[arg.ID]
	if !ok {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	if arg.Name.Valid {
		it.Name = arg.Name.String
	}
	if arg.Description.Valid {
		it.Description = arg.Description.String
	}
	if arg.Price.Valid {
		it.Price = arg.Price
	}
	if arg.CategoryID.Valid {
		it.CategoryID = arg.CategoryID.Int64
	}
	if arg.IsVeg.Valid {
		it.IsVeg = arg.IsVeg.Bool
	}
	if arg.IsAvailable.Valid {
		it.IsAvailable = arg.IsAvailable.Bool
	}
	m.items[it.ID] = it
	return it, nil
}

func (m *mockMenuStore) DeleteMenuItem(_ context.Context, id int64) (int64, error) {
	if _, ok := m.items[id]; !ok {
		return 0, pgx.ErrNoRows
	}
	delete(m.items, id)
	return id, nil
}

func (m *mockMenuStore) CreateCategory(_ context.Context, arg database.CreateCategoryParams) (database.Category, error) {
	m.nextID++
	c := database.Category{ID: m.nextID, Name: arg.Name, Icon: arg.Icon, DisplayOrder: arg.DisplayOrder, CreatedAt: time.Now()}
	m.categories[c.ID] = c
	return c, nil
}

func (m *mockMenuStore) UpdateCategory(_ context.Context, arg database.UpdateCategoryParams) (database.Category, error) {
	c, ok := m.categories[arg.ID]
	if !ok {
		return database.Category{}, pgx.ErrNoRows
	}
	if arg.Name.Valid {
		c.Name = arg.Name.String
	}
	if arg.Icon.Valid {
		c.Icon = arg.Icon
	}
	if arg.DisplayOrder.Valid {
		c.DisplayOrder = arg.DisplayOrder.Int32
	}
	m.categories[c.ID] = c
	return c, nil
}

func (m *mockMenuStore) DeleteCategory(_ context.Context, id int64) (int64, error) {
	if _, ok := m.categories[id]; !ok {
		return 0, pgx.ErrNoRows
	}
	for _, it := range m.items {
		if it.CategoryID == id {
			return 0, fkViolation()
		}
	}
	delete(m.categories, id)
	return id, nil
}

func setupMenuRouter(store *mockMenuStore) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api", handler.NewMenuHandler(store, nil).RegisterRoutes)
	return r
}

// --- Tests ---

func TestMenu_ReturnsCategoriesAndItemsInOrder(t *testing.T) {
	store := newMockMenuStore()
	store.addCategory(1, "Pizza", 2)
	store.addCategory(2, "Beverages", 1)
	store.addItem(10, 1, "Margherita", "249")
	store.addItem(11, 2, "Cold Coffee", "149.5")

	rr := doRequest(t, setupMenuRouter(store), "GET", "/api/menu", nil)
	assertStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["success"] != true {
		t.Errorf("success: got %v, want true", resp["success"])
	}
	cats := resp["categories"].([]interface{})
	if len(cats) != 2 {
		t.Fatalf("categories: got %d, want 2", len(cats))
	}
	if name := cats[0].(map[string]interface{})["name"]; name != "Beverages" {
		t.Errorf("first category: got %v, want Beverages", name)
	}
	items := resp["menuItems"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("menuItems: got %d, want 2", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["name"] != "Cold Coffee" {
		t.Errorf("first item: got %v, want Cold Coffee", first["name"])
	}
	if first["price"] != "149.50" {
		t.Errorf("price: got %v, want 149.50", first["price"])
	}
}

func TestMenu_StoreErrorStillAnswers200(t *testing.T) {
	store := newMockMenuStore()
	store.listErr = errors.New("connection refused")

	rr := doRequest(t, setupMenuRouter(store), "GET", "/api/menu", nil)
	assertStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["error"] != "connection refused" {
		t.Errorf("error: got %v", resp["error"])
	}
	if cats := resp["categories"].([]interface{}); len(cats) != 0 {
		t.Errorf("categories: got %d, want 0", len(cats))
	}
	if items := resp["menuItems"].([]interface{}); len(items) != 0 {
		t.Errorf("menuItems: got %d, want 0", len(items))
	}
}
