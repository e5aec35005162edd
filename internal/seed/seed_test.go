package seed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"bidmanager/db"
	"bidmanager/internal/seed"

	"github.com/stretchr/testify/require"
)

// memStorage — хранилище в памяти с тем же контрактом, что и db.Storage
type memStorage struct {
	tenders  []db.Tender
	products []db.Product
	orders   []db.Order
	nextID   int
}

func (m *memStorage) id() int {
	m.nextID++
	return m.nextID
}

func (m *memStorage) CreateTender(ctx context.Context, t *db.Tender) error {
	t.ID = m.id()
	m.tenders = append(m.tenders, *t)
	return nil
}

func (m *memStorage) GetTender(ctx context.Context, id int) (*db.Tender, error) {
	for i := range m.tenders {
		if m.tenders[i].ID == id {
			return &m.tenders[i], nil
		}
	}
	return nil, &db.NotFoundError{Kind: "tender", ID: id}
}

func (m *memStorage) GetTenders(ctx context.Context, limit, offset int) ([]db.Tender, error) {
	return page(m.tenders, limit, offset), nil
}

func (m *memStorage) CreateProduct(ctx context.Context, p *db.Product) error {
	for _, existing := range m.products {
		if existing.SKU == p.SKU {
			return &db.DuplicateKeyError{Kind: "product", Key: p.SKU}
		}
	}
	p.ID = m.id()
	m.products = append(m.products, *p)
	return nil
}

func (m *memStorage) GetProduct(ctx context.Context, id int) (*db.Product, error) {
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, &db.NotFoundError{Kind: "product", ID: id}
}

func (m *memStorage) GetProductBySKU(ctx context.Context, sku string) (*db.Product, error) {
	for i := range m.products {
		if m.products[i].SKU == sku {
			return &m.products[i], nil
		}
	}
	return nil, nil
}

func (m *memStorage) GetProducts(ctx context.Context, limit, offset int) ([]db.Product, error) {
	return page(m.products, limit, offset), nil
}

func (m *memStorage) CreateOrder(ctx context.Context, o *db.Order) error {
	o.ID = m.id()
	m.orders = append(m.orders, *o)
	return nil
}

func (m *memStorage) CountOrders(ctx context.Context) (int, error) {
	return len(m.orders), nil
}

func (m *memStorage) DeleteAllOrders(ctx context.Context) (int, error) {
	n := len(m.orders)
	m.orders = nil
	return n, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// fakeSource отдает подготовленные записи; nil означает недоступный источник
type fakeSource struct {
	tenders  []map[string]interface{}
	products []map[string]interface{}
	orders   []map[string]interface{}
}

func (f *fakeSource) TenderSamples(ctx context.Context) []map[string]interface{} {
	return f.tenders
}

func (f *fakeSource) ProductSamples(ctx context.Context) []map[string]interface{} {
	return f.products
}

func (f *fakeSource) OrderSamples(ctx context.Context) []map[string]interface{} {
	return f.orders
}

func requireOrdersValid(t *testing.T, store *memStorage) {
	t.Helper()
	perTender := map[int]int{}
	for _, o := range store.orders {
		require.Positive(t, o.AwardedQuantity)
		require.GreaterOrEqual(t, o.AwardedQuantity, 5)
		require.LessOrEqual(t, o.AwardedQuantity, 50)
		_, err := store.GetTender(context.Background(), o.TenderID)
		require.NoError(t, err)
		_, err = store.GetProduct(context.Background(), o.ProductID)
		require.NoError(t, err)
		perTender[o.TenderID]++
	}
	for _, tender := range store.tenders {
		require.Positive(t, perTender[tender.ID], "tender %d has no orders", tender.ID)
	}
}

func TestSeederFallbackData(t *testing.T) {
	store := &memStorage{}
	seeder := seed.New(store, &fakeSource{})

	require.NoError(t, seeder.Run(context.Background()))

	require.Len(t, store.products, 3)
	bySKU := map[string]db.Product{}
	for _, p := range store.products {
		bySKU[p.SKU] = p
	}
	require.Equal(t, "Office Chair", bySKU["CHAIR-001"].Name)
	require.Equal(t, 150.0, bySKU["CHAIR-001"].UnitSalePrice)
	require.Equal(t, 100.0, bySKU["CHAIR-001"].UnitCost)
	require.Equal(t, "Laptop", bySKU["LAPTOP-001"].Name)
	require.Equal(t, 1200.0, bySKU["LAPTOP-001"].UnitSalePrice)
	require.Equal(t, 800.0, bySKU["LAPTOP-001"].UnitCost)
	require.Equal(t, "Desk", bySKU["DESK-001"].Name)
	require.Equal(t, 300.0, bySKU["DESK-001"].UnitSalePrice)
	require.Equal(t, 200.0, bySKU["DESK-001"].UnitCost)

	require.Len(t, store.tenders, 3)
	require.Equal(t, "Ministry of Education", store.tenders[0].Client)

	requireOrdersValid(t, store)
}

func TestSeederIdempotent(t *testing.T) {
	store := &memStorage{}
	seeder := seed.New(store, &fakeSource{})

	require.NoError(t, seeder.Run(context.Background()))
	productCount := len(store.products)
	tenderCount := len(store.tenders)
	orderCount := len(store.orders)

	require.NoError(t, seeder.Run(context.Background()))

	require.Len(t, store.products, productCount)
	require.Len(t, store.tenders, tenderCount)
	require.Len(t, store.orders, orderCount)
}

func TestSeederRepopulatesDeletedOrders(t *testing.T) {
	store := &memStorage{}
	seeder := seed.New(store, &fakeSource{})

	require.NoError(t, seeder.Run(context.Background()))

	_, err := store.DeleteAllOrders(context.Background())
	require.NoError(t, err)

	require.NoError(t, seeder.Run(context.Background()))
	requireOrdersValid(t, store)
}

func TestSeederHealsUnderSeededOrders(t *testing.T) {
	store := &memStorage{}
	seeder := seed.New(store, &fakeSource{})
	require.NoError(t, seeder.Run(context.Background()))

	// Оставляем один заказ: 1 < 50% от (3 тендера * 2)
	store.orders = store.orders[:1]

	require.NoError(t, seeder.Run(context.Background()))
	requireOrdersValid(t, store)
	require.GreaterOrEqual(t, len(store.orders), len(store.tenders))
}

func TestSeederMapsRemoteProducts(t *testing.T) {
	store := &memStorage{}
	source := &fakeSource{
		products: []map[string]interface{}{
			{"sku": "EXT-1", "title": "External Widget", "cost": 100.0, "description": "Imported widget"},
			{"title": "No SKU", "cost": 50.0},
			{"sku": 777.0, "title": "Numeric SKU", "cost": "80"},
		},
	}
	seeder := seed.New(store, source)

	require.NoError(t, seeder.Run(context.Background()))

	require.Len(t, store.products, 2)

	first, err := store.GetProductBySKU(context.Background(), "EXT-1")
	require.NoError(t, err)
	require.NotNil(t, first)
	require.Equal(t, "External Widget", first.Name)
	require.Equal(t, 100.0, first.UnitCost)
	require.InDelta(t, 140.0, first.UnitSalePrice, 1e-9)
	require.Equal(t, "Imported widget", first.Description)

	second, err := store.GetProductBySKU(context.Background(), "777")
	require.NoError(t, err)
	require.NotNil(t, second)
	require.Equal(t, 80.0, second.UnitCost)
	require.InDelta(t, 112.0, second.UnitSalePrice, 1e-9)
	require.Equal(t, "Product SKU: 777", second.Description)
}

func TestSeederMapsRemoteTenders(t *testing.T) {
	store := &memStorage{}
	source := &fakeSource{
		tenders: []map[string]interface{}{
			{"client": "Remote Client", "id": 9.0, "creation_date": "2024-01-01"},
			{"description": "no client"},
		},
	}
	seeder := seed.New(store, source)

	require.NoError(t, seeder.Run(context.Background()))

	require.Len(t, store.tenders, 1)
	require.Equal(t, "Remote Client", store.tenders[0].Client)
	require.Equal(t, "Tender 9 - Created: 2024-01-01", store.tenders[0].Description)
}

// Внешние идентификаторы заказов игнорируются, количество приводится к числу,
// некорректное заменяется случайным из [5,50]
func TestSeederReconcilesRemoteOrders(t *testing.T) {
	store := &memStorage{}
	source := &fakeSource{
		orders: []map[string]interface{}{
			{"tender_id": 999.0, "product_id": 888.0, "awarded_quantity": "abc"},
			{"awarded_quantity": "12"},
			{"awarded_quantity": -4.0},
		},
	}
	seeder := seed.New(store, source)

	require.NoError(t, seeder.Run(context.Background()))

	require.Len(t, store.orders, 3)
	for _, o := range store.orders {
		require.GreaterOrEqual(t, o.AwardedQuantity, 5)
		require.LessOrEqual(t, o.AwardedQuantity, 50)
		_, err := store.GetTender(context.Background(), o.TenderID)
		require.NoError(t, err)
		_, err = store.GetProduct(context.Background(), o.ProductID)
		require.NoError(t, err)
	}
	require.Equal(t, 12, store.orders[1].AwardedQuantity)
}

func TestSeederSkipsDuplicateSKUWithoutAborting(t *testing.T) {
	store := &memStorage{}
	source := &fakeSource{
		products: []map[string]interface{}{
			{"sku": "DUP-1", "title": "First", "cost": 10.0},
			{"sku": "DUP-1", "title": "Second", "cost": 20.0},
			{"sku": "OK-1", "title": "Third", "cost": 30.0},
		},
	}
	seeder := seed.New(store, source)

	require.NoError(t, seeder.Run(context.Background()))

	require.Len(t, store.products, 2)
	first, _ := store.GetProductBySKU(context.Background(), "DUP-1")
	require.Equal(t, "First", first.Name)
}

func TestSampleClientDegradesOnFailure(t *testing.T) {
	// Не-2xx статус
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	client := seed.NewSampleClient(srv.URL)
	require.Nil(t, client.ProductSamples(context.Background()))

	// Битый JSON
	srvBad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srvBad.Close()
	client = seed.NewSampleClient(srvBad.URL)
	require.Nil(t, client.TenderSamples(context.Background()))

	// Недоступный адрес
	client = seed.NewSampleClient("http://127.0.0.1:1")
	require.Nil(t, client.OrderSamples(context.Background()))
}

func TestSampleClientDecodesRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/webhook/product-sample", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"sku": "A-1", "title": "A", "cost": "15"}]`))
	}))
	defer srv.Close()

	client := seed.NewSampleClient(srv.URL)
	records := client.ProductSamples(context.Background())
	require.Len(t, records, 1)
	require.Equal(t, "A-1", records[0]["sku"])
}
