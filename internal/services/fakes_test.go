package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"print_shop/internal/models"
	"print_shop/internal/repository"
)

// In-memory fakes for the repository interfaces, shared by the service
// tests in this package.

type fakeOrderRepo struct {
	mu     sync.Mutex
	nextID uint
	orders map[uint]models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{nextID: 1, orders: make(map[uint]models.Order)}
}

func (r *fakeOrderRepo) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orders {
		if existing.TrackingCode == order.TrackingCode {
			return gorm.ErrDuplicatedKey
		}
	}
	order.ID = r.nextID
	order.CreatedAt = time.Now()
	r.nextID++
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) GetByID(tenantID string, id uint) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.TenantID != tenantID {
		return nil, models.ErrNotFound
	}
	copied := order
	return &copied, nil
}

func (r *fakeOrderRepo) GetByTrackingCode(code string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.TrackingCode == code {
			copied := order
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeOrderRepo) List(tenantID string, filter repository.OrderFilter) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Order
	for _, order := range r.orders {
		if order.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		result = append(result, order)
	}
	return result, int64(len(result)), nil
}

func (r *fakeOrderRepo) Save(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return models.ErrNotFound
	}
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) ReplaceItems(orderID uint, items []models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return models.ErrNotFound
	}
	order.Items = items
	r.orders[orderID] = order
	return nil
}

func (r *fakeOrderRepo) ReplaceFiles(orderID uint, files []models.OrderFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return models.ErrNotFound
	}
	order.Files = files
	r.orders[orderID] = order
	return nil
}

func (r *fakeOrderRepo) CountByStatus(tenantID string) ([]repository.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, order := range r.orders {
		if order.TenantID == tenantID {
			counts[order.Status]++
		}
	}
	var result []repository.StatusCount
	for status, count := range counts {
		result = append(result, repository.StatusCount{Status: status, Count: count})
	}
	return result, nil
}

func (r *fakeOrderRepo) AverageSatisfaction(tenantID string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum, n float64
	for _, order := range r.orders {
		if order.TenantID == tenantID && order.CustomerSatisfaction != nil {
			sum += float64(*order.CustomerSatisfaction)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / n, nil
}

type fakePrinterRepo struct {
	mu       sync.Mutex
	nextID   uint
	printers map[uint]models.Printer
}

func newFakePrinterRepo() *fakePrinterRepo {
	return &fakePrinterRepo{nextID: 1, printers: make(map[uint]models.Printer)}
}

func (r *fakePrinterRepo) add(tenantID, name string) uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.printers[id] = models.Printer{
		ID:       id,
		Name:     name,
		Status:   string(models.PrinterIdle),
		TenantID: tenantID,
	}
	return id
}

func (r *fakePrinterRepo) Create(printer *models.Printer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	printer.ID = r.nextID
	r.nextID++
	r.printers[printer.ID] = *printer
	return nil
}

func (r *fakePrinterRepo) GetByID(tenantID string, id uint) (*models.Printer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	printer, ok := r.printers[id]
	if !ok || printer.TenantID != tenantID {
		return nil, models.ErrNotFound
	}
	copied := printer
	return &copied, nil
}

func (r *fakePrinterRepo) GetAll(tenantID string) ([]models.Printer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Printer
	for _, printer := range r.printers {
		if printer.TenantID == tenantID {
			result = append(result, printer)
		}
	}
	return result, nil
}

// Allocate mirrors the production conditional update: the check and the
// claim happen under one lock.
func (r *fakePrinterRepo) Allocate(tenantID string, printerID, orderID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	printer, ok := r.printers[printerID]
	if !ok || printer.TenantID != tenantID {
		return models.ErrNotFound
	}
	if printer.Status != string(models.PrinterIdle) {
		return fmt.Errorf("printer %q is not idle: %w", printer.Name, models.ErrResourceBusy)
	}
	printer.Status = string(models.PrinterPrinting)
	printer.CurrentOrderID = &orderID
	r.printers[printerID] = printer
	return nil
}

func (r *fakePrinterRepo) ReleaseByOrder(tenantID string, orderID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, printer := range r.printers {
		if printer.TenantID == tenantID && printer.CurrentOrderID != nil && *printer.CurrentOrderID == orderID {
			printer.Status = string(models.PrinterIdle)
			printer.CurrentOrderID = nil
			r.printers[id] = printer
		}
	}
	return nil
}

func (r *fakePrinterRepo) Delete(tenantID string, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	printer, ok := r.printers[id]
	if !ok || printer.TenantID != tenantID {
		return models.ErrNotFound
	}
	if printer.Status == string(models.PrinterPrinting) {
		return fmt.Errorf("printer %q is printing: %w", printer.Name, models.ErrResourceBusy)
	}
	delete(r.printers, id)
	return nil
}

type fakeSaleRepo struct {
	mu    sync.Mutex
	sales []models.Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{}
}

func (r *fakeSaleRepo) Create(sale *models.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sale.ID = uint(len(r.sales) + 1)
	sale.CreatedAt = time.Now()
	r.sales = append(r.sales, *sale)
	return nil
}

func (r *fakeSaleRepo) GetByOrderID(tenantID string, orderID uint) ([]models.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Sale
	for _, sale := range r.sales {
		if sale.TenantID == tenantID && sale.OrderID == orderID {
			result = append(result, sale)
		}
	}
	return result, nil
}

func (r *fakeSaleRepo) MonthlyRevenue(tenantID string, year int, month time.Month) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var revenue float64
	for _, sale := range r.sales {
		if sale.TenantID == tenantID && sale.CreatedAt.Year() == year && sale.CreatedAt.Month() == month {
			revenue += sale.Price
		}
	}
	return revenue, nil
}

type fakeClientRepo struct {
	mu      sync.Mutex
	clients map[string]*models.Client
	fail    bool
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[string]*models.Client)}
}

func (r *fakeClientRepo) ApplyOrder(tenantID, name, source string, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return models.ErrUpstreamUnavailable
	}
	key := tenantID + "/" + name
	now := time.Now()
	if client, ok := r.clients[key]; ok {
		client.TotalSpent += amount
		client.OrderCount++
		client.LastOrderDate = &now
		return nil
	}
	r.clients[key] = &models.Client{
		Name:          name,
		Source:        source,
		TotalSpent:    amount,
		OrderCount:    1,
		LastOrderDate: &now,
		TenantID:      tenantID,
	}
	return nil
}

func (r *fakeClientRepo) GetByName(tenantID, name string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.clients[tenantID+"/"+name]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *client
	return &copied, nil
}

type fakeProductRepo struct {
	products map[uint]models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uint]models.Product)}
}

func (r *fakeProductRepo) add(tenantID string, id uint, cost float64) {
	r.products[id] = models.Product{ID: id, Name: fmt.Sprintf("product-%d", id), Cost: cost, TenantID: tenantID}
}

func (r *fakeProductRepo) GetByID(tenantID string, id uint) (*models.Product, error) {
	product, ok := r.products[id]
	if !ok || product.TenantID != tenantID {
		return nil, models.ErrNotFound
	}
	copied := product
	return &copied, nil
}

type fakeSettingsRepo struct {
	settings map[string]*models.Settings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[string]*models.Settings)}
}

func (r *fakeSettingsRepo) Get(tenantID string) (*models.Settings, error) {
	if s, ok := r.settings[tenantID]; ok {
		return s, nil
	}
	return models.DefaultSettings(tenantID), nil
}

func (r *fakeSettingsRepo) Save(settings *models.Settings) error {
	r.settings[settings.TenantID] = settings
	return nil
}

type sentMessage struct {
	TenantID string
	Phone    string
	Message  string
}

type fakeDispatcher struct {
	mu       sync.Mutex
	admin    []sentMessage
	customer []sentMessage
	fail     bool
}

func (d *fakeDispatcher) NotifyAdmin(_ context.Context, tenantID, message string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return false, models.ErrUpstreamUnavailable
	}
	d.admin = append(d.admin, sentMessage{TenantID: tenantID, Message: message})
	return true, nil
}

func (d *fakeDispatcher) NotifyCustomer(_ context.Context, tenantID, phone, message string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return false, models.ErrUpstreamUnavailable
	}
	d.customer = append(d.customer, sentMessage{TenantID: tenantID, Phone: phone, Message: message})
	return true, nil
}

func (d *fakeDispatcher) adminCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.admin)
}

func (d *fakeDispatcher) customerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.customer)
}

type fakeEnqueuer struct {
	mu   sync.Mutex
	jobs []models.NotificationJob
	fail bool
}

func (q *fakeEnqueuer) Enqueue(_ context.Context, job *models.NotificationJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fail {
		return models.ErrUpstreamUnavailable
	}
	q.jobs = append(q.jobs, *job)
	return nil
}

type fakeChannel struct {
	mu   sync.Mutex
	sent []sentMessage
	fail bool
}

func (c *fakeChannel) Send(phone, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return fmt.Errorf("channel not ready")
	}
	c.sent = append(c.sent, sentMessage{Phone: phone, Message: message})
	return nil
}
