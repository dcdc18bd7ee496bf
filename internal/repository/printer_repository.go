package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"print_shop/internal/models"
)

type PrinterRepository interface {
	Create(printer *models.Printer) error
	GetByID(tenantID string, id uint) (*models.Printer, error)
	GetAll(tenantID string) ([]models.Printer, error)
	Allocate(tenantID string, printerID, orderID uint) error
	ReleaseByOrder(tenantID string, orderID uint) error
	Delete(tenantID string, id uint) error
}

type printerRepository struct {
	db *gorm.DB
}

func NewPrinterRepository(db *gorm.DB) PrinterRepository {
	return &printerRepository{db: db}
}

func (r *printerRepository) Create(printer *models.Printer) error {
	return r.db.Create(printer).Error
}

func (r *printerRepository) GetByID(tenantID string, id uint) (*models.Printer, error) {
	var printer models.Printer
	err := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&printer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &printer, nil
}

func (r *printerRepository) GetAll(tenantID string) ([]models.Printer, error) {
	var printers []models.Printer
	err := r.db.Where("tenant_id = ?", tenantID).Order("name").Find(&printers).Error
	return printers, err
}

// Allocate claims an idle printer for an order with a single conditional
// update, so two orders can never both acquire the same printer.
func (r *printerRepository) Allocate(tenantID string, printerID, orderID uint) error {
	result := r.db.Model(&models.Printer{}).
		Where("id = ? AND tenant_id = ? AND status = ?", printerID, tenantID, string(models.PrinterIdle)).
		Updates(map[string]interface{}{
			"status":           string(models.PrinterPrinting),
			"current_order_id": orderID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// The conditional update matched nothing: either the printer does not
	// exist in this tenant or it is not idle.
	printer, err := r.GetByID(tenantID, printerID)
	if err != nil {
		return err
	}
	if printer.CurrentOrderID != nil {
		return fmt.Errorf("printer %q is busy with order %d: %w", printer.Name, *printer.CurrentOrderID, models.ErrResourceBusy)
	}
	return fmt.Errorf("printer %q is %s: %w", printer.Name, printer.Status, models.ErrResourceBusy)
}

// ReleaseByOrder frees every printer bound to the order (defensively
// plural) and is a no-op when none is.
func (r *printerRepository) ReleaseByOrder(tenantID string, orderID uint) error {
	return r.db.Model(&models.Printer{}).
		Where("tenant_id = ? AND current_order_id = ?", tenantID, orderID).
		Updates(map[string]interface{}{
			"status":           string(models.PrinterIdle),
			"current_order_id": nil,
		}).Error
}

// Delete refuses to remove a printer that is mid-print so the occupant
// order never ends up referencing a ghost machine.
func (r *printerRepository) Delete(tenantID string, id uint) error {
	printer, err := r.GetByID(tenantID, id)
	if err != nil {
		return err
	}
	if printer.Status == string(models.PrinterPrinting) {
		return fmt.Errorf("printer %q is printing: %w", printer.Name, models.ErrResourceBusy)
	}
	return r.db.Where("tenant_id = ?", tenantID).Delete(&models.Printer{}, id).Error
}
