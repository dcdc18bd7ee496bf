package main

import (
	"fmt"
	"log"
	"print_shop/internal/config"
	"print_shop/internal/database"
	"print_shop/internal/models"
)

// Development seeding: a tenant's settings, a couple of printers and a
// small product catalog so the order flow can be exercised end to end.
func main() {
	fmt.Println("Seeding development data...")

	// Load configuration
	cfg := config.Load()

	// Initialize database (runs migrations)
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	tenantID := cfg.DefaultTenantID

	settings := models.DefaultSettings(tenantID)
	settings.AdminPhone = "5491100000000"
	if err := db.Where("tenant_id = ?", tenantID).FirstOrCreate(settings).Error; err != nil {
		log.Fatal("Failed to seed settings:", err)
	}

	printers := []models.Printer{
		{Name: "Ender 3 V2", PrinterModel: "Creality Ender 3 V2", Status: string(models.PrinterIdle), TenantID: tenantID},
		{Name: "Prusa MK4", PrinterModel: "Prusa MK4", Status: string(models.PrinterIdle), TenantID: tenantID},
	}
	for i := range printers {
		if err := db.Where("tenant_id = ? AND name = ?", tenantID, printers[i].Name).
			FirstOrCreate(&printers[i]).Error; err != nil {
			log.Fatal("Failed to seed printers:", err)
		}
	}

	products := []models.Product{
		{Name: "Articulated Dragon", Cost: 1200, Price: 4500, Category: "figures", TenantID: tenantID},
		{Name: "Phone Stand", Cost: 300, Price: 1500, Category: "accessories", TenantID: tenantID},
		{Name: "Custom Keychain", Cost: 150, Price: 800, Category: "accessories", TenantID: tenantID},
	}
	for i := range products {
		if err := db.Where("tenant_id = ? AND name = ?", tenantID, products[i].Name).
			FirstOrCreate(&products[i]).Error; err != nil {
			log.Fatal("Failed to seed products:", err)
		}
	}

	fmt.Println("Seed data ready.")
}
