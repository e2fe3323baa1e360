package repositories_test

import (
	"testing"

	"marche/internal/models"
	"marche/internal/repositories"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func sampleOrder(userID *string) *models.Order {
	return &models.Order{
		UserID: userID,
		Items: []models.OrderItem{
			{ProductID: "p1", ProductTitle: "Smartphone Infinix", StoreID: "s1", Quantity: 1, PriceAtPurchase: 115000},
			{ProductID: "p2", ProductTitle: "Casque Oraimo", StoreID: "s1", Quantity: 2, PriceAtPurchase: 22000},
		},
		TotalAmount:     160000,
		Status:          models.OrderStatusPaid,
		PaymentMethod:   "mtn",
		PaymentRef:      "MTN-test-ref",
		ShippingAddress: "Quartier Foto, Dschang",
	}
}

func TestGORMOrderRepository_CreateAndGetByID(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(openTestDB(t))

	order := sampleOrder(nil)
	err := repo.Create(order)
	assert.NoError(t, err)
	assert.NotEmpty(t, order.ID, "create must assign an order id")

	fetched, err := repo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Nil(t, fetched.UserID)
	assert.Equal(t, models.OrderStatusPaid, fetched.Status)
	assert.Equal(t, "MTN-test-ref", fetched.PaymentRef)
	assert.Len(t, fetched.Items, 2, "line items must be stored with the order")
	for _, item := range fetched.Items {
		assert.Equal(t, order.ID, item.OrderID)
		assert.NotEmpty(t, item.ID)
	}
}

func TestGORMOrderRepository_GetByIDNotFound(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(openTestDB(t))

	_, err := repo.GetByID("no-such-order")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGORMOrderRepository_GetByUser(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(openTestDB(t))

	buyer := "user-123"
	assert.NoError(t, repo.Create(sampleOrder(&buyer)))
	assert.NoError(t, repo.Create(sampleOrder(&buyer)))
	assert.NoError(t, repo.Create(sampleOrder(nil))) // guest order

	orders, err := repo.GetByUser(buyer)
	assert.NoError(t, err)
	assert.Len(t, orders, 2)
	for _, order := range orders {
		assert.Equal(t, buyer, *order.UserID)
		assert.Len(t, order.Items, 2)
	}

	all, err := repo.GetAll()
	assert.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGORMOrderRepository_UpdateStatus(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(openTestDB(t))

	order := sampleOrder(nil)
	assert.NoError(t, repo.Create(order))

	err := repo.UpdateStatus(order.ID, models.OrderStatusShipped)
	assert.NoError(t, err)

	fetched, err := repo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, fetched.Status)

	err = repo.UpdateStatus("no-such-order", models.OrderStatusShipped)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
