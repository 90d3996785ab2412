package service

import (
	"testing"

	"medstock/internal/database"
	"medstock/internal/model"
	"medstock/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires every service against an in-memory sqlite database.
type testEnv struct {
	db *gorm.DB

	orderRepo     repository.OrderRepository
	inventoryRepo repository.InventoryRepository

	orders    OrderService
	inventory InventoryService
	users     UserService
	products  ProductService
	locations LocationService
	audits    AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every session on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	return &testEnv{
		db:            db,
		orderRepo:     orderRepo,
		inventoryRepo: inventoryRepo,
		orders:        NewOrderService(orderRepo, productRepo, userRepo, inventoryRepo, auditRepo, txManager, nil),
		inventory:     NewInventoryService(inventoryRepo, auditRepo, txManager),
		users:         NewUserService(userRepo, locationRepo, auditRepo, txManager),
		products:      NewProductService(productRepo, auditRepo, txManager),
		locations:     NewLocationService(locationRepo, auditRepo, txManager),
		audits:        NewAuditService(auditRepo),
	}
}

func (e *testEnv) seedLocation(t *testing.T, city, state string) *model.Location {
	t.Helper()
	location := &model.Location{City: city, State: state}
	require.NoError(t, e.db.Create(location).Error)
	return location
}

func (e *testEnv) seedUser(t *testing.T, name, email, role string, location *model.Location) *model.User {
	t.Helper()
	user := &model.User{
		Name:     name,
		Email:    email,
		Password: "$2a$10$irrelevant.for.these.tests",
		Role:     role,
	}
	if location != nil {
		user.LocationID = &location.ID
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) seedProduct(t *testing.T, name string, unitPrice string) *model.Product {
	t.Helper()
	price, err := decimal.NewFromString(unitPrice)
	require.NoError(t, err)
	product := &model.Product{Name: name, UnitPrice: price}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

// seedWorld creates the minimal cast: a location, one user per role and a
// product worth 12.50 a unit.
type world struct {
	env        *testEnv
	location   *model.Location
	supervisor *model.User
	admin      *model.User
	vendor     *model.User
	product    *model.Product
}

func seedWorld(t *testing.T) *world {
	t.Helper()
	env := newTestEnv(t)
	location := env.seedLocation(t, "Pune", "Maharashtra")
	return &world{
		env:        env,
		location:   location,
		supervisor: env.seedUser(t, "Sia", "sia@example.com", model.RoleSupervisor, location),
		admin:      env.seedUser(t, "Arun", "arun@example.com", model.RoleAdmin, nil),
		vendor:     env.seedUser(t, "Vik", "vik@example.com", model.RoleVendor, location),
		product:    env.seedProduct(t, "Surgical Masks", "12.50"),
	}
}
