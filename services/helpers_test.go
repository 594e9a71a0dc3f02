package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront-api/config"
	"storefront-api/models"
	"storefront-api/notify"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))
	return db
}

type stubTokens struct{}

func (stubTokens) Issue(a *models.Account) (string, error) {
	return fmt.Sprintf("token-%d-%s", a.ID, a.Role), nil
}

// sequenceIDs hands out the given order numbers, then numbered fallbacks.
type sequenceIDs struct {
	mu   sync.Mutex
	next []string
	n    int
}

func (g *sequenceIDs) NewOrderNumber() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.next) > 0 {
		id := g.next[0]
		g.next = g.next[1:]
		return id
	}
	g.n++
	return fmt.Sprintf("ORD-T%04d", g.n)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.OrderEvent
}

func (r *recordingNotifier) OrderStatusChanged(_ context.Context, ev notify.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func seedAccount(t *testing.T, db *gorm.DB, name, phone string, role models.Role) *models.Account {
	t.Helper()
	a := &models.Account{Name: name, Phone: phone, Role: role, PasswordHash: "x"}
	require.NoError(t, db.Create(a).Error)
	return a
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, discount int64, qty int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:     name,
		Category: "general",
		Price:    decimal.RequireFromString(price),
		Discount: decimal.NewFromInt(discount),
		Quantity: qty,
		IsActive: true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func reloadProduct(t *testing.T, db *gorm.DB, id uint) models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p
}
