package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/carelinkhq/carelink/internal/database"
	"github.com/carelinkhq/carelink/internal/models"
	"github.com/carelinkhq/carelink/pkg/mail"
)

// openServiceTestDB opens a uniquely named in-memory SQLite database so tests
// in the package cannot observe each other's rows. The schema comes from
// database.AutoMigrate so constraints match production.
func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, database.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func seedProvider(t *testing.T, db *gorm.DB, email string, price int, status models.ProviderStatus, topics, practices []string) models.Provider {
	t.Helper()

	provider := models.Provider{
		FullName:     "Provider " + email,
		Email:        email,
		Status:       status,
		Gender:       "Female",
		SessionPrice: price,
		Topics:       datatypes.JSONSlice[string](topics),
		Practices:    datatypes.JSONSlice[string](practices),
	}
	require.NoError(t, db.Create(&provider).Error)
	return provider
}

// extractToken pulls the raw invitation token out of an invitation body
// produced without a base URL, where the registration link is the bare token.
func extractToken(t *testing.T, body string) string {
	t.Helper()

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if strings.HasSuffix(line, "here:") && i+1 < len(lines) {
			return strings.TrimSpace(lines[i+1])
		}
	}
	t.Fatal("no token line found in invitation body")
	return ""
}

// stubMailer records outbound messages and optionally fails every send.
type stubMailer struct {
	sent []mail.Message
	fail bool
}

func (m *stubMailer) Send(_ context.Context, msg mail.Message) error {
	if m.fail {
		return fmt.Errorf("smtp unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}
