package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"closetapi/dbhelper"
	"closetapi/models"
	"closetapi/test"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionWebhookInitialPurchase(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)

	event := echo.Map{
		"event": echo.Map{
			"type":        "INITIAL_PURCHASE",
			"app_user_id": fmt.Sprint(user.ID),
			"period_type": "NORMAL",
		},
	}
	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", "Bearer fake", event)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.UserAccount
	db.First(&updated, user.ID)
	assert.Equal(t, models.Pro, updated.Subscription)
	require.NotNil(t, updated.ExpirationDate)
	assert.Equal(t, 2029, updated.ExpirationDate.Year())
}

func TestSubscriptionWebhookExpiration(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)
	user.Subscription = models.Pro
	db.Save(&user)

	event := echo.Map{
		"event": echo.Map{
			"type":              "EXPIRATION",
			"app_user_id":       fmt.Sprint(user.ID),
			"expiration_reason": "UNSUBSCRIBE",
		},
	}
	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", "Bearer fake", event)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.UserAccount
	db.First(&updated, user.ID)
	assert.Equal(t, models.Free, updated.Subscription)
}

func TestSubscriptionWebhookBadToken(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)

	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", "Bearer wrong", echo.Map{})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubscriptionWebhookTransferSkipped(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)

	event := echo.Map{
		"event": echo.Map{
			"type":        "TRANSFER",
			"app_user_id": "42",
		},
	}
	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", "Bearer fake", event)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
