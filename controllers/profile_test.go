package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"closetapi/dbhelper"
	"closetapi/models"
	"closetapi/test"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileMe(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)

	tee := test.FakeClothingItem(db, user.ID, "White Tee", "tops", "white")
	jeans := test.FakeClothingItem(db, user.ID, "Jeans", "bottoms", "blue")
	outfit := models.Outfit{
		Name:    "Everyday",
		OwnerID: user.ID,
		Source:  "manual",
		ItemIDs: pq.Int64Array{int64(tee.ID), int64(jeans.ID)},
	}
	require.NoError(t, db.Create(&outfit).Error)

	// another user's closet must not leak into the counts
	other := test.FakeUserV2(db, "Other", "other@example.com")
	test.FakeClothingItem(db, other.ID, "Foreign Dress", "dresses", "red")

	req := test.NewJSONAuthRequest("GET", "/closet/profile/me", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response models.UserMeInfoOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	assert.Equal(t, UIntToStr(user.ID), response.Id)
	assert.Equal(t, user.Name, response.Name)
	assert.Equal(t, user.Email, response.Email)
	assert.Equal(t, models.Free, response.Subscription)
	assert.Equal(t, int64(2), response.TotalItems)
	assert.Equal(t, int64(1), response.TotalOutfits)
}

func TestProfileMeUnauthorized(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)

	req := test.NewJSONRequest("GET", "/closet/profile/me", "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
