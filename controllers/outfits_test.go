package controllers

import (
	"encoding/json"
	"fmt"
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

func TestCreateOutfitOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)

	top := test.FakeClothingItem(db, user.ID, "White Tee", "tops", "white")
	bottom := test.FakeClothingItem(db, user.ID, "Jeans", "bottoms", "blue")

	reqBody := CreateOutfitIn{
		Name:    "Weekend Look",
		ItemIDs: []int64{int64(top.ID), int64(bottom.ID)},
		Mood:    test.NewRefString("casual"),
	}
	req := test.NewJSONAuthRequest("POST", "/closet/outfits", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var response OutfitResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Equal(t, "Weekend Look", response.Name)
	require.Equal(t, "manual", response.Source)
	require.Len(t, response.Items, 2)
	require.Equal(t, "White Tee", response.Items[0].Name)
	require.Equal(t, "Jeans", response.Items[1].Name)
}

func TestCreateOutfitGeneratesNameWhenMissing(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)

	top := test.FakeClothingItem(db, user.ID, "White Tee", "tops", "white")

	reqBody := CreateOutfitIn{
		ItemIDs: []int64{int64(top.ID)},
	}
	req := test.NewJSONAuthRequest("POST", "/closet/outfits", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var response OutfitResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.NotEmpty(t, response.Name)
}

func TestCreateOutfitRejectsForeignItems(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)
	other := test.FakeUserV2(db, "Other", "other@example.com")
	foreign := test.FakeClothingItem(db, other.ID, "Not Yours", "tops", "black")

	reqBody := CreateOutfitIn{
		ItemIDs: []int64{int64(foreign.ID)},
	}
	req := test.NewJSONAuthRequest("POST", "/closet/outfits", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestCreateOutfitUnknownMood(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)
	top := test.FakeClothingItem(db, user.ID, "White Tee", "tops", "white")

	reqBody := CreateOutfitIn{
		ItemIDs: []int64{int64(top.ID)},
		Mood:    test.NewRefString("grumpy"),
	}
	req := test.NewJSONAuthRequest("POST", "/closet/outfits", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOutfitDropsDanglingItems(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)

	top := test.FakeClothingItem(db, user.ID, "White Tee", "tops", "white")
	bottom := test.FakeClothingItem(db, user.ID, "Jeans", "bottoms", "blue")
	shoes := test.FakeClothingItem(db, user.ID, "Loafers", "shoes", "brown")

	reqBody := CreateOutfitIn{
		Name:    "Full Look",
		ItemIDs: []int64{int64(top.ID), int64(bottom.ID), int64(shoes.ID)},
	}
	req := test.NewJSONAuthRequest("POST", "/closet/outfits", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created OutfitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// deleting the bottoms must not touch the outfit row
	req = test.NewJSONAuthRequest("DELETE", fmt.Sprintf("/closet/items/%v", bottom.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = test.NewJSONAuthRequest("GET", fmt.Sprintf("/closet/outfits/%v", created.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response OutfitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Items, 2)
	assert.Equal(t, "White Tee", response.Items[0].Name)
	assert.Equal(t, "Loafers", response.Items[1].Name)

	// the stored id list itself stays intact
	var stored models.Outfit
	require.NoError(t, db.First(&stored, created.ID).Error)
	assert.Len(t, []int64(stored.ItemIDs), 3)
}

func TestListOutfitsOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)

	top := test.FakeClothingItem(db, user.ID, "White Tee", "tops", "white")
	outfit := models.Outfit{
		Name:    "Saved Look",
		ItemIDs: pq.Int64Array{int64(top.ID)},
		Source:  "manual",
		OwnerID: user.ID,
	}
	require.NoError(t, db.Create(&outfit).Error)

	req := test.NewJSONAuthRequest("GET", "/closet/outfits", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response map[string][]OutfitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response["outfits"], 1)
	assert.Equal(t, "Saved Look", response["outfits"][0].Name)
}

func TestUpdateOutfitOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)

	top := test.FakeClothingItem(db, user.ID, "White Tee", "tops", "white")
	dress := test.FakeClothingItem(db, user.ID, "Slip Dress", "dresses", "lavender")
	outfit := models.Outfit{
		Name:    "Before",
		ItemIDs: pq.Int64Array{int64(top.ID)},
		Source:  "manual",
		OwnerID: user.ID,
	}
	require.NoError(t, db.Create(&outfit).Error)

	reqBody := UpdateOutfitIn{
		Name:     test.NewRefString("After"),
		ItemIDs:  []int64{int64(dress.ID)},
		Favorite: BoolPointer(true),
	}
	req := test.NewJSONAuthRequest("PATCH", fmt.Sprintf("/closet/outfits/%v", outfit.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response OutfitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "After", response.Name)
	assert.True(t, response.Favorite)
	require.Len(t, response.Items, 1)
	assert.Equal(t, "Slip Dress", response.Items[0].Name)
}

func TestDeleteOutfitKeepsItems(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)

	top := test.FakeClothingItem(db, user.ID, "White Tee", "tops", "white")
	outfit := models.Outfit{
		Name:    "Doomed Look",
		ItemIDs: pq.Int64Array{int64(top.ID)},
		Source:  "manual",
		OwnerID: user.ID,
	}
	require.NoError(t, db.Create(&outfit).Error)

	req := test.NewJSONAuthRequest("DELETE", fmt.Sprintf("/closet/outfits/%v", outfit.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var outfitCount, itemCount int64
	db.Model(&models.Outfit{}).Where("id = ?", outfit.ID).Count(&outfitCount)
	db.Model(&models.ClothingItem{}).Where("id = ?", top.ID).Count(&itemCount)
	assert.Equal(t, int64(0), outfitCount)
	assert.Equal(t, int64(1), itemCount)
}
