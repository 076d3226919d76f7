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

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestServer(db *gorm.DB) *echo.Echo {
	return SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, test.WeatherProviderMock{}, nil, nil, nil)
}

func TestCreateItemOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)

	reqBody := CreateItemIn{
		Name:     "Silk Blouse",
		FileName: test.NewRefString("blouse.jpg"),
		Category: "tops",
		Color:    "pink",
		Season:   "all",
		Tags:     []string{"elegant"},
	}

	req := test.NewJSONAuthRequest("POST", "/closet/items", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, "Expected status code 201 Created, got %d: %s", rec.Code, rec.Body.String())

	var response ItemCreatedResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Equal(t, reqBody.Name, response.Item.Name)
	require.Equal(t, "tops", response.Item.Category)
	require.Equal(t, "draft", response.Item.ImageStatus)
	require.Contains(t, response.FileUploadUrl, "blouse.jpg")
}

func TestCreateItemInvalidCategory(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)

	reqBody := CreateItemIn{
		Name:     "Mystery Thing",
		FileName: test.NewRefString("thing.jpg"),
		Category: "gadgets",
	}

	req := test.NewJSONAuthRequest("POST", "/closet/items", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var response map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["error"], "category")
}

func TestCreateItemFreeLimit(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)

	for i := 0; i < freeItemLimit; i++ {
		test.FakeClothingItem(db, user.ID, fmt.Sprintf("Item %v", i), "tops", "white")
	}

	reqBody := CreateItemIn{
		Name:     "One Too Many",
		FileName: test.NewRefString("extra.jpg"),
		Category: "tops",
	}
	req := test.NewJSONAuthRequest("POST", "/closet/items", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
}

func TestCreateItemProUserSkipsLimit(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)
	user.Subscription = models.Pro
	db.Save(&user)

	for i := 0; i < freeItemLimit; i++ {
		test.FakeClothingItem(db, user.ID, fmt.Sprintf("Item %v", i), "tops", "white")
	}

	reqBody := CreateItemIn{
		Name:     "Still Fits",
		FileName: test.NewRefString("more.jpg"),
		Category: "bottoms",
	}
	req := test.NewJSONAuthRequest("POST", "/closet/items", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateItemUnauthorized(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)

	reqBody := CreateItemIn{
		Name:     "Silk Blouse",
		FileName: test.NewRefString("blouse.jpg"),
		Category: "tops",
	}
	req := test.NewJSONAuthRequest("POST", "/closet/items", "", reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListItemsGroupedByCategory(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)

	test.FakeClothingItem(db, user.ID, "White Tee", "tops", "white")
	test.FakeClothingItem(db, user.ID, "Jeans", "bottoms", "blue")
	test.FakeClothingItem(db, user.ID, "Loafers", "shoes", "brown")

	req := test.NewJSONAuthRequest("GET", "/closet/items", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "Expected status code 200 OK, got %d: %s", rec.Code, rec.Body.String())

	var response ItemsListResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response.Tops, 1)
	require.Len(t, response.Bottoms, 1)
	require.Len(t, response.Shoes, 1)
	require.Len(t, response.Dresses, 0)
	require.Equal(t, "White Tee", response.Tops[0].Name)
	require.Equal(t, "Jeans", response.Bottoms[0].Name)
}

func TestListItemsEmpty(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("GET", "/closet/items", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response ItemsListResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response.Tops, 0)
	require.Len(t, response.Bottoms, 0)
}

func TestGetItemNotOwned(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)
	other := test.FakeUserV2(db, "Other", "other@example.com")
	item := test.FakeClothingItem(db, other.ID, "Not Yours", "tops", "black")

	req := test.NewJSONAuthRequest("GET", fmt.Sprintf("/closet/items/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateItemOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)
	item := test.FakeClothingItem(db, user.ID, "Old Name", "tops", "white")

	reqBody := UpdateItemIn{
		Name:     test.NewRefString("New Name"),
		Color:    test.NewRefString("navy"),
		Favorite: BoolPointer(true),
	}
	req := test.NewJSONAuthRequest("PATCH", fmt.Sprintf("/closet/items/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response ItemResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "New Name", response.Name)
	assert.Equal(t, "navy", response.Color)
	assert.True(t, response.Favorite)
}

func TestDeleteItemOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db)
	user := test.FakeUser(db)
	item := test.FakeClothingItem(db, user.ID, "Doomed", "shoes", "black")

	req := test.NewJSONAuthRequest("DELETE", fmt.Sprintf("/closet/items/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var count int64
	db.Model(&models.ClothingItem{}).Where("id = ?", item.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}
