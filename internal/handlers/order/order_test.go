package order

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lokali_back_end/internal/otp"
)

func TestCreateOrder(t *testing.T) {
	orders := newStubOrderStore()
	h := NewHandler(orders, testUsers())

	payload := map[string]interface{}{
		"orderItems": []map[string]interface{}{
			{"product": "44444444-4444-4444-4444-444444444444", "name": "Lampe vintage", "image": "lampe.jpg", "price": 29.99, "qty": 2},
		},
		"sellerId":   sellerID,
		"phoneNo":    "+33612345678",
		"totalPrice": 59.98,
	}

	w := doJSON(t, newTestRouter(h, buyerID), http.MethodPost, "/api/orders", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, buyerID, body["buyerId"])
	assert.Equal(t, sellerID, body["sellerId"])
	assert.Equal(t, 59.98, body["totalPrice"])
	assert.Equal(t, false, body["isDelivered"])

	stored, err := orders.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
	assert.Equal(t, "Lampe vintage", stored.Items[0].Name)
	assert.Equal(t, "+33612345678", stored.PhoneNumber)
}

func TestCreateOrderMissingFields(t *testing.T) {
	h := NewHandler(newStubOrderStore(), testUsers())
	r := newTestRouter(h, buyerID)

	item := map[string]interface{}{"product": "p", "name": "n", "image": "i", "price": 1.0, "qty": 1}

	cases := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"sans articles", map[string]interface{}{"sellerId": sellerID, "phoneNo": "+336", "totalPrice": 1.0}},
		{"sans vendeur", map[string]interface{}{"orderItems": []interface{}{item}, "phoneNo": "+336", "totalPrice": 1.0}},
		{"sans téléphone", map[string]interface{}{"orderItems": []interface{}{item}, "sellerId": sellerID, "totalPrice": 1.0}},
		{"total négatif", map[string]interface{}{"orderItems": []interface{}{item}, "sellerId": sellerID, "phoneNo": "+336", "totalPrice": -5.0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/orders", tc.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateOrderUnauthenticated(t *testing.T) {
	h := NewHandler(newStubOrderStore(), testUsers())

	w := doJSON(t, newTestRouter(h, ""), http.MethodPost, "/api/orders", map[string]interface{}{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetOrderByID(t *testing.T) {
	h := NewHandler(newStubOrderStore(testOrder()), testUsers())

	w := doJSON(t, newTestRouter(h, buyerID), http.MethodGet, "/api/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, orderID, body["id"])

	// Les participants sont résolus en objets utilisateur
	buyer, _ := body["buyer"].(map[string]interface{})
	require.NotNil(t, buyer)
	assert.Equal(t, "Alice", buyer["name"])
	seller, _ := body["seller"].(map[string]interface{})
	require.NotNil(t, seller)
	assert.Equal(t, "Bruno", seller["name"])
}

func TestGetOrderByIDNeverExposesHash(t *testing.T) {
	withChallenge := testOrder()
	withChallenge.HashedOTP = otp.HashCode("123456")
	h := NewHandler(newStubOrderStore(withChallenge), testUsers())

	w := doJSON(t, newTestRouter(h, buyerID), http.MethodGet, "/api/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.NotContains(t, w.Body.String(), withChallenge.HashedOTP)
	assert.NotContains(t, w.Body.String(), "hashedOTP")
}

func TestGetOrderByIDNotParticipant(t *testing.T) {
	h := NewHandler(newStubOrderStore(testOrder()), testUsers())

	w := doJSON(t, newTestRouter(h, otherID), http.MethodGet, "/api/orders/"+orderID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetOrderByIDNotFound(t *testing.T) {
	h := NewHandler(newStubOrderStore(), testUsers())

	w := doJSON(t, newTestRouter(h, buyerID), http.MethodGet, "/api/orders/"+orderID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBuyerOrders(t *testing.T) {
	mine := testOrder()
	foreign := testOrder()
	foreign.ID = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	foreign.BuyerID = otherID

	h := NewHandler(newStubOrderStore(mine, foreign), testUsers())

	w := doJSON(t, newTestRouter(h, buyerID), http.MethodGet, "/api/orders/buyer", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	orders, _ := body["orders"].([]interface{})
	require.Len(t, orders, 1)

	first, _ := orders[0].(map[string]interface{})
	assert.Equal(t, orderID, first["id"])
	seller, _ := first["seller"].(map[string]interface{})
	require.NotNil(t, seller, "le vendeur doit être résolu côté acheteur")
	assert.Equal(t, "Bruno", seller["name"])
}

func TestGetSellerOrders(t *testing.T) {
	h := NewHandler(newStubOrderStore(testOrder()), testUsers())

	w := doJSON(t, newTestRouter(h, sellerID), http.MethodGet, "/api/orders/seller", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	orders, _ := body["orders"].([]interface{})
	require.Len(t, orders, 1)

	first, _ := orders[0].(map[string]interface{})
	buyer, _ := first["buyer"].(map[string]interface{})
	require.NotNil(t, buyer, "l'acheteur doit être résolu côté vendeur")
	assert.Equal(t, "Alice", buyer["name"])
}

func TestUpdatePhoneNumber(t *testing.T) {
	orders := newStubOrderStore(testOrder())
	h := NewHandler(orders, testUsers())

	w := doJSON(t, newTestRouter(h, buyerID), http.MethodPut, "/api/orders/"+orderID+"/phone",
		map[string]string{"phoneNumber": "+33700000000"})
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := orders.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, "+33700000000", stored.PhoneNumber)
}

func TestUpdatePhoneNumberNotBuyer(t *testing.T) {
	orders := newStubOrderStore(testOrder())
	h := NewHandler(orders, testUsers())

	w := doJSON(t, newTestRouter(h, sellerID), http.MethodPut, "/api/orders/"+orderID+"/phone",
		map[string]string{"phoneNumber": "+33700000000"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	stored, _ := orders.GetByID(context.Background(), orderID)
	assert.Equal(t, "+33612345678", stored.PhoneNumber)
}

func TestUpdatePhoneNumberValidation(t *testing.T) {
	h := NewHandler(newStubOrderStore(testOrder()), testUsers())

	w := doJSON(t, newTestRouter(h, buyerID), http.MethodPut, "/api/orders/"+orderID+"/phone",
		map[string]string{"phoneNumber": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePhoneNumberNotFound(t *testing.T) {
	h := NewHandler(newStubOrderStore(), testUsers())

	w := doJSON(t, newTestRouter(h, buyerID), http.MethodPut, "/api/orders/"+orderID+"/phone",
		map[string]string{"phoneNumber": "+33700000000"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
