package entities

import (
	"errors"
	"testing"
	"time"
)

func TestOrder_Validation(t *testing.T) {
	created := NewDate(2025, time.March, 3)

	validOrder, err := NewOrder(1, 10, 6, created, created.AddDays(4))
	if err != nil {
		t.Fatalf("Expected valid order creation to succeed: %v", err)
	}
	if validOrder.Status != OrderPending {
		t.Errorf("Expected status pending, got %s", validOrder.Status)
	}
	if validOrder.InitialQuantity != 6 {
		t.Errorf("Expected initial quantity 6, got %d", validOrder.InitialQuantity)
	}

	testCases := []struct {
		name        string
		id          OrderID
		productID   ProductID
		quantity    Quantity
		delivery    Date
		expectError string
	}{
		{"zero id", 0, 10, 1, created, "validation error: order id must be positive, got 0"},
		{"zero product", 1, 0, 1, created, "validation error: product id must be positive, got 0"},
		{"zero quantity", 1, 10, 0, created, "validation error: quantity must be positive, got 0"},
		{"negative quantity", 1, 10, -3, created, "validation error: quantity must be positive, got -3"},
		{"quantity above maximum", 1, 10, MaxOrderQuantity + 1, created, "validation error: quantity 1000001 exceeds the maximum of 1000000"},
		{
			"delivery after the calendar",
			1,
			10,
			1,
			MaxDate.AddDays(1),
			"validation error: delivery date is after 9999-12-31",
		},
		{
			"delivery before creation",
			1,
			10,
			1,
			created.AddDays(-1),
			"validation error: delivery date 2025-03-02 cannot be before creation date 2025-03-03",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOrder(tc.id, tc.productID, tc.quantity, created, tc.delivery)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestOrder_Lifecycle(t *testing.T) {
	created := NewDate(2025, time.March, 3)
	order, err := NewOrder(1, 10, 6, created, created)
	if err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}

	if err := order.Produce(1); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState producing a pending order, got %v", err)
	}

	if err := order.Release(); err != nil {
		t.Fatalf("Expected release to succeed: %v", err)
	}
	if err := order.Release(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState releasing twice, got %v", err)
	}

	if err := order.Produce(7); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState overproducing, got %v", err)
	}

	if err := order.Produce(5); err != nil {
		t.Fatalf("Expected partial production to succeed: %v", err)
	}
	if order.Status != OrderReleased || order.Quantity != 1 {
		t.Errorf("Expected released with 1 remaining, got %s with %d", order.Status, order.Quantity)
	}
	if order.Produced() != 5 {
		t.Errorf("Expected 5 produced, got %d", order.Produced())
	}

	if err := order.Produce(1); err != nil {
		t.Fatalf("Expected completing production to succeed: %v", err)
	}
	if order.Status != OrderCompleted {
		t.Errorf("Expected completed, got %s", order.Status)
	}
	if order.IsOpen() {
		t.Error("Expected completed order to not be open")
	}
	if err := order.Release(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState releasing a completed order, got %v", err)
	}
}

func TestOrder_ValidateRestored(t *testing.T) {
	day := NewDate(2025, time.March, 3)

	testCases := []struct {
		name    string
		order   Order
		wantErr bool
	}{
		{"pending untouched", Order{ID: 1, ProductID: 2, Quantity: 4, InitialQuantity: 4, Status: OrderPending, CreationDate: day}, false},
		{"released partial", Order{ID: 1, ProductID: 2, Quantity: 1, InitialQuantity: 4, Status: OrderReleased}, false},
		{"completed", Order{ID: 1, ProductID: 2, Quantity: 0, InitialQuantity: 4, Status: OrderCompleted}, false},
		{"unknown status", Order{ID: 1, ProductID: 2, Quantity: 4, InitialQuantity: 4, Status: "in_production"}, true},
		{"quantity above initial", Order{ID: 1, ProductID: 2, Quantity: 5, InitialQuantity: 4, Status: OrderReleased}, true},
		{"completed with remainder", Order{ID: 1, ProductID: 2, Quantity: 2, InitialQuantity: 4, Status: OrderCompleted}, true},
		{"released with nothing left", Order{ID: 1, ProductID: 2, Quantity: 0, InitialQuantity: 4, Status: OrderReleased}, true},
		{"pending partial", Order{ID: 1, ProductID: 2, Quantity: 3, InitialQuantity: 4, Status: OrderPending}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.order.Validate()
			if tc.wantErr && !errors.Is(err, ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestEstimateDeliveryDate(t *testing.T) {
	created := NewDate(2025, time.January, 30)

	testCases := []struct {
		quantity Quantity
		expected string
	}{
		{1, "2025-02-02"},
		{4, "2025-02-02"},
		{5, "2025-02-03"},
		{12, "2025-02-04"},
	}

	for _, tc := range testCases {
		got := EstimateDeliveryDate(created, 3, tc.quantity)
		if got.String() != tc.expected {
			t.Errorf("quantity %d: expected %s, got %s", tc.quantity, tc.expected, got)
		}
	}
}

func TestEstimateDeliveryDate_StaysSerializable(t *testing.T) {
	created := NewDate(2025, time.January, 6)
	delivery := EstimateDeliveryDate(created, MaxLeadTimeDays, MaxOrderQuantity)

	order, err := NewOrder(1, 10, MaxOrderQuantity, created, delivery)
	if err != nil {
		t.Fatalf("Expected the largest order to be accepted: %v", err)
	}
	text, err := order.DeliveryDate.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		t.Fatalf("Expected %s to parse back, got %v", text, err)
	}
	if !parsed.Equal(delivery) {
		t.Errorf("Expected %s, got %s", delivery, parsed)
	}
}
