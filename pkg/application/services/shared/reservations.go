package shared

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// BOMSource looks up the bill of materials of a finished product
type BOMSource interface {
	BOM(id entities.ProductID) []entities.BOMEdge
}

// ReservationMap holds material quantities committed to released orders
type ReservationMap map[entities.ProductID]entities.Quantity

// NewReservationMap creates a new empty reservation map
func NewReservationMap() ReservationMap {
	return make(ReservationMap)
}

// ReservationsFor sums the remaining material requirements of every released
// order except the one with id exclude. Pass 0 to exclude nothing.
func ReservationsFor(orders []*entities.Order, boms BOMSource, exclude entities.OrderID) ReservationMap {
	rm := NewReservationMap()
	for _, order := range orders {
		if order.Status != entities.OrderReleased || order.ID == exclude {
			continue
		}
		for material, qty := range entities.Requirements(boms.BOM(order.ProductID), order.Quantity) {
			rm.Reserve(material, qty)
		}
	}
	return rm
}

// Reserve commits quantity of a material
func (rm ReservationMap) Reserve(material entities.ProductID, quantity entities.Quantity) {
	rm[material] += quantity
}

// Get returns the reserved quantity of a material
func (rm ReservationMap) Get(material entities.ProductID) entities.Quantity {
	return rm[material]
}

// Available returns on-hand stock net of reservations. The result is negative
// when reservations exceed stock.
func (rm ReservationMap) Available(material entities.ProductID, onHand entities.Quantity) entities.Quantity {
	return onHand - rm[material]
}

// Materials returns the reserved materials ordered by id
func (rm ReservationMap) Materials() []entities.ProductID {
	materials := make([]entities.ProductID, 0, len(rm))
	for material := range rm {
		materials = append(materials, material)
	}
	sort.Slice(materials, func(i, j int) bool { return materials[i] < materials[j] })
	return materials
}

// Total returns the reserved quantity across all materials
func (rm ReservationMap) Total() entities.Quantity {
	var total entities.Quantity
	for _, qty := range rm {
		total += qty
	}
	return total
}

// Size returns the number of materials reserved
func (rm ReservationMap) Size() int {
	return len(rm)
}

// String returns a string representation of the reservations for debugging
func (rm ReservationMap) String() string {
	if len(rm) == 0 {
		return "ReservationMap{empty}"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ReservationMap{%d entries:", len(rm))
	for _, material := range rm.Materials() {
		fmt.Fprintf(&b, " %d=%d", material, rm[material])
	}
	b.WriteString("}")
	return b.String()
}
