package domain

type TableStatus string

const (
	TableStatusAvailable TableStatus = "available"
	TableStatusInUse     TableStatus = "in_use"
)

// RestaurantTable references at most one open order. Status is in_use
// exactly when OpenOrderID is set.
type RestaurantTable struct {
	Number       int
	Capacity     int
	Status       TableStatus
	CustomerName string
	OpenOrderID  string
}
