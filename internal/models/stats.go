// internal/models/stats.go
package models

type ShippingLineStat struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type DailyMovement struct {
	Date    string `json:"date"` // YYYY-MM-DD in the yard time zone
	Entries int    `json:"entries"`
	Exits   int    `json:"exits"`
}

type DashboardStats struct {
	TotalContainers   int                `json:"totalContainers"`
	ContainersInPark  int                `json:"containersInPark"`
	ContainersOut     int                `json:"containersOut"`
	ContainersBooked  int                `json:"containersBooked"`
	DryContainers     int                `json:"dryContainers"`
	ReeferContainers  int                `json:"reeferContainers"`
	ShippingLineStats []ShippingLineStat `json:"shippingLineStats"`
	MovementsByDay    []DailyMovement    `json:"movementsByDay"`
}
