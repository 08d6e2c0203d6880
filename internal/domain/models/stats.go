package models

// OrderStats - сводка для аналитики в админке
type OrderStats struct {
	TotalOrders     int                   `json:"total_orders"`
	ByStatus        map[OrderStatus]int   `json:"by_status"`
	ByPaymentStatus map[PaymentStatus]int `json:"by_payment_status"`
	PaidRevenue     int64                 `json:"paid_revenue"`
	UnitsSold       int                   `json:"units_sold"`
	// оплачено, но отменено: возврат делается вручную у платёжного шлюза
	CancelledPaid int64 `json:"cancelled_paid"`
}
