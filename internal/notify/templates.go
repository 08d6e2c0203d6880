package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
)

//go:embed templates/*.html
var templateFS embed.FS

type kind string

const (
	kindOrderCreated     kind = "order_created"
	kindPaymentConfirmed kind = "payment_confirmed"
	kindShipment         kind = "shipment"
)

var subjects = map[kind]string{
	kindOrderCreated:     "طلب جديد / New order",
	kindPaymentConfirmed: "تم تأكيد الدفع / Payment confirmed",
	kindShipment:         "تم شحن طلبك / Your order has shipped",
}

// у каждого письма свой набор "ar"/"en", поэтому отдельный template.Template на вид
var templates = map[kind]*template.Template{
	kindOrderCreated:     mustParse(kindOrderCreated),
	kindPaymentConfirmed: mustParse(kindPaymentConfirmed),
	kindShipment:         mustParse(kindShipment),
}

func mustParse(k kind) *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+string(k)+".html"))
}

type templateData struct {
	StoreName string
	ShortID   string
	Order     *models.Order
}

func render(k kind, storeName string, order *models.Order) (subject, html string, err error) {
	data := templateData{
		StoreName: storeName,
		ShortID:   shortID(order),
		Order:     order,
	}

	var buf bytes.Buffer
	if err := templates[k].ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", k, err)
	}

	return fmt.Sprintf("%s #%s", subjects[k], data.ShortID), buf.String(), nil
}

func shortID(order *models.Order) string {
	return order.ID.String()[:8]
}
