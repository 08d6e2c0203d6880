// Package i18n выбирает язык ответа (ar/en) и хранит короткие тексты ошибок API.
package i18n

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type Lang string

const (
	LangAR Lang = "ar"
	LangEN Lang = "en"

	// витрина по умолчанию на арабском
	DefaultLang = LangAR
)

type contextKey string

const langKey contextKey = "lang"

// Parse возвращает поддерживаемый язык по тегу вида "en-US"
func Parse(tag string) (Lang, bool) {
	t, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return "", false
	}
	return fromTag(t)
}

func fromTag(t language.Tag) (Lang, bool) {
	base, conf := t.Base()
	if conf == language.No {
		return "", false
	}
	switch Lang(base.String()) {
	case LangAR, LangEN:
		return Lang(base.String()), true
	}
	return "", false
}

// Resolve: сначала ?lang=, затем Accept-Language по убыванию q
func Resolve(r *http.Request) Lang {
	if l, ok := Parse(r.URL.Query().Get("lang")); ok {
		return l
	}
	// теги уже отсортированы по весу, q=0 отброшены
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil {
		return DefaultLang
	}
	for _, t := range tags {
		if l, ok := fromTag(t); ok {
			return l
		}
	}
	return DefaultLang
}

// Middleware кладёт язык запроса в контекст один раз
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := Resolve(r)
		w.Header().Set("Content-Language", string(lang))
		next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), lang)))
	})
}

func WithLang(ctx context.Context, lang Lang) context.Context {
	return context.WithValue(ctx, langKey, lang)
}

func FromContext(ctx context.Context) Lang {
	if l, ok := ctx.Value(langKey).(Lang); ok {
		return l
	}
	return DefaultLang
}

var fieldNames = map[Lang]map[string]string{
	LangEN: {
		"customerName":    "Name",
		"customerPhone":   "Phone",
		"customerEmail":   "Email",
		"country":         "Country",
		"city":            "City",
		"address":         "Address",
		"quantity":        "Quantity",
		"idempotencyKey":  "Draft id",
		"orderId":         "Order id",
		"amount":          "Amount",
		"currency":        "Currency",
		"trackingNumber":  "Tracking number",
		"shippingCompany": "Shipping company",
		"sellerNotes":     "Notes",
		"status":          "Status",
		"name":            "Product name",
		"price":           "Price",
		"stockQuantity":   "Stock quantity",
		"imageUrl":        "Image URL",
		"notes":           "Notes",
		"username":        "Email",
		"password":        "Password",
		"payment_status":  "Payment status",
		"limit":           "Limit",
		"offset":          "Offset",
	},
	LangAR: {
		"customerName":    "الاسم",
		"customerPhone":   "رقم الهاتف",
		"customerEmail":   "البريد الإلكتروني",
		"country":         "الدولة",
		"city":            "المدينة",
		"address":         "العنوان",
		"quantity":        "الكمية",
		"idempotencyKey":  "معرّف المسودة",
		"orderId":         "رقم الطلب",
		"amount":          "المبلغ",
		"currency":        "العملة",
		"trackingNumber":  "رقم التتبع",
		"shippingCompany": "شركة الشحن",
		"sellerNotes":     "الملاحظات",
		"status":          "الحالة",
		"name":            "اسم المنتج",
		"price":           "السعر",
		"stockQuantity":   "الكمية المتوفرة",
		"imageUrl":        "رابط الصورة",
		"notes":           "الملاحظات",
		"username":        "البريد الإلكتروني",
		"password":        "كلمة المرور",
		"payment_status":  "حالة الدفع",
		"limit":           "الحد",
		"offset":          "الإزاحة",
	},
}

var fieldRules = map[Lang]map[string]string{
	LangEN: {
		"required": "%s is required",
		"positive": "%s must be a positive whole number",
		"email":    "%s must be a valid email address",
		"url":      "%s must be a valid URL",
		"max":      "%s is too long",
		"mismatch": "%s does not match the order",
		"invalid":  "%s is invalid",
	},
	LangAR: {
		"required": "%s مطلوب",
		"positive": "%s يجب أن يكون رقمًا صحيحًا موجبًا",
		"email":    "%s غير صالح",
		"url":      "%s غير صالح",
		"max":      "%s طويل جدًا",
		"mismatch": "%s لا يطابق الطلب",
		"invalid":  "%s غير صالح",
	},
}

var messages = map[Lang]map[string]string{
	LangEN: {
		"invalid_request":      "The request could not be read",
		"order_not_found":      "Order not found",
		"product_not_found":    "Product not found",
		"product_in_use":       "The product has orders and cannot be deleted",
		"out_of_stock":         "Sorry, the requested quantity is not available",
		"invalid_transition":   "The order cannot be changed in its current state",
		"payment_failed":       "Payment could not be created, please try again",
		"admin_request_exists": "You already have a pending request",
		"already_admin":        "You already have admin access",
		"request_not_found":    "Request not found",
		"request_reviewed":     "This request was already reviewed",
		"duplicate_request":    "This order is already being processed",
		"idempotency_conflict": "This order was already placed with different details, please reload the page",
		"invalid_credentials":  "Wrong username or password",
		"unauthorized":         "Please sign in",
		"forbidden":            "You do not have access to this page",
		"internal":             "Something went wrong, please try again",
	},
	LangAR: {
		"invalid_request":      "تعذر قراءة الطلب",
		"order_not_found":      "الطلب غير موجود",
		"product_not_found":    "المنتج غير موجود",
		"product_in_use":       "لا يمكن حذف منتج مرتبط بطلبات",
		"out_of_stock":         "عذرًا، الكمية المطلوبة غير متوفرة",
		"invalid_transition":   "لا يمكن تعديل الطلب في حالته الحالية",
		"payment_failed":       "تعذر إنشاء عملية الدفع، يرجى المحاولة مرة أخرى",
		"admin_request_exists": "لديك طلب قيد المراجعة بالفعل",
		"already_admin":        "لديك صلاحيات المسؤول بالفعل",
		"request_not_found":    "الطلب غير موجود",
		"request_reviewed":     "تمت مراجعة هذا الطلب بالفعل",
		"duplicate_request":    "هذا الطلب قيد المعالجة بالفعل",
		"idempotency_conflict": "تم إرسال هذا الطلب سابقًا ببيانات مختلفة، يرجى تحديث الصفحة",
		"invalid_credentials":  "اسم المستخدم أو كلمة المرور غير صحيحة",
		"unauthorized":         "يرجى تسجيل الدخول",
		"forbidden":            "ليس لديك صلاحية الوصول",
		"internal":             "حدث خطأ ما، يرجى المحاولة مرة أخرى",
	},
}

// Message - текст по коду; неизвестный код даёт общий "internal"
func Message(lang Lang, code string) string {
	table, ok := messages[lang]
	if !ok {
		table = messages[DefaultLang]
	}
	if msg, ok := table[code]; ok {
		return msg
	}
	return table["internal"]
}

// FieldMessage собирает сообщение вида "Phone is required"
func FieldMessage(lang Lang, field, rule string) string {
	names, ok := fieldNames[lang]
	if !ok {
		lang = DefaultLang
		names = fieldNames[lang]
	}
	name, ok := names[field]
	if !ok {
		name = field
	}
	tmpl, ok := fieldRules[lang][rule]
	if !ok {
		tmpl = fieldRules[lang]["invalid"]
	}
	return fmt.Sprintf(tmpl, name)
}
