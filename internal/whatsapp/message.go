package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"german-butchery/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const deepLinkBase = "https://wa.me/"

var printer = message.NewPrinter(language.English)

// FormatPrice renders an amount at the currency's minor-unit precision with
// thousands separators, followed by the currency code. RWF has no minor unit
// so it prints whole francs; EUR and USD print cents.
func FormatPrice(amount decimal.Decimal, code string) string {
	if code == "" {
		code = domain.DefaultCurrency
	}
	scale := minorUnits(code)

	rounded := amount.Round(scale)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	text := sign + printer.Sprintf("%d", rounded.IntPart())
	if scale > 0 {
		fixed := rounded.StringFixed(scale)
		text += fixed[strings.IndexByte(fixed, '.'):]
	}
	return text + " " + code
}

// minorUnits is the number of decimals the currency is quoted with, falling
// back to cents for codes CLDR does not know
func minorUnits(code string) int32 {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return domain.MoneyScale
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// ShortID is the order reference shown to customers
func ShortID(order *domain.Order) string {
	return order.ID.String()[:8]
}

// OrderMessage builds the text a customer sends to the store for an order
func OrderMessage(businessName string, order *domain.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hello, I want to order from %s:\n\n", businessName)
	fmt.Fprintf(&b, "Order #%s\n\n", ShortID(order))

	for _, item := range order.Items {
		fmt.Fprintf(&b, "• %s – %s × %s – %s\n",
			item.ProductTitle,
			item.Quantity.String(),
			item.Unit,
			FormatPrice(item.TotalPrice, order.Currency),
		)
	}

	fmt.Fprintf(&b, "\nSubtotal: %s\n", FormatPrice(order.Subtotal, order.Currency))
	if order.DeliveryType == domain.DeliveryTypeDelivery {
		fmt.Fprintf(&b, "Delivery fee: %s\n", FormatPrice(order.DeliveryFee, order.Currency))
	}
	fmt.Fprintf(&b, "*Total: %s*\n\n", FormatPrice(order.TotalAmount, order.Currency))

	fmt.Fprintf(&b, "Customer Name: %s\n", order.CustomerName)
	fmt.Fprintf(&b, "Phone: %s\n", order.Phone)
	if order.DeliveryType == domain.DeliveryTypePickup {
		b.WriteString("Delivery Location: Pickup at the shop\n")
	} else if order.Delivery != nil {
		location := order.Delivery.DeliveryAddress
		if order.Delivery.DeliveryZone != "" {
			location += " (" + order.Delivery.DeliveryZone + ")"
		}
		fmt.Fprintf(&b, "Delivery Location: %s\n", location)
	}
	fmt.Fprintf(&b, "Payment Method: %s", order.PaymentMethod.Label())
	if order.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s", order.Notes)
	}

	return b.String()
}

// StatusMessage is the update the shop sends after changing an order status
func StatusMessage(order *domain.Order) string {
	return fmt.Sprintf("Order #%s status updated to: %s", ShortID(order), order.Status)
}

// NormalizePhone keeps digits only and replaces a leading local 0 with the
// country code.
func NormalizePhone(phone, countryCode string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	n := digits.String()
	if strings.HasPrefix(n, "00") {
		return n[2:]
	}
	if strings.HasPrefix(n, "0") && countryCode != "" {
		return countryCode + n[1:]
	}
	return n
}

// Link builds a wa.me deep link that opens a chat with text prefilled. It
// returns an empty string when the phone has no digits.
func Link(phone, text, countryCode string) string {
	number := NormalizePhone(phone, countryCode)
	if number == "" {
		return ""
	}
	return deepLinkBase + number + "?text=" + encodeText(text)
}

func encodeText(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
