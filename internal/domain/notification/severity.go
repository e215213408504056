package notification

import (
	"fmt"
)

// AlertMargin is how far above the minimum a balance still counts as a
// warning: balance <= min+AlertMargin triggers ALERTA.
const AlertMargin = 5

// Classify returns the alert severity for a balance against the product's
// minimum quantity. First match wins, in priority order; ok=false means
// no alert.
func Classify(balance, minQuantity int64) (Severity, bool) {
	switch {
	case balance == 0:
		return SeverityZerado, true
	case balance < minQuantity:
		return SeverityCritico, true
	case balance <= minQuantity+AlertMargin:
		return SeverityAlerta, true
	default:
		return "", false
	}
}

type template struct {
	title string
	body  string
}

// templates maps locale -> severity. Bodies take (product name, balance).
var templates = map[string]map[Severity]template{
	"pt": {
		SeverityZerado: {
			title: "Produto sem estoque",
			body:  "O produto %q está sem estoque (saldo atual: %d). Reposição necessária.",
		},
		SeverityCritico: {
			title: "Estoque crítico",
			body:  "O produto %q está com estoque crítico (saldo atual: %d). Reposição urgente recomendada.",
		},
		SeverityAlerta: {
			title: "Estoque baixo",
			body:  "O produto %q está com estoque baixo (saldo atual: %d). Considere repor em breve.",
		},
	},
	"en": {
		SeverityZerado: {
			title: "Product out of stock",
			body:  "Product %q is out of stock (current balance: %d). Restock required.",
		},
		SeverityCritico: {
			title: "Critical stock level",
			body:  "Product %q is at a critical stock level (current balance: %d). Urgent restock recommended.",
		},
		SeverityAlerta: {
			title: "Low stock",
			body:  "Product %q is running low (current balance: %d). Consider restocking soon.",
		},
	},
}

// DefaultLocale is used when the configured locale has no templates.
const DefaultLocale = "pt"

// Render returns the localized title and body for an alert.
func Render(locale string, severity Severity, productName string, balance int64) (title, body string) {
	byLocale, ok := templates[locale]
	if !ok {
		byLocale = templates[DefaultLocale]
	}
	t := byLocale[severity]
	return t.title, fmt.Sprintf(t.body, productName, balance)
}
