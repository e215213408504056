package notification

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		balance      int64
		minQuantity  int64
		wantSeverity Severity
		wantAlert    bool
	}{
		{"zero balance", 0, 10, SeverityZerado, true},
		{"below minimum", 5, 10, SeverityCritico, true},
		{"just below minimum", 9, 10, SeverityCritico, true},
		{"at minimum", 10, 10, SeverityAlerta, true},
		{"within margin", 12, 10, SeverityAlerta, true},
		{"at margin boundary", 15, 10, SeverityAlerta, true},
		{"above margin", 16, 10, "", false},
		{"healthy stock", 100, 10, "", false},
		{"zero wins over critical", 0, 1, SeverityZerado, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			severity, alert := Classify(tt.balance, tt.minQuantity)
			if alert != tt.wantAlert {
				t.Fatalf("alert flag\nwant: %v\ngot:  %v", tt.wantAlert, alert)
			}
			if severity != tt.wantSeverity {
				t.Errorf("severity\nwant: %s\ngot:  %s", tt.wantSeverity, severity)
			}
		})
	}
}

func TestRender(t *testing.T) {
	title, body := Render("pt", SeverityZerado, "Parafuso M4", 0)
	if title != "Produto sem estoque" {
		t.Errorf("unexpected title: %s", title)
	}
	if !strings.Contains(body, `"Parafuso M4"`) {
		t.Errorf("body must name the product: %s", body)
	}
	if !strings.Contains(body, "0") {
		t.Errorf("body must carry the balance: %s", body)
	}

	title, _ = Render("en", SeverityAlerta, "Widget", 12)
	if title != "Low stock" {
		t.Errorf("unexpected english title: %s", title)
	}

	// Unknown locales fall back to the default.
	fallbackTitle, _ := Render("de", SeverityCritico, "Widget", 3)
	defaultTitle, _ := Render(DefaultLocale, SeverityCritico, "Widget", 3)
	if fallbackTitle != defaultTitle {
		t.Errorf("locale fallback mismatch: %s vs %s", fallbackTitle, defaultTitle)
	}
}
