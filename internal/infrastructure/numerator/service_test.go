package numerator

import (
	"testing"
	"time"

	corenumerator "stockcontrol/internal/core/numerator"
)

func TestFormatNumber(t *testing.T) {
	period := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  corenumerator.Config
		num  int64
		want string
	}{
		{
			name: "default order pattern",
			cfg:  corenumerator.DefaultConfig("PED"),
			num:  1,
			want: "PED-2026-00001",
		},
		{
			name: "wider sequence",
			cfg:  corenumerator.DefaultConfig("PED"),
			num:  12345,
			want: "PED-2026-12345",
		},
		{
			name: "overflow keeps all digits",
			cfg:  corenumerator.DefaultConfig("PED"),
			num:  123456,
			want: "PED-2026-123456",
		},
		{
			name: "no year",
			cfg:  corenumerator.Config{Prefix: "DOC", PadWidth: 3},
			num:  7,
			want: "DOC-007",
		},
		{
			name: "zero pad width defaults to five",
			cfg:  corenumerator.Config{Prefix: "DOC", IncludeYear: true},
			num:  42,
			want: "DOC-2026-00042",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatNumber(tt.cfg, period, tt.num)
			if got != tt.want {
				t.Errorf("formatNumber\nwant: %s\ngot:  %s", tt.want, got)
			}
		})
	}
}
