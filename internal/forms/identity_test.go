package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/filingmap/internal/mapping"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		name  string
		store mapping.Store
		want  Identity
	}{
		{
			name: "header fields",
			store: mapping.MapStore{
				fieldCIN:      "L12345MH2001PLC123456",
				fieldFromDate: "01/04/2022",
				fieldToDate:   "31/03/2023",
			},
			want: Identity{CIN: "L12345MH2001PLC123456", FinancialYear: "01/04/2022 to 31/03/2023"},
		},
		{
			name: "cin found in another field",
			store: mapping.MapStore{
				"data[0].Other[0]": "Company CIN: L65910DL1995PLC064811 (listed)",
				fieldFromDate:      "01/04/2022",
			},
			want: Identity{CIN: "L65910DL1995PLC064811"},
		},
		{
			name:  "nothing known",
			store: mapping.MapStore{"x": "y"},
			want:  Identity{},
		},
		{
			name:  "non-map store skips the scan",
			store: mapping.StoreFunc(func(string) (string, bool) { return "", false }),
			want:  Identity{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Identify(tt.store))
		})
	}
}
