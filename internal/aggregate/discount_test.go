package aggregate

import (
	"testing"

	"boxoffice/internal/core"
)

func TestAdjustForBlockedSeats(t *testing.T) {
	tests := []struct {
		name       string
		sold       int
		gross      float64
		totalSeats int
		rate       float64
		wantSold   int
		wantGross  float64
	}{
		{
			name: "typical adjustment",
			// 1000 seats at 0.5% blocked removes 5 sold; avg price 200.
			sold: 400, gross: 80000, totalSeats: 1000, rate: 0.005,
			wantSold: 395, wantGross: 79000,
		},
		{
			name: "zero rate is identity",
			sold: 400, gross: 80000, totalSeats: 1000, rate: 0,
			wantSold: 400, wantGross: 80000,
		},
		{
			name: "adjustment larger than sold clamps to zero",
			sold: 10, gross: 2000, totalSeats: 1000, rate: 0.05,
			wantSold: 0, wantGross: 0,
		},
		{
			name: "zero sold stays zero",
			sold: 0, gross: 0, totalSeats: 500, rate: 0.0325,
			wantSold: 0, wantGross: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sold, gross := AdjustForBlockedSeats(tt.sold, tt.gross, tt.totalSeats, tt.rate)
			if sold != tt.wantSold || gross != tt.wantGross {
				t.Errorf("AdjustForBlockedSeats = (%d, %v), want (%d, %v)",
					sold, gross, tt.wantSold, tt.wantGross)
			}
		})
	}
}

func TestDiscountModelApply(t *testing.T) {
	model := NewDiscountModel(map[string]float64{"PVR": 0.005, "INOX": 0})

	chains := core.NewDimTable()
	pvr := chains.Upsert("PVR")
	pvr.Sold, pvr.Gross, pvr.TotalSeats = 400, 80000, 1000
	inox := chains.Upsert("INOX")
	inox.Sold, inox.Gross, inox.TotalSeats = 100, 20000, 200
	indie := chains.Upsert("Prasads")
	indie.Sold, indie.Gross, indie.TotalSeats = 50, 10000, 100

	model.Apply(chains)

	pvr = chains.Get("PVR")
	if pvr.Sold != 395 || pvr.Gross != 79000 {
		t.Errorf("PVR after apply = %+v", pvr)
	}
	if pvr.Occupancy != 39.5 {
		t.Errorf("PVR occupancy = %v, want recomputed 39.5", pvr.Occupancy)
	}
	// Zero-rate and unconfigured chains are untouched.
	if got := chains.Get("INOX"); got.Sold != 100 || got.Gross != 20000 {
		t.Errorf("INOX after apply = %+v", got)
	}
	if got := chains.Get("Prasads"); got.Sold != 50 {
		t.Errorf("Prasads after apply = %+v", got)
	}
}

func TestDiscountModelEnabled(t *testing.T) {
	if NewDiscountModel(nil).Enabled() {
		t.Error("empty model must not be enabled")
	}
	if NewDiscountModel(map[string]float64{"INOX": 0}).Enabled() {
		t.Error("all-zero rates must not be enabled")
	}
	if !NewDiscountModel(map[string]float64{"PVR": 0.005}).Enabled() {
		t.Error("non-zero rate must enable the model")
	}
}
