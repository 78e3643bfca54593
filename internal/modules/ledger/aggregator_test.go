package ledger

import (
	"testing"
	"time"
)

func d(s string) time.Time {
	t, err := time.Parse(DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		trades []TradeRecord
		want   []HoldingSummary
	}{
		{
			name:   "empty ledger",
			trades: nil,
			want:   []HoldingSummary{},
		},
		{
			name: "single open position",
			trades: []TradeRecord{
				{Ticker: "XYZ.L", Date: d("2024-01-02"), Quantity: 100, Price: 200, Currency: "GBP", Activity: ActivityTrade},
			},
			want: []HoldingSummary{
				{Ticker: "XYZ.L", FirstBuyDate: d("2024-01-02"), CurrentQuantity: 100},
			},
		},
		{
			name: "closed position keeps last trade date",
			trades: []TradeRecord{
				{Ticker: "ABC", Date: d("2024-01-02"), Quantity: 50, Price: 10, Currency: "USD", Activity: ActivityTrade},
				{Ticker: "ABC", Date: d("2024-03-15"), Quantity: -50, Price: 12, Currency: "USD", Activity: ActivityTrade},
			},
			want: []HoldingSummary{
				{Ticker: "ABC", FirstBuyDate: d("2024-01-02"), CurrentQuantity: 0, LastDate: ptr(d("2024-03-15"))},
			},
		},
		{
			name: "partial sell stays open",
			trades: []TradeRecord{
				{Ticker: "ABC", Date: d("2024-01-02"), Quantity: 100, Price: 10, Currency: "USD", Activity: ActivityTrade},
				{Ticker: "ABC", Date: d("2024-02-01"), Quantity: -40, Price: 12, Currency: "USD", Activity: ActivityTrade},
			},
			want: []HoldingSummary{
				{Ticker: "ABC", FirstBuyDate: d("2024-01-02"), CurrentQuantity: 60},
			},
		},
		{
			name: "multiple tickers sorted",
			trades: []TradeRecord{
				{Ticker: "ZZZ.L", Date: d("2024-02-01"), Quantity: 10, Price: 5, Currency: "GBP", Activity: ActivityTrade},
				{Ticker: "AAA", Date: d("2024-01-02"), Quantity: 20, Price: 30, Currency: "USD", Activity: ActivityTrade},
			},
			want: []HoldingSummary{
				{Ticker: "AAA", FirstBuyDate: d("2024-01-02"), CurrentQuantity: 20},
				{Ticker: "ZZZ.L", FirstBuyDate: d("2024-02-01"), CurrentQuantity: 10},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.trades)
			if len(got) != len(tt.want) {
				t.Fatalf("Summarize() returned %d summaries, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Ticker != tt.want[i].Ticker {
					t.Errorf("summary %d ticker = %s, want %s", i, got[i].Ticker, tt.want[i].Ticker)
				}
				if !got[i].FirstBuyDate.Equal(tt.want[i].FirstBuyDate) {
					t.Errorf("summary %d first buy = %v, want %v", i, got[i].FirstBuyDate, tt.want[i].FirstBuyDate)
				}
				if got[i].CurrentQuantity != tt.want[i].CurrentQuantity {
					t.Errorf("summary %d quantity = %v, want %v", i, got[i].CurrentQuantity, tt.want[i].CurrentQuantity)
				}
				if (got[i].LastDate == nil) != (tt.want[i].LastDate == nil) {
					t.Errorf("summary %d last date = %v, want %v", i, got[i].LastDate, tt.want[i].LastDate)
				} else if got[i].LastDate != nil && !got[i].LastDate.Equal(*tt.want[i].LastDate) {
					t.Errorf("summary %d last date = %v, want %v", i, *got[i].LastDate, *tt.want[i].LastDate)
				}
			}
		})
	}
}

func TestSummarizeReconcilesWithSignedSum(t *testing.T) {
	trades := []TradeRecord{
		{Ticker: "ABC", Date: d("2024-01-02"), Quantity: 100, Price: 10, Currency: "USD", Activity: ActivityTrade},
		{Ticker: "ABC", Date: d("2024-01-10"), Quantity: -30, Price: 11, Currency: "USD", Activity: ActivityTrade},
		{Ticker: "ABC", Date: d("2024-01-20"), Quantity: 15, Price: 9, Currency: "USD", Activity: ActivityTrade},
	}

	sum := 0.0
	for _, tr := range trades {
		sum += tr.Quantity
	}

	got := Summarize(trades)
	if len(got) != 1 {
		t.Fatalf("expected one summary, got %d", len(got))
	}
	if got[0].CurrentQuantity != sum {
		t.Errorf("quantity = %v, want signed sum %v", got[0].CurrentQuantity, sum)
	}
}

func ptr(t time.Time) *time.Time { return &t }
