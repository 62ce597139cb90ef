package models

import "github.com/shopspring/decimal"

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

// Category classifies ledger entries and inventory items.
type Category string

const (
	CategoryFeed            Category = "FEED"
	CategoryMedicine        Category = "MEDICINE"
	CategoryChickenPurchase Category = "CHICKEN_PURCHASE"
	CategorySales           Category = "SALES"
	CategoryUtilities       Category = "UTILITIES"
	CategoryLabor           Category = "LABOR"
	CategoryOther           Category = "OTHER"
)

// FeedUnit enumerates the units a feed log may be recorded in. Anything other
// than "bag" is treated as kilograms when reconciling against inventory.
type FeedUnit string

const (
	FeedUnitBag FeedUnit = "bag"
	FeedUnitKg  FeedUnit = "kg"
)

// KilogramsPerBag is the fixed conversion used by feed reconciliation.
const KilogramsPerBag = 50.0

// Transaction is a single ledger entry. Immutable once created; the flock
// reference is weak and survives flock deletion as a dangling id.
type Transaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Type        TransactionType `json:"type"`
	Category    Category        `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	FlockID     string          `json:"flock_id,omitempty"`
}

// WeightLog records a weighing session for a flock. Append-only; the most
// recent weight is the last element in insertion order.
type WeightLog struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	AverageWeight float64 `json:"average_weight"`
	SampleSize    int     `json:"sample_size"`
}

// MortalityLog records bird deaths against a flock. Appending one is the only
// operation that decrements the flock's current count.
type MortalityLog struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Count  int    `json:"count"`
	Reason string `json:"reason,omitempty"`
}

// FeedLog records feed given to a flock.
type FeedLog struct {
	ID     string   `json:"id"`
	Date   string   `json:"date"`
	Amount float64  `json:"amount"`
	Unit   FeedUnit `json:"unit"`
}

// Flock is a batch of birds tracked from intake to disposal. It exclusively
// owns its log collections; deleting the flock deletes the logs.
type Flock struct {
	ID            string         `json:"id"`
	BatchName     string         `json:"batch_name"`
	Breed         string         `json:"breed"`
	StartDate     string         `json:"start_date"`
	InitialCount  int            `json:"initial_count"`
	CurrentCount  int            `json:"current_count"`
	WeightLogs    []WeightLog    `json:"weight_logs"`
	MortalityLogs []MortalityLog `json:"mortality_logs"`
	FeedLogs      []FeedLog      `json:"feed_logs"`
}

// TotalMortality sums all recorded deaths for the flock.
func (f Flock) TotalMortality() int {
	total := 0
	for _, m := range f.MortalityLogs {
		total += m.Count
	}
	return total
}

// InventoryItem is a stock line (feed or medicine).
type InventoryItem struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        Category `json:"category"`
	CurrentQuantity float64  `json:"current_quantity"`
	Unit            string   `json:"unit"`
	MinThreshold    float64  `json:"min_threshold"`
}

// LowStock reports whether the item has fallen strictly below its threshold.
// A quantity exactly at the threshold is not low stock.
func (i InventoryItem) LowStock() bool {
	return i.CurrentQuantity < i.MinThreshold
}

// FarmState is the aggregate root: the full picture of the farm's books.
// Transactions are ordered most-recent-first; new entries are prepended.
type FarmState struct {
	Transactions []Transaction   `json:"transactions"`
	Flocks       []Flock         `json:"flocks"`
	Inventory    []InventoryItem `json:"inventory"`
}

// Normalize replaces nil collections with empty slices so partially-shaped
// persisted data never surfaces as nil to callers.
func (s *FarmState) Normalize() {
	if s.Transactions == nil {
		s.Transactions = []Transaction{}
	}
	if s.Flocks == nil {
		s.Flocks = []Flock{}
	}
	if s.Inventory == nil {
		s.Inventory = []InventoryItem{}
	}
	for i := range s.Flocks {
		if s.Flocks[i].WeightLogs == nil {
			s.Flocks[i].WeightLogs = []WeightLog{}
		}
		if s.Flocks[i].MortalityLogs == nil {
			s.Flocks[i].MortalityLogs = []MortalityLog{}
		}
		if s.Flocks[i].FeedLogs == nil {
			s.Flocks[i].FeedLogs = []FeedLog{}
		}
	}
}

// Clone returns a deep copy safe to hand to persistence or AI callers while
// the original keeps mutating.
func (s FarmState) Clone() FarmState {
	out := FarmState{
		Transactions: make([]Transaction, len(s.Transactions)),
		Flocks:       make([]Flock, len(s.Flocks)),
		Inventory:    make([]InventoryItem, len(s.Inventory)),
	}
	copy(out.Transactions, s.Transactions)
	copy(out.Inventory, s.Inventory)
	for i, f := range s.Flocks {
		cf := f
		cf.WeightLogs = make([]WeightLog, len(f.WeightLogs))
		cf.MortalityLogs = make([]MortalityLog, len(f.MortalityLogs))
		cf.FeedLogs = make([]FeedLog, len(f.FeedLogs))
		copy(cf.WeightLogs, f.WeightLogs)
		copy(cf.MortalityLogs, f.MortalityLogs)
		copy(cf.FeedLogs, f.FeedLogs)
		out.Flocks[i] = cf
	}
	return out
}
