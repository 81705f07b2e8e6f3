package core

// Store-side aggregation shapes. Unlike Analytics (computed in memory, map
// order), these come back ranked from the store's GROUP BY queries and use
// plain "total" keys on the wire.

type CategorySum struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type MonthSum struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

type MerchantSum struct {
	Merchant string  `json:"merchant"`
	Total    float64 `json:"total"`
}

// Summary is the ranked per-user overview: categories and merchants by
// descending total, months ascending by key.
type Summary struct {
	Total        float64       `json:"total"`
	ByCategory   []CategorySum `json:"by_category"`
	Monthly      []MonthSum    `json:"monthly"`
	TopMerchants []MerchantSum `json:"top_merchants"`
}
