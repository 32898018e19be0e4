package models

// EditionDB is the API-facing shape of a canonical edition as stored in
// the editions table. Prices are plain strings here (two-decimal or
// empty) so the JSON mirrors the canonical file exactly.
type EditionDB struct {
	ISTURL          string `json:"ist_url"`
	ISTTitle        string `json:"ist_title"`
	OPBURL          string `json:"opb_url,omitempty"`
	AmazonURL       string `json:"amazon_url,omitempty"`
	RetailPrice     string `json:"retail_price,omitempty"`
	ISTStatus       string `json:"ist_status,omitempty"`
	ISTCurrentPrice string `json:"ist_current_price,omitempty"`
	OPBStatus       string `json:"opb_status,omitempty"`
	OPBCurrentPrice string `json:"opb_current_price,omitempty"`
	AmazonStatus    string `json:"amazon_status,omitempty"`
	AmazonPrice     string `json:"amazon_current_price,omitempty"`
	MinCurrentPrice string `json:"min_current_price,omitempty"`
	AllTimeLow      string `json:"all_time_low_price,omitempty"`
	UPC             string `json:"upc,omitempty"`
	LastUpdated     string `json:"last_updated,omitempty"`
}
