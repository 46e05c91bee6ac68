package fmp

// fmpProfile represents a company profile from FMP.
type fmpProfile struct {
	Symbol            string  `json:"symbol"`
	Price             float64 `json:"price"`
	MktCap            float64 `json:"mktCap"`
	CompanyName       string  `json:"companyName"`
	Currency          string  `json:"currency"`
	CIK               string  `json:"cik"`
	Exchange          string  `json:"exchange"`
	Industry          string  `json:"industry"`
	Website           string  `json:"website"`
	Description       string  `json:"description"`
	CEO               string  `json:"ceo"`
	Sector            string  `json:"sector"`
	Country           string  `json:"country"`
	FullTimeEmployees string  `json:"fullTimeEmployees"`
}

// fmpExecutive represents a key executive.
type fmpExecutive struct {
	Title string `json:"title"`
	Name  string `json:"name"`
}
