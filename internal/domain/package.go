package domain

// CreditPackage is a purchasable bundle of assessment credits.
type CreditPackage struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Credits int    `json:"credits"`
}

// packages is the fixed catalog. Order creation only accepts ids listed here.
var packages = map[string]CreditPackage{
	"starter-pack": {ID: "starter-pack", Name: "Starter", Credits: 10},
	"value-pack":   {ID: "value-pack", Name: "Value", Credits: 30},
	"mega-pack":    {ID: "mega-pack", Name: "Mega", Credits: 100},
}

// PackageByID resolves a package id against the catalog.
func PackageByID(id string) (CreditPackage, bool) {
	p, ok := packages[id]
	return p, ok
}
